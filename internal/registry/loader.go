package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"assetd/internal/fsutil"
	"assetd/pkg/types"
)

// imageExtensions lists the file types treated as image assets.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tga":  true,
	".dds":  true,
	".ktx":  true,
	".ktx2": true,
}

// LoadDir walks a directory tree for image files and builds a catalog.
// Name is the slash-separated path relative to dir; Class is inferred from
// the filename. The returned root is the absolute scan directory, suitable
// for os.DirFS.
func LoadDir(dir string) ([]types.Asset, string, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, "", err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, "", fmt.Errorf("abs path: %w", err)
	}
	var assets []types.Asset
	err = fs.WalkDir(os.DirFS(abs), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		assets = append(assets, types.Asset{
			Name:  path,
			Path:  filepath.Join(abs, filepath.FromSlash(path)),
			Class: ClassifyName(path),
		})
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("walk dir: %w", err)
	}
	return assets, abs, nil
}

// ClassifyName infers the image class from material-naming conventions:
// *_n/_nrm/_normal are normal maps, *_mr/_orm/_rough/_roughness/_metal/
// _metallic are metallic-roughness, everything else is color.
func ClassifyName(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	stem = strings.ToLower(stem)
	switch {
	case hasAnySuffix(stem, "_n", "_nrm", "_normal"):
		return "normal"
	case hasAnySuffix(stem, "_mr", "_orm", "_rough", "_roughness", "_metal", "_metallic"):
		return "metallic-roughness"
	default:
		return "color"
	}
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
