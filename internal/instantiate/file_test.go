package instantiate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"assetd/internal/residency"
	"assetd/internal/tasks"
)

// helper: create an asset file of the given size
func createAssetFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	p := filepath.Join(dir, name)
	data := bytes.Repeat([]byte{0xab}, size)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return name
}

func TestEstimateCostUsesFileSize(t *testing.T) {
	dir := t.TempDir()
	name := createAssetFile(t, dir, "brick.png", 1234)
	f, err := os.DirFS(dir).Open(name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	inst := NewFileInstantiator()
	if got := inst.EstimateCost(0, f); got != 1234 {
		t.Fatalf("expected estimate 1234, got %d", got)
	}
}

func TestInstantiateThenCloseLeavesNothingPublished(t *testing.T) {
	dir := t.TempDir()
	name := createAssetFile(t, dir, "brick.png", 512)

	m := residency.New()
	inst := NewFileInstantiator()
	m.BindInstantiator(inst)

	id := m.RegisterFromPath(os.DirFS(dir), name, residency.ImageClassColor, 1)
	if !id.Valid() {
		t.Fatalf("registration failed")
	}

	p := tasks.NewPool(2)
	m.Iterate(p)

	// Wait for the background load, then apply costs and latch.
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	p.Wait()
	inst.LatchHandles()

	// Close released the asset again, so nothing may be published.
	if res := inst.Resource(id); res != nil {
		t.Fatalf("resource survived release")
	}
}

func TestInstantiateReleaseReinstantiate(t *testing.T) {
	dir := t.TempDir()
	name := createAssetFile(t, dir, "brick.png", 256)

	m := residency.New()
	inst := NewFileInstantiator()
	m.BindInstantiator(inst)
	id := m.RegisterFromPath(os.DirFS(dir), name, residency.ImageClassColor, 1)

	// Synchronous instantiation: no task group.
	m.Iterate(nil)
	inst.LatchHandles()
	if got := len(inst.Resource(id)); got != 256 {
		t.Fatalf("expected 256 bytes published, got %d", got)
	}
	if got := m.TotalConsumed(); got != 256 {
		t.Fatalf("expected pending estimate 256, got %d", got)
	}

	// Evict by demoting and iterating; then demand it again. The handle is
	// rewound on the second load.
	m.SetResidencyPriority(id, 0)
	m.SetImageBudget(1) // force the eager GC below budget thresholds
	m.Iterate(nil)
	if inst.Resource(id) != nil {
		t.Fatalf("expected resource dropped after release")
	}

	m.SetImageBudget(1 << 20)
	m.SetResidencyPriority(id, 1)
	m.Iterate(nil)
	inst.LatchHandles()
	if got := len(inst.Resource(id)); got != 256 {
		t.Fatalf("expected 256 bytes after re-instantiation, got %d", got)
	}
}

func TestSetImageClassTracksIDs(t *testing.T) {
	inst := NewFileInstantiator()
	inst.SetIDBounds(3)
	inst.SetImageClass(1, residency.ImageClassNormal)
	if inst.classes[1] != residency.ImageClassNormal {
		t.Fatalf("class not recorded")
	}
	if inst.classes[0] != residency.ImageClassColor {
		t.Fatalf("default class must be color")
	}
}
