package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"assetd/internal/config"
	"assetd/internal/httpapi"
	"assetd/internal/instantiate"
	"assetd/internal/registry"
	"assetd/internal/residency"
	"assetd/internal/tasks"
	"assetd/pkg/types"
)

func main() {
	root := buildRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var (
		cfgPath string
		cfg     config.Config
	)

	root := &cobra.Command{
		Use:           "assetd",
		Short:         "Asset residency daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Scan the assets directory and run the residency loop with an HTTP control surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath != "" {
				fileCfg, err := config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				mergeConfig(&cfg, fileCfg)
			}
			applyDefaults(&cfg)
			return run(cfg)
		},
	}
	serve.Flags().StringVar(&cfgPath, "config", "", "Config file (.yaml/.json/.toml); flags override")
	serve.Flags().StringVar(&cfg.Addr, "addr", "", "HTTP listen address, e.g. :8080")
	serve.Flags().StringVar(&cfg.AssetsDir, "assets-dir", "", "Directory to scan for image assets")
	serve.Flags().IntVar(&cfg.ImageBudgetMB, "image-budget-mb", 0, "Hard residency budget in MB (0=unlimited)")
	serve.Flags().IntVar(&cfg.ImageBudgetPerIterMB, "image-budget-per-iteration-mb", 0, "New work admitted per iteration in MB (0=unlimited)")
	serve.Flags().IntVar(&cfg.IterateIntervalMS, "iterate-interval-ms", 0, "Milliseconds between residency iterations")
	serve.Flags().IntVar(&cfg.Workers, "workers", 0, "Concurrent background instantiations (0=GOMAXPROCS)")
	serve.Flags().IntVar(&cfg.DefaultPriority, "default-priority", 0, "Residency priority assigned to scanned assets")
	serve.Flags().StringVar(&cfg.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	root.AddCommand(serve)
	return root
}

// mergeConfig overlays file values under already-set flag values.
func mergeConfig(dst *config.Config, file config.Config) {
	if dst.Addr == "" {
		dst.Addr = file.Addr
	}
	if dst.AssetsDir == "" {
		dst.AssetsDir = file.AssetsDir
	}
	if dst.ImageBudgetMB == 0 {
		dst.ImageBudgetMB = file.ImageBudgetMB
	}
	if dst.ImageBudgetPerIterMB == 0 {
		dst.ImageBudgetPerIterMB = file.ImageBudgetPerIterMB
	}
	if dst.IterateIntervalMS == 0 {
		dst.IterateIntervalMS = file.IterateIntervalMS
	}
	if dst.Workers == 0 {
		dst.Workers = file.Workers
	}
	if dst.DefaultPriority == 0 {
		dst.DefaultPriority = file.DefaultPriority
	}
	if dst.LogLevel == "" {
		dst.LogLevel = file.LogLevel
	}
}

func applyDefaults(cfg *config.Config) {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.AssetsDir == "" {
		cfg.AssetsDir = "~/assets"
	}
	if cfg.IterateIntervalMS <= 0 {
		cfg.IterateIntervalMS = 100
	}
	if cfg.DefaultPriority == 0 {
		cfg.DefaultPriority = 1
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func run(cfg config.Config) error {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
	httpapi.SetLogger(logger)

	catalog, rootDir, err := registry.LoadDir(cfg.AssetsDir)
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}

	mgr := residency.NewWithConfig(residency.ManagerConfig{
		ImageBudget:             uint64(cfg.ImageBudgetMB) << 20,
		ImageBudgetPerIteration: uint64(cfg.ImageBudgetPerIterMB) << 20,
		Publisher:               residency.NewZerologPublisher(logger),
	})
	mgr.BindInstantiator(instantiate.NewFileInstantiator())
	prometheus.MustRegister(residency.NewCollector(mgr, "assetd", nil))

	fsys := os.DirFS(rootDir)
	for _, a := range catalog {
		id := mgr.RegisterFromPath(fsys, a.Name, classFromString(a.Class), cfg.DefaultPriority)
		if !id.Valid() {
			logger.Warn().Err(residency.ErrInvalidSource(a.Name)).Msg("skipping asset")
			continue
		}
		mgr.MarkUsed(id)
	}
	logger.Info().Int("assets", len(catalog)).Str("dir", rootDir).Msg("catalog loaded")

	pool := tasks.NewPool(cfg.Workers)
	svc := &service{mgr: mgr, pool: pool}

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(svc)}
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("assetd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.IterateIntervalMS) * time.Millisecond)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-ticker.C:
			mgr.Iterate(pool)
		case <-stop:
			break loop
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := mgr.Close(); err != nil {
		logger.Warn().Err(err).Msg("manager close error")
	}
	pool.Wait()
	return nil
}

func classFromString(s string) residency.ImageClass {
	switch s {
	case "normal":
		return residency.ImageClassNormal
	case "metallic-roughness":
		return residency.ImageClassMetallicRoughness
	default:
		return residency.ImageClassColor
	}
}

// service adapts the manager + pool pair to the HTTP layer.
type service struct {
	mgr  *residency.Manager
	pool *tasks.Pool
}

func (s *service) Status() types.StatusResponse { return s.mgr.Status() }

func (s *service) MarkUsed(id residency.AssetID) { s.mgr.MarkUsed(id) }

func (s *service) SetResidencyPriority(id residency.AssetID, prio int) bool {
	return s.mgr.SetResidencyPriority(id, prio)
}

func (s *service) Activate(id residency.AssetID) error {
	if !s.mgr.Bound() {
		return residency.ErrNoInstantiator()
	}
	if !s.mgr.IterateBlocking(s.pool, id) {
		return residency.ErrUnknownAsset(id)
	}
	return nil
}

func (s *service) Ready() bool { return s.mgr.Bound() }
