package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"oceanmeta/internal/archive"
	"oceanmeta/internal/config"
	"oceanmeta/internal/core"
	"oceanmeta/internal/httpapi"
	"oceanmeta/internal/persistence/memory"
	"oceanmeta/internal/persistence/postgres"
	"oceanmeta/internal/persistence/sqlite"
	"oceanmeta/pkg/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the metadata HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("schema") {
			cfg.SchemaPath = schemaPath
		} else {
			schemaPath = cfg.SchemaPath
		}
		return runServer(cmd.Context(), cfg)
	},
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	doc, err := loadSchema()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	archiveStore, err := archive.Open(ctx, archive.Options{
		Driver: archive.Driver(cfg.ArchiveDriver),
		FSRoot: cfg.ArchiveFSRoot,
		S3: archive.S3Config{
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			SessionToken:    cfg.S3SessionToken,
			PathStyle:       cfg.S3PathStyle,
		},
	})
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	opts := []core.Option{
		core.WithLogger(logger),
		core.WithArchive(archiveStore),
	}
	if cfg.MetricsEnabled {
		recorder, err := core.NewPrometheusMetricsRecorder(nil)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, core.WithMetrics(recorder))
	}
	service := core.NewService(store, doc, opts...)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", httpapi.NewHandler(service))
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "archive", cfg.ArchiveDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(cfg *config.Config) (domain.PersistentStore, func(), error) {
	engine := core.DefaultRulesEngine()
	switch cfg.StoreDriver {
	case "memory":
		return memory.NewStore(engine), func() {}, nil
	case "sqlite":
		store, err := sqlite.NewStore(cfg.SQLitePath, engine)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, func() { store.Close() }, nil
	case "postgres":
		dsn := cfg.PostgresDSN
		if dsn == "" {
			dsn = postgres.DefaultDSN
		}
		store, err := postgres.NewStore(dsn, engine)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
