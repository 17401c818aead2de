// Command api serves the dental clinic web UI and its JSON API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"dental-clinic/internal/config"
	"dental-clinic/internal/db"
	"dental-clinic/internal/dentist"
	"dental-clinic/internal/events"
	"dental-clinic/internal/service"
	"dental-clinic/internal/store"
	"dental-clinic/internal/view"
	"dental-clinic/ui"
)

const sessionSweepInterval = time.Minute

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "api",
		Short:         "Dental clinic web server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, os.Getenv)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid configuration: %w", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, os.Stderr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	st, closeStore, err := openStore(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	instance := uuid.NewString()
	bus := events.NewBus(logger)
	var publisher events.Publisher = bus
	if cfg.NATS.URL != "" {
		conn, err := events.Connect(cfg.NATS.URL, "dental-clinic-api")
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		defer conn.Drain()
		sub, err := events.Relay(conn, bus, instance, logger)
		if err != nil {
			return fmt.Errorf("subscribe to dentist events: %w", err)
		}
		defer sub.Unsubscribe()
		publisher = events.Fanout{bus, events.NewNATSPublisher(conn)}
		logger.Info("nats connected", "url", cfg.NATS.URL)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := service.NewDentistService(st,
		service.WithPublisher(publisher),
		service.WithMetrics(service.NewMetrics(registry)),
		service.WithSource(instance),
		service.WithLogger(logger),
	)
	data := service.NewLocalDataManager(svc)
	changes, unsubscribe := bus.Subscribe()
	defer unsubscribe()
	go data.Watch(ctx, changes)

	views, err := openViews(ctx, cfg.Server.TemplateDir, logger)
	if err != nil {
		return err
	}

	sessions := newSessionRegistry(cfg.Server.SessionIdle, cfg.Form.SearchDelay)
	go sessions.run(ctx, sessionSweepInterval)

	srv := newServer(Deps{
		Service:  svc,
		Data:     data,
		Views:    views,
		Bus:      bus,
		Sessions: sessions,
		Registry: registry,
		Delays: dentist.Delays{
			CreateRedirect: cfg.Form.CreateRedirect,
			Reload:         cfg.Form.Reload,
			DeleteRefresh:  cfg.Form.DeleteRefresh,
		},
		Logger: logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", httpServer.Addr, "storage", cfg.Storage.Driver)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (store.DentistStore, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Migrate(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		logger.Info("using postgres storage")
		return store.NewPostgresStore(conn), func() { conn.Close() }, nil
	case config.DriverBolt:
		bs, err := store.OpenBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using bolt storage", "path", cfg.BoltPath)
		return bs, func() { bs.Close() }, nil
	default:
		logger.Info("using in-memory storage")
		return store.NewMemoryStore(), func() {}, nil
	}
}

// openViews uses the embedded templates, or dir when set, in which case
// edits on disk are picked up without a restart.
func openViews(ctx context.Context, dir string, logger *slog.Logger) (*view.Renderer, error) {
	var fsys fs.FS = ui.Templates()
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	views, err := view.New(fsys, logger)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if dir != "" {
		go func() {
			if err := views.Watch(ctx, dir); err != nil {
				logger.Warn("template watch stopped", "error", err)
			}
		}()
	}
	return views, nil
}
