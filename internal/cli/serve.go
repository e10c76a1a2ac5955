package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atupatu/pccoe/internal/api"
	"github.com/atupatu/pccoe/internal/config"
	"github.com/atupatu/pccoe/internal/learning"
	"github.com/atupatu/pccoe/internal/logging"
	"github.com/atupatu/pccoe/internal/sink"
	"github.com/atupatu/pccoe/internal/storage"
	"github.com/atupatu/pccoe/internal/telemetry"
	"github.com/atupatu/pccoe/internal/usage"
	"github.com/atupatu/pccoe/internal/version"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the 'serve' command for running the HTTP server.
func NewServeCmd() *cobra.Command {
	var addr, storeDriver, sinkDriver string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Start the usagelog HTTP server.

The store is opened once at startup and closed on shutdown. Uploaded files
are written to the configured sink after their event is recorded; a sink
failure is logged and does not fail the request.`,
		Example: `  # Serve with the default SQLite store on :5000
  usagelog serve

  # Serve against MongoDB without keeping uploads
  USAGELOG_STORE_DSN=mongodb://localhost:27017 usagelog serve --store mongo --sink none`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if storeDriver != "" {
				cfg.Store.Driver = storeDriver
			}
			if sinkDriver != "" {
				cfg.Sink.Driver = sinkDriver
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :5000)")
	cmd.Flags().StringVar(&storeDriver, "store", "", "Store driver: sqlite, postgres, mongo, memory")
	cmd.Flags().StringVar(&sinkDriver, "sink", "", "Upload sink driver: local, s3, gcs, none")

	return cmd
}

// app holds the long-lived resources behind the HTTP handler.
type app struct {
	store   storage.Storage
	uploads sink.Sink
	handler http.Handler
}

// newApp opens the store and sink and wires the services into a handler.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*app, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	uploads, err := sink.Open(ctx, cfg.Sink)
	if err != nil {
		store.Close()
		return nil, errors.Wrapf(err, "failed to open %s sink", cfg.Sink.Driver)
	}

	querier := usage.NewQuerier(store)
	server := api.NewServer(
		usage.NewIngestor(store, uploads, logger),
		querier,
		learning.NewEngine(querier),
		logger,
		api.Options{
			PreferredTab:   cfg.PreferredTab,
			MaxUploadBytes: cfg.MaxUploadBytes,
			CORSOrigins:    cfg.CORSOrigins,
		},
	)

	return &app{store: store, uploads: uploads, handler: server.Handler()}, nil
}

// Close releases the sink and the store.
func (a *app) Close() error {
	sinkErr := sink.Close(a.uploads)
	if err := a.store.Close(); err != nil {
		return errors.CombineErrors(err, sinkErr)
	}
	return sinkErr
}

// runServe serves until the listener fails or a signal arrives.
// Implements graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		return errors.Wrap(err, "failed to set up tracing")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warnw("tracing shutdown failed", "error", err)
		}
	}()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Errorw("failed to close store or sink", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()

	logger.Infow("server started",
		"addr", cfg.Addr,
		"store", cfg.Store.Driver,
		"sink", cfg.Sink.Driver,
		"version", version.Version,
	)

	select {
	case sig := <-sigChan:
		logger.Infow("shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		logger.Info("shutdown complete")
		return nil

	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server error")
	}
}
