// Package main runs the flowturi editor API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ThatOrJohn/flowturi-designer/internal/adapters/repository"
	sessionrepo "github.com/ThatOrJohn/flowturi-designer/internal/adapters/repository/session"
	"github.com/ThatOrJohn/flowturi-designer/internal/app/editor"
	"github.com/ThatOrJohn/flowturi-designer/internal/app/services"
	"github.com/ThatOrJohn/flowturi-designer/internal/infrastructure/config"
	"github.com/ThatOrJohn/flowturi-designer/internal/infrastructure/logging"
	"github.com/ThatOrJohn/flowturi-designer/internal/infrastructure/metrics"
	"github.com/ThatOrJohn/flowturi-designer/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile  string
		envFiles    []string
		addr        string
		maxSessions int
	)

	cmd := &cobra.Command{
		Use:           "flowturi-server",
		Short:         "Serve the diagram editor API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{File: configFile, EnvFiles: envFiles})
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
			if err != nil {
				return err
			}
			defer logger.Sync()
			for _, w := range cfg.Warnings() {
				logger.Warn("configuration warning", zap.String("warning", w))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
			}
			return serve(ctx, ln, cfg, logger, maxSessions)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "YAML config file")
	cmd.Flags().StringSliceVar(&envFiles, "env-file", []string{".env"}, ".env files to load (missing files are ignored)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 1000, "Maximum live editing sessions (0 for unlimited)")
	return cmd
}

// serve runs the API on ln until ctx is done, then shuts down gracefully
func serve(ctx context.Context, ln net.Listener, cfg *config.Config, logger *zap.Logger, maxSessions int) error {
	reg := metrics.NewRegistry().WithRuntimeCollectors()

	sink, err := repository.OpenSink(ctx, cfg.Export)
	if err != nil {
		ln.Close()
		return err
	}
	defer sink.Close()

	srv := server.New(server.Config{
		Sessions: sessionrepo.NewInMemoryRepository(
			sessionrepo.WithMaxSessions(maxSessions),
			sessionrepo.WithTracker(reg),
			sessionrepo.WithEditorOptions(
				editor.WithLogger(logger),
				editor.WithMetrics(reg),
				editor.WithSettings(cfg.Simulation),
			),
		),
		Exports: services.NewExportService(
			services.WithExportLogger(logger),
			services.WithExportMetrics(reg),
		),
		Sink:     sink,
		Metrics:  reg,
		Logger:   logger,
		Defaults: cfg.Simulation,
	})
	defer srv.Close()
	httpServer := srv.HTTPServer(cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", ln.Addr().String()),
			zap.String("sink", sink.Name()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}
