package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"courier/internal/app"
)

func main() {
	var configPath string
	root := &cobra.Command{
		Use:          "relay",
		Short:        "Inbox relay and blob host for courier",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "relay.yaml", "YAML config file (optional)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := app.LoadRelayConfig(configPath)
	if err != nil {
		return err
	}
	log, err := app.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	relay, err := app.OpenRelay(ctx, cfg, log)
	if err != nil {
		log.Error("open relay", zap.Error(err))
		return err
	}
	defer func() {
		if err := relay.Close(); err != nil {
			log.Warn("close backends", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           relay.Server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go relay.Server.RunHousekeeping(ctx)

	errc := make(chan error, 1)
	go func() {
		log.Info("relay listening",
			zap.String("addr", cfg.Listen),
			zap.String("public_url", cfg.PublicURL),
			zap.String("inbox_backend", cfg.Inbox.Backend),
			zap.String("blob_backend", cfg.Blob.Backend),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("serve", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
