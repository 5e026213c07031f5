package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pricecast-dev/pricecast/internal/forecast"
	"github.com/pricecast-dev/pricecast/internal/web"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(projectDir *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the estimation form over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(*projectDir)
			if err != nil {
				return err
			}
			if addr != "" {
				p.cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), p)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

func runServe(ctx context.Context, p *project) error {
	limits := forecast.DefaultLimits(p.cfg.Forecast.BaseYear, p.cfg.Forecast.HorizonYears)

	// A missing or broken model still serves the form with the error shown.
	pred, loadErr := forecast.Load(p.root, limits)
	if loadErr != nil {
		if errors.Is(loadErr, forecast.ErrModelNotFound) {
			p.logger.Warn("model not found, serving in unavailable mode", "error", loadErr)
		} else {
			p.logger.Error("model failed to load, serving in unavailable mode", "error", loadErr)
		}
	} else {
		p.logger.Info("model loaded", "model_id", pred.ModelID(), "districts", len(pred.Districts()))
	}

	handler := web.NewHandler(pred, loadErr, limits, p.logger)
	srv := web.NewServer(p.cfg.Server.Addr, handler.Routes(), p.logger)

	if ctx == nil {
		ctx = context.Background()
	}
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		p.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		p.logger.Info("context cancelled, shutting down")
	case err := <-serverErrors:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-serverErrors
}
