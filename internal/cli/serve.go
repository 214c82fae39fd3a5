package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"bookstore/internal/http/handlers"
	"bookstore/internal/http/server"
	applog "bookstore/internal/log"
)

func (a *app) serveCmd() *cobra.Command {
	var rate int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := a.env
			deps := handlers.NewDeps(e.sessions, e.catalog)
			app := server.New(deps, server.Options{
				RateLimit: rate,
				Metrics:   promhttp.HandlerFor(e.reg, promhttp.HandlerOpts{}),
				AccessLog: true,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			errc := make(chan error, 1)
			go func() { errc <- app.Listen(":" + e.cfg.Port) }()
			applog.Info(nil, "server.start", map[string]any{"port": e.cfg.Port, "products": len(e.catalog.Products())})

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			applog.Info(nil, "server.stop", nil)
			return nil
		},
	}
	cmd.Flags().IntVar(&rate, "rate-limit", 60, "requests per minute per client")
	return cmd
}
