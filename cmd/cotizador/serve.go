package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/cotizador/internal/api"
	"github.com/hyperifyio/cotizador/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}
			a, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			srv := api.NewServer(a, telemetry.New(nil), api.Options{
				Addr:  cfg.ListenAddr,
				RPS:   cfg.RateLimitRPS,
				Burst: cfg.RateLimitBurst,
				Debug: cfg.Verbose,
			})
			return srv.Run(ctx)
		},
	}
	f := cmd.Flags()
	f.String("listen", ":8080", "Listen address (overrides LISTEN_ADDR)")
	f.Float64("rps", 10, "Requests per second allowed on /api/v1 (0 disables limiting)")
	f.Int("burst", 20, "Burst size of the rate limiter")
	return cmd
}
