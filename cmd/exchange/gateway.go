package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/spotxchange/exchange/internal/config"
	"github.com/spotxchange/exchange/internal/gateway"
	"github.com/spotxchange/exchange/internal/rpcbus"
)

func newGatewayCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Run the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger("gateway")
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.HTTPAddr
			}

			rdb := newRedisClient(cfg)
			defer rdb.Close()

			client := rpcbus.NewClient(rdb)
			srv := gateway.NewServer(client, []byte(cfg.JWTSecret), cfg.AdminToken, log)

			log.Info().Str("addr", addr).Msg("gateway listening")
			return http.ListenAndServe(addr, srv.Router())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	return cmd
}
