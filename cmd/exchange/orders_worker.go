package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/spotxchange/exchange/internal/config"
	"github.com/spotxchange/exchange/internal/lock"
	"github.com/spotxchange/exchange/internal/orders"
	"github.com/spotxchange/exchange/internal/rpcbus"
	"github.com/spotxchange/exchange/internal/wshub"
)

func newOrdersWorkerCmd() *cobra.Command {
	var workers int
	var wsAddr string
	cmd := &cobra.Command{
		Use:   "orders-worker",
		Short: "Run the orders service worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger("orders")
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if workers == 0 {
				workers = cfg.Workers
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			rdb := newRedisClient(cfg)
			defer rdb.Close()

			hub := wshub.NewHub(log)
			if wsAddr != "" {
				go func() {
					log.Info().Str("addr", wsAddr).Msg("orders live feed listening")
					mux := http.NewServeMux()
					mux.HandleFunc("/ws", hub.HandleWS)
					if err := http.ListenAndServe(wsAddr, mux); err != nil {
						log.Error().Err(err).Msg("live feed server stopped")
					}
				}()
			}

			svc := orders.NewService(st, lock.NewManager(rdb), hub)
			worker := rpcbus.NewWorker(rdb, "orders", svc.Registry(), log)

			ctx, cancel := context.WithCancel(context.Background())
			sig, stop := notifyShutdown()
			defer stop()
			go func() {
				<-sig
				log.Info().Msg("shutting down")
				cancel()
			}()

			log.Info().Int("workers", workers).Msg("orders worker pool started")
			return worker.Run(ctx, workers)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutine pool size (overrides WORKERS)")
	cmd.Flags().StringVar(&wsAddr, "ws-addr", ":8081", "live book/trade feed listen address, empty to disable")
	return cmd
}
