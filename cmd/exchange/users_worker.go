package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/spotxchange/exchange/internal/config"
	"github.com/spotxchange/exchange/internal/rpcbus"
	"github.com/spotxchange/exchange/internal/users"
)

func newUsersWorkerCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "users-worker",
		Short: "Run the users service worker pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger("users")
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

			svc := users.NewService(st)
			worker := rpcbus.NewWorker(rdb, "users", svc.Registry(), log)

			ctx, cancel := context.WithCancel(context.Background())
			sig, stop := notifyShutdown()
			defer stop()
			go func() {
				<-sig
				log.Info().Msg("shutting down")
				cancel()
			}()

			log.Info().Int("workers", workers).Msg("users worker pool started")
			return worker.Run(ctx, workers)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutine pool size (overrides WORKERS)")
	return cmd
}
