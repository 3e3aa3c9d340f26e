package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/spotxchange/exchange/internal/config"
	"github.com/spotxchange/exchange/internal/store"
)

func newLogger(service string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("service", service).Logger()
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.PostgresDSN)
}

func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}

// notifyShutdown returns a channel that receives SIGINT/SIGTERM and a func
// that stops the notification, used by each worker command to drive a
// graceful shutdown.
func notifyShutdown() (chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return ch, func() { signal.Stop(ch) }
}
