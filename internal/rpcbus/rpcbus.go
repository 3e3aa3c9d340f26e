// Package rpcbus is the Redis-backed job queue the three services use to
// call each other: one named queue per service, jobs dispatched by
// "<Service>.<method>", and a per-job reply future the caller blocks on.
package rpcbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/spotxchange/exchange/internal/metrics"
	"github.com/spotxchange/exchange/internal/xerrors"
)

// DefaultTimeout is the RPC caller's deadline: a reply that does not
// arrive within this window is surfaced as xerrors.RequestTimeout.
const DefaultTimeout = 10 * time.Second

func queueKey(service string) string { return "queue:" + service }
func replyKey(jobID string) string   { return "reply:" + jobID }

// job is the envelope pushed onto a service's queue.
type job struct {
	ID      string          `json:"id"`
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload"`
}

// envelope is what the worker pushes back onto the reply list.
type envelope struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Kind   xerrors.Kind   `json:"kind"`
	Fields map[string]any `json:"fields"`
}

// Client dispatches "<Service>.<method>" calls and waits on the reply future.
type Client struct {
	rdb *redis.Client
}

func NewClient(rdb *redis.Client) *Client { return &Client{rdb: rdb} }

// Call enqueues payload under service's queue and blocks for the reply, up
// to DefaultTimeout (or less, if ctx carries a shorter deadline). result is
// decoded into out when the call succeeds; out may be nil for void calls.
func (c *Client) Call(ctx context.Context, service, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("rpcbus: marshal payload: %w", err)
	}
	id := uuid.NewString()
	j := job{ID: id, Method: method, Payload: body}
	raw, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("rpcbus: marshal job: %w", err)
	}

	if err := c.rdb.RPush(ctx, queueKey(service), raw).Err(); err != nil {
		return fmt.Errorf("rpcbus: enqueue %s.%s: %w", service, method, err)
	}

	deadline := DefaultTimeout
	if d, ok := ctx.Deadline(); ok {
		if remaining := time.Until(d); remaining < deadline {
			deadline = remaining
		}
	}

	rk := replyKey(id)
	res, err := c.rdb.BLPop(ctx, deadline, rk).Result()
	if err == redis.Nil || len(res) < 2 {
		return &xerrors.RequestTimeout{Method: fmt.Sprintf("%s.%s", service, method)}
	}
	if err != nil {
		return fmt.Errorf("rpcbus: await reply %s.%s: %w", service, method, err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(res[1]), &env); err != nil {
		return fmt.Errorf("rpcbus: decode reply %s.%s: %w", service, method, err)
	}
	if env.Error != nil {
		return xerrors.Reconstruct(env.Error.Kind, env.Error.Fields)
	}
	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("rpcbus: decode result %s.%s: %w", service, method, err)
		}
	}
	return nil
}

// Handler runs one RPC method against a decoded payload and returns the
// value to reply with, or a typed error to encode back across the wire.
type Handler func(ctx context.Context, payload json.RawMessage) (any, error)

// Registry is the explicit method table a service worker dispatches
// against — no reflection, every handler is registered by name at startup.
type Registry map[string]Handler

// Worker pulls jobs for one service's queue and runs them against Registry,
// a fixed-size goroutine pool wide.
type Worker struct {
	rdb      *redis.Client
	service  string
	registry Registry
	log      zerolog.Logger
}

func NewWorker(rdb *redis.Client, service string, registry Registry, log zerolog.Logger) *Worker {
	return &Worker{rdb: rdb, service: service, registry: registry, log: log.With().Str("service", service).Logger()}
}

// Run starts n goroutines pulling one job at a time from the service queue,
// each running a job to completion before pulling the next. It returns when
// ctx is cancelled and all goroutines have drained.
func (w *Worker) Run(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func(worker int) {
			defer func() { done <- struct{}{} }()
			w.loop(ctx, worker)
		}(i)
	}
	for i := 0; i < n; i++ {
		<-done
	}
	return nil
}

func (w *Worker) loop(ctx context.Context, worker int) {
	qk := queueKey(w.service)
	for {
		if ctx.Err() != nil {
			return
		}
		res, err := w.rdb.BLPop(ctx, time.Second, qk).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Int("worker", worker).Msg("queue poll failed")
			time.Sleep(100 * time.Millisecond)
			continue
		}
		w.handle(ctx, res[1])
	}
}

func (w *Worker) handle(ctx context.Context, raw string) {
	var j job
	if err := json.Unmarshal([]byte(raw), &j); err != nil {
		w.log.Error().Err(err).Msg("malformed job envelope, dropped")
		return
	}
	start := time.Now()
	h, ok := w.registry[j.Method]
	var env envelope
	if !ok {
		env.Error = &wireError{Kind: xerrors.KindCritical, Fields: map[string]any{"message": "unknown method " + j.Method}}
	} else {
		result, err := h(ctx, j.Payload)
		if err != nil {
			if typed, ok := err.(xerrors.Typed); ok {
				env.Error = &wireError{Kind: typed.Kind(), Fields: typed.Fields()}
			} else {
				env.Error = &wireError{Kind: xerrors.KindCritical, Fields: map[string]any{"message": err.Error()}}
			}
		} else if result != nil {
			body, merr := json.Marshal(result)
			if merr != nil {
				env.Error = &wireError{Kind: xerrors.KindCritical, Fields: map[string]any{"message": merr.Error()}}
			} else {
				env.Result = body
			}
		}
	}
	outcome := "ok"
	if env.Error != nil {
		outcome = "error"
	}
	metrics.RPCDuration.WithLabelValues(w.service, j.Method, outcome).Observe(time.Since(start).Seconds())
	w.log.Debug().Str("method", j.Method).Dur("took", time.Since(start)).Bool("ok", env.Error == nil).Msg("job handled")

	body, err := json.Marshal(env)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to marshal reply envelope")
		return
	}
	rk := replyKey(j.ID)
	pipe := w.rdb.Pipeline()
	pipe.RPush(ctx, rk, body)
	pipe.Expire(ctx, rk, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Str("method", j.Method).Msg("failed to publish reply")
	}
}
