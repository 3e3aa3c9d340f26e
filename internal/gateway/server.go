// Package gateway is the HTTP surface: a chi router and middleware stack
// translating public/user/admin routes into RPC calls against the orders,
// users and instruments services instead of direct store access.
package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/spotxchange/exchange/internal/rpcbus"
)

type Server struct {
	rpc        *rpcbus.Client
	jwtSecret  []byte
	adminToken string
	log        zerolog.Logger
}

func NewServer(rpc *rpcbus.Client, jwtSecret []byte, adminToken string, log zerolog.Logger) *Server {
	return &Server{rpc: rpc, jwtSecret: jwtSecret, adminToken: adminToken, log: log.With().Str("component", "gateway").Logger()}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(zerologMiddleware(s.log))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/public", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Get("/instrument", s.listInstruments)
		r.Get("/orderbook/{ticker}", s.orderbook)
		r.Get("/transactions/{ticker}", s.transactions)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth)
		r.Get("/balance", s.getBalance)
		r.Post("/order", s.createOrder)
		r.Get("/order", s.listOrders)
		r.Get("/order/{id}", s.getOrder)
		r.Delete("/order/{id}", s.cancelOrder)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.adminAuth)
		r.Post("/instrument", s.addInstrument)
		r.Delete("/instrument/{ticker}", s.deleteInstrument)
		r.Delete("/user/{id}", s.deleteUser)
		r.Post("/balance/deposit", s.adminDeposit)
		r.Post("/balance/withdraw", s.adminWithdraw)
	})

	return r
}

func zerologMiddleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("request")
		})
	}
}
