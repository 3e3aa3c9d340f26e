package gateway

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spotxchange/exchange/internal/model"
)

const (
	serviceOrders      = "orders"
	serviceUsers       = "users"
	serviceInstruments = "instruments"
)

// ── public ───────────────────────────────────────────

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	var user model.User
	if err := s.rpc.Call(r.Context(), serviceUsers, "Users.create_user",
		map[string]any{"name": body.Name}, &user); err != nil {
		writeRPCError(w, err)
		return
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

func (s *Server) listInstruments(w http.ResponseWriter, r *http.Request) {
	var instruments []model.Instrument
	if err := s.rpc.Call(r.Context(), serviceInstruments, "Instruments.get_instruments", nil, &instruments); err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, instruments)
}

func (s *Server) orderbook(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	limit := intQuery(r, "limit", 0)
	var book model.OrderbookSnapshot
	if err := s.rpc.Call(r.Context(), serviceOrders, "Orders.get_orderbook",
		map[string]any{"ticker": ticker, "limit": limit}, &book); err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (s *Server) transactions(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	limit := intQuery(r, "limit", 0)
	var txs []model.Transaction
	if err := s.rpc.Call(r.Context(), serviceOrders, "Orders.get_transactions",
		map[string]any{"ticker": ticker, "limit": limit}, &txs); err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

// ── user-authenticated ───────────────────────────────

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	var balances map[string]int64
	if err := s.rpc.Call(r.Context(), serviceUsers, "Users.get_balance",
		map[string]any{"user_id": userID}, &balances); err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	var body struct {
		Limit  *model.LimitOrderBody  `json:"limit"`
		Market *model.MarketOrderBody `json:"market"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	var result struct {
		OrderID string `json:"order_id"`
	}
	if err := s.rpc.Call(r.Context(), serviceOrders, "Orders.create_order",
		map[string]any{"user_id": userID, "limit": body.Limit, "market": body.Market}, &result); err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	var orders []model.Order
	if err := s.rpc.Call(r.Context(), serviceOrders, "Orders.list_orders",
		map[string]any{"user_id": userID}, &orders); err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	var order model.Order
	if err := s.rpc.Call(r.Context(), serviceOrders, "Orders.get_order",
		map[string]any{"user_id": userID, "order_id": id}, &order); err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if err := s.rpc.Call(r.Context(), serviceOrders, "Orders.cancel_order",
		map[string]any{"user_id": userID, "order_id": id}, nil); err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

// ── admin ────────────────────────────────────────────

func (s *Server) addInstrument(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Ticker string `json:"ticker"`
		Name   string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.rpc.Call(r.Context(), serviceInstruments, "Instruments.add_instrument",
		map[string]any{"ticker": body.Ticker, "name": body.Name}, nil); err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) deleteInstrument(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if err := s.rpc.Call(r.Context(), serviceInstruments, "Instruments.delete_instrument",
		map[string]any{"ticker": ticker}, nil); err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var user model.User
	if err := s.rpc.Call(r.Context(), serviceUsers, "Users.delete_user",
		map[string]any{"id": id}, &user); err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) adminDeposit(w http.ResponseWriter, r *http.Request) {
	s.adminBalanceOp(w, r, "Users.deposit")
}

func (s *Server) adminWithdraw(w http.ResponseWriter, r *http.Request) {
	s.adminBalanceOp(w, r, "Users.withdraw")
}

func (s *Server) adminBalanceOp(w http.ResponseWriter, r *http.Request, method string) {
	var body struct {
		UserID string `json:"user_id"`
		Ticker string `json:"ticker"`
		Amount int64  `json:"amount"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.rpc.Call(r.Context(), serviceUsers, method,
		map[string]any{"user_id": body.UserID, "ticker": body.Ticker, "amount": body.Amount}, nil); err != nil {
		writeRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func intQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
