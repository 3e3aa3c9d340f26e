package orders

import (
	"context"
	"database/sql"

	"github.com/spotxchange/exchange/internal/lock"
	"github.com/spotxchange/exchange/internal/model"
	"github.com/spotxchange/exchange/internal/store"
	"github.com/spotxchange/exchange/internal/xerrors"
)

// Publisher broadcasts a post-match book snapshot; satisfied by
// *wshub.Hub, kept as an interface here so this package doesn't import the
// transport layer.
type Publisher interface {
	Publish(ticker, msgType string, data any)
}

// Service wires the order admission/matching/query logic to store and lock,
// and is registered against the RPC runtime's orders queue in service.go.
type Service struct {
	store     *store.Store
	locks     *lock.Manager
	publisher Publisher
}

func NewService(st *store.Store, locks *lock.Manager, publisher Publisher) *Service {
	return &Service{store: st, locks: locks, publisher: publisher}
}

// CreateOrder admits req: validates the instrument, user and funds, inserts
// the order, commits, then acquires the per-instrument matching lock and
// runs one matching pass before returning — exactly the two-phase shape of
// create_order (insert-then-lock, never the reverse, so a slow matching
// pass never holds open the admission transaction).
func (s *Service) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error) {
	var order *model.Order
	err := s.store.WithTx(ctx, func(tx *sql.Tx) error {
		inst, err := s.store.GetInstrument(ctx, req.Ticker())
		if err != nil {
			return err
		}
		if inst == nil {
			return &xerrors.InstrumentNotFound{Ticker: req.Ticker()}
		}
		user, err := store.GetUserTx(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return &xerrors.UserNotFound{ID: req.UserID}
		}

		if err := checkFunds(ctx, tx, req); err != nil {
			return err
		}

		o := &model.Order{
			UserID:     req.UserID,
			Instrument: req.Ticker(),
			Type:       req.Type(),
			Direction:  req.Direction(),
			Quantity:   req.Qty(),
			Price:      req.Price(),
		}
		inserted, err := store.InsertOrder(ctx, tx, o)
		if err != nil {
			return err
		}
		order = inserted
		return nil
	})
	if err != nil {
		return nil, err
	}

	lease, err := s.locks.AcquireOrders(ctx, req.Ticker())
	if err != nil {
		return nil, &xerrors.Critical{Message: "failed to acquire matching lock: " + err.Error()}
	}
	defer lease.Release(ctx)

	if err := ExecuteOrders(ctx, s.store, req.Ticker()); err != nil {
		return nil, &xerrors.Critical{Message: "matching pass failed: " + err.Error()}
	}
	s.publishSnapshot(ctx, req.Ticker())

	final, err := s.store.GetOrderByID(ctx, order.ID)
	if err != nil {
		return nil, &xerrors.Critical{Message: "failed to reload order after matching: " + err.Error()}
	}
	return final, nil
}

// publishSnapshot broadcasts the instrument's post-pass orderbook to any
// subscribed WebSocket clients. Best-effort: a publish failure never fails
// the RPC call that triggered it.
func (s *Service) publishSnapshot(ctx context.Context, ticker string) {
	if s.publisher == nil {
		return
	}
	book, err := s.GetOrderbook(ctx, ticker, 0)
	if err != nil {
		return
	}
	s.publisher.Publish(ticker, "book_snapshot", book)
}

// checkFunds enforces the reservation rules: a SELL needs balance beyond
// what existing resting sells already lock (B2); a LIMIT BUY needs RUB
// beyond what existing resting limit buys already lock (B3). A MARKET BUY
// is deliberately not checked here — it holds no RUB reservation and is
// capped instead at settlement time by the buyer's available balance, per
// the matching engine's pair() quantity formula.
func checkFunds(ctx context.Context, tx *sql.Tx, req model.CreateOrderRequest) error {
	switch req.Direction() {
	case model.DirectionSell:
		balance, err := store.GetBalance(ctx, tx, req.UserID, req.Ticker())
		if err != nil {
			return err
		}
		var available int64
		if balance != nil {
			locked, err := store.LockedSellQuantity(ctx, tx, req.UserID, req.Ticker())
			if err != nil {
				return err
			}
			available = balance.Amount - locked
		}
		if available < req.Qty() {
			return &xerrors.InsufficientFunds{UserID: req.UserID, Requested: req.Qty(), Available: available}
		}
	case model.DirectionBuy:
		if req.Limit == nil {
			return nil
		}
		notional := req.Qty() * req.Limit.Price
		rub, err := store.GetBalance(ctx, tx, req.UserID, model.RUB)
		if err != nil {
			return err
		}
		if rub == nil {
			return &xerrors.InsufficientFunds{UserID: req.UserID, Requested: notional, Available: 0}
		}
		locked, err := store.LockedRub(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		available := rub.Amount - locked
		if available < notional {
			return &xerrors.InsufficientFunds{UserID: req.UserID, Requested: notional, Available: available}
		}
	}
	return nil
}
