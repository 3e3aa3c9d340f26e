package orders

import (
	"context"

	"github.com/spotxchange/exchange/internal/model"
	"github.com/spotxchange/exchange/internal/store"
	"github.com/spotxchange/exchange/internal/xerrors"
)

// ListOrders returns every order ever placed by userID, in admission order.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]model.Order, error) {
	if u, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	} else if u == nil {
		return nil, &xerrors.UserNotFound{ID: userID}
	}
	orders, err := s.store.ListUserOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Status = orders[i].ProjectedStatus()
	}
	return orders, nil
}

// GetOrder returns a single order, scoped to its owner: an order that
// exists but belongs to someone else is reported as not found, never as
// forbidden, matching get_order's `order.user.id != request.user_id` check.
func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	o, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil || o.UserID != userID {
		return nil, &xerrors.OrderNotFound{ID: orderID}
	}
	o.Status = o.ProjectedStatus()
	return o, nil
}

const defaultOrderbookDepth = 25

// GetOrderbook aggregates resting limit orders in ticker into bid/ask price
// levels, capped at limit entries per side.
func (s *Service) GetOrderbook(ctx context.Context, ticker string, limit int) (model.OrderbookSnapshot, error) {
	if limit <= 0 {
		limit = defaultOrderbookDepth
	}
	inst, err := s.store.GetInstrument(ctx, ticker)
	if err != nil {
		return model.OrderbookSnapshot{}, err
	}
	if inst == nil {
		return model.OrderbookSnapshot{}, &xerrors.InstrumentNotFound{Ticker: ticker}
	}
	open, err := store.ListOpenLimitOrders(ctx, s.store.DB, ticker)
	if err != nil {
		return model.OrderbookSnapshot{}, err
	}
	return BuildOrderbook(open, limit), nil
}

const defaultTransactionsLimit = 50

// GetTransactions returns the most recent trades in ticker, newest first.
func (s *Service) GetTransactions(ctx context.Context, ticker string, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = defaultTransactionsLimit
	}
	inst, err := s.store.GetInstrument(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, &xerrors.InstrumentNotFound{Ticker: ticker}
	}
	return s.store.ListTransactions(ctx, ticker, limit)
}
