package orders

import (
	"context"
	"database/sql"

	"github.com/spotxchange/exchange/internal/model"
	"github.com/spotxchange/exchange/internal/store"
	"github.com/spotxchange/exchange/internal/xerrors"
)

// CancelOrder transitions an order to CANCELLED, rejecting market orders
// and orders that are already terminal or already cancelled, exactly the
// guard order in cancel_order.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID string) error {
	return s.store.WithTx(ctx, func(tx *sql.Tx) error {
		o, err := store.GetOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o == nil || o.UserID != userID {
			return &xerrors.OrderNotFound{ID: orderID}
		}
		if o.Type == model.OrderTypeMarket {
			return &xerrors.CannotCancel{Reason: "market orders cannot be cancelled"}
		}
		switch o.Status {
		case model.StatusExecuted, model.StatusPartiallyExecuted:
			return &xerrors.CannotCancel{Reason: "orders with status EXECUTED or PARTIALLY_EXECUTED cannot be cancelled"}
		case model.StatusCancelled:
			return &xerrors.CannotCancel{Reason: "order is already cancelled"}
		}
		_, err = store.CancelOrder(ctx, tx, orderID)
		return err
	})
}
