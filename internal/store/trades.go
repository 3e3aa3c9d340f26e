package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/spotxchange/exchange/internal/model"
)

// InsertTransaction records a completed trade between two orders; the row
// is never mutated or deleted afterward. instrument/buyerOrderID/sellerOrderID
// are still live references at the time of the trade; they may later be
// cleared to NULL by a user/instrument delete.
func InsertTransaction(ctx context.Context, tx *sql.Tx, instrument, buyerOrderID, sellerOrderID string, qty, price int64) (*model.Transaction, error) {
	t := &model.Transaction{
		ID:            uuid.NewString(),
		Instrument:    &instrument,
		BuyerOrderID:  &buyerOrderID,
		SellerOrderID: &sellerOrderID,
		Quantity:      qty,
		Price:         price,
		ExecutedAt:    time.Now().UTC(),
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, instrument, buyer_order_id, seller_order_id, quantity, price, executed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.Instrument, t.BuyerOrderID, t.SellerOrderID, t.Quantity, t.Price, t.ExecutedAt)
	return t, err
}

func (s *Store) ListTransactions(ctx context.Context, instrument string, limit int) ([]model.Transaction, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, instrument, buyer_order_id, seller_order_id, quantity, price, executed_at
		 FROM transactions WHERE instrument=$1 ORDER BY executed_at DESC LIMIT $2`,
		instrument, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.Instrument, &t.BuyerOrderID, &t.SellerOrderID, &t.Quantity, &t.Price, &t.ExecutedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
