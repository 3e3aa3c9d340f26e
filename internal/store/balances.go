package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/spotxchange/exchange/internal/model"
)

// GetBalance returns the user's balance for instrument, or nil if no row
// exists yet (get_or_none semantics — a missing balance is not an error).
func GetBalance(ctx context.Context, tx *sql.Tx, userID, instrument string) (*model.Balance, error) {
	b := &model.Balance{}
	err := tx.QueryRowContext(ctx,
		`SELECT user_id, instrument, amount FROM balances WHERE user_id=$1 AND instrument=$2 FOR UPDATE`,
		userID, instrument,
	).Scan(&b.UserID, &b.Instrument, &b.Amount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

// AddBalance upserts amount onto the user's instrument balance (negative
// amount subtracts), matching the Balance.get_or_create + += pattern in
// deposit/settlement.
func AddBalance(ctx context.Context, tx *sql.Tx, userID, instrument string, amount int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO balances (user_id, instrument, amount) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, instrument) DO UPDATE SET amount = balances.amount + $3`,
		userID, instrument, amount,
	)
	return err
}

func AppendBalanceHistory(ctx context.Context, tx *sql.Tx, userID, instrument string, amount int64, op model.BalanceOperation) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO balance_history (user_id, instrument, amount, operation, executed_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, instrument, amount, op, time.Now().UTC(),
	)
	return err
}

func (s *Store) ListBalances(ctx context.Context, userID string) ([]model.Balance, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT user_id, instrument, amount FROM balances WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Balance{}
	for rows.Next() {
		var b model.Balance
		if err := rows.Scan(&b.UserID, &b.Instrument, &b.Amount); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// LockedSellQuantity sums the unfilled quantity of the user's resting SELL
// orders in instrument — the B2 reservation, computed fresh rather than
// stored, equivalent to get_lock_balance.
func LockedSellQuantity(ctx context.Context, tx *sql.Tx, userID, instrument string) (int64, error) {
	var locked int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity - filled), 0) FROM orders
		 WHERE user_id=$1 AND instrument=$2 AND status='NEW' AND direction='SELL'`,
		userID, instrument,
	).Scan(&locked)
	return locked, err
}

// LockedRub sums the unfilled notional of the user's resting LIMIT BUY
// orders across all instruments — the B3 reservation, equivalent to
// get_lock_rubs. Market orders hold no reservation by design.
func LockedRub(ctx context.Context, tx *sql.Tx, userID string) (int64, error) {
	var locked int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM((quantity - filled) * price), 0) FROM orders
		 WHERE user_id=$1 AND status='NEW' AND direction='BUY' AND type='LIMIT'`,
		userID,
	).Scan(&locked)
	return locked, err
}
