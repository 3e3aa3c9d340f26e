package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/spotxchange/exchange/internal/model"
)

// InsertOrder creates the order row inside tx, returning the full row with
// its generated ID and timestamps.
func InsertOrder(ctx context.Context, tx *sql.Tx, o *model.Order) (*model.Order, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	row := tx.QueryRowContext(ctx,
		`INSERT INTO orders (id, user_id, instrument, type, direction, status, quantity, price, filled, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $9)
		 RETURNING id, user_id, instrument, type, direction, status, quantity, price, filled, created_at, updated_at`,
		id, o.UserID, o.Instrument, o.Type, o.Direction, model.StatusNew, o.Quantity, o.Price, now,
	)
	out := &model.Order{}
	if err := scanOrder(row, out); err != nil {
		return nil, err
	}
	return out, nil
}

func scanOrder(row *sql.Row, o *model.Order) error {
	return row.Scan(&o.ID, &o.UserID, &o.Instrument, &o.Type, &o.Direction, &o.Status,
		&o.Quantity, &o.Price, &o.Filled, &o.CreatedAt, &o.UpdatedAt)
}

const orderColumns = `id, user_id, instrument, type, direction, status, quantity, price, filled, created_at, updated_at`

func scanOrderRows(rows *sql.Rows) (model.Order, error) {
	var o model.Order
	err := rows.Scan(&o.ID, &o.UserID, &o.Instrument, &o.Type, &o.Direction, &o.Status,
		&o.Quantity, &o.Price, &o.Filled, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func GetOrder(ctx context.Context, tx *sql.Tx, id string) (*model.Order, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	o := &model.Order{}
	if err := scanOrder(row, o); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return o, nil
}

// GetOrderByID reads an order outside of any transaction, used after a
// matching pass has committed to return the post-match state to the caller.
func (s *Store) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	o := &model.Order{}
	if err := scanOrder(row, o); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Store) ListUserOrders(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrderRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// OpenMarketOrders returns NEW market orders for instrument, in admission
// order, inside tx — one side of the transient book rebuilt per pass.
func OpenMarketOrders(ctx context.Context, tx *sql.Tx, instrument string) ([]model.Order, error) {
	return queryOrders(ctx, tx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE instrument=$1 AND type='MARKET' AND status='NEW' ORDER BY created_at`,
		instrument)
}

// OpenLimitBuys returns NEW limit buys for instrument sorted by price
// descending (then admission order), matching order_by("-price").
func OpenLimitBuys(ctx context.Context, tx *sql.Tx, instrument string) ([]model.Order, error) {
	return queryOrders(ctx, tx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE instrument=$1 AND type='LIMIT' AND direction='BUY' AND status='NEW'
		 ORDER BY price DESC, created_at`,
		instrument)
}

// OpenLimitSells returns NEW limit sells for instrument sorted by price
// ascending, matching order_by("price").
func OpenLimitSells(ctx context.Context, tx *sql.Tx, instrument string) ([]model.Order, error) {
	return queryOrders(ctx, tx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE instrument=$1 AND type='LIMIT' AND direction='SELL' AND status='NEW'
		 ORDER BY price ASC, created_at`,
		instrument)
}

func queryOrders(ctx context.Context, tx *sql.Tx, query, instrument string) ([]model.Order, error) {
	rows, err := tx.QueryContext(ctx, query, instrument)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrderRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SaveOrderFill persists the filled quantity and status of an order that
// just took part in a settlement, inside the same transaction.
func SaveOrderFill(ctx context.Context, tx *sql.Tx, id string, filled int64, status model.OrderStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE orders SET filled=$2, status=$3, updated_at=now() WHERE id=$1`,
		id, filled, status)
	return err
}

// CancelOrder locks the order row and sets it to CANCELLED unconditionally,
// returning the pre-cancel row (nil if the order does not exist). It applies
// no CannotCancel guard on type/status; callers check those before calling.
func CancelOrder(ctx context.Context, tx *sql.Tx, id string) (*model.Order, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id)
	o := &model.Order{}
	if err := scanOrder(row, o); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE orders SET status='CANCELLED', updated_at=now() WHERE id=$1`, id)
	return o, err
}

// ListOpenLimitOrders returns every resting (NEW) LIMIT order in instrument,
// both directions, unordered — the raw rows the orders service aggregates
// into bid/ask price levels in-process, the same way get_orderbook's Python
// accumulates a plain dict rather than pushing the GROUP BY into SQL.
func ListOpenLimitOrders(ctx context.Context, db *sql.DB, instrument string) ([]model.Order, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE instrument=$1 AND status='NEW' AND type='LIMIT'`, instrument)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrderRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
