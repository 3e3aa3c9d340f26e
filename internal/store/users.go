package store

import (
	"context"
	"database/sql"

	"github.com/spotxchange/exchange/internal/model"
)

// CreateUser inserts the user row and its opening zero RUB balance in one
// transaction, mirroring the original create_user's Instrument.get_or_create
// + Balance.create(amount=0) pair.
func (s *Store) CreateUser(ctx context.Context, id, name string, role model.Role) (*model.User, error) {
	u := &model.User{}
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO users (id, name, role) VALUES ($1, $2, $3)
			 RETURNING id, name, role, created_at`,
			id, name, role,
		).Scan(&u.ID, &u.Name, &u.Role, &u.CreatedAt); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO instruments (ticker, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			model.RUB, "Russian Ruble",
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO balances (user_id, instrument, amount) VALUES ($1, $2, 0)`,
			u.ID, model.RUB,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, role, created_at FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Name, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetUserTx reads a user inside tx without locking the row, matching the
// plain get_or_none lookup create_order uses before its balance checks.
func GetUserTx(ctx context.Context, tx *sql.Tx, id string) (*model.User, error) {
	u := &model.User{}
	err := tx.QueryRowContext(ctx,
		`SELECT id, name, role, created_at FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Name, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// GetUserForUpdate locks the user row within tx, mirroring
// User.filter(id=...).select_for_update() in delete_user/deposit/withdraw.
func GetUserForUpdate(ctx context.Context, tx *sql.Tx, id string) (*model.User, error) {
	u := &model.User{}
	err := tx.QueryRowContext(ctx,
		`SELECT id, name, role, created_at FROM users WHERE id=$1 FOR UPDATE`, id,
	).Scan(&u.ID, &u.Name, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// DeleteUser locks then deletes the user; balances/balance history/orders
// cascade per the schema's ON DELETE CASCADE foreign keys.
func (s *Store) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	var u *model.User
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		found, err := GetUserForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if found == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id); err != nil {
			return err
		}
		u = found
		return nil
	})
	return u, err
}
