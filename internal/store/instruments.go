package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/spotxchange/exchange/internal/model"
)

func (s *Store) ListInstruments(ctx context.Context) ([]model.Instrument, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT ticker, name FROM instruments ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Instrument{}
	for rows.Next() {
		var i model.Instrument
		if err := rows.Scan(&i.Ticker, &i.Name); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *Store) GetInstrument(ctx context.Context, ticker string) (*model.Instrument, error) {
	i := &model.Instrument{}
	err := s.DB.QueryRowContext(ctx,
		`SELECT ticker, name FROM instruments WHERE ticker=$1`, ticker,
	).Scan(&i.Ticker, &i.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return i, err
}

// uniqueViolation is the Postgres SQLSTATE for a unique_violation, raised
// here the way the original's IntegrityError -> InstrumentAlreadyExistsError
// translation does.
const uniqueViolation = "23505"

func (s *Store) AddInstrument(ctx context.Context, ticker, name string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO instruments (ticker, name) VALUES ($1, $2)`, ticker, name)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return errAlreadyExists
	}
	return err
}

// errAlreadyExists is a sentinel the instruments service translates into
// xerrors.InstrumentAlreadyExists, keeping pq details out of the service layer.
var errAlreadyExists = errors.New("instrument already exists")

func IsAlreadyExists(err error) bool { return errors.Is(err, errAlreadyExists) }

// DeleteInstrument locks the instrument row then deletes it; balances and
// orders referencing it cascade per the schema.
func (s *Store) DeleteInstrument(ctx context.Context, ticker string) (*model.Instrument, error) {
	var i *model.Instrument
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		found := &model.Instrument{}
		err := tx.QueryRowContext(ctx,
			`SELECT ticker, name FROM instruments WHERE ticker=$1 FOR UPDATE`, ticker,
		).Scan(&found.Ticker, &found.Name)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM instruments WHERE ticker=$1`, ticker); err != nil {
			return err
		}
		i = found
		return nil
	})
	return i, err
}
