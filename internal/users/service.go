// Package users implements the Users service: account lifecycle and
// RUB/instrument balance management.
package users

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/spotxchange/exchange/internal/model"
	"github.com/spotxchange/exchange/internal/rpcbus"
	"github.com/spotxchange/exchange/internal/store"
	"github.com/spotxchange/exchange/internal/xerrors"
)

var validate = validator.New()

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// CreateUser inserts a user and its opening zero RUB balance, mirroring
// create_user's User.create + Instrument.get_or_create("RUB") + Balance.create.
func (s *Service) CreateUser(ctx context.Context, name string, role model.Role) (*model.User, error) {
	if role == "" {
		role = model.RoleUser
	}
	return s.store.CreateUser(ctx, uuid.NewString(), name, role)
}

// DeleteUser locks and deletes the user row; balances, balance history and
// orders cascade per the schema, mirroring select_for_update + user.delete().
func (s *Service) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, &xerrors.UserNotFound{ID: id}
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, &xerrors.UserNotFound{ID: id}
	}
	return u, nil
}

// Deposit locks the user row, upserts the balance, and appends a
// BalanceHistory DEPOSIT row, matching deposit() exactly.
func (s *Service) Deposit(ctx context.Context, userID, ticker string, amount int64) error {
	return s.store.WithTx(ctx, func(tx *sql.Tx) error {
		user, err := store.GetUserForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return &xerrors.UserNotFound{ID: userID}
		}
		inst, err := s.instrumentTx(ctx, tx, ticker)
		if err != nil {
			return err
		}
		if inst == nil {
			return &xerrors.InstrumentNotFound{Ticker: ticker}
		}
		if err := store.AddBalance(ctx, tx, userID, ticker, amount); err != nil {
			return err
		}
		return store.AppendBalanceHistory(ctx, tx, userID, ticker, amount, model.OperationDeposit)
	})
}

// Withdraw locks the user row, checks sufficient balance, and appends a
// BalanceHistory WITHDRAW row, matching withdraw() exactly.
func (s *Service) Withdraw(ctx context.Context, userID, ticker string, amount int64) error {
	return s.store.WithTx(ctx, func(tx *sql.Tx) error {
		user, err := store.GetUserForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return &xerrors.UserNotFound{ID: userID}
		}
		inst, err := s.instrumentTx(ctx, tx, ticker)
		if err != nil {
			return err
		}
		if inst == nil {
			return &xerrors.InstrumentNotFound{Ticker: ticker}
		}
		balance, err := store.GetBalance(ctx, tx, userID, ticker)
		if err != nil {
			return err
		}
		if balance == nil {
			return &xerrors.InsufficientFunds{UserID: userID, Requested: amount, Available: 0}
		}
		if balance.Amount < amount {
			return &xerrors.InsufficientFunds{UserID: userID, Requested: amount, Available: balance.Amount}
		}
		if err := store.AddBalance(ctx, tx, userID, ticker, -amount); err != nil {
			return err
		}
		return store.AppendBalanceHistory(ctx, tx, userID, ticker, amount, model.OperationWithdraw)
	})
}

func (s *Service) GetBalance(ctx context.Context, userID string) (map[string]int64, error) {
	if u, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	} else if u == nil {
		return nil, &xerrors.UserNotFound{ID: userID}
	}
	balances, err := s.store.ListBalances(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(balances))
	for _, b := range balances {
		out[b.Instrument] = b.Amount
	}
	return out, nil
}

func (s *Service) instrumentTx(ctx context.Context, tx *sql.Tx, ticker string) (*model.Instrument, error) {
	i := &model.Instrument{}
	err := tx.QueryRowContext(ctx, `SELECT ticker, name FROM instruments WHERE ticker=$1`, ticker).
		Scan(&i.Ticker, &i.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return i, nil
}

// ── RPC wiring ───────────────────────────────────────

type createUserRequest struct {
	Name string     `json:"name" validate:"required"`
	Role model.Role `json:"role"`
}

type idRequest struct {
	ID string `json:"id" validate:"required"`
}

type depositRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Ticker string `json:"ticker" validate:"required"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

type withdrawRequest = depositRequest

type balanceRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (s *Service) Registry() rpcbus.Registry {
	return rpcbus.Registry{
		"Users.create_user": s.handleCreateUser,
		"Users.delete_user": s.handleDeleteUser,
		"Users.get_user":    s.handleGetUser,
		"Users.deposit":     s.handleDeposit,
		"Users.withdraw":    s.handleWithdraw,
		"Users.get_balance": s.handleGetBalance,
	}
}

func (s *Service) handleCreateUser(ctx context.Context, payload json.RawMessage) (any, error) {
	var req createUserRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return s.CreateUser(ctx, req.Name, req.Role)
}

func (s *Service) handleDeleteUser(ctx context.Context, payload json.RawMessage) (any, error) {
	var req idRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return s.DeleteUser(ctx, req.ID)
}

func (s *Service) handleGetUser(ctx context.Context, payload json.RawMessage) (any, error) {
	var req idRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, req.ID)
}

func (s *Service) handleDeposit(ctx context.Context, payload json.RawMessage) (any, error) {
	var req depositRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return nil, s.Deposit(ctx, req.UserID, req.Ticker, req.Amount)
}

func (s *Service) handleWithdraw(ctx context.Context, payload json.RawMessage) (any, error) {
	var req withdrawRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return nil, s.Withdraw(ctx, req.UserID, req.Ticker, req.Amount)
}

func (s *Service) handleGetBalance(ctx context.Context, payload json.RawMessage) (any, error) {
	var req balanceRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return s.GetBalance(ctx, req.UserID)
}

func decode(payload json.RawMessage, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return &xerrors.Validation{Message: "malformed request body: " + err.Error()}
	}
	if err := validate.Struct(out); err != nil {
		return &xerrors.Validation{Message: err.Error()}
	}
	return nil
}
