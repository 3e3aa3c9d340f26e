// Package instruments implements the Instruments service: the tradable
// ticker catalog.
package instruments

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/spotxchange/exchange/internal/model"
	"github.com/spotxchange/exchange/internal/rpcbus"
	"github.com/spotxchange/exchange/internal/store"
	"github.com/spotxchange/exchange/internal/xerrors"
)

var validate = validator.New()

func init() {
	_ = validate.RegisterValidation("tickerpattern", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		if len(v) < 2 || len(v) > 10 {
			return false
		}
		for _, r := range v {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
		return true
	})
}

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) GetInstruments(ctx context.Context) ([]model.Instrument, error) {
	return s.store.ListInstruments(ctx)
}

// AddInstrument inserts a new instrument, translating the store's unique
// constraint violation into InstrumentAlreadyExists the way the original
// turns tortoise's IntegrityError into InstrumentAlreadyExistsError.
func (s *Service) AddInstrument(ctx context.Context, ticker, name string) error {
	err := s.store.AddInstrument(ctx, ticker, name)
	if store.IsAlreadyExists(err) {
		return &xerrors.InstrumentAlreadyExists{Ticker: ticker}
	}
	return err
}

func (s *Service) DeleteInstrument(ctx context.Context, ticker string) error {
	inst, err := s.store.DeleteInstrument(ctx, ticker)
	if err != nil {
		return err
	}
	if inst == nil {
		return &xerrors.InstrumentNotFound{Ticker: ticker}
	}
	return nil
}

// ── RPC wiring ───────────────────────────────────────

type addInstrumentRequest struct {
	Ticker string `json:"ticker" validate:"required,tickerpattern"`
	Name   string `json:"name" validate:"required"`
}

type tickerRequest struct {
	Ticker string `json:"ticker" validate:"required,tickerpattern"`
}

func (s *Service) Registry() rpcbus.Registry {
	return rpcbus.Registry{
		"Instruments.get_instruments":   s.handleGetInstruments,
		"Instruments.add_instrument":    s.handleAddInstrument,
		"Instruments.delete_instrument": s.handleDeleteInstrument,
	}
}

func (s *Service) handleGetInstruments(ctx context.Context, _ json.RawMessage) (any, error) {
	return s.GetInstruments(ctx)
}

func (s *Service) handleAddInstrument(ctx context.Context, payload json.RawMessage) (any, error) {
	var req addInstrumentRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return nil, s.AddInstrument(ctx, req.Ticker, req.Name)
}

func (s *Service) handleDeleteInstrument(ctx context.Context, payload json.RawMessage) (any, error) {
	var req tickerRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return nil, s.DeleteInstrument(ctx, req.Ticker)
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
