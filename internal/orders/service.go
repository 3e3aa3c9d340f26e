package orders

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/spotxchange/exchange/internal/model"
	"github.com/spotxchange/exchange/internal/rpcbus"
	"github.com/spotxchange/exchange/internal/xerrors"
)

type limitBody = model.LimitOrderBody
type marketBody = model.MarketOrderBody

// toCreateOrderRequest builds the tagged-union request and validates
// whichever variant is present, rejecting a payload that sets both or
// neither — the Go equivalent of the body being a discriminated Pydantic
// union in the original.
func toCreateOrderRequest(userID string, limit *limitBody, market *marketBody) (model.CreateOrderRequest, error) {
	if (limit == nil) == (market == nil) {
		return model.CreateOrderRequest{}, &xerrors.Validation{Message: "request must set exactly one of limit or market"}
	}
	req := model.CreateOrderRequest{UserID: userID, Limit: limit, Market: market}
	var err error
	if limit != nil {
		err = validate.Struct(limit)
	} else {
		err = validate.Struct(market)
	}
	if err != nil {
		return model.CreateOrderRequest{}, &xerrors.Validation{Message: err.Error()}
	}
	return req, nil
}

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

type createOrderResult struct {
	OrderID string `json:"order_id"`
}

type listOrdersRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type getOrderRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	OrderID string `json:"order_id" validate:"required"`
}

type cancelOrderRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	OrderID string `json:"order_id" validate:"required"`
}

type getOrderbookRequest struct {
	Ticker string `json:"ticker" validate:"required,tickerpattern"`
	Limit  int    `json:"limit"`
}

type getTransactionsRequest struct {
	Ticker string `json:"ticker" validate:"required,tickerpattern"`
	Limit  int    `json:"limit"`
}

// Registry builds the explicit "Orders.<method>" handler table consumed by
// an rpcbus.Worker started against the orders queue — no reflection, every
// method named up front.
func (s *Service) Registry() rpcbus.Registry {
	return rpcbus.Registry{
		"Orders.create_order":     s.handleCreateOrder,
		"Orders.list_orders":      s.handleListOrders,
		"Orders.get_order":        s.handleGetOrder,
		"Orders.cancel_order":     s.handleCancelOrder,
		"Orders.get_orderbook":    s.handleGetOrderbook,
		"Orders.get_transactions": s.handleGetTransactions,
	}
}

func (s *Service) handleCreateOrder(ctx context.Context, payload json.RawMessage) (any, error) {
	var req struct {
		UserID string      `json:"user_id" validate:"required"`
		Limit  *limitBody  `json:"limit"`
		Market *marketBody `json:"market"`
	}
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	cor, err := toCreateOrderRequest(req.UserID, req.Limit, req.Market)
	if err != nil {
		return nil, err
	}
	order, err := s.CreateOrder(ctx, cor)
	if err != nil {
		return nil, err
	}
	return createOrderResult{OrderID: order.ID}, nil
}

func (s *Service) handleListOrders(ctx context.Context, payload json.RawMessage) (any, error) {
	var req listOrdersRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return s.ListOrders(ctx, req.UserID)
}

func (s *Service) handleGetOrder(ctx context.Context, payload json.RawMessage) (any, error) {
	var req getOrderRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, req.UserID, req.OrderID)
}

func (s *Service) handleCancelOrder(ctx context.Context, payload json.RawMessage) (any, error) {
	var req cancelOrderRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return nil, s.CancelOrder(ctx, req.UserID, req.OrderID)
}

func (s *Service) handleGetOrderbook(ctx context.Context, payload json.RawMessage) (any, error) {
	var req getOrderbookRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return s.GetOrderbook(ctx, req.Ticker, req.Limit)
}

func (s *Service) handleGetTransactions(ctx context.Context, payload json.RawMessage) (any, error) {
	var req getTransactionsRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	return s.GetTransactions(ctx, req.Ticker, req.Limit)
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
