// Package model holds the domain types shared by the orders, users and
// instruments services: users, instruments, balances, orders and trades.
package model

import "time"

// ── Enums ────────────────────────────────────────────

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

// OrderStatus is the status stored on the order row. For LIMIT orders the
// PARTIALLY_EXECUTED value is never stored (see Order.ProjectedStatus); for MARKET
// orders it is, and is terminal there.
type OrderStatus string

const (
	StatusNew               OrderStatus = "NEW"
	StatusPartiallyExecuted OrderStatus = "PARTIALLY_EXECUTED"
	StatusExecuted          OrderStatus = "EXECUTED"
	StatusCancelled         OrderStatus = "CANCELLED"
)

type BalanceOperation string

const (
	OperationDeposit  BalanceOperation = "DEPOSIT"
	OperationWithdraw BalanceOperation = "WITHDRAW"
)

// RUB is the reserved settlement-currency ticker.
const RUB = "RUB"

// ── Domain objects ───────────────────────────────────

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Instrument struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

type Balance struct {
	UserID     string `json:"user_id"`
	Instrument string `json:"instrument"`
	Amount     int64  `json:"amount"`
}

type BalanceHistory struct {
	ID         int64            `json:"id"`
	UserID     string           `json:"user_id"`
	Instrument string           `json:"instrument"`
	Amount     int64            `json:"amount"`
	Operation  BalanceOperation `json:"operation"`
	ExecutedAt time.Time        `json:"executed_at"`
}

type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Instrument string      `json:"instrument"`
	Type       OrderType   `json:"type"`
	Direction  Direction   `json:"direction"`
	Status     OrderStatus `json:"status"`
	Quantity   int64       `json:"quantity"`
	Price      *int64      `json:"price"`
	Filled     int64       `json:"filled"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Remaining is quantity not yet filled.
func (o Order) Remaining() int64 { return o.Quantity - o.Filled }

// Open reports whether the order is still eligible to match: the matching
// loop's predicate is always `status = NEW ∧ filled < quantity`, regardless
// of how a given implementation chooses to project PARTIALLY_EXECUTED.
func (o Order) Open() bool { return o.Status == StatusNew && o.Filled < o.Quantity }

// ProjectedStatus is the view-layer status reported to callers. LIMIT
// orders with filled > 0 are reported PARTIALLY_EXECUTED even though the
// stored status remains NEW (they are still matchable); MARKET orders
// store PARTIALLY_EXECUTED directly and it is terminal there.
func (o Order) ProjectedStatus() OrderStatus {
	if o.Type == OrderTypeLimit && o.Status == StatusNew && o.Filled > 0 {
		return StatusPartiallyExecuted
	}
	return o.Status
}

// Transaction is a permanent trade record. Instrument, BuyerOrderID and
// SellerOrderID are nullable: a later delete of the instrument or either
// order clears its reference here rather than removing the row, so old
// transactions can outlive the things they traded.
type Transaction struct {
	ID            string    `json:"id"`
	Instrument    *string   `json:"instrument"`
	BuyerOrderID  *string   `json:"buyer_order_id"`
	SellerOrderID *string   `json:"seller_order_id"`
	Quantity      int64     `json:"quantity"`
	Price         int64     `json:"price"`
	ExecutedAt    time.Time `json:"executed_at"`
}

// ── Orderbook projection ─────────────────────────────

type BookLevel struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
}

type OrderbookSnapshot struct {
	BidLevels []BookLevel `json:"bid_levels"`
	AskLevels []BookLevel `json:"ask_levels"`
}

// ── Request bodies (tagged union, discriminated by Type) ─────────────────

// LimitOrderBody is the body of a create_order request for a LIMIT order.
type LimitOrderBody struct {
	Direction Direction `json:"direction" validate:"required,oneof=BUY SELL"`
	Ticker    string    `json:"ticker" validate:"required,tickerpattern"`
	Qty       int64     `json:"qty" validate:"required,gt=0"`
	Price     int64     `json:"price" validate:"required,gt=0"`
}

// MarketOrderBody is the body of a create_order request for a MARKET order.
type MarketOrderBody struct {
	Direction Direction `json:"direction" validate:"required,oneof=BUY SELL"`
	Ticker    string    `json:"ticker" validate:"required,tickerpattern"`
	Qty       int64     `json:"qty" validate:"required,gt=0"`
}

// CreateOrderRequest is the explicit discriminated variant carried over the
// RPC transport: exactly one of Limit or Market is set.
type CreateOrderRequest struct {
	UserID string           `json:"user_id"`
	Limit  *LimitOrderBody  `json:"limit,omitempty"`
	Market *MarketOrderBody `json:"market,omitempty"`
}

func (r CreateOrderRequest) Type() OrderType {
	if r.Limit != nil {
		return OrderTypeLimit
	}
	return OrderTypeMarket
}

func (r CreateOrderRequest) Direction() Direction {
	if r.Limit != nil {
		return r.Limit.Direction
	}
	return r.Market.Direction
}

func (r CreateOrderRequest) Ticker() string {
	if r.Limit != nil {
		return r.Limit.Ticker
	}
	return r.Market.Ticker
}

func (r CreateOrderRequest) Qty() int64 {
	if r.Limit != nil {
		return r.Limit.Qty
	}
	return r.Market.Qty
}

// Price returns the limit price, or nil for a market order.
func (r CreateOrderRequest) Price() *int64 {
	if r.Limit != nil {
		return &r.Limit.Price
	}
	return nil
}
