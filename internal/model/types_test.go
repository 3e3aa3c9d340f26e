package model

import "testing"

func TestOrderRemaining(t *testing.T) {
	o := Order{Quantity: 10, Filled: 3}
	if got := o.Remaining(); got != 7 {
		t.Fatalf("Remaining() = %d, want 7", got)
	}
}

func TestOrderOpen(t *testing.T) {
	cases := []struct {
		name   string
		status OrderStatus
		filled int64
		qty    int64
		want   bool
	}{
		{"new and unfilled", StatusNew, 0, 10, true},
		{"new and partially filled", StatusNew, 4, 10, true},
		{"new but fully filled", StatusNew, 10, 10, false},
		{"executed", StatusExecuted, 10, 10, false},
		{"cancelled", StatusCancelled, 3, 10, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := Order{Status: tc.status, Filled: tc.filled, Quantity: tc.qty}
			if got := o.Open(); got != tc.want {
				t.Fatalf("Open() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOrderProjectedStatus(t *testing.T) {
	// A LIMIT order with partial fill is stored NEW but projected PARTIALLY_EXECUTED.
	limit := Order{Type: OrderTypeLimit, Status: StatusNew, Filled: 4, Quantity: 10}
	if got := limit.ProjectedStatus(); got != StatusPartiallyExecuted {
		t.Fatalf("limit ProjectedStatus() = %s, want PARTIALLY_EXECUTED", got)
	}

	// An unfilled LIMIT order stays NEW in projection too.
	fresh := Order{Type: OrderTypeLimit, Status: StatusNew, Filled: 0, Quantity: 10}
	if got := fresh.ProjectedStatus(); got != StatusNew {
		t.Fatalf("fresh ProjectedStatus() = %s, want NEW", got)
	}

	// A MARKET order's PARTIALLY_EXECUTED status is stored directly and
	// passes through projection unchanged.
	market := Order{Type: OrderTypeMarket, Status: StatusPartiallyExecuted, Filled: 4, Quantity: 10}
	if got := market.ProjectedStatus(); got != StatusPartiallyExecuted {
		t.Fatalf("market ProjectedStatus() = %s, want PARTIALLY_EXECUTED", got)
	}
}

func TestCreateOrderRequestAccessors(t *testing.T) {
	price := int64(150)
	limitReq := CreateOrderRequest{
		UserID: "u1",
		Limit:  &LimitOrderBody{Direction: DirectionBuy, Ticker: "AAPL", Qty: 5, Price: price},
	}
	if limitReq.Type() != OrderTypeLimit {
		t.Fatalf("Type() = %s, want LIMIT", limitReq.Type())
	}
	if limitReq.Direction() != DirectionBuy {
		t.Fatalf("Direction() = %s, want BUY", limitReq.Direction())
	}
	if limitReq.Ticker() != "AAPL" {
		t.Fatalf("Ticker() = %s, want AAPL", limitReq.Ticker())
	}
	if limitReq.Qty() != 5 {
		t.Fatalf("Qty() = %d, want 5", limitReq.Qty())
	}
	if got := limitReq.Price(); got == nil || *got != price {
		t.Fatalf("Price() = %v, want %d", got, price)
	}

	marketReq := CreateOrderRequest{
		UserID: "u1",
		Market: &MarketOrderBody{Direction: DirectionSell, Ticker: "AAPL", Qty: 3},
	}
	if marketReq.Type() != OrderTypeMarket {
		t.Fatalf("Type() = %s, want MARKET", marketReq.Type())
	}
	if got := marketReq.Price(); got != nil {
		t.Fatalf("Price() = %v, want nil for a market order", got)
	}
}
