package orders

import (
	"testing"

	"github.com/spotxchange/exchange/internal/model"
)

func TestToCreateOrderRequestRejectsBothVariants(t *testing.T) {
	limit := &limitBody{Direction: model.DirectionBuy, Ticker: "AAPL", Qty: 1, Price: 10}
	market := &marketBody{Direction: model.DirectionBuy, Ticker: "AAPL", Qty: 1}

	_, err := toCreateOrderRequest("u1", limit, market)
	if err == nil {
		t.Fatal("expected an error when both limit and market are set")
	}
}

func TestToCreateOrderRequestRejectsNeitherVariant(t *testing.T) {
	_, err := toCreateOrderRequest("u1", nil, nil)
	if err == nil {
		t.Fatal("expected an error when neither limit nor market is set")
	}
}

func TestToCreateOrderRequestAcceptsLimit(t *testing.T) {
	limit := &limitBody{Direction: model.DirectionBuy, Ticker: "AAPL", Qty: 1, Price: 10}
	req, err := toCreateOrderRequest("u1", limit, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.UserID != "u1" || req.Type() != model.OrderTypeLimit {
		t.Fatalf("got %+v, want a valid limit request for u1", req)
	}
}

func TestToCreateOrderRequestAcceptsMarket(t *testing.T) {
	market := &marketBody{Direction: model.DirectionSell, Ticker: "AAPL", Qty: 3}
	req, err := toCreateOrderRequest("u1", nil, market)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Type() != model.OrderTypeMarket || req.Qty() != 3 {
		t.Fatalf("got %+v, want a valid market request with qty 3", req)
	}
}

func TestToCreateOrderRequestValidatesStructTags(t *testing.T) {
	cases := []struct {
		name   string
		limit  *limitBody
		market *marketBody
	}{
		{"zero qty", &limitBody{Direction: model.DirectionBuy, Ticker: "AAPL", Qty: 0, Price: 10}, nil},
		{"zero price", &limitBody{Direction: model.DirectionBuy, Ticker: "AAPL", Qty: 1, Price: 0}, nil},
		{"bad ticker too short", &limitBody{Direction: model.DirectionBuy, Ticker: "A", Qty: 1, Price: 10}, nil},
		{"bad ticker lowercase", &limitBody{Direction: model.DirectionBuy, Ticker: "aapl", Qty: 1, Price: 10}, nil},
		{"bad direction", &limitBody{Direction: "UP", Ticker: "AAPL", Qty: 1, Price: 10}, nil},
		{"market zero qty", nil, &marketBody{Direction: model.DirectionBuy, Ticker: "AAPL", Qty: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := toCreateOrderRequest("u1", tc.limit, tc.market); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestTickerPatternValidator(t *testing.T) {
	valid := []string{"AB", "AAPL", "ABCDEFGHIJ"}
	for _, ticker := range valid {
		limit := &limitBody{Direction: model.DirectionBuy, Ticker: ticker, Qty: 1, Price: 10}
		if _, err := toCreateOrderRequest("u1", limit, nil); err != nil {
			t.Errorf("ticker %q should be valid, got error: %v", ticker, err)
		}
	}

	invalid := []string{"A", "ABCDEFGHIJK", "AA1", "aa", ""}
	for _, ticker := range invalid {
		limit := &limitBody{Direction: model.DirectionBuy, Ticker: ticker, Qty: 1, Price: 10}
		if _, err := toCreateOrderRequest("u1", limit, nil); err == nil {
			t.Errorf("ticker %q should be invalid", ticker)
		}
	}
}
