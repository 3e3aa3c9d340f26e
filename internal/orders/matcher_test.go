package orders

import (
	"testing"
	"time"

	"github.com/spotxchange/exchange/internal/model"
)

func price(p int64) *int64 { return &p }

func TestPairPriceLimitVsMarket(t *testing.T) {
	now := time.Now()
	buy := &model.Order{Type: model.OrderTypeLimit, Price: price(105), CreatedAt: now}
	sell := &model.Order{Type: model.OrderTypeMarket, CreatedAt: now}

	got, ok := pairPrice(buy, sell)
	if !ok {
		t.Fatal("expected a market sell to pair against a limit buy")
	}
	if got != 105 {
		t.Fatalf("price = %d, want the limit buy's price 105", got)
	}
}

func TestPairPriceMarketVsLimit(t *testing.T) {
	now := time.Now()
	buy := &model.Order{Type: model.OrderTypeMarket, CreatedAt: now}
	sell := &model.Order{Type: model.OrderTypeLimit, Price: price(95), CreatedAt: now}

	got, ok := pairPrice(buy, sell)
	if !ok {
		t.Fatal("expected a market buy to pair against a limit sell")
	}
	if got != 95 {
		t.Fatalf("price = %d, want the limit sell's price 95", got)
	}
}

func TestPairPriceTwoMarketOrdersNeverPair(t *testing.T) {
	now := time.Now()
	buy := &model.Order{Type: model.OrderTypeMarket, CreatedAt: now}
	sell := &model.Order{Type: model.OrderTypeMarket, CreatedAt: now}

	if _, ok := pairPrice(buy, sell); ok {
		t.Fatal("two market orders must never produce a reference price")
	}
}

func TestPairPriceTwoLimitOrdersCrossed(t *testing.T) {
	earlier := time.Now()
	later := earlier.Add(time.Minute)

	buy := &model.Order{Type: model.OrderTypeLimit, Price: price(110), CreatedAt: later}
	sell := &model.Order{Type: model.OrderTypeLimit, Price: price(100), CreatedAt: earlier}

	got, ok := pairPrice(buy, sell)
	if !ok {
		t.Fatal("sell price <= buy price must cross")
	}
	// Resting order (the earlier one) sets the trade price.
	if got != 100 {
		t.Fatalf("price = %d, want the earlier (resting) sell's price 100", got)
	}
}

func TestPairPriceTwoLimitOrdersRestingBuyWins(t *testing.T) {
	earlier := time.Now()
	later := earlier.Add(time.Minute)

	// Here the BUY is the resting order, placed before the SELL.
	buy := &model.Order{Type: model.OrderTypeLimit, Price: price(110), CreatedAt: earlier}
	sell := &model.Order{Type: model.OrderTypeLimit, Price: price(100), CreatedAt: later}

	got, ok := pairPrice(buy, sell)
	if !ok {
		t.Fatal("sell price <= buy price must cross")
	}
	if got != 110 {
		t.Fatalf("price = %d, want the earlier (resting) buy's price 110", got)
	}
}

func TestPairPriceTwoLimitOrdersNotCrossed(t *testing.T) {
	now := time.Now()
	buy := &model.Order{Type: model.OrderTypeLimit, Price: price(90), CreatedAt: now}
	sell := &model.Order{Type: model.OrderTypeLimit, Price: price(100), CreatedAt: now}

	if _, ok := pairPrice(buy, sell); ok {
		t.Fatal("sell price above buy price must not cross")
	}
}

func TestPickBuySell(t *testing.T) {
	marketBuy := &model.Order{Direction: model.DirectionBuy}
	resting := &model.Order{Direction: model.DirectionSell}

	buy, sell := pickBuySell(marketBuy, resting)
	if buy != marketBuy || sell != resting {
		t.Fatal("a market buy order should be returned as the buy side")
	}

	marketSell := &model.Order{Direction: model.DirectionSell}
	restingBuy := &model.Order{Direction: model.DirectionBuy}

	buy, sell = pickBuySell(marketSell, restingBuy)
	if buy != restingBuy || sell != marketSell {
		t.Fatal("a market sell order should be returned as the sell side")
	}
}

func TestMin64(t *testing.T) {
	cases := []struct {
		values []int64
		want   int64
	}{
		{[]int64{5}, 5},
		{[]int64{5, 3, 9}, 3},
		{[]int64{-1, 0, 1}, -1},
		{[]int64{7, 7, 7}, 7},
	}
	for _, tc := range cases {
		if got := min64(tc.values...); got != tc.want {
			t.Fatalf("min64(%v) = %d, want %d", tc.values, got, tc.want)
		}
	}
}
