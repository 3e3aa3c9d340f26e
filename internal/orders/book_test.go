package orders

import (
	"math/rand"
	"testing"

	"github.com/spotxchange/exchange/internal/model"
)

func openLimit(direction model.Direction, p, qty, filled int64) model.Order {
	return model.Order{
		Type:      model.OrderTypeLimit,
		Direction: direction,
		Price:     price(p),
		Quantity:  qty,
		Filled:    filled,
		Status:    model.StatusNew,
	}
}

func TestBuildOrderbookAggregatesByPrice(t *testing.T) {
	open := []model.Order{
		openLimit(model.DirectionBuy, 100, 10, 2),
		openLimit(model.DirectionBuy, 100, 5, 0),
		openLimit(model.DirectionBuy, 99, 3, 0),
		openLimit(model.DirectionSell, 101, 4, 1),
		openLimit(model.DirectionSell, 102, 6, 0),
	}

	book := BuildOrderbook(open, 0)

	if len(book.BidLevels) != 2 {
		t.Fatalf("got %d bid levels, want 2", len(book.BidLevels))
	}
	if book.BidLevels[0].Price != 100 || book.BidLevels[0].Quantity != 13 {
		t.Fatalf("top bid level = %+v, want price 100 qty 13 (8+5 remaining)", book.BidLevels[0])
	}
	if book.BidLevels[1].Price != 99 || book.BidLevels[1].Quantity != 3 {
		t.Fatalf("second bid level = %+v, want price 99 qty 3", book.BidLevels[1])
	}

	if len(book.AskLevels) != 2 {
		t.Fatalf("got %d ask levels, want 2", len(book.AskLevels))
	}
	if book.AskLevels[0].Price != 101 || book.AskLevels[0].Quantity != 3 {
		t.Fatalf("top ask level = %+v, want price 101 qty 3 (4-1 remaining)", book.AskLevels[0])
	}
}

func TestBuildOrderbookSkipsMarketOrders(t *testing.T) {
	open := []model.Order{
		{Type: model.OrderTypeMarket, Direction: model.DirectionBuy, Quantity: 5, Status: model.StatusNew},
		openLimit(model.DirectionBuy, 50, 2, 0),
	}
	book := BuildOrderbook(open, 0)
	if len(book.BidLevels) != 1 {
		t.Fatalf("got %d bid levels, want 1 (market order has no price level)", len(book.BidLevels))
	}
}

func TestBuildOrderbookRespectsLimit(t *testing.T) {
	open := []model.Order{
		openLimit(model.DirectionBuy, 100, 1, 0),
		openLimit(model.DirectionBuy, 99, 1, 0),
		openLimit(model.DirectionBuy, 98, 1, 0),
	}
	book := BuildOrderbook(open, 2)
	if len(book.BidLevels) != 2 {
		t.Fatalf("got %d bid levels, want 2 after truncation", len(book.BidLevels))
	}
}

// BuildOrderbook must always return bids sorted highest-first and asks
// sorted lowest-first, regardless of input order or how many random price
// levels are fed in.
func TestBuildOrderbookLevelsAreMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		var open []model.Order
		n := r.Intn(30)
		for i := 0; i < n; i++ {
			direction := model.DirectionBuy
			if r.Intn(2) == 0 {
				direction = model.DirectionSell
			}
			p := int64(1 + r.Intn(200))
			qty := int64(1 + r.Intn(50))
			open = append(open, openLimit(direction, p, qty, 0))
		}

		book := BuildOrderbook(open, 0)
		for i := 1; i < len(book.BidLevels); i++ {
			if book.BidLevels[i-1].Price <= book.BidLevels[i].Price {
				t.Fatalf("trial %d: bid levels not strictly descending: %+v", trial, book.BidLevels)
			}
		}
		for i := 1; i < len(book.AskLevels); i++ {
			if book.AskLevels[i-1].Price >= book.AskLevels[i].Price {
				t.Fatalf("trial %d: ask levels not strictly ascending: %+v", trial, book.AskLevels)
			}
		}
	}
}
