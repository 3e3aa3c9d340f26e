// Package orders is the order-matching-and-settlement engine: admission,
// the market/limit matching passes, cancellation, and the read-side
// orderbook/transaction queries, wired together as RPC handlers in
// service.go. There is no resident in-memory book; the aggregation types in
// this file are rebuilt from freshly-loaded rows on every call and then
// discarded.
package orders

import (
	"sort"

	"github.com/spotxchange/exchange/internal/model"
)

// level is one price level's aggregated open quantity.
type level struct {
	price int64
	qty   int64
}

// BuildOrderbook aggregates a flat list of open LIMIT orders into sorted
// bid/ask price levels, capped at limit entries per side, mirroring
// get_orderbook's in-process dict accumulation rather than a SQL GROUP BY.
func BuildOrderbook(open []model.Order, limit int) model.OrderbookSnapshot {
	bidByPrice := map[int64]int64{}
	askByPrice := map[int64]int64{}
	for _, o := range open {
		if o.Price == nil {
			continue
		}
		remaining := o.Quantity - o.Filled
		if o.Direction == model.DirectionBuy {
			bidByPrice[*o.Price] += remaining
		} else {
			askByPrice[*o.Price] += remaining
		}
	}

	bids := levelsFromMap(bidByPrice)
	sort.Slice(bids, func(i, j int) bool { return bids[i].price > bids[j].price })
	asks := levelsFromMap(askByPrice)
	sort.Slice(asks, func(i, j int) bool { return asks[i].price < asks[j].price })

	if limit > 0 {
		if len(bids) > limit {
			bids = bids[:limit]
		}
		if len(asks) > limit {
			asks = asks[:limit]
		}
	}
	return model.OrderbookSnapshot{
		BidLevels: toBookLevels(bids),
		AskLevels: toBookLevels(asks),
	}
}

func levelsFromMap(m map[int64]int64) []level {
	out := make([]level, 0, len(m))
	for price, qty := range m {
		out = append(out, level{price: price, qty: qty})
	}
	return out
}

func toBookLevels(levels []level) []model.BookLevel {
	out := make([]model.BookLevel, len(levels))
	for i, l := range levels {
		out[i] = model.BookLevel{Price: l.price, Quantity: l.qty}
	}
	return out
}
