package orders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spotxchange/exchange/internal/metrics"
	"github.com/spotxchange/exchange/internal/model"
	"github.com/spotxchange/exchange/internal/store"
	"github.com/spotxchange/exchange/internal/xerrors"
)

// pairedTransaction is a proposed fill between two NEW orders, computed by
// pair without touching the database.
type pairedTransaction struct {
	buy, sell *model.Order
	price     int64
	qty       int64
}

// pair decides whether buy and sell can trade right now and, if so, at what
// price and quantity, mirroring create_transaction exactly:
//   - same direction, or either side already non-NEW, never pairs
//   - one LIMIT + one MARKET trades at the LIMIT side's price
//   - two MARKET orders never pair (no reference price)
//   - two LIMIT orders only pair when sell.price <= buy.price, at the
//     resting (earlier-created) order's price
//   - quantity is capped by the buyer's available RUB balance at that price,
//     deliberately ignoring the buyer's own B3 lock (see matching engine notes)
func pair(ctx context.Context, tx *sql.Tx, buy, sell *model.Order) (*pairedTransaction, error) {
	if buy.Direction == sell.Direction || !buy.Open() || !sell.Open() {
		return nil, nil
	}

	price, ok := pairPrice(buy, sell)
	if !ok {
		return nil, nil
	}

	buyerBalance, err := store.GetBalance(ctx, tx, buy.UserID, model.RUB)
	if err != nil {
		return nil, fmt.Errorf("pair: load buyer balance: %w", err)
	}
	if buyerBalance == nil {
		return nil, nil
	}

	qty := min64(buy.Remaining(), sell.Remaining(), buyerBalance.Amount/price)
	if qty <= 0 {
		return nil, nil
	}
	return &pairedTransaction{buy: buy, sell: sell, price: price, qty: qty}, nil
}

func pairPrice(buy, sell *model.Order) (int64, bool) {
	sellMarket := sell.Type == model.OrderTypeMarket
	buyMarket := buy.Type == model.OrderTypeMarket

	switch {
	case sellMarket && !buyMarket:
		return *buy.Price, true
	case buyMarket && !sellMarket:
		return *sell.Price, true
	case sellMarket && buyMarket:
		return 0, false
	default:
		if *sell.Price > *buy.Price {
			return 0, false
		}
		if sell.CreatedAt.Before(buy.CreatedAt) {
			return *sell.Price, true
		}
		return *buy.Price, true
	}
}

// settle applies a paired transaction: moves instrument units and RUB
// between the two users' balances, records a transaction row, and updates
// both orders' filled/status — exactly execute_transaction, including the
// self-trade special case where buyer == seller and only the instrument and
// RUB balances need enough headroom, with no balance actually moving.
func settle(ctx context.Context, tx *sql.Tx, instrument string, pt *pairedTransaction) error {
	total := pt.qty * pt.price

	if pt.buy.UserID == pt.sell.UserID {
		instBal, err := store.GetBalance(ctx, tx, pt.buy.UserID, instrument)
		if err != nil {
			return err
		}
		if instBal == nil || instBal.Amount < pt.qty {
			return &xerrors.Critical{Message: fmt.Sprintf("user does not have enough %s to self-trade", instrument)}
		}
		rubBal, err := store.GetBalance(ctx, tx, pt.buy.UserID, model.RUB)
		if err != nil {
			return err
		}
		if rubBal == nil || rubBal.Amount < total {
			return &xerrors.Critical{Message: "user does not have enough RUB to self-trade"}
		}
	} else {
		sellerBal, err := store.GetBalance(ctx, tx, pt.sell.UserID, instrument)
		if err != nil {
			return err
		}
		if sellerBal == nil || sellerBal.Amount < pt.qty {
			return &xerrors.Critical{Message: fmt.Sprintf("seller does not have enough %s to sell", instrument)}
		}
		buyerRub, err := store.GetBalance(ctx, tx, pt.buy.UserID, model.RUB)
		if err != nil {
			return err
		}
		if buyerRub == nil || buyerRub.Amount < total {
			return &xerrors.Critical{Message: "buyer does not have enough RUB to buy"}
		}

		if err := store.AddBalance(ctx, tx, pt.sell.UserID, instrument, -pt.qty); err != nil {
			return err
		}
		if err := store.AddBalance(ctx, tx, pt.buy.UserID, instrument, pt.qty); err != nil {
			return err
		}
		if err := store.AddBalance(ctx, tx, pt.buy.UserID, model.RUB, -total); err != nil {
			return err
		}
		if err := store.AddBalance(ctx, tx, pt.sell.UserID, model.RUB, total); err != nil {
			return err
		}
	}

	if _, err := store.InsertTransaction(ctx, tx, instrument, pt.buy.ID, pt.sell.ID, pt.qty, pt.price); err != nil {
		return err
	}

	for _, o := range []*model.Order{pt.buy, pt.sell} {
		o.Filled += pt.qty
		status := o.Status
		if o.Filled == o.Quantity {
			status = model.StatusExecuted
		}
		if err := store.SaveOrderFill(ctx, tx, o.ID, o.Filled, status); err != nil {
			return err
		}
		o.Status = status
	}
	return nil
}

// executeMarketOrders walks each market order against the opposite resting
// side, pairing and settling until it either fills completely or finds no
// further match, then marks it PARTIALLY_EXECUTED if it didn't fully fill —
// mirroring execute_market_orders.
func executeMarketOrders(ctx context.Context, tx *sql.Tx, instrument string, marketOrders, buys, sells []*model.Order) error {
	for _, mo := range marketOrders {
		var against []*model.Order
		if mo.Direction == model.DirectionBuy {
			against = sells
		} else {
			against = buys
		}
		for _, resting := range against {
			pt, err := pair(ctx, tx, pickBuySell(mo, resting))
			if err != nil {
				return err
			}
			if pt == nil {
				break
			}
			if err := settle(ctx, tx, instrument, pt); err != nil {
				return err
			}
		}
		if mo.Status != model.StatusExecuted {
			mo.Status = model.StatusPartiallyExecuted
			if err := store.SaveOrderFill(ctx, tx, mo.ID, mo.Filled, mo.Status); err != nil {
				return err
			}
		}
	}
	return nil
}

// executeLimitOrders walks the buy side price-time priority list against
// the sell side, pairing and settling until a buy order stops matching,
// mirroring execute_limit_orders's nested-loop break structure exactly.
func executeLimitOrders(ctx context.Context, tx *sql.Tx, instrument string, buys, sells []*model.Order) error {
	for _, bo := range buys {
		for _, so := range sells {
			pt, err := pair(ctx, tx, bo, so)
			if err != nil {
				return err
			}
			if pt == nil {
				break
			}
			if err := settle(ctx, tx, instrument, pt); err != nil {
				return err
			}
		}
		if bo.Status != model.StatusExecuted {
			break
		}
	}
	return nil
}

func pickBuySell(marketOrder, resting *model.Order) (buy, sell *model.Order) {
	if marketOrder.Direction == model.DirectionBuy {
		return marketOrder, resting
	}
	return resting, marketOrder
}

// ExecuteOrders runs one complete matching pass for ticker: loads every NEW
// order fresh inside a single transaction (no resident book), runs the
// market phase then the limit phase, and commits. The caller must hold the
// per-instrument distributed lock for the duration of this call.
func ExecuteOrders(ctx context.Context, st *store.Store, ticker string) error {
	start := time.Now()
	defer func() { metrics.MatchingPassDuration.WithLabelValues(ticker).Observe(time.Since(start).Seconds()) }()
	return st.WithTx(ctx, func(tx *sql.Tx) error {
		inst, err := st.GetInstrument(ctx, ticker)
		if err != nil {
			return err
		}
		if inst == nil {
			// Nothing to do: the instrument vanished between admission and
			// this pass (e.g. an admin deletion raced it).
			return nil
		}

		marketRows, err := store.OpenMarketOrders(ctx, tx, ticker)
		if err != nil {
			return err
		}
		buyRows, err := store.OpenLimitBuys(ctx, tx, ticker)
		if err != nil {
			return err
		}
		sellRows, err := store.OpenLimitSells(ctx, tx, ticker)
		if err != nil {
			return err
		}

		market := toPointers(marketRows)
		buys := toPointers(buyRows)
		sells := toPointers(sellRows)

		if err := executeMarketOrders(ctx, tx, ticker, market, buys, sells); err != nil {
			return err
		}
		return executeLimitOrders(ctx, tx, ticker, buys, sells)
	})
}

func toPointers(orders []model.Order) []*model.Order {
	out := make([]*model.Order, len(orders))
	for i := range orders {
		out[i] = &orders[i]
	}
	return out
}

func min64(values ...int64) int64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
