// Package xerrors is the typed error taxonomy that crosses the RPC
// transport boundary. Each error carries a Kind so rpcbus can serialize it
// without reflection and the gateway can map it onto the HTTP status table.
package xerrors

import "fmt"

type Kind string

const (
	KindUserNotFound           Kind = "USER_NOT_FOUND"
	KindInstrumentNotFound     Kind = "INSTRUMENT_NOT_FOUND"
	KindOrderNotFound          Kind = "ORDER_NOT_FOUND"
	KindInstrumentAlreadyExist Kind = "INSTRUMENT_ALREADY_EXISTS"
	KindInsufficientFunds      Kind = "INSUFFICIENT_FUNDS"
	KindCannotCancel           Kind = "CANNOT_CANCEL"
	KindCritical               Kind = "CRITICAL"
	KindRequestTimeout         Kind = "REQUEST_TIMEOUT"
	KindValidation             Kind = "VALIDATION"
)

// Typed is implemented by every error in this package so the RPC layer can
// pull a Kind and a wire-safe payload off it without a type switch over
// concrete types.
type Typed interface {
	error
	Kind() Kind
	Fields() map[string]any
}

type UserNotFound struct{ ID string }

func (e *UserNotFound) Error() string       { return fmt.Sprintf("user not found: %s", e.ID) }
func (e *UserNotFound) Kind() Kind          { return KindUserNotFound }
func (e *UserNotFound) Fields() map[string]any { return map[string]any{"id": e.ID} }

type InstrumentNotFound struct{ Ticker string }

func (e *InstrumentNotFound) Error() string { return fmt.Sprintf("instrument not found: %s", e.Ticker) }
func (e *InstrumentNotFound) Kind() Kind    { return KindInstrumentNotFound }
func (e *InstrumentNotFound) Fields() map[string]any {
	return map[string]any{"ticker": e.Ticker}
}

type OrderNotFound struct{ ID string }

func (e *OrderNotFound) Error() string          { return fmt.Sprintf("order not found: %s", e.ID) }
func (e *OrderNotFound) Kind() Kind             { return KindOrderNotFound }
func (e *OrderNotFound) Fields() map[string]any { return map[string]any{"id": e.ID} }

type InstrumentAlreadyExists struct{ Ticker string }

func (e *InstrumentAlreadyExists) Error() string {
	return fmt.Sprintf("instrument already exists: %s", e.Ticker)
}
func (e *InstrumentAlreadyExists) Kind() Kind { return KindInstrumentAlreadyExist }
func (e *InstrumentAlreadyExists) Fields() map[string]any {
	return map[string]any{"ticker": e.Ticker}
}

type InsufficientFunds struct {
	UserID    string
	Requested int64
	Available int64
}

func (e *InsufficientFunds) Error() string {
	return fmt.Sprintf("user %s has insufficient funds: requested %d, available %d", e.UserID, e.Requested, e.Available)
}
func (e *InsufficientFunds) Kind() Kind { return KindInsufficientFunds }
func (e *InsufficientFunds) Fields() map[string]any {
	return map[string]any{"user_id": e.UserID, "requested": e.Requested, "available": e.Available}
}

type CannotCancel struct{ Reason string }

func (e *CannotCancel) Error() string          { return fmt.Sprintf("cannot cancel: %s", e.Reason) }
func (e *CannotCancel) Kind() Kind             { return KindCannotCancel }
func (e *CannotCancel) Fields() map[string]any { return map[string]any{"reason": e.Reason} }

// Critical indicates an unexpected condition: a DB error, or an invariant
// violation detected mid-settlement. It aborts the enclosing transaction;
// no compensating writes are needed because nothing partial is committed.
type Critical struct{ Message string }

func (e *Critical) Error() string          { return fmt.Sprintf("critical error: %s", e.Message) }
func (e *Critical) Kind() Kind             { return KindCritical }
func (e *Critical) Fields() map[string]any { return map[string]any{"message": e.Message} }

// RequestTimeout is raised only at the gateway, when a job's reply future
// does not resolve within the RPC deadline. It never crosses the wire in
// the other direction — the worker job keeps running to completion.
type RequestTimeout struct{ Method string }

func (e *RequestTimeout) Error() string { return fmt.Sprintf("request timed out: %s", e.Method) }
func (e *RequestTimeout) Kind() Kind    { return KindRequestTimeout }
func (e *RequestTimeout) Fields() map[string]any {
	return map[string]any{"method": e.Method}
}

// Validation wraps a request-boundary validation failure (struct tag
// violation on the tagged order body, malformed ticker, etc).
type Validation struct{ Message string }

func (e *Validation) Error() string          { return e.Message }
func (e *Validation) Kind() Kind             { return KindValidation }
func (e *Validation) Fields() map[string]any { return map[string]any{"message": e.Message} }

// reconstructors rebuilds a Typed error from its Kind and wire fields, used
// by rpcbus to turn a decoded envelope back into a concrete Go error on the
// calling side without reflection.
var reconstructors = map[Kind]func(map[string]any) Typed{
	KindUserNotFound: func(f map[string]any) Typed {
		return &UserNotFound{ID: str(f["id"])}
	},
	KindInstrumentNotFound: func(f map[string]any) Typed {
		return &InstrumentNotFound{Ticker: str(f["ticker"])}
	},
	KindOrderNotFound: func(f map[string]any) Typed {
		return &OrderNotFound{ID: str(f["id"])}
	},
	KindInstrumentAlreadyExist: func(f map[string]any) Typed {
		return &InstrumentAlreadyExists{Ticker: str(f["ticker"])}
	},
	KindInsufficientFunds: func(f map[string]any) Typed {
		return &InsufficientFunds{UserID: str(f["user_id"]), Requested: num(f["requested"]), Available: num(f["available"])}
	},
	KindCannotCancel: func(f map[string]any) Typed {
		return &CannotCancel{Reason: str(f["reason"])}
	},
	KindCritical: func(f map[string]any) Typed {
		return &Critical{Message: str(f["message"])}
	},
	KindRequestTimeout: func(f map[string]any) Typed {
		return &RequestTimeout{Method: str(f["method"])}
	},
	KindValidation: func(f map[string]any) Typed {
		return &Validation{Message: str(f["message"])}
	},
}

// Reconstruct rebuilds a Typed error from a Kind and its field payload, as
// decoded off the wire by rpcbus.
func Reconstruct(kind Kind, fields map[string]any) Typed {
	if fn, ok := reconstructors[kind]; ok {
		return fn(fields)
	}
	return &Critical{Message: fmt.Sprintf("unknown error kind on wire: %s", kind)}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
