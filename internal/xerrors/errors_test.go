package xerrors

import "testing"

func TestReconstructRoundTrip(t *testing.T) {
	cases := []Typed{
		&UserNotFound{ID: "u1"},
		&InstrumentNotFound{Ticker: "AAPL"},
		&OrderNotFound{ID: "o1"},
		&InstrumentAlreadyExists{Ticker: "AAPL"},
		&InsufficientFunds{UserID: "u1", Requested: 100, Available: 40},
		&CannotCancel{Reason: "already executed"},
		&Critical{Message: "boom"},
		&RequestTimeout{Method: "Orders.create_order"},
		&Validation{Message: "qty must be positive"},
	}

	for _, original := range cases {
		t.Run(string(original.Kind()), func(t *testing.T) {
			got := Reconstruct(original.Kind(), original.Fields())
			if got.Kind() != original.Kind() {
				t.Fatalf("kind mismatch: got %s want %s", got.Kind(), original.Kind())
			}
			if got.Error() != original.Error() {
				t.Fatalf("message mismatch: got %q want %q", got.Error(), original.Error())
			}
		})
	}
}

func TestReconstructUnknownKindIsCritical(t *testing.T) {
	got := Reconstruct(Kind("NOT_A_REAL_KIND"), map[string]any{})
	if got.Kind() != KindCritical {
		t.Fatalf("expected unknown kind to reconstruct as Critical, got %s", got.Kind())
	}
}

// Wire transport round-trips fields through JSON, which turns every number
// into a float64; num must still recover the original int64.
func TestNumAcceptsJSONFloat(t *testing.T) {
	f := InsufficientFunds{UserID: "u1", Requested: 100, Available: 40}
	wireFields := f.Fields()
	wireFields["requested"] = float64(100)
	wireFields["available"] = float64(40)

	got := Reconstruct(KindInsufficientFunds, wireFields).(*InsufficientFunds)
	if got.Requested != 100 || got.Available != 40 {
		t.Fatalf("got %+v, want Requested=100 Available=40", got)
	}
}
