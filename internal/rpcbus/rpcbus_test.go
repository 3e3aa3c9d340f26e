package rpcbus

import (
	"encoding/json"
	"testing"

	"github.com/spotxchange/exchange/internal/xerrors"
)

func TestQueueAndReplyKeysAreNamespaced(t *testing.T) {
	if got, want := queueKey("orders"), "queue:orders"; got != want {
		t.Fatalf("queueKey = %q, want %q", got, want)
	}
	if got, want := replyKey("abc-123"), "reply:abc-123"; got != want {
		t.Fatalf("replyKey = %q, want %q", got, want)
	}
}

// A worker's error envelope must decode on the caller's side into the same
// typed error it started as, since Client.Call reconstructs errors purely
// from the wire Kind/Fields pair.
func TestEnvelopeErrorRoundTrip(t *testing.T) {
	original := &xerrors.InsufficientFunds{UserID: "u1", Requested: 500, Available: 10}
	env := envelope{Error: &wireError{Kind: original.Kind(), Fields: original.Fields()}}

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	var decoded envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if decoded.Error == nil {
		t.Fatal("decoded envelope lost its error")
	}

	reconstructed := xerrors.Reconstruct(decoded.Error.Kind, decoded.Error.Fields)
	typedOriginal, _ := error(original).(xerrors.Typed)
	if reconstructed.Error() != typedOriginal.Error() {
		t.Fatalf("reconstructed = %q, want %q", reconstructed.Error(), typedOriginal.Error())
	}
}

func TestEnvelopeResultRoundTrip(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
	}
	body, err := json.Marshal(payload{OrderID: "ord-1"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	env := envelope{Result: body}

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	var decoded envelope
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if decoded.Error != nil {
		t.Fatalf("expected no error, got %+v", decoded.Error)
	}
	var out payload
	if err := json.Unmarshal(decoded.Result, &out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if out.OrderID != "ord-1" {
		t.Fatalf("OrderID = %q, want ord-1", out.OrderID)
	}
}

func TestJobEnvelopeRoundTrip(t *testing.T) {
	j := job{ID: "j1", Method: "Orders.create_order", Payload: json.RawMessage(`{"qty":1}`)}
	raw, err := json.Marshal(j)
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}
	var decoded job
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal job: %v", err)
	}
	if decoded.ID != j.ID || decoded.Method != j.Method || string(decoded.Payload) != string(j.Payload) {
		t.Fatalf("decoded job = %+v, want %+v", decoded, j)
	}
}
