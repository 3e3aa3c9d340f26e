package users

import (
	"encoding/json"
	"testing"
)

func TestDecodeCreateUserRequest(t *testing.T) {
	var req createUserRequest
	if err := decode(json.RawMessage(`{"name":"Ann"}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Name != "Ann" {
		t.Fatalf("got %q, want Ann", req.Name)
	}
}

func TestDecodeCreateUserRequestRejectsMissingName(t *testing.T) {
	var req createUserRequest
	if err := decode(json.RawMessage(`{}`), &req); err == nil {
		t.Fatal("expected a validation error for a missing name")
	}
}

func TestDecodeDepositRequestRejectsZeroAmount(t *testing.T) {
	var req depositRequest
	err := decode(json.RawMessage(`{"user_id":"u1","ticker":"RUB","amount":0}`), &req)
	if err == nil {
		t.Fatal("expected a validation error for a zero deposit amount")
	}
}

func TestDecodeDepositRequestRejectsNegativeAmount(t *testing.T) {
	var req depositRequest
	err := decode(json.RawMessage(`{"user_id":"u1","ticker":"RUB","amount":-5}`), &req)
	if err == nil {
		t.Fatal("expected a validation error for a negative deposit amount")
	}
}

func TestDecodeDepositRequestAcceptsPositiveAmount(t *testing.T) {
	var req depositRequest
	err := decode(json.RawMessage(`{"user_id":"u1","ticker":"RUB","amount":500}`), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Amount != 500 {
		t.Fatalf("Amount = %d, want 500", req.Amount)
	}
}
