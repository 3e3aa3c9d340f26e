package wshub

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func newTestConn() *conn {
	return &conn{send: make(chan []byte, 64)}
}

func TestSubscribeAndPublish(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := newTestConn()

	h.subscribe(c, "AAPL")
	h.Publish("AAPL", "book_snapshot", map[string]int{"bid": 100})

	select {
	case raw := <-c.send:
		var msg Msg
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal published message: %v", err)
		}
		if msg.Type != "book_snapshot" || msg.Ticker != "AAPL" {
			t.Fatalf("got %+v, want type=book_snapshot ticker=AAPL", msg)
		}
	default:
		t.Fatal("expected a message on the subscriber's send channel")
	}
}

func TestPublishOnlyReachesSubscribersOfThatTicker(t *testing.T) {
	h := NewHub(zerolog.Nop())
	aapl := newTestConn()
	msft := newTestConn()

	h.subscribe(aapl, "AAPL")
	h.subscribe(msft, "MSFT")

	h.Publish("AAPL", "trade", nil)

	if len(aapl.send) != 1 {
		t.Fatal("AAPL subscriber should have received the broadcast")
	}
	if len(msft.send) != 0 {
		t.Fatal("MSFT subscriber should not have received an AAPL broadcast")
	}
}

func TestResubscribeMovesConnBetweenRooms(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := newTestConn()

	h.subscribe(c, "AAPL")
	h.subscribe(c, "MSFT")

	h.Publish("AAPL", "trade", nil)
	if len(c.send) != 0 {
		t.Fatal("conn resubscribed to MSFT should no longer receive AAPL broadcasts")
	}

	h.Publish("MSFT", "trade", nil)
	if len(c.send) != 1 {
		t.Fatal("conn should receive broadcasts for its current room")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := newTestConn()
	h.subscribe(c, "AAPL")
	h.unsubscribe(c, "AAPL")

	h.Publish("AAPL", "trade", nil)
	if len(c.send) != 0 {
		t.Fatal("unsubscribed conn should not receive further broadcasts")
	}
	if _, ok := h.rooms["AAPL"]; ok {
		t.Fatal("empty room should be removed from the hub")
	}
}

func TestRemoveConnClosesSendChannel(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := newTestConn()
	h.subscribe(c, "AAPL")
	h.allConn[c] = true

	h.removeConn(c)

	if _, open := <-c.send; open {
		t.Fatal("send channel should be closed after removeConn")
	}
	if _, ok := h.rooms["AAPL"]; ok {
		t.Fatal("room should be cleaned up once its last subscriber is removed")
	}
}

// A slow subscriber whose send buffer is already full must never block
// Publish; the message is simply dropped for that subscriber.
func TestPublishDropsForFullBuffer(t *testing.T) {
	h := NewHub(zerolog.Nop())
	c := &conn{send: make(chan []byte, 1)}
	h.subscribe(c, "AAPL")
	c.send <- []byte("already full")

	done := make(chan struct{})
	go func() {
		h.Publish("AAPL", "trade", nil)
		close(done)
	}()
	<-done // Publish must return promptly rather than blocking on the full channel.
}
