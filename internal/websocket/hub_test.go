package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewMessageType(t *testing.T) {
	msg := NewMessage("note", "created", 7, nil)
	if msg.Type != "note_created" {
		t.Errorf("type = %q, want %q", msg.Type, "note_created")
	}
	if msg.Entity != "note" || msg.Action != "created" || msg.ID != 7 {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := newTestHub()

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)
	if hub.ClientCount() != 1 {
		t.Errorf("client count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(c)
	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d, want 0", hub.ClientCount())
	}

	// Unregistering twice must not panic on the closed channel.
	hub.Unregister(c)
}

func TestHubBroadcast(t *testing.T) {
	hub := newTestHub()

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)

	hub.Broadcast(NewMessage("note", "updated", 3, nil))

	select {
	case data := <-c.send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		if msg.Type != "note_updated" || msg.ID != 3 {
			t.Errorf("unexpected message: %+v", msg)
		}
	default:
		t.Fatal("expected a broadcast message")
	}
}

func TestHubBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := newTestHub()

	c := &Client{hub: hub, send: make(chan []byte)}
	hub.Register(c)

	// Unbuffered channel with no reader: broadcast must not block.
	hub.Broadcast(NewMessage("note", "created", 1, nil))
}
