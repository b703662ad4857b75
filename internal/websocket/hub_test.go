package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// mockClient creates a Client with a send channel but no connection.
func mockClient(hub *Hub, entities ...string) *Client {
	return NewClient(hub, nil, entities)
}

// recv returns the next queued message, or fails.
func recv(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.send:
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return m
	default:
		t.Fatal("no message queued")
	}
	return Message{}
}

func pending(c *Client) int { return len(c.send) }

func TestRegisterSendsHello(t *testing.T) {
	hub := NewHub(testLogger)
	hub.Broadcast(NewMessage("task", "created", 1, nil))
	hub.Broadcast(NewMessage("task", "created", 2, nil))

	c := mockClient(hub)
	hub.Register(c)
	defer hub.Unregister(c)

	hello := recv(t, c)
	if hello.Type != "feed_hello" || hello.Seq != 2 {
		t.Errorf("hello = %+v, want feed_hello at seq 2", hello)
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(testLogger)
	c1, c2 := mockClient(hub), mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("clients = %d, want 2", got)
	}

	hub.Unregister(c1)
	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("clients = %d, want 1", got)
	}
	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("clients = %d, want 0", got)
	}
}

func TestBroadcastSequence(t *testing.T) {
	hub := NewHub(testLogger)
	c := mockClient(hub)
	hub.Register(c)
	defer hub.Unregister(c)
	recv(t, c)

	hub.Broadcast(NewMessage("task", "created", 42, map[string]any{"course": "Historia"}))
	hub.Broadcast(NewMessage("exam", "toggled", 7, nil))

	first, second := recv(t, c), recv(t, c)
	if first.Type != "task_created" || first.ID != 42 || first.Seq != 1 {
		t.Errorf("first = %+v", first)
	}
	if second.Seq != first.Seq+1 {
		t.Errorf("seq %d after %d", second.Seq, first.Seq)
	}
	if hub.Seq() != 2 {
		t.Errorf("hub seq = %d, want 2", hub.Seq())
	}
}

func TestEntityFilter(t *testing.T) {
	hub := NewHub(testLogger)
	all := mockClient(hub)
	exams := mockClient(hub, "exam", " ")
	hub.Register(all)
	hub.Register(exams)
	defer hub.Unregister(all)
	defer hub.Unregister(exams)
	recv(t, all)
	recv(t, exams)

	hub.Broadcast(NewMessage("task", "created", 1, nil))
	hub.Broadcast(NewMessage("exam", "created", 1, nil))
	hub.Broadcast(NewMessage("snapshot", "replaced", 0, nil))

	if got := pending(all); got != 3 {
		t.Errorf("unfiltered client got %d messages, want 3", got)
	}
	if got := recv(t, exams); got.Entity != "exam" {
		t.Errorf("filtered client got %q first", got.Type)
	}
	if got := recv(t, exams); got.Entity != "snapshot" {
		t.Errorf("snapshot replacement should reach every client, got %q", got.Type)
	}
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(testLogger)
	c := mockClient(hub)
	hub.Register(c)
	defer hub.Unregister(c)

	// the hello takes one slot
	for i := 1; i < sendBufferSize; i++ {
		hub.Broadcast(NewMessage("task", "updated", int64(i), nil))
	}
	hub.Broadcast(NewMessage("task", "updated", 999, nil))

	if got := pending(c); got != sendBufferSize {
		t.Errorf("queued = %d, want %d", got, sendBufferSize)
	}
	if got := hub.Dropped(); got != 1 {
		t.Errorf("dropped = %d, want 1", got)
	}
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("class", "updated", 5, nil)
	if msg.Type != "class_updated" || msg.Entity != "class" || msg.Action != "updated" || msg.ID != 5 {
		t.Errorf("message = %+v", msg)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(testLogger)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(NewMessage("task", "toggled", 0, nil))
			hub.Unregister(c)
		}()
	}
	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("clients = %d, want 0", got)
	}
	if got := hub.Seq(); got != 20 {
		t.Errorf("seq = %d, want 20", got)
	}
}
