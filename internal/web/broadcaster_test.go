package web

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBroadcaster_SubscribeAndReceive(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	b.Broadcast("info", "hello")

	select {
	case msg := <-ch:
		var evt StatusEvent
		if err := json.Unmarshal([]byte(msg), &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Msg != "hello" {
			t.Errorf("msg = %q, want \"hello\"", evt.Msg)
		}
		if evt.Level != "info" {
			t.Errorf("level = %q, want \"info\"", evt.Level)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for broadcast")
	}
}

func TestBroadcaster_MultipleSubscribers(t *testing.T) {
	b := NewStatusBroadcaster()
	ch1, unsub1 := b.Subscribe()
	defer unsub1()
	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Broadcast("info", "multi")

	for i, ch := range []<-chan string{ch1, ch2} {
		select {
		case msg := <-ch:
			if msg == "" {
				t.Errorf("subscriber %d received empty message", i)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

func TestBroadcaster_UnsubscribedReceivesNothing(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	unsub()

	b.Broadcast("info", "after unsub")

	// Channel is closed by unsub; it must not carry the message.
	if msg, ok := <-ch; ok {
		t.Errorf("unsubscribed channel received %q", msg)
	}
}

func TestBroadcastWriter_TrimsAndForwards(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	w := BroadcastWriter(b)
	if _, err := w.Write([]byte("line from logger\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case msg := <-ch:
		var evt StatusEvent
		if err := json.Unmarshal([]byte(msg), &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Msg != "line from logger" {
			t.Errorf("msg = %q, want trimmed logger line", evt.Msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for writer broadcast")
	}
}

func TestBroadcastWriter_SkipsEmpty(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	w := BroadcastWriter(b)
	if _, err := w.Write([]byte("   \n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case msg := <-ch:
		t.Errorf("blank write should not broadcast, got %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
