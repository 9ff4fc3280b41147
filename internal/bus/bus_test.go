package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("messages.", 10)
	defer unsub()

	b.Emit(MessagesUpdated, "A")

	select {
	case evt := <-ch:
		if evt.Kind != MessagesUpdated {
			t.Errorf("got kind %q, want %s", evt.Kind, MessagesUpdated)
		}
		if evt.Timestamp.IsZero() {
			t.Error("Emit did not stamp the event")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("link.", 10)
	defer unsub()

	b.Emit(ConversationsUpdated, nil)
	b.Emit(LinkChanged, nil)

	select {
	case evt := <-ch:
		if evt.Kind != LinkChanged {
			t.Errorf("got kind %q, want %s", evt.Kind, LinkChanged)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEmptyNamespaceReceivesAll(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("", 10)
	defer unsub()

	b.Emit(SendFailed, nil)
	b.Emit(SelectionChanged, nil)

	if got := len(ch); got != 2 {
		t.Errorf("got %d events, want 2", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("messages.", 10)
	unsub()
	unsub()

	b.Emit(MessagesUpdated, nil)

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("messages.", 1)
	defer unsub()

	b.Emit(MessagesUpdated, "first")
	b.Emit(MessagesUpdated, "second")

	evt := <-ch
	if evt.Payload != "first" {
		t.Errorf("got %v, want first", evt.Payload)
	}
}

func TestNilBusEmit(t *testing.T) {
	var b *Bus
	b.Emit(MessagesUpdated, nil)
}
