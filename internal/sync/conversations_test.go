package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/config"
	"github.com/matheus3301/wppclone/internal/status"
)

func conv(waID, name, body string) api.Conversation {
	return api.Conversation{
		WaID: waID,
		LastMessage: &api.LastMessage{
			Name:      name,
			Body:      body,
			Timestamp: api.At(time.Unix(1700000000, 0)),
		},
	}
}

func TestConversationPollerReplacesList(t *testing.T) {
	f := newFakeBackend()
	f.setConversations(conv("A", "Alice", "hi"), conv("B", "Bob", "yo"))
	p := NewConversationPoller(f, time.Hour, nil, nil, nil)

	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, f.convs, p.Conversations())

	f.setConversations(conv("B", "Bob", "later"))
	require.NoError(t, p.Refresh(context.Background()))

	got := p.Conversations()
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].WaID)
	_, ok := p.Find("A")
	assert.False(t, ok)
}

func TestConversationPollerFailureKeepsList(t *testing.T) {
	f := newFakeBackend()
	f.setConversations(conv("A", "Alice", "hi"))
	link := status.NewMachine(nil)
	p := NewConversationPoller(f, time.Hour, nil, link, nil)
	require.NoError(t, p.Refresh(context.Background()))

	f.mu.Lock()
	f.convErr = errDown
	f.mu.Unlock()

	assert.ErrorIs(t, p.Refresh(context.Background()), errDown)
	assert.Len(t, p.Conversations(), 1)
	assert.Equal(t, status.Degraded, link.Current())

	f.mu.Lock()
	f.convErr = nil
	f.mu.Unlock()
	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, status.Online, link.Current())
}

func TestConversationPollerPublishes(t *testing.T) {
	f := newFakeBackend()
	f.setConversations(conv("A", "Alice", "hi"))
	b := bus.New()
	events, unsub := b.Subscribe(bus.ConversationsUpdated, 4)
	defer unsub()

	var seen []api.Conversation
	p := NewConversationPoller(f, time.Hour, b, nil, nil)
	p.OnUpdate(func(convs []api.Conversation) { seen = convs })
	require.NoError(t, p.Refresh(context.Background()))

	select {
	case evt := <-events:
		convs, ok := evt.Payload.([]api.Conversation)
		require.True(t, ok)
		assert.Equal(t, "A", convs[0].WaID)
	case <-time.After(time.Second):
		t.Fatal("no conversations event")
	}
	assert.Len(t, seen, 1)
}

func TestConversationPollerStartStop(t *testing.T) {
	f := newFakeBackend()
	p := NewConversationPoller(f, 5*time.Millisecond, nil, nil, nil)
	p.Start(context.Background())

	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.convCalls >= 3
	}, time.Second, time.Millisecond)

	p.Stop()
	f.mu.Lock()
	n := f.convCalls
	f.mu.Unlock()
	time.Sleep(30 * time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, n, f.convCalls)
}

func TestConversationPollerDefaultsInterval(t *testing.T) {
	f := newFakeBackend()
	assert.Equal(t, config.DefaultConversationPoll, NewConversationPoller(f, 0, nil, nil, nil).interval)
	assert.Equal(t, config.DefaultConversationPoll, NewConversationPoller(f, -time.Second, nil, nil, nil).interval)
	assert.Equal(t, time.Second, NewConversationPoller(f, time.Second, nil, nil, nil).interval)
}

func TestConversationPollerDropsStaleResponse(t *testing.T) {
	f := newFakeBackend()
	f.setConversations(conv("A", "Alice", "old"))
	gate := make(chan struct{})
	enter := make(chan struct{}, 1)
	f.mu.Lock()
	f.convGate, f.convEnter = gate, enter
	f.mu.Unlock()

	updates := 0
	p := NewConversationPoller(f, time.Hour, nil, nil, nil)
	p.OnUpdate(func([]api.Conversation) { updates++ })

	first := make(chan error, 1)
	go func() { first <- p.Refresh(context.Background()) }()
	select {
	case <-enter:
	case <-time.After(time.Second):
		t.Fatal("first refresh never reached the backend")
	}

	f.setConversations(conv("B", "Bob", "new"))
	f.mu.Lock()
	f.convGate, f.convEnter = nil, nil
	f.mu.Unlock()
	require.NoError(t, p.Refresh(context.Background()))

	close(gate)
	select {
	case err := <-first:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first refresh did not return")
	}

	got := p.Conversations()
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].WaID)
	assert.Equal(t, 1, updates)
}
