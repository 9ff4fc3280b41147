package sync

import (
	"context"
	"errors"
	"slices"
	stdsync "sync"

	"github.com/matheus3301/wppclone/internal/api"
)

var errDown = errors.New("backend down")

// fakeBackend is an in-memory server that records calls. List responses
// reflect the state at the time of the request. Individual calls can be held
// on a gate channel to force a particular interleaving.
type fakeBackend struct {
	mu       stdsync.Mutex
	convs    []api.Conversation
	convErr  error
	messages map[string][]api.Message
	msgErr   error
	sendResp *api.Message
	sendErr  error
	delErr   error

	listCalls  map[string]int
	sends      []string
	deletes    []string
	convCalls  int
	convGate   chan struct{}
	convEnter  chan struct{}
	sendGate   chan struct{}
	listGate   chan struct{}
	listEnter  chan string
	sendEnter  chan struct{}
	deleteGate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		messages:  make(map[string][]api.Message),
		listCalls: make(map[string]int),
	}
}

func (f *fakeBackend) ListConversations(ctx context.Context) ([]api.Conversation, error) {
	f.mu.Lock()
	f.convCalls++
	gate, enter := f.convGate, f.convEnter
	err := f.convErr
	convs := append([]api.Conversation(nil), f.convs...)
	f.mu.Unlock()

	if enter != nil {
		enter <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	return convs, nil
}

func (f *fakeBackend) ListMessages(ctx context.Context, waID string) ([]api.Message, error) {
	f.mu.Lock()
	f.listCalls[waID]++
	gate, enter := f.listGate, f.listEnter
	err := f.msgErr
	msgs := append([]api.Message(nil), f.messages[waID]...)
	f.mu.Unlock()

	if enter != nil {
		enter <- waID
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, waID, body string) (*api.Message, error) {
	f.mu.Lock()
	f.sends = append(f.sends, body)
	gate, enter := f.sendGate, f.sendEnter
	f.mu.Unlock()

	if enter != nil {
		enter <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if f.sendResp == nil {
		return nil, nil
	}
	m := *f.sendResp
	stored := m
	if stored.WaID == "" {
		stored.WaID = waID
	}
	f.messages[waID] = append(f.messages[waID], stored)
	return &m, nil
}

func (f *fakeBackend) DeleteMessage(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, id)
	gate := f.deleteGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	for waID, msgs := range f.messages {
		f.messages[waID] = slices.DeleteFunc(msgs, func(m api.Message) bool { return m.ID == id })
	}
	return nil
}

func (f *fakeBackend) setMessages(waID string, msgs ...api.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[waID] = msgs
}

func (f *fakeBackend) setConversations(convs ...api.Conversation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.convs = convs
}

func (f *fakeBackend) listCount(waID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[waID]
}

func (f *fakeBackend) sendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

func (f *fakeBackend) deleteCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}
