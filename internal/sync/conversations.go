package sync

import (
	"context"
	"slices"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/config"
	"github.com/matheus3301/wppclone/internal/status"
)

// ConversationPoller refreshes the conversation list on a fixed interval.
// A successful fetch replaces the list wholesale; a failed one leaves the
// previous list in place.
type ConversationPoller struct {
	backend  Backend
	interval time.Duration
	bus      *bus.Bus
	link     *status.Machine
	logger   *zap.Logger
	onUpdate func([]api.Conversation)

	mu      stdsync.RWMutex
	convs   []api.Conversation
	issued  uint64
	applied uint64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewConversationPoller creates a poller. link and b may be nil; a
// non-positive interval uses config.DefaultConversationPoll.
func NewConversationPoller(backend Backend, interval time.Duration, b *bus.Bus, link *status.Machine, logger *zap.Logger) *ConversationPoller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = config.DefaultConversationPoll
	}
	return &ConversationPoller{
		backend:  backend,
		interval: interval,
		bus:      b,
		link:     link,
		logger:   logger,
	}
}

// OnUpdate registers a callback run after every applied fetch, outside the lock.
func (p *ConversationPoller) OnUpdate(fn func([]api.Conversation)) {
	p.onUpdate = fn
}

// Start fetches once right away and then on every tick until Stop or ctx ends.
func (p *ConversationPoller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		_ = p.Refresh(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = p.Refresh(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the poll loop and waits for it to exit.
func (p *ConversationPoller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

// Refresh performs a single fetch. Responses that arrive after a newer
// fetch has already been applied are discarded.
func (p *ConversationPoller) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.issued++
	seq := p.issued
	p.mu.Unlock()

	convs, err := p.backend.ListConversations(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		p.logger.Warn("load conversations failed", zap.Error(err))
		if p.link != nil {
			p.link.Report(err)
		}
		return err
	}
	if p.link != nil {
		p.link.Report(nil)
	}

	p.mu.Lock()
	if seq <= p.applied {
		p.mu.Unlock()
		return nil
	}
	p.applied = seq
	p.convs = convs
	p.mu.Unlock()

	snapshot := slices.Clone(convs)
	p.bus.Emit(bus.ConversationsUpdated, snapshot)
	if p.onUpdate != nil {
		p.onUpdate(snapshot)
	}
	return nil
}

// Conversations returns a copy of the current list.
func (p *ConversationPoller) Conversations() []api.Conversation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.convs)
}

// Find returns the conversation with the given wa_id.
func (p *ConversationPoller) Find(waID string) (api.Conversation, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.convs {
		if c.WaID == waID {
			return c, true
		}
	}
	return api.Conversation{}, false
}
