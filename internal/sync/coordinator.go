package sync

import (
	"context"
	stdsync "sync"

	"go.uber.org/zap"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/config"
	"github.com/matheus3301/wppclone/internal/status"
)

// Coordinator owns the selection and ties the conversation poller to the
// active thread. Views read from it and call its methods; they never talk to
// the backend directly.
type Coordinator struct {
	settings config.Settings
	logger   *zap.Logger

	convs  *ConversationPoller
	thread *Thread

	mu           stdsync.Mutex
	autoSelected bool
	started      bool
}

// NewCoordinator wires the pollers for one session.
func NewCoordinator(backend Backend, settings config.Settings, b *bus.Bus, link *status.Machine, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		settings: settings,
		logger:   logger,
		convs:    NewConversationPoller(backend, settings.ConversationPoll, b, link, logger.Named("conversations")),
		thread: NewThread(backend, ThreadOptions{
			Interval:    settings.MessagePoll,
			SelfID:      settings.SelfID,
			SendFailure: settings.SendFailure,
			Bus:         b,
			Link:        link,
			Logger:      logger.Named("thread"),
		}),
	}
	c.convs.OnUpdate(c.maybeAutoSelect)
	return c
}

// Start begins polling the conversation list. Message polling starts with
// the first selection.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.thread.Bind(ctx)
	c.convs.Start(ctx)
	c.logger.Info("polling started",
		zap.Duration("conversations_every", c.settings.ConversationPoll),
		zap.Duration("messages_every", c.settings.MessagePoll),
	)
}

// Close stops both pollers and waits for them to exit.
func (c *Coordinator) Close() {
	c.convs.Stop()
	c.thread.Close()
}

// maybeAutoSelect selects the first conversation of the first non-empty list
// when nothing has been selected yet.
func (c *Coordinator) maybeAutoSelect(convs []api.Conversation) {
	if !c.settings.AutoSelectFirst || len(convs) == 0 {
		return
	}
	c.mu.Lock()
	if c.autoSelected {
		c.mu.Unlock()
		return
	}
	c.autoSelected = true
	c.mu.Unlock()

	first := convs[0]
	if c.thread.SelectIfIdle(Selection{WaID: first.WaID, Name: first.DisplayName()}) {
		c.logger.Debug("auto-selected first conversation", zap.String("wa_id", first.WaID))
	}
}

// Select makes waID the active conversation.
func (c *Coordinator) Select(waID string) {
	name := waID
	if conv, ok := c.convs.Find(waID); ok {
		name = conv.DisplayName()
	}
	c.mu.Lock()
	c.autoSelected = true
	c.mu.Unlock()
	c.thread.Select(Selection{WaID: waID, Name: name})
}

// Deselect stops message polling and clears the active conversation.
func (c *Coordinator) Deselect() {
	c.thread.Select(Selection{})
}

// Selection returns the active conversation, zero if none.
func (c *Coordinator) Selection() Selection {
	return c.thread.Selection()
}

// Conversations returns the latest conversation list.
func (c *Coordinator) Conversations() []api.Conversation {
	return c.convs.Conversations()
}

// Messages returns the visible messages of the active conversation.
func (c *Coordinator) Messages() []api.Message {
	return c.thread.Messages()
}

// Send posts text to the active conversation.
func (c *Coordinator) Send(ctx context.Context, text string) (string, error) {
	return c.thread.Send(ctx, text)
}

// Delete removes a message of the active conversation.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	return c.thread.Delete(ctx, id)
}

// Refresh fetches the conversation list and the active thread right away.
func (c *Coordinator) Refresh(ctx context.Context) {
	_ = c.convs.Refresh(ctx)
	c.thread.Refresh(ctx)
}

// IsOwn reports whether m was sent by this client.
func (c *Coordinator) IsOwn(m api.Message) bool {
	return c.thread.IsOwn(m)
}

// SelfID returns the identity used for outgoing messages.
func (c *Coordinator) SelfID() string {
	return c.settings.SelfID
}
