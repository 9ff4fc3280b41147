package sync

import (
	"context"
	"errors"
	"strings"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/config"
	"github.com/matheus3301/wppclone/internal/status"
)

// ErrNoSelection is returned by Send when no conversation is active.
var ErrNoSelection = errors.New("no conversation selected")

type outgoingState int

const (
	outgoingPending outgoingState = iota
	outgoingConfirmed
	outgoingFailed
)

// outgoing is an optimistic message keyed by its temporary id.
type outgoing struct {
	tempID string
	msg    api.Message
	state  outgoingState
	// canonicalID is the server id once the backend echoed the message.
	canonicalID string
	// confirmedAt is the fetch counter when the send succeeded. A poll
	// issued after it is authoritative for this message.
	confirmedAt uint64
}

// ThreadOptions configures a Thread.
type ThreadOptions struct {
	Interval    time.Duration
	SelfID      string
	SendFailure config.SendFailure
	Bus         *bus.Bus
	Link        *status.Machine
	Logger      *zap.Logger
}

// Thread polls the messages of the selected conversation and overlays the
// optimistic sends that the server has not reported yet.
//
// The visible list is the latest server snapshot, minus ids deleted locally,
// plus every unresolved outgoing message whose canonical id the snapshot does
// not contain. Reconciliation therefore only depends on ids, so a poll that
// lands before or after the send response yields the same single entry.
type Thread struct {
	backend Backend
	opts    ThreadOptions
	logger  *zap.Logger

	mu       stdsync.Mutex
	base     context.Context
	sel      Selection
	epoch    uint64
	snapshot []api.Message
	pending  []*outgoing
	// tombstones hide locally deleted ids. The value is the fetch counter
	// when the delete request resolved, zero while it is in flight.
	tombstones map[string]uint64
	issued     uint64
	applied    uint64

	cancel context.CancelFunc
	done   chan struct{}
	wg     stdsync.WaitGroup
}

// NewThread creates an idle thread; nothing is polled until Select.
func NewThread(backend Backend, opts ThreadOptions) *Thread {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SelfID == "" {
		opts.SelfID = config.DefaultSelfID
	}
	if opts.SendFailure == "" {
		opts.SendFailure = config.MarkFailed
	}
	if opts.Interval <= 0 {
		opts.Interval = config.DefaultMessagePoll
	}
	return &Thread{
		backend:    backend,
		opts:       opts,
		logger:     opts.Logger,
		base:       context.Background(),
		tombstones: make(map[string]uint64),
	}
}

// Bind sets the parent context of future poll loops.
func (t *Thread) Bind(ctx context.Context) {
	t.mu.Lock()
	t.base = ctx
	t.mu.Unlock()
}

// Selection returns the conversation being polled.
func (t *Thread) Selection() Selection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sel
}

// Select switches to another conversation. The previous poll loop is
// cancelled and has exited before the new one starts; local message state is
// reset. Selecting the current conversation again only updates its name.
// A zero Selection stops polling.
func (t *Thread) Select(sel Selection) {
	t.switchTo(sel, false)
}

// SelectIfIdle selects sel only when no conversation is selected, checking
// and switching under one lock. It reports whether sel was selected.
func (t *Thread) SelectIfIdle(sel Selection) bool {
	return t.switchTo(sel, true)
}

func (t *Thread) switchTo(sel Selection, onlyIfIdle bool) bool {
	t.mu.Lock()
	if onlyIfIdle && !t.sel.IsZero() {
		t.mu.Unlock()
		return false
	}
	if sel.WaID == t.sel.WaID && t.cancel != nil {
		t.sel.Name = sel.Name
		t.mu.Unlock()
		return true
	}
	prevCancel, prevDone := t.cancel, t.done
	t.resetLocked(sel)

	var ctx context.Context
	var done chan struct{}
	if !sel.IsZero() {
		ctx, t.cancel = context.WithCancel(t.base)
		done = make(chan struct{})
		t.done = done
	}
	epoch := t.epoch
	t.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	t.opts.Bus.Emit(bus.SelectionChanged, sel)
	t.opts.Bus.Emit(bus.MessagesUpdated, sel.WaID)

	if ctx != nil {
		go t.loop(ctx, epoch, sel.WaID, done)
	}
	return true
}

func (t *Thread) resetLocked(sel Selection) {
	t.sel = sel
	t.epoch++
	t.snapshot = nil
	t.pending = nil
	t.tombstones = make(map[string]uint64)
	t.issued = 0
	t.applied = 0
	t.cancel = nil
	t.done = nil
}

func (t *Thread) loop(ctx context.Context, epoch uint64, waID string, done chan struct{}) {
	defer close(done)
	t.poll(ctx, epoch, waID)

	ticker := time.NewTicker(t.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.poll(ctx, epoch, waID)
		case <-ctx.Done():
			return
		}
	}
}

// Refresh polls the current conversation once, outside the regular tick.
func (t *Thread) Refresh(ctx context.Context) {
	t.mu.Lock()
	epoch, waID := t.epoch, t.sel.WaID
	t.mu.Unlock()
	if waID == "" {
		return
	}
	t.poll(ctx, epoch, waID)
}

func (t *Thread) poll(ctx context.Context, epoch uint64, waID string) {
	t.mu.Lock()
	if epoch != t.epoch {
		t.mu.Unlock()
		return
	}
	t.issued++
	seq := t.issued
	t.mu.Unlock()

	msgs, err := t.backend.ListMessages(ctx, waID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		t.logger.Warn("load messages failed", zap.String("wa_id", waID), zap.Error(err))
		t.report(err)
		return
	}
	t.report(nil)

	t.mu.Lock()
	if epoch != t.epoch || seq <= t.applied {
		t.mu.Unlock()
		t.logger.Debug("dropping stale messages response", zap.String("wa_id", waID), zap.Uint64("seq", seq))
		return
	}
	t.applied = seq
	t.snapshot = msgs

	present := make(map[string]bool, len(msgs))
	for _, m := range msgs {
		present[m.ID] = true
	}
	kept := t.pending[:0]
	for _, o := range t.pending {
		if o.state == outgoingConfirmed && (present[o.canonicalID] || seq > o.confirmedAt) {
			continue
		}
		kept = append(kept, o)
	}
	clear(t.pending[len(kept):])
	t.pending = kept

	for id, resolvedAt := range t.tombstones {
		if resolvedAt != 0 && seq > resolvedAt {
			delete(t.tombstones, id)
		}
	}
	t.mu.Unlock()

	t.opts.Bus.Emit(bus.MessagesUpdated, waID)
}

// Messages returns the visible messages of the active conversation.
func (t *Thread) Messages() []api.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]api.Message, 0, len(t.snapshot)+len(t.pending))
	seen := make(map[string]bool, len(t.snapshot))
	for _, m := range t.snapshot {
		if _, gone := t.tombstones[m.ID]; gone {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	for _, o := range t.pending {
		if o.canonicalID != "" && seen[o.canonicalID] {
			continue
		}
		if _, gone := t.tombstones[o.msg.ID]; gone {
			continue
		}
		seen[o.msg.ID] = true
		out = append(out, o.msg)
	}
	return out
}

// Send adds an optimistic message and posts it. Whitespace-only text is a
// no-op and returns an empty id. Failures are logged and reflected on the
// message according to the send failure policy; the error is returned for
// callers that want to surface it.
func (t *Thread) Send(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	t.mu.Lock()
	if t.sel.IsZero() {
		t.mu.Unlock()
		return "", ErrNoSelection
	}
	epoch, waID := t.epoch, t.sel.WaID
	o := &outgoing{
		tempID: chat.NewTempID(),
		state:  outgoingPending,
	}
	o.msg = api.Message{
		ID:        o.tempID,
		WaID:      waID,
		From:      t.opts.SelfID,
		Body:      text,
		Timestamp: api.At(time.Now()),
		Status:    chat.Sending,
	}
	t.pending = append(t.pending, o)
	t.wg.Add(1)
	t.mu.Unlock()
	defer t.wg.Done()

	t.opts.Bus.Emit(bus.MessagesUpdated, waID)

	created, err := t.backend.SendMessage(ctx, waID, text)
	t.report(err)
	if err != nil {
		t.logger.Warn("send message failed", zap.String("wa_id", waID), zap.String("temp_id", o.tempID), zap.Error(err))
	}

	t.mu.Lock()
	if epoch != t.epoch {
		t.mu.Unlock()
		return o.tempID, err
	}
	idx := t.indexLocked(o.tempID)
	if idx < 0 {
		// Deleted locally while in flight; the next poll shows what the
		// server actually kept.
		t.mu.Unlock()
		return o.tempID, err
	}

	if err != nil {
		if t.opts.SendFailure == config.RemoveFailed {
			t.pending = append(t.pending[:idx], t.pending[idx+1:]...)
		} else {
			o.state = outgoingFailed
			o.msg.Status = chat.Failed
		}
		t.mu.Unlock()
		t.opts.Bus.Emit(bus.SendFailed, SendFailure{WaID: waID, TempID: o.tempID, Err: err})
		t.opts.Bus.Emit(bus.MessagesUpdated, waID)
		return o.tempID, err
	}

	o.state = outgoingConfirmed
	o.confirmedAt = t.issued
	if created != nil {
		canonical := *created
		if canonical.WaID == "" {
			canonical.WaID = waID
		}
		if canonical.Status == "" {
			canonical.Status = chat.Sent
		}
		o.canonicalID = canonical.ID
		o.msg = canonical
		for _, m := range t.snapshot {
			if m.ID == canonical.ID {
				t.pending = append(t.pending[:idx], t.pending[idx+1:]...)
				break
			}
		}
	} else {
		o.msg.Status = chat.Sent
	}
	t.mu.Unlock()

	t.opts.Bus.Emit(bus.MessagesUpdated, waID)
	return o.tempID, nil
}

// SendFailure is the payload of bus.SendFailed.
type SendFailure struct {
	WaID   string
	TempID string
	Err    error
}

// Delete removes a message locally and, unless it only ever existed on the
// client, asks the backend to delete it. A failed request is logged and
// returned; the local removal stands until the next poll re-syncs.
func (t *Thread) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	temp := chat.IsTemp(id)

	t.mu.Lock()
	epoch, waID := t.epoch, t.sel.WaID
	kept := t.pending[:0]
	for _, o := range t.pending {
		if o.tempID == id || o.canonicalID == id {
			continue
		}
		kept = append(kept, o)
	}
	clear(t.pending[len(kept):])
	t.pending = kept
	if !temp {
		t.tombstones[id] = 0
	}
	t.mu.Unlock()

	t.opts.Bus.Emit(bus.MessagesUpdated, waID)
	if temp {
		return nil
	}

	err := t.backend.DeleteMessage(ctx, id)
	t.report(err)

	t.mu.Lock()
	if epoch == t.epoch {
		if _, ok := t.tombstones[id]; ok {
			t.tombstones[id] = t.issued
		}
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.Warn("delete message failed", zap.String("wa_id", waID), zap.String("msg_id", id), zap.Error(err))
		t.opts.Bus.Emit(bus.DeleteFailed, DeleteFailure{WaID: waID, ID: id, Err: err})
		return err
	}
	return nil
}

// DeleteFailure is the payload of bus.DeleteFailed.
type DeleteFailure struct {
	WaID string
	ID   string
	Err  error
}

// IsOwn reports whether m was sent by this client's identity.
func (t *Thread) IsOwn(m api.Message) bool {
	return m.From == t.opts.SelfID
}

// Close stops polling and waits for in-flight sends to settle.
func (t *Thread) Close() {
	t.Select(Selection{})
	t.wg.Wait()
}

func (t *Thread) indexLocked(tempID string) int {
	for i, o := range t.pending {
		if o.tempID == tempID {
			return i
		}
	}
	return -1
}

func (t *Thread) report(err error) {
	if t.opts.Link != nil {
		t.opts.Link.Report(err)
	}
}
