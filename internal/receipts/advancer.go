// Package receipts simulates delivery receipts for messages stored by the
// development backend.
package receipts

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/store"
)

const (
	DefaultInterval = 500 * time.Millisecond
	DefaultDelay    = 3 * time.Second
)

// Store is the part of store.DB the advancer needs.
type Store interface {
	AdvanceStatus(from, status, next string, age time.Duration) ([]string, error)
}

var _ Store = (*store.DB)(nil)

// Advanced is the payload of bus.ReceiptsAdvanced.
type Advanced struct {
	IDs    []string
	Status chat.Status
}

// Advancer moves own messages sent -> delivered -> read, each step after
// the message has spent delay in the previous status.
type Advancer struct {
	db       Store
	selfID   string
	interval time.Duration
	delay    time.Duration
	bus      *bus.Bus
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewAdvancer creates an advancer for messages sent by selfID.
func NewAdvancer(db Store, selfID string, interval, delay time.Duration, b *bus.Bus, logger *zap.Logger) *Advancer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if delay < 0 {
		delay = DefaultDelay
	}
	return &Advancer{
		db:       db,
		selfID:   selfID,
		interval: interval,
		delay:    delay,
		bus:      b,
		logger:   logger,
	}
}

// Start begins advancing receipts on every tick.
func (a *Advancer) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})
	go a.loop(ctx)
}

// Stop stops the loop and waits for the current tick to finish.
func (a *Advancer) Stop() {
	if a.cancel != nil {
		a.cancel()
		<-a.done
	}
}

func (a *Advancer) loop(ctx context.Context) {
	defer close(a.done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.Tick()
		case <-ctx.Done():
			return
		}
	}
}

// Tick runs one advancement pass. Read is applied before delivered so a
// message moves at most one step per tick.
func (a *Advancer) Tick() {
	steps := []struct{ from, to chat.Status }{
		{chat.Delivered, chat.Read},
		{chat.Sent, chat.Delivered},
	}
	for _, step := range steps {
		ids, err := a.db.AdvanceStatus(a.selfID, string(step.from), string(step.to), a.delay)
		if err != nil {
			a.logger.Error("failed to advance receipts", zap.Error(err), zap.String("status", string(step.from)))
			continue
		}
		if len(ids) == 0 {
			continue
		}
		a.logger.Debug("receipts advanced", zap.Strings("ids", ids), zap.String("status", string(step.to)))
		a.bus.Emit(bus.ReceiptsAdvanced, Advanced{IDs: ids, Status: step.to})
	}
}
