// Package sync keeps local conversation and message state in step with the
// chat backend by polling, and applies sends and deletes optimistically.
package sync

import (
	"context"

	"github.com/matheus3301/wppclone/internal/api"
)

// Backend is the part of the REST API the sync layer consumes.
// *api.Client implements it.
type Backend interface {
	ListConversations(ctx context.Context) ([]api.Conversation, error)
	ListMessages(ctx context.Context, waID string) ([]api.Message, error)
	SendMessage(ctx context.Context, waID, body string) (*api.Message, error)
	DeleteMessage(ctx context.Context, id string) error
}

// Selection is the active conversation.
type Selection struct {
	WaID string
	Name string
}

// IsZero reports whether no conversation is selected.
func (s Selection) IsZero() bool { return s.WaID == "" }
