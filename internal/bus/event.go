package bus

import "time"

// Event kinds published by the sync layer.
const (
	ConversationsUpdated = "conversations.updated"
	SelectionChanged     = "selection.changed"
	MessagesUpdated      = "messages.updated"
	SendFailed           = "messages.send_failed"
	DeleteFailed         = "messages.delete_failed"
	LinkChanged          = "link.changed"
)

// Event kinds published by the development backend.
const (
	MessageStored    = "backend.message_stored"
	MessageRemoved   = "backend.message_removed"
	ReceiptsAdvanced = "backend.receipts_advanced"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
