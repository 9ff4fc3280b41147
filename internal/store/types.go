package store

// Contact is a conversation partner. Its name labels the conversation.
type Contact struct {
	WaID string
	Name string
}

// Message is a stored message. Timestamps are unix milliseconds.
type Message struct {
	ID        string
	WaID      string
	From      string
	Name      string
	Body      string
	Status    string
	Timestamp int64
	// StatusAt is when Status last changed.
	StatusAt int64
}

// Conversation is a wa_id with its newest message.
type Conversation struct {
	WaID string
	Name string
	Last Message
}
