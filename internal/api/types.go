package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/matheus3301/wppclone/internal/chat"
)

// Timestamp decodes the time formats the backend has used over time:
// RFC3339 strings, numeric strings with unix seconds (webhook payloads) and
// JSON numbers in seconds or milliseconds.
type Timestamp struct {
	time.Time
}

// At wraps t as a Timestamp.
func At(t time.Time) Timestamp { return Timestamp{Time: t} }

// millisThreshold separates unix seconds from unix milliseconds.
const millisThreshold = 1e12

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			ts.Time = time.Time{}
			return nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			ts.Time = t
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("timestamp %q: unsupported format", s)
		}
		ts.Time = fromUnix(n)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("timestamp %s: %w", data, err)
	}
	ts.Time = fromUnix(int64(f))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339Nano))
}

func fromUnix(n int64) time.Time {
	if n >= millisThreshold {
		return time.UnixMilli(n)
	}
	return time.Unix(n, 0)
}

// LastMessage summarizes the newest message of a conversation.
type LastMessage struct {
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	Timestamp Timestamp `json:"timestamp"`
	From      string    `json:"from,omitempty"`
}

// Conversation is one entry of GET /conversations.
type Conversation struct {
	WaID        string       `json:"wa_id"`
	LastMessage *LastMessage `json:"lastMessage,omitempty"`
}

// DisplayName returns the contact name, falling back to the wa_id.
func (c Conversation) DisplayName() string {
	if c.LastMessage != nil && c.LastMessage.Name != "" {
		return c.LastMessage.Name
	}
	return c.WaID
}

// Preview returns the newest message body, or empty.
func (c Conversation) Preview() string {
	if c.LastMessage == nil {
		return ""
	}
	return c.LastMessage.Body
}

// Message is a single chat message.
type Message struct {
	ID        string      `json:"_id"`
	WaID      string      `json:"wa_id,omitempty"`
	From      string      `json:"from"`
	Name      string      `json:"name,omitempty"`
	Body      string      `json:"body"`
	Timestamp Timestamp   `json:"timestamp"`
	Status    chat.Status `json:"status"`
}

// SendRequest is the body of POST /conversations/{id}/messages.
type SendRequest struct {
	Body string `json:"body"`
}

// SendEnvelope is the wrapped form of the create response.
type SendEnvelope struct {
	OK      bool     `json:"ok"`
	Message *Message `json:"message"`
}

// decodeCreated accepts either a bare Message or a SendEnvelope. A nil
// message with a nil error means the backend did not echo the message.
func decodeCreated(data []byte) (*Message, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode created message: %w", err)
	}
	if _, ok := fields["message"]; ok {
		var env SendEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode created message: %w", err)
		}
		if env.Message == nil || env.Message.ID == "" {
			return nil, nil
		}
		return env.Message, nil
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode created message: %w", err)
	}
	if m.ID == "" {
		return nil, nil
	}
	return &m, nil
}
