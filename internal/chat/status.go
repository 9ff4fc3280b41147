package chat

import "strings"

// Status is the delivery state of a message.
type Status string

const (
	Sending   Status = "sending"
	Sent      Status = "sent"
	Delivered Status = "delivered"
	Read      Status = "read"
	Failed    Status = "failed"
)

// ParseStatus normalizes a backend status string. Unknown values are kept
// verbatim so they render without a marker.
func ParseStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

// UnmarshalText normalizes decoded statuses, so "Delivered" and " read"
// from older backends still get a marker.
func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}

// Emphasis distinguishes markers that share a glyph.
type Emphasis int

const (
	EmphasisNone Emphasis = iota
	EmphasisPending
	EmphasisSeen
	EmphasisError
)

// Marker is the tick glyph shown next to an own message.
type Marker struct {
	Glyph    string
	Emphasis Emphasis
}

// TickMarker maps a status to its marker. The zero Marker means no marker.
func TickMarker(s Status) Marker {
	switch s {
	case Sending:
		return Marker{Glyph: "…", Emphasis: EmphasisPending}
	case Sent:
		return Marker{Glyph: "✓"}
	case Delivered:
		return Marker{Glyph: "✓✓"}
	case Read:
		return Marker{Glyph: "✓✓", Emphasis: EmphasisSeen}
	case Failed:
		return Marker{Glyph: "!", Emphasis: EmphasisError}
	default:
		return Marker{}
	}
}

// IsZero reports whether the marker renders nothing.
func (m Marker) IsZero() bool { return m.Glyph == "" }
