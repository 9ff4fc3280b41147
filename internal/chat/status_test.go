package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTickMarker(t *testing.T) {
	tests := []struct {
		status Status
		want   Marker
	}{
		{Sending, Marker{Glyph: "…", Emphasis: EmphasisPending}},
		{Sent, Marker{Glyph: "✓"}},
		{Delivered, Marker{Glyph: "✓✓"}},
		{Read, Marker{Glyph: "✓✓", Emphasis: EmphasisSeen}},
		{Failed, Marker{Glyph: "!", Emphasis: EmphasisError}},
		{Status("queued"), Marker{}},
		{Status(""), Marker{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, TickMarker(tt.status))
		})
	}
}

func TestReadAndDeliveredShareGlyphButNotEmphasis(t *testing.T) {
	d, r := TickMarker(Delivered), TickMarker(Read)
	assert.Equal(t, d.Glyph, r.Glyph)
	assert.NotEqual(t, d.Emphasis, r.Emphasis)
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, Delivered, ParseStatus(" Delivered "))
	assert.Equal(t, Status("weird"), ParseStatus("weird"))
	assert.True(t, TickMarker(ParseStatus("weird")).IsZero())
}

func TestStatusUnmarshalText(t *testing.T) {
	var s Status
	assert.NoError(t, s.UnmarshalText([]byte(" READ")))
	assert.Equal(t, Read, s)
	assert.Equal(t, EmphasisSeen, TickMarker(s).Emphasis)
}

func TestTempIDs(t *testing.T) {
	a, b := NewTempID(), NewTempID()
	assert.True(t, IsTemp(a))
	assert.NotEqual(t, a, b)
	assert.False(t, IsTemp("42"))
	assert.False(t, IsTemp("template"))
}
