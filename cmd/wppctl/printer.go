package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/chat"
)

// printer renders command results as text or JSON.
type printer struct {
	w      io.Writer
	json   bool
	selfID string
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) conversations(convs []api.Conversation) error {
	if p.json {
		return p.encode(convs)
	}
	if len(convs) == 0 {
		_, err := fmt.Fprintln(p.w, "No conversations.")
		return err
	}
	cyan := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	for _, c := range convs {
		var when string
		if c.LastMessage != nil && !c.LastMessage.Timestamp.IsZero() {
			when = c.LastMessage.Timestamp.Local().Format(time.DateTime)
		}
		_, _ = cyan.Fprintf(p.w, "%-20s", c.DisplayName())
		_, _ = fmt.Fprintf(p.w, " %-16s ", c.WaID)
		_, _ = dim.Fprintf(p.w, "%-19s", when)
		_, _ = fmt.Fprintf(p.w, " %s\n", c.Preview())
	}
	return nil
}

func (p *printer) messages(msgs []api.Message) error {
	if p.json {
		return p.encode(msgs)
	}
	if len(msgs) == 0 {
		_, err := fmt.Fprintln(p.w, "No messages.")
		return err
	}
	dim := color.New(color.Faint)
	green := color.New(color.FgGreen)
	for _, m := range msgs {
		_, _ = dim.Fprintf(p.w, "%s ", m.Timestamp.Local().Format(time.DateTime))
		own := m.From == p.selfID
		sender := m.Name
		if sender == "" {
			sender = m.From
		}
		if own {
			_, _ = green.Fprintf(p.w, "%-12s", "you")
		} else {
			_, _ = fmt.Fprintf(p.w, "%-12s", sender)
		}
		_, _ = fmt.Fprintf(p.w, " %s", m.Body)
		if own {
			if marker := chat.TickMarker(m.Status); !marker.IsZero() {
				_, _ = markerColor(marker).Fprintf(p.w, " %s", marker.Glyph)
			}
		}
		_, _ = dim.Fprintf(p.w, "  [%s]\n", m.ID)
	}
	return nil
}

func (p *printer) sent(m *api.Message) error {
	if p.json {
		if m == nil {
			return p.encode(api.SendEnvelope{OK: true})
		}
		return p.encode(m)
	}
	if m == nil {
		color.New(color.FgGreen).Fprintln(p.w, "Sent.")
		return nil
	}
	color.New(color.FgGreen).Fprintf(p.w, "Sent %s", m.ID)
	if marker := chat.TickMarker(m.Status); !marker.IsZero() {
		_, _ = markerColor(marker).Fprintf(p.w, " %s", marker.Glyph)
	}
	_, err := fmt.Fprintln(p.w)
	return err
}

func (p *printer) deleted(id string) error {
	if p.json {
		return p.encode(map[string]any{"ok": true, "id": id})
	}
	_, err := color.New(color.FgGreen).Fprintf(p.w, "Deleted %s\n", id)
	return err
}

func markerColor(m chat.Marker) *color.Color {
	switch m.Emphasis {
	case chat.EmphasisPending:
		return color.New(color.Faint)
	case chat.EmphasisSeen:
		return color.New(color.FgCyan, color.Bold)
	case chat.EmphasisError:
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}
