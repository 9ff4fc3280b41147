package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/matheus3301/wppclone/internal/status"
)

func TestPagesStack(t *testing.T) {
	p := NewPages()
	for _, name := range []string{"Conversations", "Help", "Details"} {
		p.AddPage(name, NewLogo(DefaultTheme()), true, false)
	}

	var last []string
	p.SetOnChange(func(stack []string) { last = stack })

	p.Reset("Conversations")
	p.Push("Help")
	p.Push("Help")
	if p.Depth() != 2 {
		t.Fatalf("depth = %d, want 2 (duplicate push ignored)", p.Depth())
	}
	if !p.Contains("Conversations") || p.Contains("Details") {
		t.Errorf("unexpected stack %v", p.Stack())
	}

	if got := p.Pop(); got != "Help" {
		t.Errorf("Pop() = %q, want Help", got)
	}
	if got := p.Pop(); got != "" {
		t.Errorf("root page popped: %q", got)
	}
	if p.Current() != "Conversations" {
		t.Errorf("current = %q", p.Current())
	}
	if len(last) != 1 || last[0] != "Conversations" {
		t.Errorf("onChange stack = %v", last)
	}
}

func TestPromptComplete(t *testing.T) {
	p := NewPrompt(DefaultTheme())
	p.SetCommands([]string{"quit", "open", "help", "refresh"})

	got := p.Complete("re")
	if len(got) != 1 || got[0] != "refresh" {
		t.Errorf("Complete(re) = %v", got)
	}
	if got := p.Complete("open 55"); got != nil {
		t.Errorf("completions offered for arguments: %v", got)
	}
	if got := p.Complete("help"); len(got) != 0 {
		t.Errorf("exact match should not be offered: %v", got)
	}
}

func TestFlashModel(t *testing.T) {
	f := NewFlashModel()
	if f.GetMessage() != nil {
		t.Fatal("new model should be empty")
	}

	f.Err("send failed", errors.New("boom"))
	m := f.GetMessage()
	if m == nil || m.Level != FlashErr || m.Text != "send failed: boom" {
		t.Fatalf("got %+v", m)
	}

	select {
	case w := <-f.Watch():
		if w.Text != m.Text {
			t.Errorf("watched %q", w.Text)
		}
	default:
		t.Error("no message on watch channel")
	}

	f.Clear()
	if f.Get() != "" {
		t.Errorf("Get() after Clear = %q", f.Get())
	}
}

func TestMenuLayoutColumns(t *testing.T) {
	m := NewMenu(DefaultTheme())
	var hints []MenuHint
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		hints = append(hints, MenuHint{Key: k, Description: "do " + k})
	}

	lines := strings.Split(m.layout(hints), "\n")
	if len(lines) != menuRows {
		t.Fatalf("got %d lines, want %d", len(lines), menuRows)
	}
	if !strings.Contains(lines[0], "<a>") || !strings.Contains(lines[0], "<g>") {
		t.Errorf("first row should hold a and g: %q", lines[0])
	}
}

func TestLogoFollowsLink(t *testing.T) {
	theme := DefaultTheme()
	l := NewLogo(theme)
	dot := func(s status.State) string { return "[" + ColorName(theme.LinkColor(s)) + "]●" }

	if !strings.Contains(l.GetText(false), dot(status.Connecting)) {
		t.Errorf("new logo not in connecting color: %q", l.GetText(false))
	}
	l.SetLink(status.Degraded)
	if !strings.Contains(l.GetText(false), dot(status.Degraded)) {
		t.Errorf("degraded logo: %q", l.GetText(false))
	}
	l.SetLink(status.Online)
	text := l.GetText(false)
	if !strings.Contains(text, dot(status.Online)) || strings.Count(text, "●") != 1 {
		t.Errorf("online logo: %q", text)
	}
}
