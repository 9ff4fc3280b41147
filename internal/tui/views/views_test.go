package views

import (
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/status"
	"github.com/matheus3301/wppclone/internal/tui/ui"
)

func conv(waID, name, body string) api.Conversation {
	return api.Conversation{
		WaID: waID,
		LastMessage: &api.LastMessage{
			Name:      name,
			Body:      body,
			Timestamp: api.At(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)),
		},
	}
}

func TestConversationListFilter(t *testing.T) {
	cl := NewConversationList(ui.DefaultTheme())
	cl.Update([]api.Conversation{
		conv("5511999990001", "Alice", "see you"),
		conv("5511999990002", "Bob", "lunch?"),
		{WaID: "5511999990003"},
	})

	if got := cl.ConversationByIndex(3); got != "5511999990003" {
		t.Errorf("ConversationByIndex(3) = %q", got)
	}
	if got := cl.ConversationByIndex(4); got != "" {
		t.Errorf("ConversationByIndex(4) = %q, want empty", got)
	}

	cl.SetFilter("LUNCH")
	if got := cl.ConversationByIndex(1); got != "5511999990002" {
		t.Errorf("filtered first = %q, want Bob", got)
	}
	if got := cl.ConversationByIndex(2); got != "" {
		t.Errorf("filter kept %q", got)
	}

	cl.SetFilter("0003")
	if got := cl.ConversationByIndex(1); got != "5511999990003" {
		t.Errorf("wa_id filter = %q", got)
	}

	cl.ClearFilter()
	if cl.Filter() != "" || cl.ConversationByIndex(3) == "" {
		t.Error("ClearFilter did not restore the list")
	}
}

func TestConversationListActiveRow(t *testing.T) {
	cl := NewConversationList(ui.DefaultTheme())
	cl.Update([]api.Conversation{conv("1", "Alice", "hi"), conv("2", "Bob", "yo")})
	cl.SetActive("2")

	if got := cl.SelectedConversation(); got != "1" {
		t.Errorf("cursor moved to %q, want it to stay on 1", got)
	}
	if text := cl.GetCell(2, 0).Text; !strings.HasPrefix(text, "▸") {
		t.Errorf("active row = %q, want marker", text)
	}
	if text := cl.GetCell(1, 0).Text; strings.HasPrefix(text, "▸") {
		t.Errorf("inactive row marked: %q", text)
	}

	// Reordered list keeps the cursor on the same conversation.
	cl.Update([]api.Conversation{conv("2", "Bob", "yo"), conv("1", "Alice", "hi")})
	if got := cl.SelectedConversation(); got != "1" {
		t.Errorf("cursor = %q after reorder, want 1", got)
	}
}

func TestMessageThreadMarkers(t *testing.T) {
	isOwn := func(m api.Message) bool { return m.From == "me" }
	mt := NewMessageThread(ui.DefaultTheme(), isOwn)
	mt.SetConversation("1", "Alice")
	mt.Update([]api.Message{
		{ID: "a", From: "1", Body: "hello", Status: chat.Read},
		{ID: "b", From: "me", Body: "hi", Status: chat.Read},
		{ID: "temp-x", From: "me", Body: "pending", Status: chat.Sending},
		{ID: "c", From: "me", Body: "odd", Status: chat.Status("queued")},
	})

	cells := mt.Messages()
	if got := cells.GetCell(0, 3).Text; got != "" {
		t.Errorf("inbound marker = %q, want none", got)
	}
	if got := cells.GetCell(1, 3).Text; got != "✓✓" {
		t.Errorf("read marker = %q", got)
	}
	if got := cells.GetCell(2, 3).Text; got != "…" {
		t.Errorf("sending marker = %q", got)
	}
	if got := cells.GetCell(3, 3).Text; got != "" {
		t.Errorf("unknown status marker = %q", got)
	}
	if got := cells.GetCell(1, 1).Text; got != "You" {
		t.Errorf("own sender = %q", got)
	}
	if got := mt.SelectedMessage(); got != "c" {
		t.Errorf("cursor = %q, want newest", got)
	}
}

func TestMessageThreadSelectedOwnMessage(t *testing.T) {
	isOwn := func(m api.Message) bool { return m.From == "me" }
	mt := NewMessageThread(ui.DefaultTheme(), isOwn)
	if id, own := mt.SelectedOwnMessage(); id != "" || own {
		t.Errorf("empty thread = %q, %v", id, own)
	}

	mt.SetConversation("1", "Alice")
	mt.Update([]api.Message{
		{ID: "b", From: "me", Body: "hi", Status: chat.Sent},
		{ID: "a", From: "1", Body: "hello"},
	})
	if id, own := mt.SelectedOwnMessage(); id != "a" || own {
		t.Errorf("inbound row = %q, %v; want a, not own", id, own)
	}

	mt.Messages().Select(0, 0)
	if id, own := mt.SelectedOwnMessage(); id != "b" || !own {
		t.Errorf("own row = %q, %v; want b, own", id, own)
	}
}

func TestMessageThreadSubmit(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme(), nil)
	var sent []string
	mt.SetOnSend(func(text string) { sent = append(sent, text) })

	mt.Composer().SetText("   ")
	mt.submit()
	if len(sent) != 0 || mt.Composer().GetText() != "   " {
		t.Errorf("blank input submitted: %v", sent)
	}

	mt.Composer().SetText("hello")
	mt.submit()
	if len(sent) != 1 || sent[0] != "hello" {
		t.Errorf("sent = %v", sent)
	}
	if mt.Composer().GetText() != "" {
		t.Error("composer not cleared")
	}
}

func TestMessageThreadSwitchClears(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme(), nil)
	mt.SetConversation("1", "Alice")
	mt.Update([]api.Message{{ID: "a", Body: "x"}})
	mt.SetConversation("2", "Bob")
	if mt.SelectedMessage() != "" || mt.Messages().GetRowCount() != 0 {
		t.Error("previous conversation still shown")
	}
	if mt.Conversation() != "2" || mt.Name() != "Bob" {
		t.Errorf("conversation = %q name = %q", mt.Conversation(), mt.Name())
	}
}

func TestChatLink(t *testing.T) {
	if got := chatLink("+55 (11) 99999-0001"); got != "https://wa.me/5511999990001" {
		t.Errorf("chatLink = %q", got)
	}
	if got := chatLink("me"); got != "" {
		t.Errorf("chatLink(me) = %q, want empty", got)
	}
	if qr := renderQR("https://wa.me/1"); !strings.Contains(qr, "█") {
		t.Error("renderQR produced no modules")
	}
}

func TestStatusBar(t *testing.T) {
	sb := NewStatusBar(ui.DefaultTheme())
	sb.now = func() time.Time { return time.Date(2026, 1, 1, 12, 5, 0, 0, time.Local) }
	sb.SetSession("main")
	sb.SetLink(status.Degraded)
	sb.SetConversation("Alice")

	text := sb.GetText(true)
	for _, want := range []string{"main", "DEGRADED", "Alice", "12:05"} {
		if !strings.Contains(text, want) {
			t.Errorf("status bar %q missing %q", text, want)
		}
	}
}

func TestSanitizeAndFormat(t *testing.T) {
	if got := sanitizeForTerminal("👍🏽 ok"); got != "👍 ok" {
		t.Errorf("sanitize = %q", got)
	}
	if got := oneLine("a\n  b\tc"); got != "a b c" {
		t.Errorf("oneLine = %q", got)
	}
	now := time.Date(2026, 5, 2, 18, 0, 0, 0, time.Local)
	if got := formatTimestamp(time.Date(2026, 5, 2, 8, 7, 0, 0, time.Local), now); got != "08:07" {
		t.Errorf("today = %q", got)
	}
	if got := formatTimestamp(time.Date(2026, 4, 30, 8, 7, 0, 0, time.Local), now); got != "04/30" {
		t.Errorf("older = %q", got)
	}
	if got := formatTimestamp(time.Time{}, now); got != "" {
		t.Errorf("zero = %q", got)
	}
}
