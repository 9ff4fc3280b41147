package views

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rivo/tview"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/tui/ui"
)

// ConversationInfo shows the details of a conversation and a QR code that
// opens a chat with the contact on a phone.
type ConversationInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewConversationInfo creates a new conversation info view.
func NewConversationInfo(theme *ui.Theme) *ConversationInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Conversation Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ConversationInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Name implements Component.
func (ci *ConversationInfo) Name() string { return "Details" }

// Hints implements Component.
func (ci *ConversationInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// Update renders conversation details. messages is the number of messages
// currently loaded for it.
func (ci *ConversationInfo) Update(conv api.Conversation, messages int) {
	ci.Clear()
	if conv.WaID == "" {
		ci.SetTitle(" Conversation Details ")
		_, _ = fmt.Fprint(ci, "\n No conversation selected.")
		return
	}

	fg := ui.ColorName(ci.theme.FgColor)
	ct := ui.ColorName(ci.theme.CounterColor)

	lastActive := "-"
	last := "-"
	if conv.LastMessage != nil {
		if !conv.LastMessage.Timestamp.IsZero() {
			lastActive = conv.LastMessage.Timestamp.Local().Format("2006-01-02 15:04")
		}
		if conv.LastMessage.Body != "" {
			last = oneLine(conv.LastMessage.Body)
		}
	}

	name := tview.Escape(sanitizeForTerminal(conv.DisplayName()))
	link := chatLink(conv.WaID)
	text := fmt.Sprintf(
		"\n [%s::b]Name:[-:-:-]         [%s]%s[-]\n"+
			" [%s::b]wa_id:[-:-:-]        [%s]%s[-]\n"+
			" [%s::b]Messages:[-:-:-]     [%s]%d[-]\n"+
			" [%s::b]Last Active:[-:-:-]  [%s]%s[-]\n"+
			" [%s::b]Last Message:[-:-:-] [%s]%s[-]\n",
		fg, ct, name,
		fg, ct, tview.Escape(conv.WaID),
		fg, ct, messages,
		fg, ct, lastActive,
		fg, ct, tview.Escape(sanitizeForTerminal(last)),
	)
	if link != "" {
		text += fmt.Sprintf("\n [%s::b]Scan to open %s:[-:-:-]\n\n%s", fg, tview.Escape(link), renderQR(link))
	}

	_, _ = fmt.Fprint(ci, text)
	ci.SetTitle(fmt.Sprintf(" %s Details ", name))
	ci.ScrollToBeginning()
}

// chatLink returns the click-to-chat URL of a wa_id, or empty when the id
// has no digits to dial.
func chatLink(waID string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, waID)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits
}

// renderQR converts a string to a compact QR code using Unicode
// half-block characters. Two bitmap rows become one terminal line.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "  (QR generation failed: " + err.Error() + ")"
	}

	bitmap := qr.Bitmap()
	rows := len(bitmap)
	cols := 0
	if rows > 0 {
		cols = len(bitmap[0])
	}

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		sb.WriteString("  ")
		for x := 0; x < cols; x++ {
			top := bitmap[y][x]
			bot := y+1 < rows && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
