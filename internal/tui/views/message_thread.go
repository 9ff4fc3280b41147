package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/tui/ui"
)

// MessageThread displays the messages of the open conversation and a
// composer for new ones.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.Table
	composer *tview.InputField
	title    string
	waID     string
	rows     []api.Message
	isOwn    func(api.Message) bool
	onSend   func(text string)
	now      func() time.Time
}

// NewMessageThread creates a new message thread view. isOwn decides which
// messages carry a delivery marker.
func NewMessageThread(theme *ui.Theme, isOwn func(api.Message) bool) *MessageThread {
	messages := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Compose (i to focus) ")
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 3, 0, false)

	if isOwn == nil {
		isOwn = func(api.Message) bool { return false }
	}
	mt := &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
		isOwn:    isOwn,
		now:      time.Now,
	}

	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			mt.submit()
		}
	})

	return mt
}

// submit clears the composer and hands the text over. Blank input is
// left untouched.
func (mt *MessageThread) submit() {
	text := mt.composer.GetText()
	if strings.TrimSpace(text) == "" {
		return
	}
	mt.composer.SetText("")
	if mt.onSend != nil {
		mt.onSend(text)
	}
}

// Name implements Component.
func (mt *MessageThread) Name() string {
	if mt.title != "" {
		return mt.title
	}
	return "Messages"
}

// Hints implements Component.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "x", Description: "Delete"},
		{Key: "d", Description: "Details"},
		{Key: "Tab", Description: "List"},
		{Key: "Esc", Description: "Back"},
		{Key: "?", Description: "Help"},
	}
}

// SetConversation switches the thread header to another conversation and
// empties the table until the first poll arrives.
func (mt *MessageThread) SetConversation(waID, name string) {
	if waID != mt.waID {
		mt.rows = nil
		mt.messages.Clear()
		mt.composer.SetText("")
	}
	mt.waID = waID
	mt.title = name
	if name == "" {
		mt.messages.SetTitle(" Messages ")
		return
	}
	mt.messages.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(name))))
}

// Conversation returns the wa_id of the open conversation.
func (mt *MessageThread) Conversation() string {
	return mt.waID
}

// SetOnSend sets the callback when a message is sent.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// Update refreshes the table with new messages in chronological order.
// The cursor follows the newest message unless the user moved it up.
func (mt *MessageThread) Update(msgs []api.Message) {
	row, _ := mt.messages.GetSelection()
	follow := len(mt.rows) == 0 || row >= len(mt.rows)-1
	selected := mt.SelectedMessage()

	mt.rows = msgs
	mt.messages.Clear()
	now := mt.now()
	for i, m := range msgs {
		mt.renderRow(i, m, now)
	}

	if len(msgs) == 0 {
		return
	}
	if follow {
		mt.messages.Select(len(msgs)-1, 0)
		mt.messages.ScrollToEnd()
		return
	}
	for i, m := range msgs {
		if m.ID == selected {
			mt.messages.Select(i, 0)
			return
		}
	}
	mt.messages.Select(len(msgs)-1, 0)
}

func (mt *MessageThread) renderRow(row int, m api.Message, now time.Time) {
	own := mt.isOwn(m)

	sender := m.Name
	if sender == "" {
		sender = m.From
	}
	color := mt.theme.FgColor
	if own {
		sender = "You"
		color = mt.theme.OwnFgColor
	}

	mt.messages.SetCell(row, 0, tview.NewTableCell(formatTimestamp(m.Timestamp.Time, now)).
		SetTextColor(mt.theme.CounterColor))
	mt.messages.SetCell(row, 1, tview.NewTableCell(tview.Escape(sanitizeForTerminal(sender))).
		SetTextColor(color).
		SetAttributes(tcell.AttrBold).
		SetMaxWidth(20))
	mt.messages.SetCell(row, 2, tview.NewTableCell(tview.Escape(sanitizeForTerminal(oneLine(m.Body)))).
		SetTextColor(color).
		SetExpansion(1))

	marker := mt.markerFor(m)
	cell := tview.NewTableCell(marker.Glyph).SetAlign(tview.AlignRight)
	if !marker.IsZero() {
		cell.SetTextColor(mt.theme.TickColorFor(marker.Emphasis))
		if marker.Emphasis == chat.EmphasisSeen {
			cell.SetAttributes(tcell.AttrBold)
		}
	}
	mt.messages.SetCell(row, 3, cell)
}

// markerFor returns the delivery marker of m. Inbound messages get none.
func (mt *MessageThread) markerFor(m api.Message) chat.Marker {
	if !mt.isOwn(m) {
		return chat.Marker{}
	}
	return chat.TickMarker(m.Status)
}

// SelectedMessage returns the id of the highlighted message.
func (mt *MessageThread) SelectedMessage() string {
	row, _ := mt.messages.GetSelection()
	if row < 0 || row >= len(mt.rows) {
		return ""
	}
	return mt.rows[row].ID
}

// SelectedOwnMessage returns the message under the cursor and whether it was
// sent by this client. Only own messages may be deleted.
func (mt *MessageThread) SelectedOwnMessage() (string, bool) {
	row, _ := mt.messages.GetSelection()
	if row < 0 || row >= len(mt.rows) {
		return "", false
	}
	m := mt.rows[row]
	return m.ID, mt.isOwn(m)
}

// Messages returns the message table (for focus management).
func (mt *MessageThread) Messages() *tview.Table {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}
