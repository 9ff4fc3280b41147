package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/matheus3301/wppclone/internal/status"
	"github.com/matheus3301/wppclone/internal/tui/ui"
)

// StatusBar displays the session, the backend link and the open
// conversation.
type StatusBar struct {
	*tview.TextView
	theme        *ui.Theme
	session      string
	link         status.State
	conversation string
	now          func() time.Time
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	sb := &StatusBar{
		TextView: tv,
		theme:    theme,
		link:     status.Connecting,
		now:      time.Now,
	}
	sb.render()
	return sb
}

// SetSession updates the session name display.
func (sb *StatusBar) SetSession(name string) {
	sb.session = name
	sb.render()
}

// SetLink updates the backend link indicator.
func (sb *StatusBar) SetLink(s status.State) {
	sb.link = s
	sb.render()
}

// SetConversation updates the open conversation name.
func (sb *StatusBar) SetConversation(name string) {
	sb.conversation = name
	sb.render()
}

// Tick re-renders the clock.
func (sb *StatusBar) Tick() {
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	conv := sb.conversation
	if conv == "" {
		conv = "-"
	}
	line := fmt.Sprintf(" [::b]%s[-:-:-] | [%s]●[-] %s | %s | %s",
		tview.Escape(sb.session),
		ui.ColorName(sb.theme.LinkColor(sb.link)), sb.link,
		tview.Escape(sanitizeForTerminal(conv)),
		sb.now().Format("15:04"))

	_, _ = fmt.Fprint(sb, line)
}
