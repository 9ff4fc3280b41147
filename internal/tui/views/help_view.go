package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/wppclone/internal/tui/ui"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (hv *HelpView) render() {
	kc := ui.ColorName(hv.theme.MenuKeyColor)

	help := fmt.Sprintf(`
  [::b]Global Keys[-:-:-]

  [%[1]s]:[-:-:-]      Command mode        [%[1]s]Esc[-:-:-]    Cancel / Go back
  [%[1]s]/[-:-:-]      Filter mode         [%[1]s]?[-:-:-]      Help
  [%[1]s]q[-:-:-]      Quit                [%[1]s]Ctrl-C[-:-:-] Quit immediately
  [%[1]s]Tab[-:-:-]    Switch pane         [%[1]s]d[-:-:-]      Conversation details

  [::b]Conversation List[-:-:-]

  [%[1]s]Enter[-:-:-]  Open conversation   [%[1]s]0[-:-:-]      Show all (clear filter)
  [%[1]s]1-9[-:-:-]    Open Nth chat       [%[1]s]j/k[-:-:-]    Move down / up

  [::b]Message Thread[-:-:-]

  [%[1]s]i[-:-:-]      Focus composer      [%[1]s]x/Del[-:-:-]  Delete highlighted message
  [%[1]s]Enter[-:-:-]  Send (in composer)  [%[1]s]Esc[-:-:-]    Leave composer

  [::b]Delivery Markers[-:-:-]

  …  sending   ✓  sent   ✓✓  delivered   [::b]✓✓[-:-:-]  read   !  failed (x removes it)

  [::b]Commands (: mode)[-:-:-]

  [%[1]s]:open <wa_id|name>[-:-:-]  Open a conversation
  [%[1]s]:refresh[-:-:-]            Poll the backend now
  [%[1]s]:details[-:-:-]            Show conversation details
  [%[1]s]:help[-:-:-] / [%[1]s]:h[-:-:-]         Show this help
  [%[1]s]:quit[-:-:-] / [%[1]s]:q[-:-:-]         Quit application
`, kc)

	_, _ = fmt.Fprint(hv, help)
}
