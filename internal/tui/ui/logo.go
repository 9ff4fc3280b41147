package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/wppclone/internal/status"
)

// Logo is the header mark. The dot beside it takes the link color.
type Logo struct {
	*tview.TextView
	theme *Theme
	link  status.State
}

// NewLogo creates a logo in the connecting state.
func NewLogo(theme *Theme) *Logo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(1, 0, 1, 0)

	l := &Logo{
		TextView: tv,
		theme:    theme,
		link:     status.Connecting,
	}
	l.render()
	return l
}

// SetLink recolors the mark when the link state changes.
func (l *Logo) SetLink(s status.State) {
	if s == l.link {
		return
	}
	l.link = s
	l.render()
}

func (l *Logo) render() {
	l.Clear()
	title := ColorName(l.theme.TitleColor)
	dot := ColorName(l.theme.LinkColor(l.link))
	fg := ColorName(l.theme.FgColor)

	_, _ = fmt.Fprintf(l,
		"[%s::b] ╦ ╦╔═╗╔═╗ [%s]●[-:-:-]\n"+
			"[%s::b] ║║║╠═╝╠═╝[-:-:-]\n"+
			"[%s::b] ╚╩╝╩  ╩[-:-:-]\n"+
			"[%s]chat client[-:-:-]",
		title, dot, title, title, fg,
	)
}
