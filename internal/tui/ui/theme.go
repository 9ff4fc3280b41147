package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/status"
)

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor           tcell.Color
	FgColor           tcell.Color
	OwnFgColor        tcell.Color
	BorderColor       tcell.Color
	BorderFocusColor  tcell.Color
	TableHeaderFg     tcell.Color
	TableHeaderBg     tcell.Color
	TableCursorFg     tcell.Color
	TableCursorBg     tcell.Color
	ActiveRowColor    tcell.Color
	CrumbActiveFg     tcell.Color
	CrumbActiveBg     tcell.Color
	CrumbInactiveFg   tcell.Color
	CrumbInactiveBg   tcell.Color
	MenuKeyColor      tcell.Color
	NumericKeyColor   tcell.Color
	TitleColor        tcell.Color
	CounterColor      tcell.Color
	FlashInfoColor    tcell.Color
	FlashWarnColor    tcell.Color
	FlashErrColor     tcell.Color
	PromptBorderColor tcell.Color
	TickColor         tcell.Color
	TickPendingColor  tcell.Color
	TickSeenColor     tcell.Color
	TickErrorColor    tcell.Color
	LinkOnlineColor   tcell.Color
	LinkPendingColor  tcell.Color
	LinkDownColor     tcell.Color
}

// DefaultTheme returns a k9s-inspired dark theme.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:           tcell.ColorBlack,
		FgColor:           tcell.ColorCadetBlue,
		OwnFgColor:        tcell.ColorPaleGreen,
		BorderColor:       tcell.ColorDodgerBlue,
		BorderFocusColor:  tcell.ColorLightSkyBlue,
		TableHeaderFg:     tcell.ColorWhite,
		TableHeaderBg:     tcell.ColorBlack,
		TableCursorFg:     tcell.ColorBlack,
		TableCursorBg:     tcell.ColorAqua,
		ActiveRowColor:    tcell.ColorOrange,
		CrumbActiveFg:     tcell.ColorBlack,
		CrumbActiveBg:     tcell.ColorOrange,
		CrumbInactiveFg:   tcell.ColorBlack,
		CrumbInactiveBg:   tcell.ColorAqua,
		MenuKeyColor:      tcell.ColorDodgerBlue,
		NumericKeyColor:   tcell.ColorFuchsia,
		TitleColor:        tcell.ColorFuchsia,
		CounterColor:      tcell.ColorPapayaWhip,
		FlashInfoColor:    tcell.ColorNavajoWhite,
		FlashWarnColor:    tcell.ColorOrange,
		FlashErrColor:     tcell.ColorOrangeRed,
		PromptBorderColor: tcell.ColorDodgerBlue,
		TickColor:         tcell.ColorSilver,
		TickPendingColor:  tcell.ColorGray,
		TickSeenColor:     tcell.ColorDeepSkyBlue,
		TickErrorColor:    tcell.ColorOrangeRed,
		LinkOnlineColor:   tcell.ColorLimeGreen,
		LinkPendingColor:  tcell.ColorGold,
		LinkDownColor:     tcell.ColorOrangeRed,
	}
}

// TickColorFor returns the color of a delivery marker.
func (t *Theme) TickColorFor(e chat.Emphasis) tcell.Color {
	switch e {
	case chat.EmphasisPending:
		return t.TickPendingColor
	case chat.EmphasisSeen:
		return t.TickSeenColor
	case chat.EmphasisError:
		return t.TickErrorColor
	default:
		return t.TickColor
	}
}

// LinkColor returns the color of a link state.
func (t *Theme) LinkColor(s status.State) tcell.Color {
	switch s {
	case status.Online:
		return t.LinkOnlineColor
	case status.Degraded:
		return t.LinkDownColor
	default:
		return t.LinkPendingColor
	}
}

// ColorName returns a tview-compatible color name string.
func ColorName(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}
