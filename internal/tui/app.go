package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/matheus3301/wppclone/internal/api"
	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/config"
	"github.com/matheus3301/wppclone/internal/status"
	wsync "github.com/matheus3301/wppclone/internal/sync"
	"github.com/matheus3301/wppclone/internal/tui/keys"
	"github.com/matheus3301/wppclone/internal/tui/ui"
	"github.com/matheus3301/wppclone/internal/tui/views"
)

// Page names.
const (
	pageMain    = "Conversations"
	pageHelp    = "Help"
	pageDetails = "Details"
)

// Key scopes of the main page, decided by which pane has focus.
const (
	scopeList   = "list"
	scopeThread = "thread"
)

const (
	headerRows = 7
	promptRows = 3
)

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	coord    *wsync.Coordinator
	bus      *bus.Bus
	link     *status.Machine
	settings config.Settings
	logger   *zap.Logger
	theme    *ui.Theme
	registry *keys.Registry

	root      *tview.Flex
	pages     *ui.Pages
	prompt    *ui.Prompt
	flash     *ui.FlashModel
	flashBar  *ui.FlashBar
	crumbs    *ui.Crumbs
	menu      *ui.Menu
	info      *ui.SessionInfo
	logo      *ui.Logo
	statusBar *views.StatusBar
	convList  *views.ConversationList
	thread    *views.MessageThread
	details   *views.ConversationInfo
	help      *views.HelpView

	// lastFocus is restored when the prompt closes.
	lastFocus tview.Primitive
	started   time.Time
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewApp creates the TUI application around a coordinator. The coordinator
// is started by Run and closed when Run returns.
func NewApp(coord *wsync.Coordinator, b *bus.Bus, link *status.Machine, settings config.Settings, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		coord:     coord,
		bus:       b,
		link:      link,
		settings:  settings,
		logger:    logger,
		theme:     theme,
		registry:  keys.NewRegistry(),
		pages:     ui.NewPages(),
		prompt:    ui.NewPrompt(theme),
		flash:     ui.NewFlashModel(),
		flashBar:  ui.NewFlashBar(theme),
		crumbs:    ui.NewCrumbs(theme),
		menu:      ui.NewMenu(theme),
		info:      ui.NewSessionInfo(theme),
		logo:      ui.NewLogo(theme),
		statusBar: views.NewStatusBar(theme),
		convList:  views.NewConversationList(theme),
		thread:    views.NewMessageThread(theme, coord.IsOwn),
		details:   views.NewConversationInfo(theme),
		help:      views.NewHelpView(theme),
		started:   time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.statusBar.SetSession(settings.Session)
	a.prompt.SetCommands(CommandNames())
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(keys.OnRune('q', "quit", a.app.Stop))
	a.registry.AddGlobal(keys.OnRune('?', "help", func() { a.showPage(pageHelp) }))
	a.registry.AddGlobal(keys.OnRune(':', "command", func() { a.openPrompt(ui.PromptCommand) }))
	a.registry.AddGlobal(keys.OnRune('/', "filter", func() { a.openPrompt(ui.PromptFilter) }))
	a.registry.AddGlobal(keys.OnRune('d', "details", a.showDetails))
	a.registry.AddGlobal(keys.OnKey(tcell.KeyTab, "switch pane", a.switchPane))

	a.registry.AddView(scopeList, keys.OnRune('0', "clear filter", func() {
		a.convList.ClearFilter()
	}))
	for n := 1; n <= 9; n++ {
		a.registry.AddView(scopeList, keys.OnRune(rune('0'+n), "open", func() {
			if waID := a.convList.ConversationByIndex(n); waID != "" {
				a.open(waID)
			}
		}))
	}

	a.registry.AddView(scopeThread, keys.OnRune('i', "compose", func() {
		a.app.SetFocus(a.thread.Composer())
	}))
	a.registry.AddView(scopeThread, keys.OnRune('x', "delete", a.deleteSelected))
	a.registry.AddView(scopeThread, keys.OnKey(tcell.KeyDelete, "delete", a.deleteSelected))
}

func (a *App) setupCallbacks() {
	a.convList.SetSelectedFunc(func(row, _ int) {
		if waID := a.convList.ConversationByIndex(row); waID != "" {
			a.open(waID)
		}
	})

	a.thread.SetOnSend(func(text string) {
		go func() {
			ctx, cancel := context.WithTimeout(a.ctx, a.requestTimeout())
			defer cancel()
			if _, err := a.coord.Send(ctx, text); errors.Is(err, wsync.ErrNoSelection) {
				a.flash.Warn("open a conversation first")
			}
		}()
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.closePrompt()
		switch mode {
		case ui.PromptFilter:
			a.convList.SetFilter(strings.TrimSpace(text))
			a.app.SetFocus(a.convList)
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		}
	})
	a.prompt.SetOnCancel(a.closePrompt)

	a.pages.SetOnChange(func(stack []string) {
		a.crumbs.Update(stack, a.coord.Selection().Name)
		a.updateMenu()
	})
}

func (a *App) setupLayout() {
	header := tview.NewFlex().
		AddItem(a.info, 0, 1, false).
		AddItem(a.menu, 0, 2, false).
		AddItem(a.logo, 22, 0, false)

	main := tview.NewFlex().
		AddItem(a.convList, 0, 1, true).
		AddItem(a.thread, 0, 2, false)

	a.pages.AddPage(pageMain, main, true, true)
	a.pages.AddPage(pageHelp, a.help, true, false)
	a.pages.AddPage(pageDetails, a.details, true, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, headerRows, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.root, true)
	a.app.SetFocus(a.convList)
	a.pages.Reset(pageMain)
	a.refreshHeader()

	a.app.SetInputCapture(a.handleKey)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	focused := a.app.GetFocus()

	// Text inputs get every key. Esc leaves the composer; the prompt
	// handles its own Esc.
	if focused == a.thread.Composer() {
		if event.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.thread.Messages())
			a.updateMenu()
			return nil
		}
		return event
	}
	if focused == a.prompt {
		return event
	}

	if event.Key() == tcell.KeyEscape {
		a.back()
		return nil
	}

	if a.registry.HandleEvent(a.scope(), event) {
		return nil
	}
	return event
}

// scope returns the key scope for the current page and focus.
func (a *App) scope() string {
	page := a.pages.Current()
	if page != pageMain {
		return page
	}
	if a.app.GetFocus() == a.thread.Messages() {
		return scopeThread
	}
	return scopeList
}

func (a *App) back() {
	if a.pages.Depth() > 1 {
		a.pages.Pop()
		a.focusMain()
		return
	}
	if a.convList.Filter() != "" {
		a.convList.ClearFilter()
		return
	}
	a.app.SetFocus(a.convList)
	a.updateMenu()
}

func (a *App) switchPane() {
	if a.pages.Current() != pageMain {
		return
	}
	if a.app.GetFocus() == a.thread.Messages() {
		a.app.SetFocus(a.convList)
	} else {
		a.app.SetFocus(a.thread.Messages())
	}
	a.updateMenu()
}

func (a *App) focusMain() {
	if a.pages.Current() != pageMain {
		return
	}
	if a.coord.Selection().IsZero() {
		a.app.SetFocus(a.convList)
	} else {
		a.app.SetFocus(a.thread.Messages())
	}
	a.updateMenu()
}

func (a *App) showPage(name string) {
	if a.pages.Current() == name {
		return
	}
	if a.pages.Current() != pageMain {
		a.pages.Pop()
	}
	a.pages.Push(name)
	switch name {
	case pageHelp:
		a.app.SetFocus(a.help)
	case pageDetails:
		a.app.SetFocus(a.details)
	}
}

func (a *App) showDetails() {
	sel := a.coord.Selection()
	if sel.IsZero() {
		a.flash.Warn("no conversation open")
		return
	}
	a.renderDetails()
	a.showPage(pageDetails)
}

func (a *App) renderDetails() {
	sel := a.coord.Selection()
	conv, ok := findConversation(a.coord.Conversations(), sel.WaID)
	if !ok {
		conv = api.Conversation{WaID: sel.WaID}
	}
	a.details.Update(conv, len(a.coord.Messages()))
}

func (a *App) openPrompt(mode ui.PromptMode) {
	a.lastFocus = a.app.GetFocus()
	a.prompt.Activate(mode)
	a.root.ResizeItem(a.prompt, promptRows, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) closePrompt() {
	a.root.ResizeItem(a.prompt, 0, 0)
	if a.lastFocus != nil {
		a.app.SetFocus(a.lastFocus)
		a.lastFocus = nil
	} else {
		a.app.SetFocus(a.convList)
	}
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case CmdOpen:
		waID, ok := resolveConversation(a.coord.Conversations(), cmd.Args)
		if !ok {
			a.flash.Warn("no conversation matches " + cmd.Args)
			return
		}
		a.open(waID)
	case CmdRefresh:
		go func() {
			ctx, cancel := context.WithTimeout(a.ctx, a.requestTimeout())
			defer cancel()
			a.coord.Refresh(ctx)
		}()
		a.flash.Info("refreshing")
	case CmdDetails:
		a.showDetails()
	case CmdHelp:
		a.showPage(pageHelp)
	case CmdQuit:
		a.app.Stop()
	case "":
	default:
		a.flash.Warn("unknown command: " + cmd.Name)
	}
}

// open selects a conversation and moves focus to its messages.
func (a *App) open(waID string) {
	if a.pages.Current() != pageMain {
		a.pages.Reset(pageMain)
	}
	if a.coord.Selection().WaID != waID {
		a.coord.Select(waID)
	}
	a.app.SetFocus(a.thread.Messages())
	a.updateMenu()
}

func (a *App) deleteSelected() {
	id, own := a.thread.SelectedOwnMessage()
	if id == "" {
		return
	}
	if !own {
		a.flash.Warn("only your own messages can be deleted")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, a.requestTimeout())
		defer cancel()
		_ = a.coord.Delete(ctx, id)
	}()
}

func (a *App) requestTimeout() time.Duration {
	if a.settings.RequestTimeout > 0 {
		return a.settings.RequestTimeout
	}
	return config.DefaultRequestTimeout
}

// handleEvent applies a bus event to the views. Runs on the UI goroutine.
func (a *App) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.ConversationsUpdated:
		a.convList.Update(a.coord.Conversations())
		if a.pages.Current() == pageDetails {
			a.renderDetails()
		}
	case bus.SelectionChanged:
		sel := a.coord.Selection()
		a.thread.SetConversation(sel.WaID, sel.Name)
		a.thread.Update(a.coord.Messages())
		a.convList.SetActive(sel.WaID)
		a.statusBar.SetConversation(sel.Name)
		a.crumbs.Update(a.pages.Stack(), sel.Name)
		if sel.IsZero() && a.pages.Current() == pageDetails {
			a.pages.Pop()
			a.focusMain()
		}
	case bus.MessagesUpdated:
		if waID, _ := evt.Payload.(string); waID == a.coord.Selection().WaID {
			a.thread.Update(a.coord.Messages())
		}
	case bus.SendFailed:
		if p, ok := evt.Payload.(wsync.SendFailure); ok {
			a.flash.Err("send failed", p.Err)
		}
	case bus.DeleteFailed:
		if p, ok := evt.Payload.(wsync.DeleteFailure); ok {
			a.flash.Err("delete failed", p.Err)
		}
	case bus.LinkChanged:
		if p, ok := evt.Payload.(status.StatusChange); ok {
			a.statusBar.SetLink(p.To)
			switch {
			case p.To == status.Degraded:
				if err := a.link.LastError(); err != nil {
					a.flash.Err("backend unreachable", err)
				}
			case p.From == status.Degraded && p.To == status.Online:
				a.flash.Info("backend reachable again")
			}
		}
	}
	a.refreshHeader()
}

func (a *App) refreshHeader() {
	link := status.Connecting
	if a.link != nil {
		link = a.link.Current()
	}
	a.logo.SetLink(link)
	a.info.Update(&ui.SessionData{
		Session:       a.settings.Session,
		APIURL:        a.settings.APIURL,
		SelfID:        a.settings.SelfID,
		Link:          link,
		Conversations: len(a.coord.Conversations()),
		Messages:      len(a.coord.Messages()),
		Uptime:        time.Since(a.started),
	})
}

func (a *App) updateMenu() {
	var c ui.Component = a.convList
	switch a.pages.Current() {
	case pageHelp:
		c = a.help
	case pageDetails:
		c = a.details
	default:
		if a.app.GetFocus() == a.thread.Messages() || a.app.GetFocus() == a.thread.Composer() {
			c = a.thread
		}
	}
	a.menu.Update(c.Hints())
}

// watch forwards bus events, flash messages and clock ticks to the UI
// goroutine until the app context ends.
func (a *App) watch() {
	events, unsubscribe := a.bus.Subscribe("", 256)
	defer unsubscribe()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case evt := <-events:
			a.app.QueueUpdateDraw(func() { a.handleEvent(evt) })
		case msg := <-a.flash.Watch():
			a.app.QueueUpdateDraw(func() { a.flashBar.Update(&msg) })
		case <-ticker.C:
			a.app.QueueUpdateDraw(func() {
				a.flashBar.Update(a.flash.GetMessage())
				a.statusBar.Tick()
				a.refreshHeader()
			})
		}
	}
}

// Run starts polling and blocks until the user quits.
func (a *App) Run() error {
	a.updateMenu()
	go a.watch()
	a.coord.Start(a.ctx)
	a.logger.Info("tui started", zap.String("api_url", a.settings.APIURL))

	err := a.app.Run()

	a.cancel()
	a.coord.Close()
	a.logger.Info("tui stopped")
	return err
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

func findConversation(convs []api.Conversation, waID string) (api.Conversation, bool) {
	for _, c := range convs {
		if c.WaID == waID {
			return c, true
		}
	}
	return api.Conversation{}, false
}

// resolveConversation maps the argument of :open to a wa_id: an exact
// wa_id, then a name match, then a bare number for a conversation the
// backend does not list yet.
func resolveConversation(convs []api.Conversation, arg string) (string, bool) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", false
	}
	if c, ok := findConversation(convs, arg); ok {
		return c.WaID, true
	}
	lower := strings.ToLower(arg)
	for _, c := range convs {
		if strings.ToLower(c.DisplayName()) == lower {
			return c.WaID, true
		}
	}
	for _, c := range convs {
		if strings.Contains(strings.ToLower(c.DisplayName()), lower) {
			return c.WaID, true
		}
	}
	if strings.Trim(arg, "+0123456789") == "" {
		return strings.TrimPrefix(arg, "+"), true
	}
	return "", false
}
