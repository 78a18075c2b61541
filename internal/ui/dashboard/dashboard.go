// Package dashboard is the tabbed terminal shell around the engine. It drives
// the 1 Hz tick, renders the lock screen and routes keys to the active tab.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	keyhelp "github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adibhanna/focuslock/internal/alarm"
	"github.com/adibhanna/focuslock/internal/bridge"
	"github.com/adibhanna/focuslock/internal/engine"
	"github.com/adibhanna/focuslock/internal/errclass"
	"github.com/adibhanna/focuslock/internal/models"
	"github.com/adibhanna/focuslock/internal/ui/help"
	"github.com/adibhanna/focuslock/internal/ui/settings"
	"github.com/adibhanna/focuslock/internal/ui/sounds"
	"github.com/adibhanna/focuslock/internal/ui/stats"
	"github.com/adibhanna/focuslock/internal/ui/timer"
)

// Engine is everything the shell asks of the focus engine.
type Engine interface {
	timer.Controller
	settings.Editor
	sounds.Library
	Snapshot() models.Snapshot
	Tick()
	NavigateTo(tab string) error
	RequestExitConfirmation() (*engine.ExitConfirmation, error)
	SetForeground(ctx context.Context, foreground bool) error
	PermissionStatus(ctx context.Context) (bridge.Capabilities, error)
	RequestBlockPermission(ctx context.Context) (bridge.Capabilities, error)
	Subscribe(buffer int) <-chan engine.Event
}

// Tab is one page of the shell. ID is what BlockedTabs refers to.
type Tab struct {
	ID    string
	Title string
}

const (
	tabTimer = iota
	tabStats
	tabSettings
	tabSounds
	tabHelp
)

var Tabs = []Tab{
	{ID: models.TimerTabID, Title: "Timer"},
	{ID: "stats", Title: "Stats"},
	{ID: "settings", Title: "Settings"},
	{ID: "sounds", Title: "Sounds"},
	{ID: "help", Title: "Help"},
}

// BlockableTabs returns the ids a focus phase may block.
func BlockableTabs() []string {
	var ids []string
	for _, tab := range Tabs {
		if tab.ID != models.TimerTabID {
			ids = append(ids, tab.ID)
		}
	}
	return ids
}

// Options configures the shell.
type Options struct {
	Stats        stats.Source
	StatsOptions stats.Options
	// DataDir is shown on the help page.
	DataDir string
	// BridgeTimeout bounds permission checks started from the UI.
	BridgeTimeout time.Duration
	// Welcome is shown until the first status message replaces it.
	Welcome string
}

type tickMsg time.Time

type eventMsg struct {
	event engine.Event
	ok    bool
}

type lifecycleMsg struct {
	err error
}

type permissionMsg struct {
	caps bridge.Capabilities
	err  error
}

type clearFlashMsg struct {
	id int
}

type Model struct {
	eng     Engine
	events  <-chan engine.Event
	timeout time.Duration

	active   int
	snap     models.Snapshot
	timer    timer.Model
	stats    stats.Model
	settings settings.Model
	sounds   sounds.Model
	help     help.Model
	footer   keyhelp.Model

	exit          *engine.ExitConfirmation
	quitAfterExit bool

	flash      string
	flashID    int
	condition  string
	permission string

	width    int
	height   int
	quitting bool
}

func New(eng Engine, opts Options) Model {
	if opts.BridgeTimeout <= 0 {
		opts.BridgeTimeout = bridge.DefaultTimeout
	}
	snap := eng.Snapshot()
	return Model{
		eng:      eng,
		events:   eng.Subscribe(64),
		timeout:  opts.BridgeTimeout,
		snap:     snap,
		timer:    timer.New(eng, snap),
		stats:    stats.New(opts.Stats, opts.StatsOptions),
		settings: settings.New(eng, BlockableTabs()),
		sounds:   sounds.New(eng),
		help:     help.New(opts.DataDir),
		footer:   keyhelp.New(),
		flash:    opts.Welcome,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		waitForEvent(m.events),
		m.checkPermission(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForEvent(events <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		return eventMsg{event: event, ok: ok}
	}
}

func (m Model) checkPermission() tea.Cmd {
	eng, timeout := m.eng, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		caps, err := eng.PermissionStatus(ctx)
		return permissionMsg{caps: caps, err: err}
	}
}

func (m Model) requestPermission() tea.Cmd {
	eng, timeout := m.eng, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		caps, err := eng.RequestBlockPermission(ctx)
		return permissionMsg{caps: caps, err: err}
	}
}

func (m Model) setForeground(foreground bool) tea.Cmd {
	eng, timeout := m.eng, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return lifecycleMsg{err: eng.SetForeground(ctx, foreground)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.footer.Width = msg.Width
		bodyWidth, bodyHeight := max(0, msg.Width-4), max(0, msg.Height-8)
		m.timer = m.timer.SetSize(bodyWidth, bodyHeight)
		m.stats = m.stats.SetSize(bodyWidth, bodyHeight)
		m.settings = m.settings.SetSize(bodyWidth, bodyHeight)
		m.sounds = m.sounds.SetSize(bodyWidth, bodyHeight)
		m.help = m.help.SetSize(bodyWidth, bodyHeight)
		return m, nil

	case tickMsg:
		m.eng.Tick()
		var cmd tea.Cmd
		m, cmd = m.sync()
		return m, tea.Batch(cmd, tickCmd())

	case eventMsg:
		if !msg.ok {
			return m, nil
		}
		var cmd tea.Cmd
		m, cmd = m.handleEvent(msg.event)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	// Losing terminal focus keeps the countdown live. Only a real suspend
	// hands alarms to the OS.
	case tea.ResumeMsg:
		return m, m.setForeground(true)

	case lifecycleMsg:
		if msg.err != nil {
			m.condition = "Background hand-off: " + describe(msg.err)
		}
		return m.sync()

	case permissionMsg:
		m.permission = permissionText(msg.caps, msg.err)
		return m, nil

	case clearFlashMsg:
		if msg.id == m.flashID {
			m.flash = ""
		}
		return m, nil

	case settings.CloseMsg:
		return m.goTo(tabTimer)

	case tea.KeyMsg:
		var cmd, syncCmd tea.Cmd
		m, cmd = m.handleKey(msg)
		if m.quitting {
			return m, cmd
		}
		m, syncCmd = m.sync()
		return m, tea.Batch(cmd, syncCmd)
	}

	// Blink, export and preview results go to whichever tab is waiting.
	var cmds [3]tea.Cmd
	m.stats, cmds[0] = m.stats.Update(msg)
	m.settings, cmds[1] = m.settings.Update(msg)
	m.sounds, cmds[2] = m.sounds.Update(msg)
	return m, tea.Batch(cmds[:]...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.exit != nil {
		return m.updateExitPrompt(msg)
	}
	if key.Matches(msg, keys.ForceQuit) {
		return m.quit()
	}
	if key.Matches(msg, keys.Suspend) {
		return m, tea.Sequence(m.setForeground(false), tea.Suspend)
	}
	if m.capturing() {
		return m.updateActive(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m.quit()
	case key.Matches(msg, keys.Leave):
		if m.snap.IsLocked {
			return m.askExit(false)
		}
		return m, nil
	case key.Matches(msg, keys.NextTab):
		return m.goTo((m.active + 1) % len(Tabs))
	case key.Matches(msg, keys.PrevTab):
		return m.goTo((m.active - 1 + len(Tabs)) % len(Tabs))
	case key.Matches(msg, keys.Help):
		return m.goTo(tabHelp)
	case key.Matches(msg, keys.Permission):
		return m, m.requestPermission()
	case key.Matches(msg, keys.Jump):
		return m.goTo(int(msg.Runes[0] - '1'))
	}
	return m.updateActive(msg)
}

func (m Model) updateActive(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.active {
	case tabTimer:
		m.timer, cmd = m.timer.Update(msg)
	case tabStats:
		m.stats, cmd = m.stats.Update(msg)
	case tabSettings:
		m.settings, cmd = m.settings.Update(msg)
	case tabSounds:
		m.sounds, cmd = m.sounds.Update(msg)
	}
	return m, cmd
}

func (m Model) capturing() bool {
	switch m.active {
	case tabSettings:
		return m.settings.Capturing()
	case tabSounds:
		return m.sounds.Capturing()
	}
	return false
}

// goTo asks the engine before switching; a blocked tab stays closed.
func (m Model) goTo(index int) (Model, tea.Cmd) {
	if index < 0 || index >= len(Tabs) {
		return m, nil
	}
	if err := m.eng.NavigateTo(Tabs[index].ID); err != nil {
		return m.setFlash(Tabs[index].Title + " is blocked until the focus phase ends.")
	}
	m.active = index

	var cmd tea.Cmd
	switch index {
	case tabStats:
		m.stats = m.stats.Refresh()
	case tabSettings:
		m.settings = m.settings.Load()
		cmd = m.settings.Init()
	case tabSounds:
		m.sounds = m.sounds.Reload()
	}
	return m, cmd
}

func (m Model) quit() (Model, tea.Cmd) {
	if m.snap.IsLocked {
		return m.askExit(true)
	}
	m.quitting = true
	return m, tea.Quit
}

func (m Model) askExit(quitAfter bool) (Model, tea.Cmd) {
	x, err := m.eng.RequestExitConfirmation()
	if err != nil {
		return m.setFlash(describe(err))
	}
	m.exit = x
	m.quitAfterExit = quitAfter
	return m, nil
}

func (m Model) updateExitPrompt(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm), key.Matches(msg, keys.ForceQuit):
		x := m.exit
		m.exit = nil
		if err := x.Confirm(); err != nil {
			return m.setFlash(describe(err))
		}
		if m.quitAfterExit || key.Matches(msg, keys.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m.setFlash("Session paused. The lock is lifted.")

	case key.Matches(msg, keys.Deny):
		m.exit.Cancel()
		m.exit = nil
	}
	return m, nil
}

func (m Model) handleEvent(event engine.Event) (Model, tea.Cmd) {
	switch event.Type {
	case engine.EventPhaseCompleted:
		m.stats = m.stats.Refresh()
		notice := alarm.CompletionNotice(event.Phase.Mode, event.Phase.SessionEnded)
		var flashCmd, syncCmd tea.Cmd
		m, flashCmd = m.setFlash(notice.Title + ". " + notice.Body)
		m, syncCmd = m.sync()
		return m, tea.Batch(flashCmd, syncCmd)

	case engine.EventCondition:
		m.condition = conditionText(event.Err)
	}
	return m.sync()
}

// sync pulls the latest snapshot and enforces the lock screen: a tab that
// became blocked is closed and a stale exit prompt is dropped.
func (m Model) sync() (Model, tea.Cmd) {
	wasLocked := m.snap.IsLocked
	m.snap = m.eng.Snapshot()
	m.timer = m.timer.SetSnapshot(m.snap)

	if wasLocked != m.snap.IsLocked {
		m.condition = ""
	}
	if m.exit != nil && !m.snap.ExitPending {
		m.exit = nil
	}
	if m.active != tabTimer && m.eng.NavigateTo(Tabs[m.active].ID) != nil {
		title := Tabs[m.active].Title
		m.active = tabTimer
		return m.setFlash("Focus started. " + title + " is blocked until the break.")
	}
	return m, nil
}

func (m Model) setFlash(text string) (Model, tea.Cmd) {
	m.flashID++
	m.flash = text
	id := m.flashID
	return m, tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return clearFlashMsg{id: id}
	})
}

func describe(err error) string {
	msg := err.Error()
	if code := errclass.Code(err); code != "" {
		msg = strings.TrimPrefix(strings.Replace(msg, code+": ", "", 1), code)
	}
	if msg == "" {
		msg = err.Error()
	}
	return msg
}

func conditionText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errclass.ErrPermissionMissing):
		return "App blocking is not permitted, so only tabs are blocked. Press P to grant access."
	case errors.Is(err, errclass.ErrBridgeFailure):
		return "Platform problem: " + describe(err)
	default:
		return describe(err)
	}
}

func permissionText(caps bridge.Capabilities, err error) string {
	if err != nil {
		return "Could not check app blocking permission: " + describe(err)
	}
	if caps == nil || caps.BlockingAllowed() {
		return ""
	}
	if u, ok := caps.(bridge.Unsupported); ok {
		reason := u.Reason
		if reason == "" {
			reason = "not supported here"
		}
		return "Native app blocking: " + reason + ". Blocked tabs still apply."
	}
	return "App blocking needs permission (" + caps.String() + "). Press P to grant it."
}

// ShouldQuit reports whether the user left the app.
func (m Model) ShouldQuit() bool {
	return m.quitting
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(1, 2)

	parts := []string{m.renderTabs()}
	if m.snap.IsLocked {
		parts = append(parts, m.renderLockBanner())
	}

	body := m.renderBody()
	if m.exit != nil {
		body = m.renderExitPrompt()
	}
	parts = append(parts, lipgloss.NewStyle().MarginTop(1).MarginBottom(1).Render(body))

	if m.flash != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true).Render(m.flash))
	}
	if m.condition != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render(m.condition))
	}
	parts = append(parts, m.footer.ShortHelpView(m.bindings()))

	return containerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderBody() string {
	switch m.active {
	case tabStats:
		return m.stats.View()
	case tabSettings:
		return m.settings.View()
	case tabSounds:
		return m.sounds.View()
	case tabHelp:
		return m.help.View()
	default:
		return lipgloss.PlaceHorizontal(max(0, m.width-4), lipgloss.Center, m.timer.View())
	}
}

func (m Model) renderTabs() string {
	activeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 2)

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888")).
		Padding(0, 2)

	blockedStyle := normalStyle.Foreground(lipgloss.Color("#555")).Strikethrough(true)

	settings := m.eng.Settings()
	rendered := make([]string, len(Tabs))
	for i, tab := range Tabs {
		style := normalStyle
		switch {
		case i == m.active:
			style = activeStyle
		case m.snap.IsLocked && settings.IsTabBlocked(tab.ID):
			style = blockedStyle
		}
		rendered[i] = style.Render(string(rune('1'+i)) + " " + tab.Title)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderLockBanner() string {
	bannerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#C0392B")).
		Padding(0, 1).
		MarginTop(1)

	text := "FOCUS LOCK · esc to leave"
	if blocked := m.eng.Settings().BlockedApps; len(blocked) > 0 {
		text += " · apps: " + strings.Join(blocked, ", ")
	}
	lines := []string{bannerStyle.Render(text)}
	if m.permission != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render(m.permission))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderExitPrompt() string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#FF6B6B")).
		Padding(1, 3)

	question := "Leave the focus lock? The session will be paused."
	if m.quitAfterExit {
		question = "Quit during a focus phase? The session will be paused."
	}
	return boxStyle.Render(question + "\n\ny: yes • n: stay focused")
}

func (m Model) bindings() []key.Binding {
	if m.exit != nil {
		return []key.Binding{keys.Confirm, keys.Deny}
	}
	var tab []key.Binding
	switch m.active {
	case tabTimer:
		tab = m.timer.KeyBindings()
	case tabStats:
		tab = m.stats.KeyBindings()
	case tabSettings:
		return m.settings.KeyBindings()
	case tabSounds:
		tab = m.sounds.KeyBindings()
		if m.sounds.Capturing() {
			return tab
		}
	}
	global := []key.Binding{keys.NextTab, keys.Help, keys.Quit}
	if m.snap.IsLocked {
		global = append([]key.Binding{keys.Leave}, global...)
	}
	return append(tab, global...)
}

type keyMap struct {
	NextTab    key.Binding
	PrevTab    key.Binding
	Jump       key.Binding
	Help       key.Binding
	Leave      key.Binding
	Permission key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
	Suspend    key.Binding
	Confirm    key.Binding
	Deny       key.Binding
}

var keys = keyMap{
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next tab"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous tab"),
	),
	Jump: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5"),
		key.WithHelp("1-5", "go to tab"),
	),
	Help: key.NewBinding(
		key.WithKeys("?", "f1"),
		key.WithHelp("?", "help"),
	),
	Leave: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "leave lock"),
	),
	Permission: key.NewBinding(
		key.WithKeys("P"),
		key.WithHelp("P", "grant blocking"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Suspend: key.NewBinding(
		key.WithKeys("ctrl+z"),
		key.WithHelp("ctrl+z", "suspend"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "enter"),
		key.WithHelp("y", "yes"),
	),
	Deny: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "no"),
	),
}
