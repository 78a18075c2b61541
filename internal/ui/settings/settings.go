package settings

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adibhanna/focuslock/internal/models"
)

// Editor reads and patches the engine settings.
type Editor interface {
	Settings() models.TimerSettings
	UpdateSettings(patch models.SettingsPatch) error
}

// CloseMsg asks the host to leave the settings tab.
type CloseMsg struct{}

type fieldKind int

const (
	numberField fieldKind = iota
	listField
	toggleField
)

type field struct {
	label string
	kind  fieldKind
	input textinput.Model
	on    bool
}

const (
	fieldAppMode = iota
	fieldFocus
	fieldBreak
	fieldCycles
	fieldBlockedTabs
	fieldBlockedApps
	fieldAlarm
	fieldBreakAlarm
	fieldVibration
	fieldCount
)

type Model struct {
	editor     Editor
	tabs       []string
	fields     []field
	focusIndex int
	saved      bool
	errorMsg   string
	width      int
	height     int
}

// New builds the form. tabs lists the tab ids the user may block.
func New(editor Editor, tabs []string) Model {
	m := Model{editor: editor, tabs: tabs, fields: make([]field, fieldCount)}

	numeric := func(text string) error {
		for _, char := range text {
			if !unicode.IsDigit(char) {
				return fmt.Errorf("only numbers allowed")
			}
		}
		return nil
	}
	newInput := func(placeholder string, limit, width int) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = limit
		in.Width = width
		return in
	}

	m.fields[fieldAppMode] = field{label: "Concentration mode (locks tabs and apps):", kind: toggleField}
	m.fields[fieldFocus] = field{label: "Focus duration (minutes):", kind: numberField, input: newInput("25", 3, 10)}
	m.fields[fieldBreak] = field{label: "Break duration (minutes):", kind: numberField, input: newInput("5", 3, 10)}
	m.fields[fieldCycles] = field{label: "Cycles per session:", kind: numberField, input: newInput("4", 2, 10)}
	m.fields[fieldBlockedTabs] = field{label: "Blocked tabs (" + strings.Join(tabs, ", ") + "):", kind: listField, input: newInput("stats, sounds", 120, 40)}
	m.fields[fieldBlockedApps] = field{label: "Blocked apps (comma separated ids):", kind: listField, input: newInput("org.mozilla.firefox", 500, 40)}
	m.fields[fieldAlarm] = field{label: "Alarm when focus ends:", kind: toggleField}
	m.fields[fieldBreakAlarm] = field{label: "Alarm when break ends:", kind: toggleField}
	m.fields[fieldVibration] = field{label: "Vibrate with alarms:", kind: toggleField}
	for i := range m.fields {
		if m.fields[i].kind == numberField {
			m.fields[i].input.Validate = numeric
		}
	}
	return m.Load()
}

// Load copies the engine's current settings into the form.
func (m Model) Load() Model {
	s := m.editor.Settings()
	m.fields[fieldAppMode].on = s.AppMode == models.AppModeConcentration
	m.fields[fieldFocus].input.SetValue(strconv.Itoa(s.FocusDurationMinutes))
	m.fields[fieldBreak].input.SetValue(strconv.Itoa(s.BreakDurationMinutes))
	m.fields[fieldCycles].input.SetValue(strconv.Itoa(s.CycleCount))
	m.fields[fieldBlockedTabs].input.SetValue(strings.Join(s.BlockedTabs, ", "))
	m.fields[fieldBlockedApps].input.SetValue(strings.Join(s.BlockedApps, ", "))
	m.fields[fieldAlarm].on = s.AlarmEnabled
	m.fields[fieldBreakAlarm].on = s.BreakAlarmEnabled
	m.fields[fieldVibration].on = s.AlarmVibration
	for i := range m.fields {
		if m.fields[i].kind != toggleField {
			m.fields[i].input.CursorEnd()
		}
	}
	m.saved = false
	m.errorMsg = ""
	return m.updateFocus()
}

func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Next):
			m.focusIndex = (m.focusIndex + 1) % len(m.fields)
			return m.updateFocus(), nil

		case key.Matches(keyMsg, keys.Prev):
			m.focusIndex = (m.focusIndex - 1 + len(m.fields)) % len(m.fields)
			return m.updateFocus(), nil

		case key.Matches(keyMsg, keys.Toggle) && m.fields[m.focusIndex].kind == toggleField:
			m.fields[m.focusIndex].on = !m.fields[m.focusIndex].on
			m.saved = false
			return m, nil

		case key.Matches(keyMsg, keys.Save):
			if err := m.save(); err != nil {
				m.errorMsg = err.Error()
				m.saved = false
			} else {
				m.errorMsg = ""
				m.saved = true
			}
			return m, nil

		case key.Matches(keyMsg, keys.Back):
			return m.Load(), func() tea.Msg { return CloseMsg{} }
		}
	}

	cmd := m.updateInputs(msg)
	return m, cmd
}

// Capturing reports that every key belongs to the form while it is shown.
func (m Model) Capturing() bool {
	return true
}

func (m Model) updateFocus() Model {
	for i := range m.fields {
		if m.fields[i].kind == toggleField {
			continue
		}
		if i == m.focusIndex {
			m.fields[i].input.Focus()
		} else {
			m.fields[i].input.Blur()
		}
	}
	return m
}

func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	f := &m.fields[m.focusIndex]
	if f.kind == toggleField {
		return nil
	}
	old := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if f.input.Value() != old {
		m.errorMsg = ""
		m.saved = false
	}
	return cmd
}

// patch turns the form into a full settings patch.
func (m Model) patch() (models.SettingsPatch, error) {
	number := func(i int, what string) (int, error) {
		raw := strings.TrimSpace(m.fields[i].input.Value())
		if raw == "" {
			return 0, fmt.Errorf("%s is required", what)
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("%s must be a positive number", what)
		}
		return n, nil
	}

	focus, err := number(fieldFocus, "focus duration")
	if err != nil {
		return models.SettingsPatch{}, err
	}
	rest, err := number(fieldBreak, "break duration")
	if err != nil {
		return models.SettingsPatch{}, err
	}
	cycles, err := number(fieldCycles, "cycle count")
	if err != nil {
		return models.SettingsPatch{}, err
	}

	blockedTabs := splitList(m.fields[fieldBlockedTabs].input.Value())
	for _, tab := range blockedTabs {
		if !contains(m.tabs, tab) {
			return models.SettingsPatch{}, fmt.Errorf("unknown tab %q", tab)
		}
	}

	appMode := models.AppModeFree
	if m.fields[fieldAppMode].on {
		appMode = models.AppModeConcentration
	}

	return models.SettingsPatch{
		AppMode:              &appMode,
		FocusDurationMinutes: &focus,
		BreakDurationMinutes: &rest,
		CycleCount:           &cycles,
		BlockedTabs:          &blockedTabs,
		BlockedApps:          models.Ptr(splitList(m.fields[fieldBlockedApps].input.Value())),
		AlarmEnabled:         models.Ptr(m.fields[fieldAlarm].on),
		BreakAlarmEnabled:    models.Ptr(m.fields[fieldBreakAlarm].on),
		AlarmVibration:       models.Ptr(m.fields[fieldVibration].on),
	}, nil
}

// save sends only the fields that differ, so unrelated edits are not rejected
// because a session is running.
func (m Model) save() error {
	p, err := m.patch()
	if err != nil {
		return err
	}
	p = changedOnly(m.editor.Settings(), p)
	if p.Empty() {
		return nil
	}
	return m.editor.UpdateSettings(p)
}

func changedOnly(current models.TimerSettings, p models.SettingsPatch) models.SettingsPatch {
	if *p.AppMode == current.AppMode {
		p.AppMode = nil
	}
	if *p.FocusDurationMinutes == current.FocusDurationMinutes {
		p.FocusDurationMinutes = nil
	}
	if *p.BreakDurationMinutes == current.BreakDurationMinutes {
		p.BreakDurationMinutes = nil
	}
	if *p.CycleCount == current.CycleCount {
		p.CycleCount = nil
	}
	if sameSet(*p.BlockedTabs, current.BlockedTabs) {
		p.BlockedTabs = nil
	}
	if sameSet(*p.BlockedApps, current.BlockedApps) {
		p.BlockedApps = nil
	}
	if *p.AlarmEnabled == current.AlarmEnabled {
		p.AlarmEnabled = nil
	}
	if *p.BreakAlarmEnabled == current.BreakAlarmEnabled {
		p.BreakAlarmEnabled = nil
	}
	if *p.AlarmVibration == current.AlarmVibration {
		p.AlarmVibration = nil
	}
	return p
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sameSet(a, b []string) bool {
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	other := make(map[string]bool, len(b))
	for _, v := range b {
		if !seen[v] {
			return false
		}
		other[v] = true
	}
	return len(seen) == len(other)
}

func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF7CCB")).
		MarginBottom(1)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FDFF8C"))

	activeLabelStyle := labelStyle.Bold(true).Foreground(lipgloss.Color("#FF7CCB"))

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4CAF50")).
		Bold(true).
		MarginTop(1)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF6B6B")).
		Bold(true).
		MarginTop(1)

	var b strings.Builder
	for i, f := range m.fields {
		style := labelStyle
		cursor := "  "
		if i == m.focusIndex {
			style = activeLabelStyle
			cursor = "> "
		}
		if f.kind == toggleField {
			box := "[ ]"
			if f.on {
				box = "[x]"
			}
			fmt.Fprintf(&b, "%s%s %s\n\n", cursor, box, style.Render(f.label))
			continue
		}
		fmt.Fprintf(&b, "%s%s\n  %s\n\n", cursor, style.Render(f.label), f.input.View())
	}

	parts := []string{titleStyle.Render("Settings"), b.String()}
	if m.saved {
		parts = append(parts, successStyle.Render("Settings saved."))
	}
	if m.errorMsg != "" {
		parts = append(parts, errorStyle.Render(m.errorMsg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// KeyBindings lists the form's keys for the footer.
func (m Model) KeyBindings() []key.Binding {
	return []key.Binding{keys.Next, keys.Prev, keys.Toggle, keys.Save, keys.Back}
}

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Toggle key.Binding
	Save   key.Binding
	Back   key.Binding
}

var keys = keyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab/↓", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab/↑", "previous field"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "enter"),
		key.WithHelp("space", "toggle"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
}
