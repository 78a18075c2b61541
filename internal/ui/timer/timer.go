// Package timer renders the countdown tab and turns its keys into engine
// commands.
package timer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adibhanna/focuslock/internal/models"
)

// Controller is the part of the engine the timer tab drives.
type Controller interface {
	Start() error
	Pause() error
	Reset()
	SetMode(mode models.Mode) error
}

type Model struct {
	ctrl     Controller
	snap     models.Snapshot
	progress progress.Model
	errorMsg string
	width    int
	height   int
}

func New(ctrl Controller, snap models.Snapshot) Model {
	prog := progress.New(progress.WithScaledGradient("#FF7CCB", "#FDFF8C"))
	prog.Width = 60
	return Model{ctrl: ctrl, snap: snap, progress: prog}
}

// SetSnapshot replaces the rendered state. A fresh snapshot clears any
// rejected-command message once the state it complained about has changed.
func (m Model) SetSnapshot(snap models.Snapshot) Model {
	if snap.IsRunning != m.snap.IsRunning || snap.Mode != m.snap.Mode || snap.ExitPending != m.snap.ExitPending {
		m.errorMsg = ""
	}
	m.snap = snap
	return m
}

func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.progress.Width = max(10, min(width-20, 60))
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	var err error
	switch {
	case key.Matches(keyMsg, keys.Toggle):
		if m.snap.IsRunning {
			err = m.ctrl.Pause()
		} else {
			err = m.ctrl.Start()
		}
	case key.Matches(keyMsg, keys.Start):
		err = m.ctrl.Start()
	case key.Matches(keyMsg, keys.Pause):
		err = m.ctrl.Pause()
	case key.Matches(keyMsg, keys.Reset):
		m.ctrl.Reset()
	case key.Matches(keyMsg, keys.Mode):
		err = m.ctrl.SetMode(m.snap.Mode.Other())
	default:
		return m, nil
	}

	m.errorMsg = ""
	if err != nil {
		m.errorMsg = describe(err)
	}
	return m, nil
}

func (m Model) View() string {
	timerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(modeColor(m.snap.Mode)).
		Padding(1, 4).
		MarginBottom(2)

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888")).
		MarginTop(1)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF6B6B")).
		Bold(true).
		MarginTop(1)

	minutes := m.snap.TimeLeftSeconds / 60
	seconds := m.snap.TimeLeftSeconds % 60

	parts := []string{
		m.renderHeader(),
		timerStyle.Render(renderDigits(minutes, seconds)),
		m.progress.ViewAs(m.percent()),
		statusStyle.Render(m.status()),
	}
	if m.errorMsg != "" {
		parts = append(parts, errorStyle.Render(m.errorMsg))
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m Model) renderHeader() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FDFF8C")).
		MarginBottom(1)

	label := "Focus"
	if m.snap.Mode == models.ModeBreak {
		label = "Break"
	}
	if m.snap.AppMode == models.AppModeConcentration {
		label = fmt.Sprintf("%s · cycle %d/%d", label, m.snap.CurrentCycle, m.snap.CycleCount)
	}
	return headerStyle.Render(label)
}

func (m Model) percent() float64 {
	if m.snap.DurationSeconds <= 0 {
		return 0
	}
	done := m.snap.DurationSeconds - m.snap.TimeLeftSeconds
	return float64(done) / float64(m.snap.DurationSeconds)
}

func (m Model) status() string {
	var status string
	switch {
	case m.snap.IsLocked:
		status = "Locked in. Blocked tabs and apps stay closed until the break."
	case m.snap.IsRunning && m.snap.Mode == models.ModeBreak:
		status = "Break time. Step away for a bit."
	case m.snap.IsRunning:
		status = "Stay in the zone..."
	case m.snap.TimeLeftSeconds < m.snap.DurationSeconds:
		status = "Paused. Press space to resume."
	default:
		status = "Press space to start."
	}
	return fmt.Sprintf("%s\nCompleted focus cycles: %d", status, m.snap.CompletedCycles)
}

// KeyBindings lists the tab's keys for the footer.
func (m Model) KeyBindings() []key.Binding {
	bindings := []key.Binding{keys.Toggle, keys.Reset}
	if m.snap.AppMode == models.AppModeFree {
		bindings = append(bindings, keys.Mode)
	}
	return bindings
}

func modeColor(mode models.Mode) lipgloss.Color {
	if mode == models.ModeBreak {
		return lipgloss.Color("#2E8B57")
	}
	return lipgloss.Color("#7D56F4")
}

func describe(err error) string {
	msg := err.Error()
	if _, detail, ok := strings.Cut(msg, ": "); ok && strings.HasPrefix(msg, "E_") {
		msg = detail
	}
	return msg
}

// glyphs draws 0-9 five rows tall.
var glyphs = [10][5]string{
	{"▄▀▀▄", "█  █", "█  █", "█  █", "▀▄▄▀"},
	{" ▄█ ", "  █ ", "  █ ", "  █ ", " ▄█▄"},
	{"▄▀▀▄", "   █", " ▄▀ ", "▄▀  ", "█▄▄▄"},
	{"▄▀▀▄", "   █", " ▀▀▄", "   █", "▀▄▄▀"},
	{"█  █", "█  █", "▀▀▀█", "   █", "   █"},
	{"█▀▀▀", "█▄▄ ", "   █", "   █", "▀▄▄▀"},
	{"▄▀▀ ", "█▄▄ ", "█  █", "█  █", "▀▄▄▀"},
	{"▀▀▀█", "   █", "  █ ", " █  ", " █  "},
	{"▄▀▀▄", "▀▄▄▀", "█  █", "█  █", "▀▄▄▀"},
	{"▄▀▀▄", "█  █", "▀▄▄█", "   █", " ▄▄▀"},
}

var colon = [5]string{" ", "▪", " ", "▪", " "}

// renderDigits draws MM:SS in block glyphs, falling back to plain text for
// durations of 100 minutes or more.
func renderDigits(minutes, seconds int) string {
	if minutes > 99 {
		return fmt.Sprintf("%d:%02d", minutes, seconds)
	}
	digits := []int{minutes / 10, minutes % 10, seconds / 10, seconds % 10}
	rows := make([]string, 5)
	for row := range rows {
		rows[row] = strings.Join([]string{
			glyphs[digits[0]][row], glyphs[digits[1]][row],
			colon[row],
			glyphs[digits[2]][row], glyphs[digits[3]][row],
		}, " ")
	}
	return strings.Join(rows, "\n")
}

type keyMap struct {
	Toggle key.Binding
	Start  key.Binding
	Pause  key.Binding
	Reset  key.Binding
	Mode   key.Binding
}

var keys = keyMap{
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "start/pause"),
	),
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Mode: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "focus/break"),
	),
}
