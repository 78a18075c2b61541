// Package sounds is the alarm sound picker: choose the configured alarm,
// preview it, and import or delete custom clips.
package sounds

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adibhanna/focuslock/internal/models"
)

// Library is the part of the engine the picker uses.
type Library interface {
	AllSounds() []models.AlarmSound
	AddCustomSound(path string) (models.AlarmSound, error)
	RemoveCustomSound(id string) error
	Settings() models.TimerSettings
	UpdateSettings(patch models.SettingsPatch) error
	PlayImmediateAlarm(ctx context.Context, soundID string, vibrate bool) error
	StopAlarm(ctx context.Context) error
}

type previewMsg struct {
	err error
}

type Model struct {
	lib     Library
	sounds  []models.AlarmSound
	current string
	cursor  int

	adding bool
	path   textinput.Model

	message  string
	errorMsg string
	width    int
	height   int
}

func New(lib Library) Model {
	path := textinput.New()
	path.Placeholder = "/path/to/clip.mp3"
	path.CharLimit = 1024
	path.Width = 50
	m := Model{lib: lib, path: path}
	return m.Reload()
}

// Reload re-reads the library and the configured alarm.
func (m Model) Reload() Model {
	m.sounds = m.lib.AllSounds()
	m.current = m.lib.Settings().AlarmSound
	if m.cursor >= len(m.sounds) {
		m.cursor = max(0, len(m.sounds)-1)
	}
	return m
}

func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// Capturing reports whether the path prompt owns the keyboard.
func (m Model) Capturing() bool {
	return m.adding
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case previewMsg:
		if msg.err != nil {
			m.errorMsg = "Preview failed: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		m.message, m.errorMsg = "", ""

		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			} else {
				m.cursor = len(m.sounds) - 1
			}

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.sounds)-1 {
				m.cursor++
			} else {
				m.cursor = 0
			}

		case key.Matches(msg, keys.Select):
			sound, ok := m.selected()
			if !ok {
				return m, nil
			}
			if err := m.lib.UpdateSettings(models.SettingsPatch{AlarmSound: &sound.ID}); err != nil {
				m.errorMsg = err.Error()
				return m, nil
			}
			m.message = sound.DisplayName + " is now the alarm sound."
			return m.Reload(), nil

		case key.Matches(msg, keys.Preview):
			sound, ok := m.selected()
			if !ok {
				return m, nil
			}
			return m, m.preview(sound.ID)

		case key.Matches(msg, keys.Stop):
			lib := m.lib
			return m, func() tea.Msg {
				return previewMsg{err: lib.StopAlarm(context.Background())}
			}

		case key.Matches(msg, keys.Add):
			m.adding = true
			m.path.SetValue("")
			cmd := m.path.Focus()
			return m, cmd

		case key.Matches(msg, keys.Delete):
			sound, ok := m.selected()
			if !ok || !sound.IsCustom {
				m.errorMsg = "Only imported sounds can be deleted."
				return m, nil
			}
			if err := m.lib.RemoveCustomSound(sound.ID); err != nil {
				m.errorMsg = err.Error()
				return m, nil
			}
			m.message = "Deleted " + sound.DisplayName + "."
			return m.Reload(), nil
		}
	}
	return m, nil
}

func (m Model) updateAdding(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		m.adding = false
		m.path.Blur()
		return m, nil

	case key.Matches(msg, keys.Confirm):
		m.adding = false
		m.path.Blur()
		sound, err := m.lib.AddCustomSound(strings.TrimSpace(m.path.Value()))
		if err != nil {
			m.errorMsg = err.Error()
			return m, nil
		}
		m.message = "Imported " + sound.DisplayName + "."
		m = m.Reload()
		for i, s := range m.sounds {
			if s.ID == sound.ID {
				m.cursor = i
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m Model) selected() (models.AlarmSound, bool) {
	if m.cursor < 0 || m.cursor >= len(m.sounds) {
		return models.AlarmSound{}, false
	}
	return m.sounds[m.cursor], true
}

func (m Model) preview(id string) tea.Cmd {
	lib := m.lib
	vibrate := lib.Settings().AlarmVibration
	return func() tea.Msg {
		return previewMsg{err: lib.PlayImmediateAlarm(context.Background(), id, vibrate)}
	}
}

func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF7CCB")).
		MarginBottom(1)

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF7CCB")).
		Bold(true)

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888"))

	noteStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4CAF50")).
		MarginTop(1)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF6B6B")).
		Bold(true).
		MarginTop(1)

	var list strings.Builder
	for i, sound := range m.sounds {
		cursor := "  "
		style := normalStyle
		if m.cursor == i {
			cursor = "▶ "
			style = selectedStyle
		}
		mark := "  "
		if sound.ID == m.current {
			mark = "● "
		}
		kind := ""
		if sound.IsCustom {
			kind = " (imported)"
		}
		list.WriteString(style.Render(fmt.Sprintf("%s%s%s%s", cursor, mark, sound.DisplayName, kind)) + "\n")
	}

	parts := []string{titleStyle.Render("Alarm sounds"), list.String()}
	if m.adding {
		parts = append(parts, "Import a clip (mp3, wav, ogg, m4a, aac, flac):", m.path.View())
	}
	if m.message != "" {
		parts = append(parts, noteStyle.Render(m.message))
	}
	if m.errorMsg != "" {
		parts = append(parts, errorStyle.Render(m.errorMsg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// KeyBindings lists the picker's keys for the footer.
func (m Model) KeyBindings() []key.Binding {
	if m.adding {
		return []key.Binding{keys.Confirm, keys.Cancel}
	}
	return []key.Binding{keys.Up, keys.Down, keys.Select, keys.Preview, keys.Stop, keys.Add, keys.Delete}
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Preview key.Binding
	Stop    key.Binding
	Add     key.Binding
	Delete  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "use as alarm"),
	),
	Preview: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "preview"),
	),
	Stop: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stop"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "import"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "import"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}
