package settings

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adibhanna/focuslock/internal/models"
)

type fakeEditor struct {
	settings models.TimerSettings
	patches  []models.SettingsPatch
	err      error
}

func (f *fakeEditor) Settings() models.TimerSettings { return f.settings }

func (f *fakeEditor) UpdateSettings(p models.SettingsPatch) error {
	f.patches = append(f.patches, p)
	if f.err != nil {
		return f.err
	}
	f.settings = p.Merge(f.settings)
	return nil
}

var tabs = []string{"stats", "settings", "sounds", "help"}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m Model, t tea.KeyType, n int) Model {
	for i := 0; i < n; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: t})
	}
	return m
}

func TestSave_SendsOnlyChangedFields(t *testing.T) {
	ed := &fakeEditor{settings: models.DefaultSettings()}
	m := New(ed, tabs)

	m = press(m, tea.KeyTab, 2) // break duration
	m = press(m, tea.KeyBackspace, 1)
	m = typeText(m, "10")
	m = press(m, tea.KeyCtrlS, 1)

	require.Len(t, ed.patches, 1)
	p := ed.patches[0]
	require.NotNil(t, p.BreakDurationMinutes)
	assert.Equal(t, 10, *p.BreakDurationMinutes)
	assert.Nil(t, p.FocusDurationMinutes)
	assert.Nil(t, p.AppMode)
	assert.Contains(t, m.View(), "Settings saved.")
}

func TestSave_NothingChangedIsNoop(t *testing.T) {
	ed := &fakeEditor{settings: models.DefaultSettings()}
	m := New(ed, tabs)
	m = press(m, tea.KeyCtrlS, 1)
	assert.Empty(t, ed.patches)
	assert.Contains(t, m.View(), "Settings saved.")
}

func TestToggleAppMode(t *testing.T) {
	ed := &fakeEditor{settings: models.DefaultSettings()}
	m := New(ed, tabs)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	_ = press(m, tea.KeyCtrlS, 1)

	assert.Equal(t, models.AppModeConcentration, ed.settings.AppMode)
}

func TestSave_RejectsBadInput(t *testing.T) {
	ed := &fakeEditor{settings: models.DefaultSettings()}
	m := New(ed, tabs)

	m = press(m, tea.KeyTab, 4) // blocked tabs
	m = typeText(m, "timer")
	m = press(m, tea.KeyCtrlS, 1)
	assert.Contains(t, m.View(), `unknown tab "timer"`)
	assert.Empty(t, ed.patches)

	m = press(m, tea.KeyShiftTab, 3) // focus duration
	m = press(m, tea.KeyBackspace, 2)
	m = press(m, tea.KeyCtrlS, 1)
	assert.Contains(t, m.View(), "focus duration is required")
	assert.Empty(t, ed.patches)
}

func TestSave_EngineRejection(t *testing.T) {
	ed := &fakeEditor{settings: models.DefaultSettings(), err: errors.New("durations cannot change while running")}
	m := New(ed, tabs)

	m = press(m, tea.KeyTab, 1)
	m = typeText(m, "0")
	m = press(m, tea.KeyCtrlS, 1)

	assert.Contains(t, m.View(), "durations cannot change while running")
	assert.NotContains(t, m.View(), "Settings saved.")
}

func TestEscReloadsAndCloses(t *testing.T) {
	ed := &fakeEditor{settings: models.DefaultSettings()}
	m := New(ed, tabs)
	m = press(m, tea.KeyTab, 1)
	m = typeText(m, "5")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
	assert.Equal(t, "25", m.fields[fieldFocus].input.Value())
}
