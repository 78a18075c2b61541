package timer

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/adibhanna/focuslock/internal/errclass"
	"github.com/adibhanna/focuslock/internal/models"
)

type fakeController struct {
	calls   []string
	modeErr error
}

func (f *fakeController) Start() error { f.calls = append(f.calls, "start"); return nil }
func (f *fakeController) Pause() error { f.calls = append(f.calls, "pause"); return nil }
func (f *fakeController) Reset()       { f.calls = append(f.calls, "reset") }
func (f *fakeController) SetMode(mode models.Mode) error {
	f.calls = append(f.calls, "mode:"+string(mode))
	return f.modeErr
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestUpdate_KeysDriveController(t *testing.T) {
	ctrl := &fakeController{}
	m := New(ctrl, models.Snapshot{Mode: models.ModeFocus, AppMode: models.AppModeFree})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	m = m.SetSnapshot(models.Snapshot{Mode: models.ModeFocus, IsRunning: true})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	m, _ = m.Update(runes("r"))
	_, _ = m.Update(runes("m"))

	assert.Equal(t, []string{"start", "pause", "reset", "mode:break"}, ctrl.calls)
}

func TestUpdate_RejectedCommandShowsReason(t *testing.T) {
	ctrl := &fakeController{modeErr: errclass.ErrInvalidTransition.WithMessage("mode can only change while stopped")}
	m := New(ctrl, models.Snapshot{Mode: models.ModeFocus, IsRunning: true})

	m, _ = m.Update(runes("m"))
	assert.Contains(t, m.View(), "mode can only change while stopped")
	assert.NotContains(t, m.View(), "E_INVALID_TRANSITION")

	m = m.SetSnapshot(models.Snapshot{Mode: models.ModeFocus})
	assert.NotContains(t, m.View(), "mode can only change while stopped")
}

func TestRenderDigits(t *testing.T) {
	rows := strings.Split(renderDigits(25, 0), "\n")
	assert.Len(t, rows, 5)
	assert.Equal(t, "120:05", renderDigits(120, 5))
}

func TestKeyBindings_ModeOnlyInFreeMode(t *testing.T) {
	free := New(&fakeController{}, models.Snapshot{AppMode: models.AppModeFree})
	locked := New(&fakeController{}, models.Snapshot{AppMode: models.AppModeConcentration})
	assert.Len(t, free.KeyBindings(), 3)
	assert.Len(t, locked.KeyBindings(), 2)
}
