package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adibhanna/focuslock/internal/models"
)

func TestSettingsFile_MissingFileGivesDefaults(t *testing.T) {
	f, err := NewSettingsFile(filepath.Join(t.TempDir(), "focuslock", "settings.yaml"))
	require.NoError(t, err)

	settings, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)
}

func TestSettingsFile_WriteMergesPatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focuslock", "settings.yaml")
	f, err := NewSettingsFile(path)
	require.NoError(t, err)

	require.NoError(t, f.Write(models.SettingsPatch{
		AppMode:              models.Ptr(models.AppModeConcentration),
		FocusDurationMinutes: models.Ptr(50),
	}))
	require.NoError(t, f.Write(models.SettingsPatch{
		BlockedApps: &[]string{"org.chat", "com.game"},
		AlarmSound:  models.Ptr(models.SoundNone),
	}))

	settings, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, models.AppModeConcentration, settings.AppMode)
	assert.Equal(t, 50, settings.FocusDurationMinutes)
	assert.Equal(t, 5, settings.BreakDurationMinutes)
	assert.Equal(t, []string{"com.game", "org.chat"}, settings.BlockedApps)
	assert.Equal(t, models.SoundNone, settings.AlarmSound)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "focus_duration_minutes: 50")
}

func TestSettingsFile_InvalidFieldsKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_mode: turbo
focus_duration_minutes: -5
break_duration_minutes: 10
cycle_count: 0
blocked_tabs: [timer, social]
alarm_sound: ""
alarm_vibration: false
`), 0o644))
	f, err := NewSettingsFile(path)
	require.NoError(t, err)

	settings, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, models.AppModeFree, settings.AppMode)
	assert.Equal(t, 25, settings.FocusDurationMinutes)
	assert.Equal(t, 10, settings.BreakDurationMinutes)
	assert.Equal(t, 4, settings.CycleCount)
	assert.Equal(t, []string{"social"}, settings.BlockedTabs)
	assert.Equal(t, models.SoundDefault, settings.AlarmSound)
	assert.False(t, settings.AlarmVibration)
}

func TestSettingsFile_BrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app_mode: [unclosed"), 0o644))
	f, err := NewSettingsFile(path)
	require.NoError(t, err)

	settings, err := f.Read()
	assert.ErrorContains(t, err, "parse settings yaml")
	assert.Equal(t, models.DefaultSettings(), settings)
	assert.Error(t, f.Write(models.SettingsPatch{CycleCount: models.Ptr(2)}))
}
