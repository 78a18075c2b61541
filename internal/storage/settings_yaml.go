package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/adibhanna/focuslock/internal/models"
)

const settingsFileName = "settings.yaml"

// SettingsFile stores TimerSettings as YAML.
type SettingsFile struct {
	path string
	mu   sync.Mutex
}

// DefaultSettingsPath is <UserConfigDir>/focuslock/settings.yaml.
func DefaultSettingsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "focuslock", settingsFileName), nil
}

// NewSettingsFile uses path, or DefaultSettingsPath when path is empty.
func NewSettingsFile(path string) (*SettingsFile, error) {
	if path == "" {
		p, err := DefaultSettingsPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &SettingsFile{path: path}, nil
}

func (f *SettingsFile) Path() string {
	return f.path
}

// Read loads the settings. A missing file yields the defaults, and each
// field holding an invalid value keeps its default.
func (f *SettingsFile) Read() (models.TimerSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readLocked()
}

func (f *SettingsFile) readLocked() (models.TimerSettings, error) {
	settings := models.DefaultSettings()
	rawData, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData models.SettingsPatch
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}
	return sanitize(fileData).Merge(settings), nil
}

// Write merges patch into the stored settings.
func (f *SettingsFile) Write(patch models.SettingsPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.readLocked()
	if err != nil {
		return err
	}
	next := patch.Merge(current)

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	serialized, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}
	if err := writeFileAtomic(f.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// sanitize drops patch fields whose values are out of range.
func sanitize(p models.SettingsPatch) models.SettingsPatch {
	if p.AppMode != nil && !p.AppMode.Valid() {
		p.AppMode = nil
	}
	if p.FocusDurationMinutes != nil && *p.FocusDurationMinutes <= 0 {
		p.FocusDurationMinutes = nil
	}
	if p.BreakDurationMinutes != nil && *p.BreakDurationMinutes <= 0 {
		p.BreakDurationMinutes = nil
	}
	if p.CycleCount != nil && *p.CycleCount <= 0 {
		p.CycleCount = nil
	}
	if p.BlockedTabs != nil {
		tabs := slices.DeleteFunc(slices.Clone(*p.BlockedTabs), func(tab string) bool {
			return tab == models.TimerTabID
		})
		p.BlockedTabs = &tabs
	}
	if p.AlarmSound != nil && *p.AlarmSound == "" {
		p.AlarmSound = nil
	}
	return p
}
