package models

import "sort"

// AppMode selects between a free-running timer and locked concentration cycles.
type AppMode string

const (
	AppModeFree          AppMode = "free"
	AppModeConcentration AppMode = "concentration"
)

// Valid reports whether a is a known app mode.
func (a AppMode) Valid() bool {
	return a == AppModeFree || a == AppModeConcentration
}

// TimerTabID identifies the timer's own tab. It can never be blocked.
const TimerTabID = "timer"

// Built-in alarm sound ids.
const (
	SoundDefault = "default"
	SoundNone    = "none"
	SoundSilent  = "silent"
)

// TimerSettings is the user configuration the engine reads.
type TimerSettings struct {
	AppMode              AppMode  `json:"app_mode" yaml:"app_mode"`
	FocusDurationMinutes int      `json:"focus_duration_minutes" yaml:"focus_duration_minutes"`
	BreakDurationMinutes int      `json:"break_duration_minutes" yaml:"break_duration_minutes"`
	CycleCount           int      `json:"cycle_count" yaml:"cycle_count"`
	BlockedTabs          []string `json:"blocked_tabs" yaml:"blocked_tabs"`
	BlockedApps          []string `json:"blocked_apps" yaml:"blocked_apps"`
	AlarmEnabled         bool     `json:"alarm_enabled" yaml:"alarm_enabled"`
	BreakAlarmEnabled    bool     `json:"break_alarm_enabled" yaml:"break_alarm_enabled"`
	AlarmSound           string   `json:"alarm_sound" yaml:"alarm_sound"`
	AlarmVibration       bool     `json:"alarm_vibration" yaml:"alarm_vibration"`
}

func DefaultSettings() TimerSettings {
	return TimerSettings{
		AppMode:              AppModeFree,
		FocusDurationMinutes: 25,
		BreakDurationMinutes: 5,
		CycleCount:           4,
		BlockedTabs:          []string{},
		BlockedApps:          []string{},
		AlarmEnabled:         true,
		BreakAlarmEnabled:    true,
		AlarmSound:           SoundDefault,
		AlarmVibration:       true,
	}
}

// DurationFor returns the full length of a phase in seconds.
func (s TimerSettings) DurationFor(mode Mode) int {
	if mode == ModeBreak {
		return s.BreakDurationMinutes * 60
	}
	return s.FocusDurationMinutes * 60
}

// IsTabBlocked reports whether tab is in the blocked set.
func (s TimerSettings) IsTabBlocked(tab string) bool {
	for _, blocked := range s.BlockedTabs {
		if blocked == tab {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with s.
func (s TimerSettings) Clone() TimerSettings {
	s.BlockedTabs = append([]string{}, s.BlockedTabs...)
	s.BlockedApps = append([]string{}, s.BlockedApps...)
	return s
}

// SettingsPatch is a partial update. Nil fields are left untouched; the
// blocked sets are replaced wholesale when present.
type SettingsPatch struct {
	AppMode              *AppMode  `json:"app_mode,omitempty" yaml:"app_mode,omitempty"`
	FocusDurationMinutes *int      `json:"focus_duration_minutes,omitempty" yaml:"focus_duration_minutes,omitempty"`
	BreakDurationMinutes *int      `json:"break_duration_minutes,omitempty" yaml:"break_duration_minutes,omitempty"`
	CycleCount           *int      `json:"cycle_count,omitempty" yaml:"cycle_count,omitempty"`
	BlockedTabs          *[]string `json:"blocked_tabs,omitempty" yaml:"blocked_tabs,omitempty"`
	BlockedApps          *[]string `json:"blocked_apps,omitempty" yaml:"blocked_apps,omitempty"`
	AlarmEnabled         *bool     `json:"alarm_enabled,omitempty" yaml:"alarm_enabled,omitempty"`
	BreakAlarmEnabled    *bool     `json:"break_alarm_enabled,omitempty" yaml:"break_alarm_enabled,omitempty"`
	AlarmSound           *string   `json:"alarm_sound,omitempty" yaml:"alarm_sound,omitempty"`
	AlarmVibration       *bool     `json:"alarm_vibration,omitempty" yaml:"alarm_vibration,omitempty"`
}

// Merge applies the patch on top of base and returns the result.
func (p SettingsPatch) Merge(base TimerSettings) TimerSettings {
	next := base.Clone()
	if p.AppMode != nil {
		next.AppMode = *p.AppMode
	}
	if p.FocusDurationMinutes != nil {
		next.FocusDurationMinutes = *p.FocusDurationMinutes
	}
	if p.BreakDurationMinutes != nil {
		next.BreakDurationMinutes = *p.BreakDurationMinutes
	}
	if p.CycleCount != nil {
		next.CycleCount = *p.CycleCount
	}
	if p.BlockedTabs != nil {
		next.BlockedTabs = normalizeSet(*p.BlockedTabs)
	}
	if p.BlockedApps != nil {
		next.BlockedApps = normalizeSet(*p.BlockedApps)
	}
	if p.AlarmEnabled != nil {
		next.AlarmEnabled = *p.AlarmEnabled
	}
	if p.BreakAlarmEnabled != nil {
		next.BreakAlarmEnabled = *p.BreakAlarmEnabled
	}
	if p.AlarmSound != nil {
		next.AlarmSound = *p.AlarmSound
	}
	if p.AlarmVibration != nil {
		next.AlarmVibration = *p.AlarmVibration
	}
	return next
}

// TouchesDurations reports whether the patch changes a phase length.
func (p SettingsPatch) TouchesDurations() bool {
	return p.FocusDurationMinutes != nil || p.BreakDurationMinutes != nil
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p == SettingsPatch{}
}

// normalizeSet drops duplicates and empty ids and sorts the result.
func normalizeSet(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Ptr returns a pointer to v, handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
