package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/adibhanna/focuslock/internal/alarm"
	"github.com/adibhanna/focuslock/internal/errclass"
	"github.com/adibhanna/focuslock/internal/models"
	"github.com/adibhanna/focuslock/internal/session"
)

// Start begins or resumes the countdown.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.catchUpLocked()
	if err := e.clock.Start(); err != nil {
		return err
	}
	e.changedLocked()
	e.rescheduleLocked()
	return nil
}

// Pause freezes the countdown.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.catchUpLocked()
	if err := e.clock.Pause(); err != nil {
		return err
	}
	e.changedLocked()
	e.rescheduleLocked()
	return nil
}

// Reset restores the full duration of the current mode and stops the clock.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.catchUpLocked()
	e.clock.Reset()
	e.changedLocked()
	e.rescheduleLocked()
}

// SetMode switches FOCUS and BREAK by hand in free mode.
func (e *Engine) SetMode(mode models.Mode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.catchUpLocked()
	if err := e.clock.SetMode(mode); err != nil {
		e.logger.Debug("set mode rejected", "mode", mode, "error", err)
		return err
	}
	e.changedLocked()
	e.rescheduleLocked()
	return nil
}

// Tick advances the clock by one second. The host calls it at 1 Hz while in
// the foreground; ticks delivered while backgrounded are ignored because
// SetForeground catches up by wall time instead.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.foreground {
		return
	}
	if !e.clock.Session().IsRunning {
		return
	}
	if event, ok := e.clock.Tick(); ok {
		e.completeLocked(event, true)
	}
	e.changedLocked()
}

// Advance ticks n times, as a coarse scheduler or test harness would, and
// returns the phases that completed.
func (e *Engine) Advance(n int) []session.PhaseCompleted {
	e.mu.Lock()
	defer e.mu.Unlock()
	completed := e.clock.Advance(n)
	for _, event := range completed {
		e.completeLocked(event, e.foreground)
	}
	e.changedLocked()
	return completed
}

// completeLocked runs the completion pipeline for one phase: persist the
// record, queue the alarm, re-evaluate the lock, notify subscribers.
func (e *Engine) completeLocked(event session.PhaseCompleted, playAlarm bool) {
	if e.recorder != nil {
		if err := e.recorder.RecordPhase(event.Record(uuid.NewString())); err != nil {
			e.logger.Error("recording phase failed", "mode", event.Mode, "error", err)
		}
	}

	settings := e.clock.Settings()
	if playAlarm && alarmWanted(settings, event.Mode) {
		soundID := settings.AlarmSound
		vibrate := settings.AlarmVibration
		notice := alarm.CompletionNotice(event.Mode, event.SessionEnded)
		e.dispatcher.Push(func(ctx context.Context) {
			if err := e.alarms.PlayImmediate(ctx, soundID, vibrate, notice); err != nil {
				e.reportCondition(err)
			}
		})
	}

	e.syncLockLocked()
	e.logger.Debug("phase completed", "mode", event.Mode, "cycle", event.Cycle, "session_ended", event.SessionEnded)
	e.emitLocked(Event{Type: EventPhaseCompleted, Phase: event, Snapshot: e.clock.Snapshot(), At: event.EndedAt})
}

func alarmWanted(settings models.TimerSettings, mode models.Mode) bool {
	if mode == models.ModeBreak {
		return settings.BreakAlarmEnabled
	}
	return settings.AlarmEnabled
}

// changedLocked re-derives the lock and publishes a snapshot.
func (e *Engine) changedLocked() {
	e.syncLockLocked()
	e.emitSnapshotLocked()
}

// syncLockLocked hands the derived lock state to the coordinator. A pending
// exit confirmation is dropped once the lock lifts by any route.
func (e *Engine) syncLockLocked() {
	locked := e.clock.Locked()
	if !locked && e.exit != nil {
		e.exit = nil
		e.clock.SetExitPending(false)
	}
	e.blocks.SetLocked(locked, e.clock.Settings().BlockedApps)
}

// UpdateSettings merges patch into the current settings. Durations and the
// app mode cannot change while running. The store is written after the
// clock accepted the change; a store failure is returned but the new settings
// stay in effect.
func (e *Engine) UpdateSettings(patch models.SettingsPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.updateSettingsLocked(patch)
}

func (e *Engine) updateSettingsLocked(patch models.SettingsPatch) error {
	if patch.Empty() {
		return nil
	}
	next := patch.Merge(e.clock.Settings())
	if err := validateSettings(next); err != nil {
		return err
	}
	if patch.AlarmSound != nil {
		if _, ok := e.alarms.Sounds().Get(*patch.AlarmSound); !ok {
			return errclass.ErrInvalidTransition.WithMessagef("update settings: unknown alarm sound %q", *patch.AlarmSound)
		}
	}
	e.catchUpLocked()
	if err := e.clock.ApplySettings(next); err != nil {
		return err
	}
	e.changedLocked()
	e.rescheduleLocked()

	if e.store != nil {
		if err := e.store.Write(patch); err != nil {
			e.logger.Error("saving settings failed", "error", err)
			return fmt.Errorf("save settings: %w", err)
		}
	}
	return nil
}

// SetBlockedTabs replaces the set of tabs blocked while locked.
func (e *Engine) SetBlockedTabs(tabs []string) error {
	return e.UpdateSettings(models.SettingsPatch{BlockedTabs: &tabs})
}

// SetBlockedApps replaces the set of native apps blocked while locked.
func (e *Engine) SetBlockedApps(apps []string) error {
	return e.UpdateSettings(models.SettingsPatch{BlockedApps: &apps})
}

func validateSettings(s models.TimerSettings) error {
	switch {
	case !s.AppMode.Valid():
		return errclass.ErrInvalidTransition.WithMessagef("settings: unknown app mode %q", s.AppMode)
	case s.FocusDurationMinutes <= 0:
		return errclass.ErrInvalidTransition.WithMessage("settings: focus duration must be positive")
	case s.BreakDurationMinutes <= 0:
		return errclass.ErrInvalidTransition.WithMessage("settings: break duration must be positive")
	case s.CycleCount <= 0:
		return errclass.ErrInvalidTransition.WithMessage("settings: cycle count must be positive")
	case slices.Contains(s.BlockedTabs, models.TimerTabID):
		return errclass.ErrInvalidTransition.WithMessage("settings: the timer tab cannot be blocked")
	}
	return nil
}
