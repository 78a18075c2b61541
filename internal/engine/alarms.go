package engine

import (
	"context"
	"time"

	"github.com/adibhanna/focuslock/internal/bridge"
	"github.com/adibhanna/focuslock/internal/models"
)

var manualNotice = bridge.Notification{Title: "Alarm", Body: "Your timer went off."}

// PlayImmediateAlarm plays soundID now, for example as a preview in settings.
func (e *Engine) PlayImmediateAlarm(ctx context.Context, soundID string, vibrate bool) error {
	return e.alarms.PlayImmediate(ctx, soundID, vibrate, manualNotice)
}

// ScheduleBackgroundAlarm schedules an OS notification at at. Keep the handle
// to cancel it.
func (e *Engine) ScheduleBackgroundAlarm(ctx context.Context, title, body string, at time.Time, soundID string) (bridge.Handle, error) {
	return e.alarms.ScheduleBackground(ctx, title, body, at, soundID)
}

// CancelScheduledAlarm withdraws a notification scheduled earlier.
func (e *Engine) CancelScheduledAlarm(ctx context.Context, handle bridge.Handle) error {
	return e.alarms.Cancel(ctx, handle)
}

// StopAlarm silences the current alarm and clears every pending notification.
func (e *Engine) StopAlarm(ctx context.Context) error {
	e.mu.Lock()
	e.scheduled = nil
	e.scheduleGen++
	e.mu.Unlock()
	return e.alarms.Stop(ctx)
}

// RequestNotificationPermission asks for notification permission once.
func (e *Engine) RequestNotificationPermission(ctx context.Context) (bool, error) {
	return e.alarms.RequestNotificationPermission(ctx)
}

// AllSounds lists built-in sounds followed by imported ones.
func (e *Engine) AllSounds() []models.AlarmSound {
	return e.alarms.Sounds().All()
}

// AddCustomSound imports the audio file at path into the sound library.
func (e *Engine) AddCustomSound(path string) (models.AlarmSound, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alarms.Sounds().Add(path)
}

// RemoveCustomSound deletes an imported sound. When it was the configured
// alarm, the alarm falls back to the default sound.
func (e *Engine) RemoveCustomSound(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.alarms.Sounds().Remove(id); err != nil {
		return err
	}
	if e.clock.Settings().AlarmSound != id {
		return nil
	}
	e.logger.Info("configured alarm sound removed, using default", "id", id)
	if err := e.updateSettingsLocked(models.SettingsPatch{AlarmSound: models.Ptr(models.SoundDefault)}); err != nil {
		e.logger.Warn("resetting alarm sound failed", "error", err)
	}
	return nil
}
