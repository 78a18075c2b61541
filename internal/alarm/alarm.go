// Package alarm plays completion alarms in the foreground, schedules OS
// notifications for background delivery and manages the alarm sound library.
package alarm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/adibhanna/focuslock/internal/bridge"
	"github.com/adibhanna/focuslock/internal/models"
)

// VibrationPattern is the on/off rhythm used for alarms.
var VibrationPattern = []time.Duration{0, 500 * time.Millisecond, 250 * time.Millisecond, 500 * time.Millisecond}

// Options configures Alarms.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
}

// Alarms is the alarm and notification subsystem.
type Alarms struct {
	media    bridge.Media
	notifier bridge.Notifier
	sounds   *Library
	logger   *slog.Logger
	timeout  time.Duration

	// playMu keeps at most one alarm clip playing.
	playMu sync.Mutex

	permMu      sync.Mutex
	permAsked   bool
	permGranted bool
	permErr     error
}

// New wires the subsystem to the bridge and the sound library.
func New(media bridge.Media, notifier bridge.Notifier, sounds *Library, opts Options) *Alarms {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Alarms{
		media:    media,
		notifier: notifier,
		sounds:   sounds,
		logger:   opts.Logger.With("component", "alarm"),
		timeout:  opts.Timeout,
	}
}

// Sounds returns the sound library.
func (a *Alarms) Sounds() *Library {
	return a.sounds
}

// PlayImmediate sounds the alarm while the app is in the foreground. Any clip
// still playing is stopped first. Vibration does not depend on playback
// succeeding, and a silent notification is posted as a durable record of the
// completion. The returned error joins every bridge failure; none of them stop
// the remaining steps.
func (a *Alarms) PlayImmediate(ctx context.Context, soundID string, vibrate bool, notice bridge.Notification) error {
	a.playMu.Lock()
	defer a.playMu.Unlock()

	res := a.sounds.Resolve(soundID)
	if res.Output == OutputSilent {
		return nil
	}

	var errs []error
	if err := bridge.Guard(ctx, a.timeout, "stop media", a.media.StopMedia); err != nil {
		a.logger.Warn("stopping previous alarm failed", "error", err)
	}

	if vibrate || res.Output == OutputVibrationOnly {
		err := bridge.Guard(ctx, a.timeout, "vibrate", func(ctx context.Context) error {
			return a.media.Vibrate(ctx, VibrationPattern)
		})
		if err != nil {
			a.logger.Warn("vibration failed", "error", err)
			errs = append(errs, err)
		}
	}

	if err := a.playWithFallback(ctx, res); err != nil {
		errs = append(errs, err)
	}

	notice.Sound = bridge.NotifySilent
	_, err := a.schedule(ctx, notice, time.Time{})
	if err != nil {
		a.logger.Warn("posting completion notice failed", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *Alarms) playWithFallback(ctx context.Context, res Resolution) error {
	var errs []error
	for _, source := range res.fallbacks() {
		source := source
		err := bridge.Guard(ctx, a.timeout, "play media", func(ctx context.Context) error {
			return a.media.PlayMedia(ctx, source)
		})
		if err == nil {
			a.logger.Debug("alarm playing", "sound", res.Sound.ID, "kind", source.Kind)
			return nil
		}
		a.logger.Warn("alarm playback failed, falling back", "sound", res.Sound.ID, "kind", source.Kind, "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ScheduleBackground schedules an OS notification for a completion that may
// happen while the app is suspended. Background media playback is not
// reliable, so this path always uses the native notification sound: silent
// sounds schedule a silent notification and "none" a vibration-only one.
func (a *Alarms) ScheduleBackground(ctx context.Context, title, body string, at time.Time, soundID string) (bridge.Handle, error) {
	res := a.sounds.Resolve(soundID)
	payload := bridge.Notification{Title: title, Body: body, Sound: res.NotificationSound()}
	handle, err := a.schedule(ctx, payload, at)
	if err != nil {
		a.logger.Warn("scheduling background alarm failed", "at", at, "error", err)
		return "", err
	}
	a.logger.Debug("background alarm scheduled", "handle", handle, "at", at, "sound", payload.Sound)
	return handle, nil
}

func (a *Alarms) schedule(ctx context.Context, payload bridge.Notification, at time.Time) (bridge.Handle, error) {
	var handle bridge.Handle
	err := bridge.Guard(ctx, a.timeout, "schedule notification", func(ctx context.Context) error {
		var err error
		handle, err = a.notifier.ScheduleNotification(ctx, payload, at)
		return err
	})
	if err != nil {
		return "", err
	}
	return handle, nil
}

// Cancel withdraws one scheduled notification.
func (a *Alarms) Cancel(ctx context.Context, handle bridge.Handle) error {
	if handle == "" {
		return nil
	}
	return bridge.Guard(ctx, a.timeout, "cancel notification", func(ctx context.Context) error {
		return a.notifier.CancelNotification(ctx, handle)
	})
}

// Stop silences everything: vibration, playback and every pending
// notification. Each step is attempted even when an earlier one fails.
func (a *Alarms) Stop(ctx context.Context) error {
	a.playMu.Lock()
	defer a.playMu.Unlock()

	var errs []error
	for _, step := range []struct {
		op   string
		call func(context.Context) error
	}{
		{"cancel vibration", a.media.CancelVibration},
		{"stop media", a.media.StopMedia},
		{"cancel notifications", a.notifier.CancelAllNotifications},
	} {
		if err := bridge.Guard(ctx, a.timeout, step.op, step.call); err != nil {
			a.logger.Warn("stopping alarm step failed", "step", step.op, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RequestNotificationPermission asks once per process. Later calls return the
// first answer. A failure is reported but never affects timing or playback.
func (a *Alarms) RequestNotificationPermission(ctx context.Context) (bool, error) {
	a.permMu.Lock()
	defer a.permMu.Unlock()
	if a.permAsked {
		return a.permGranted, a.permErr
	}
	a.permAsked = true

	var granted bool
	err := bridge.Guard(ctx, a.timeout, "request notification permission", func(ctx context.Context) error {
		var err error
		granted, err = a.notifier.RequestNotificationPermission(ctx)
		return err
	})
	if err != nil {
		a.permErr = err
		a.logger.Warn("notification permission request failed", "error", err)
		return false, err
	}
	a.permGranted = granted
	return granted, nil
}

// CompletionNotice is the text shown when a phase ends.
func CompletionNotice(mode models.Mode, sessionEnded bool) bridge.Notification {
	switch {
	case sessionEnded && mode == models.ModeBreak:
		return bridge.Notification{Title: "Session complete", Body: "All focus cycles are done. Nice work."}
	case mode == models.ModeFocus:
		return bridge.Notification{Title: "Focus complete", Body: "Time for a break."}
	default:
		return bridge.Notification{Title: "Break over", Body: "Back to focus."}
	}
}
