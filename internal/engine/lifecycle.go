package engine

import (
	"context"
	"errors"
	"time"

	"github.com/adibhanna/focuslock/internal/alarm"
	"github.com/adibhanna/focuslock/internal/bridge"
)

// SetForeground hands alarm delivery between the live ticker and the OS.
//
// Going to the background schedules one notification per phase completion the
// running session would produce, because nothing may tick until the process
// resumes. Coming back catches the clock up by the wall time that passed,
// recording the missed completions without replaying their alarms, then
// withdraws the remaining notifications and silences anything still sounding.
//
// Commands issued while backgrounded first catch up to the current wall time
// and then replace the scheduled notifications with a fresh projection.
func (e *Engine) SetForeground(ctx context.Context, foreground bool) error {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()
	if foreground {
		return e.enterForeground(ctx)
	}
	return e.enterBackground(ctx)
}

type pendingAlarm struct {
	title   string
	body    string
	at      time.Time
	soundID string
}

// pendingAlarmsLocked projects the notifications the session needs from now
// on. A stopped session needs none.
func (e *Engine) pendingAlarmsLocked(now time.Time) []pendingAlarm {
	settings := e.clock.Settings()
	var pending []pendingAlarm
	for _, p := range e.clock.ProjectCompletions(now) {
		if !alarmWanted(settings, p.Mode) {
			continue
		}
		notice := alarm.CompletionNotice(p.Mode, p.SessionEnded)
		pending = append(pending, pendingAlarm{title: notice.Title, body: notice.Body, at: p.At, soundID: settings.AlarmSound})
	}
	return pending
}

// catchUpLocked brings a backgrounded clock up to the current wall time. The
// completions it records have already been announced by the OS.
func (e *Engine) catchUpLocked() {
	if e.foreground {
		return
	}
	now := e.now()
	elapsed := int(now.Sub(e.backgroundAt) / time.Second)
	if elapsed <= 0 {
		return
	}
	e.backgroundAt = e.backgroundAt.Add(time.Duration(elapsed) * time.Second)
	completed := e.clock.Advance(elapsed)
	for _, event := range completed {
		e.completeLocked(event, false)
	}
	if len(completed) > 0 {
		e.changedLocked()
	}
	e.logger.Debug("caught up in background", "elapsed_seconds", elapsed, "caught_up", len(completed))
}

// rescheduleLocked swaps the background notifications for a projection of the
// current session. The bridge calls run on the dispatcher so commands never
// wait on them.
func (e *Engine) rescheduleLocked() {
	if e.foreground {
		return
	}
	e.scheduleGen++
	gen := e.scheduleGen
	stale := e.scheduled
	e.scheduled = nil
	pending := e.pendingAlarmsLocked(e.now())

	e.dispatcher.Push(func(ctx context.Context) {
		var errs []error
		for _, handle := range stale {
			if err := e.alarms.Cancel(ctx, handle); err != nil {
				errs = append(errs, err)
			}
		}
		handles, err := e.schedule(ctx, pending)
		errs = append(errs, err)
		errs = append(errs, e.adoptScheduled(ctx, gen, handles))
		if err := errors.Join(errs...); err != nil {
			e.reportCondition(err)
		}
	})
}

func (e *Engine) schedule(ctx context.Context, pending []pendingAlarm) ([]bridge.Handle, error) {
	var (
		handles []bridge.Handle
		errs    []error
	)
	for _, p := range pending {
		handle, err := e.alarms.ScheduleBackground(ctx, p.title, p.body, p.at, p.soundID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		handles = append(handles, handle)
	}
	return handles, errors.Join(errs...)
}

// adoptScheduled keeps handles scheduled for generation gen, or cancels them
// when a later command or a return to the foreground superseded that batch.
func (e *Engine) adoptScheduled(ctx context.Context, gen uint64, handles []bridge.Handle) error {
	e.mu.Lock()
	current := gen == e.scheduleGen && !e.foreground
	if current {
		e.scheduled = append(e.scheduled, handles...)
	}
	e.mu.Unlock()
	if current {
		return nil
	}

	e.logger.Debug("dropping superseded notifications", "count", len(handles))
	var errs []error
	for _, handle := range handles {
		if err := e.alarms.Cancel(ctx, handle); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) enterBackground(ctx context.Context) error {
	e.mu.Lock()
	if !e.foreground {
		e.mu.Unlock()
		return nil
	}
	now := e.now()
	e.foreground = false
	e.backgroundAt = now
	e.scheduleGen++
	gen := e.scheduleGen
	pending := e.pendingAlarmsLocked(now)
	e.mu.Unlock()

	handles, err := e.schedule(ctx, pending)
	e.logger.Debug("entered background", "scheduled", len(handles), "requested", len(pending))
	return errors.Join(err, e.adoptScheduled(ctx, gen, handles))
}

func (e *Engine) enterForeground(ctx context.Context) error {
	e.mu.Lock()
	if e.foreground {
		e.mu.Unlock()
		return nil
	}
	e.catchUpLocked()
	e.foreground = true
	e.scheduleGen++
	e.changedLocked()
	handles := e.scheduled
	e.scheduled = nil
	e.mu.Unlock()

	e.logger.Debug("entered foreground", "withdrawn", len(handles))

	var errs []error
	for _, handle := range handles {
		if err := e.alarms.Cancel(ctx, handle); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.alarms.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
