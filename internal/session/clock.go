// Package session implements the session clock and mode state machine.
//
// A Clock is a plain value with a single owner. It is not safe for concurrent
// use; callers serialize access (the engine holds one mutex around it). Time
// only advances when the owner calls Tick, so the clock works the same when
// driven by a 1 Hz ticker, by catch-up accounting after a suspension, or by a
// test calling Tick in a loop.
package session

import (
	"time"

	"github.com/adibhanna/focuslock/internal/errclass"
	"github.com/adibhanna/focuslock/internal/models"
)

// PhaseCompleted describes a phase that just ran to zero.
type PhaseCompleted struct {
	Mode            models.Mode
	AppMode         models.AppMode
	Cycle           int
	StartedAt       time.Time
	EndedAt         time.Time
	DurationSeconds int
	// SessionEnded is set when the last BREAK of a concentration session
	// completed, or whenever a phase completes in free mode.
	SessionEnded bool
}

// Record converts the event into a persisted statistics record.
func (p PhaseCompleted) Record(id string) models.PhaseRecord {
	record := models.PhaseRecord{
		ID:              id,
		Mode:            p.Mode,
		AppMode:         p.AppMode,
		Cycle:           p.Cycle,
		StartTime:       p.StartedAt,
		EndTime:         p.EndedAt,
		DurationSeconds: p.DurationSeconds,
	}
	record.Stamp()
	return record
}

// Clock owns a TimerSession and the settings it counts against.
type Clock struct {
	settings    models.TimerSettings
	session     models.TimerSession
	phaseStart  time.Time
	exitPending bool
	now         func() time.Time
}

// New returns a stopped clock at the start of a FOCUS phase.
func New(settings models.TimerSettings, completedCycles int, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	if completedCycles < 0 {
		completedCycles = 0
	}
	return &Clock{
		settings: settings.Clone(),
		session: models.TimerSession{
			Mode:            models.ModeFocus,
			TimeLeftSeconds: settings.DurationFor(models.ModeFocus),
			CurrentCycle:    1,
			CompletedCycles: completedCycles,
		},
		now: now,
	}
}

// Session returns a copy of the live session.
func (c *Clock) Session() models.TimerSession {
	return c.session
}

// Settings returns a copy of the settings the clock counts against.
func (c *Clock) Settings() models.TimerSettings {
	return c.settings.Clone()
}

// Locked reports whether the clock is in a locked concentration phase.
func (c *Clock) Locked() bool {
	return IsLocked(c.settings.AppMode, c.session.Mode, c.session.IsRunning)
}

// ExitPending reports whether an unlock confirmation is outstanding.
func (c *Clock) ExitPending() bool {
	return c.exitPending
}

// SetExitPending marks an unlock confirmation as outstanding or resolved.
func (c *Clock) SetExitPending(pending bool) {
	c.exitPending = pending
}

// Snapshot returns the presentation view of the clock.
func (c *Clock) Snapshot() models.Snapshot {
	return models.Snapshot{
		Mode:            c.session.Mode,
		AppMode:         c.settings.AppMode,
		TimeLeftSeconds: c.session.TimeLeftSeconds,
		DurationSeconds: c.settings.DurationFor(c.session.Mode),
		IsRunning:       c.session.IsRunning,
		CurrentCycle:    c.session.CurrentCycle,
		CycleCount:      c.settings.CycleCount,
		CompletedCycles: c.session.CompletedCycles,
		IsLocked:        c.Locked(),
		ExitPending:     c.exitPending,
	}
}

// Start resumes the countdown. Starting a running clock is a no-op.
func (c *Clock) Start() error {
	if c.exitPending {
		return errclass.ErrInvalidTransition.WithMessage("start: exit confirmation pending")
	}
	if c.session.IsRunning {
		return nil
	}
	if c.session.TimeLeftSeconds <= 0 {
		c.session.TimeLeftSeconds = c.settings.DurationFor(c.session.Mode)
	}
	c.session.IsRunning = true
	if c.phaseStart.IsZero() {
		c.phaseStart = c.now()
	}
	return nil
}

// Pause freezes the countdown. Pausing a stopped clock is a no-op.
func (c *Clock) Pause() error {
	if c.exitPending {
		return errclass.ErrInvalidTransition.WithMessage("pause: exit confirmation pending")
	}
	c.session.IsRunning = false
	return nil
}

// SetMode switches between FOCUS and BREAK by hand. Only free mode allows it,
// and only while stopped.
func (c *Clock) SetMode(mode models.Mode) error {
	if !mode.Valid() {
		return errclass.ErrInvalidTransition.WithMessagef("set mode: unknown mode %q", mode)
	}
	if c.settings.AppMode == models.AppModeConcentration {
		return errclass.ErrInvalidTransition.WithMessage("set mode: not allowed in concentration mode")
	}
	if c.session.IsRunning {
		return errclass.ErrInvalidTransition.WithMessage("set mode: timer is running")
	}
	c.session.Mode = mode
	c.session.TimeLeftSeconds = c.settings.DurationFor(mode)
	c.phaseStart = time.Time{}
	return nil
}

// Reset restores the full duration of the current mode and stops the clock.
// Cycle counters are untouched.
func (c *Clock) Reset() {
	c.session.TimeLeftSeconds = c.settings.DurationFor(c.session.Mode)
	c.session.IsRunning = false
	c.phaseStart = time.Time{}
}

// Tick advances the countdown by one second. When the phase reaches zero it
// is completed before Tick returns.
func (c *Clock) Tick() (PhaseCompleted, bool) {
	if !c.session.IsRunning {
		return PhaseCompleted{}, false
	}
	if c.session.TimeLeftSeconds > 0 {
		c.session.TimeLeftSeconds--
	}
	if c.session.TimeLeftSeconds > 0 {
		return PhaseCompleted{}, false
	}
	return c.CompleteCurrentPhase(), true
}

// Advance ticks up to n times and returns every completion in order. It stops
// early once the clock is no longer running.
func (c *Clock) Advance(n int) []PhaseCompleted {
	var completed []PhaseCompleted
	for i := 0; i < n && c.session.IsRunning; i++ {
		if event, ok := c.Tick(); ok {
			completed = append(completed, event)
		}
	}
	return completed
}

// CompleteCurrentPhase ends the current phase and moves the state machine on.
// Tick calls it at zero; calling it directly skips the rest of the phase.
func (c *Clock) CompleteCurrentPhase() PhaseCompleted {
	endedAt := c.now()
	startedAt := c.phaseStart
	if startedAt.IsZero() {
		startedAt = endedAt
	}
	event := PhaseCompleted{
		Mode:            c.session.Mode,
		AppMode:         c.settings.AppMode,
		Cycle:           c.session.CurrentCycle,
		StartedAt:       startedAt,
		EndedAt:         endedAt,
		DurationSeconds: c.settings.DurationFor(c.session.Mode),
	}
	if c.session.Mode == models.ModeFocus {
		c.session.CompletedCycles++
	}

	if c.settings.AppMode != models.AppModeConcentration {
		c.session.IsRunning = false
		c.session.TimeLeftSeconds = c.settings.DurationFor(c.session.Mode)
		c.phaseStart = time.Time{}
		event.SessionEnded = true
		return event
	}

	if c.session.Mode == models.ModeBreak {
		c.session.CurrentCycle++
		if c.session.CurrentCycle > c.settings.CycleCount {
			c.session.IsRunning = false
			c.session.CurrentCycle = 1
			c.session.Mode = models.ModeFocus
			c.session.TimeLeftSeconds = c.settings.DurationFor(models.ModeFocus)
			c.phaseStart = time.Time{}
			event.SessionEnded = true
			return event
		}
	}

	c.session.Mode = c.session.Mode.Other()
	c.session.TimeLeftSeconds = c.settings.DurationFor(c.session.Mode)
	c.session.IsRunning = true
	c.phaseStart = endedAt
	return event
}

// ApplySettings swaps in new settings. Changing a duration or the app mode
// while running is rejected without mutation.
func (c *Clock) ApplySettings(next models.TimerSettings) error {
	prev := c.settings
	durationsChanged := prev.FocusDurationMinutes != next.FocusDurationMinutes ||
		prev.BreakDurationMinutes != next.BreakDurationMinutes
	appModeChanged := prev.AppMode != next.AppMode

	if c.session.IsRunning {
		if durationsChanged {
			return errclass.ErrInvalidTransition.WithMessage("update settings: durations cannot change while running")
		}
		if appModeChanged {
			return errclass.ErrInvalidTransition.WithMessage("update settings: app mode cannot change while running")
		}
	}

	c.settings = next.Clone()
	if c.session.IsRunning {
		if c.session.CurrentCycle > c.settings.CycleCount {
			c.session.CurrentCycle = c.settings.CycleCount
		}
		return nil
	}

	if appModeChanged {
		c.session.CurrentCycle = 1
		if next.AppMode == models.AppModeConcentration {
			c.session.Mode = models.ModeFocus
			c.session.TimeLeftSeconds = c.settings.DurationFor(models.ModeFocus)
			c.phaseStart = time.Time{}
		}
	}
	if prev.DurationFor(c.session.Mode) != c.settings.DurationFor(c.session.Mode) {
		c.session.TimeLeftSeconds = c.settings.DurationFor(c.session.Mode)
		c.phaseStart = time.Time{}
	}
	if c.session.TimeLeftSeconds > c.settings.DurationFor(c.session.Mode) {
		c.session.TimeLeftSeconds = c.settings.DurationFor(c.session.Mode)
	}
	if c.session.CurrentCycle > c.settings.CycleCount {
		c.session.CurrentCycle = 1
	}
	return nil
}
