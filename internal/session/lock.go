package session

import (
	"time"

	"github.com/adibhanna/focuslock/internal/models"
)

// IsLocked is the only definition of the lock state. It is derived on demand
// and never stored.
func IsLocked(appMode models.AppMode, mode models.Mode, running bool) bool {
	return appMode == models.AppModeConcentration && mode == models.ModeFocus && running
}

// Projection is a phase completion expected at a wall-clock instant if the
// clock keeps running without interruption.
type Projection struct {
	Mode         models.Mode
	Cycle        int
	At           time.Time
	SessionEnded bool
}

// ProjectCompletions lists every completion the running session will produce,
// assuming uninterrupted ticking from now. The clock itself is not modified.
func (c *Clock) ProjectCompletions(now time.Time) []Projection {
	if !c.session.IsRunning {
		return nil
	}
	sim := *c
	sim.settings = c.settings.Clone()
	at := now
	sim.now = func() time.Time { return at }

	var out []Projection
	for sim.session.IsRunning {
		at = at.Add(time.Duration(sim.session.TimeLeftSeconds) * time.Second)
		event := sim.CompleteCurrentPhase()
		out = append(out, Projection{
			Mode:         event.Mode,
			Cycle:        event.Cycle,
			At:           at,
			SessionEnded: event.SessionEnded,
		})
	}
	return out
}
