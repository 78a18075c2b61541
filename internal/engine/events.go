package engine

import (
	"time"

	"github.com/adibhanna/focuslock/internal/models"
	"github.com/adibhanna/focuslock/internal/session"
)

// EventType identifies what an Event carries.
type EventType string

const (
	// EventSnapshot follows every state change.
	EventSnapshot EventType = "snapshot"
	// EventPhaseCompleted fires once per completed phase, in order.
	EventPhaseCompleted EventType = "phase_completed"
	// EventCondition reports a non-fatal enforcement or alarm problem.
	EventCondition EventType = "condition"
)

// Event is one update for subscribers.
type Event struct {
	Type     EventType
	Snapshot models.Snapshot
	// Phase is set for EventPhaseCompleted.
	Phase session.PhaseCompleted
	// Err is set for EventCondition.
	Err error
	At  time.Time
}

// Subscribe registers an observer. Delivery never blocks the engine: when the
// channel buffer is full the event is dropped for that subscriber. Channels
// are closed by Close.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.subscribers = append(e.subscribers, ch)
	return ch
}

func (e *Engine) emit(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitLocked(event)
}

func (e *Engine) emitLocked(event Event) {
	if event.At.IsZero() {
		event.At = e.now()
	}
	for _, ch := range e.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (e *Engine) emitSnapshotLocked() {
	e.emitLocked(Event{Type: EventSnapshot, Snapshot: e.clock.Snapshot()})
}

func (e *Engine) reportCondition(err error) {
	e.logger.Debug("condition reported", "error", err)
	e.emit(Event{Type: EventCondition, Err: err, Snapshot: e.Snapshot()})
}
