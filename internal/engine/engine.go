// Package engine is the focus session engine: the single mutation entry point
// that ties the session clock, the block coordinator and the alarm subsystem
// together.
//
// Every command runs under one mutex and returns without waiting on the
// platform bridge. Native blocking is reconciled by the block coordinator's
// goroutine and completion alarms are played by the alarm dispatcher, so a
// slow or broken bridge never delays a tick.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adibhanna/focuslock/internal/alarm"
	"github.com/adibhanna/focuslock/internal/block"
	"github.com/adibhanna/focuslock/internal/bridge"
	"github.com/adibhanna/focuslock/internal/models"
	"github.com/adibhanna/focuslock/internal/session"
)

// SettingsStore persists TimerSettings.
type SettingsStore interface {
	Read() (models.TimerSettings, error)
	Write(patch models.SettingsPatch) error
}

// Recorder keeps the completed-phase log used for statistics.
type Recorder interface {
	RecordPhase(record models.PhaseRecord) error
	CompletedCycles() (int, error)
}

// Options wires an Engine to its collaborators. Store and Recorder are
// optional; without them settings and statistics live in memory only.
type Options struct {
	Store    SettingsStore
	Blocker  bridge.Blocker
	Media    bridge.Media
	Notifier bridge.Notifier
	Sounds   *alarm.Library
	Recorder Recorder
	Logger   *slog.Logger
	Now      func() time.Time
	// BridgeTimeout bounds each platform call. Zero means bridge.DefaultTimeout.
	BridgeTimeout time.Duration
}

// Engine owns one focus session.
type Engine struct {
	logger   *slog.Logger
	now      func() time.Time
	store    SettingsStore
	recorder Recorder

	blocks     *block.Coordinator
	alarms     *alarm.Alarms
	dispatcher *alarm.Dispatcher

	// lifecycleMu serializes foreground/background hand-offs.
	lifecycleMu sync.Mutex

	mu           sync.Mutex
	clock        *session.Clock
	exit         *ExitConfirmation
	foreground   bool
	backgroundAt time.Time
	scheduled    []bridge.Handle
	// scheduleGen invalidates notification batches still in flight.
	scheduleGen uint64
	subscribers []chan Event
	closed      bool
}

// New loads settings and the lifetime cycle count and starts the engine in
// the foreground with a stopped FOCUS phase.
func New(opts Options) (*Engine, error) {
	if opts.Blocker == nil || opts.Media == nil || opts.Notifier == nil {
		return nil, errors.New("engine: platform bridge is required")
	}
	if opts.Sounds == nil {
		return nil, errors.New("engine: sound library is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	settings := models.DefaultSettings()
	if opts.Store != nil {
		loaded, err := opts.Store.Read()
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}
		settings = loaded
	}
	if err := validateSettings(settings); err != nil {
		opts.Logger.Warn("stored settings invalid, using defaults", "error", err)
		settings = models.DefaultSettings()
	}

	completed := 0
	if opts.Recorder != nil {
		n, err := opts.Recorder.CompletedCycles()
		if err != nil {
			opts.Logger.Warn("could not count completed cycles", "error", err)
		}
		completed = n
	}

	e := &Engine{
		logger:     opts.Logger.With("component", "engine"),
		now:        opts.Now,
		store:      opts.Store,
		recorder:   opts.Recorder,
		clock:      session.New(settings, completed, opts.Now),
		foreground: true,
	}
	e.blocks = block.New(opts.Blocker, block.Options{
		Logger:  opts.Logger,
		Timeout: opts.BridgeTimeout,
		Now:     opts.Now,
		OnCondition: func(c block.Condition) {
			e.reportCondition(c.Err)
		},
	})
	e.alarms = alarm.New(opts.Media, opts.Notifier, opts.Sounds, alarm.Options{
		Logger:  opts.Logger,
		Timeout: opts.BridgeTimeout,
	})
	e.dispatcher = alarm.NewDispatcher(opts.Logger)

	e.logger.Debug("engine ready", "app_mode", settings.AppMode, "completed_cycles", completed)
	return e, nil
}

// Snapshot returns the current session view.
func (e *Engine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Snapshot()
}

// Settings returns the settings in effect.
func (e *Engine) Settings() models.TimerSettings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Settings()
}

// Flush waits until native blocking has converged and every queued alarm has
// been delivered.
func (e *Engine) Flush(ctx context.Context) error {
	if err := e.blocks.Flush(ctx); err != nil {
		return err
	}
	return e.dispatcher.Drain(ctx)
}

// Close lifts any native block, finishes queued alarms and closes every
// subscription. The session is not persisted; only completed phases are.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	err := e.blocks.Close(ctx)
	e.dispatcher.Close()

	e.mu.Lock()
	subscribers := e.subscribers
	e.subscribers = nil
	e.mu.Unlock()
	for _, ch := range subscribers {
		close(ch)
	}
	if err != nil {
		e.logger.Warn("lifting native block on close failed", "error", err)
	}
	return err
}
