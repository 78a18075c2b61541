package engine

import (
	"context"

	"github.com/adibhanna/focuslock/internal/block"
	"github.com/adibhanna/focuslock/internal/bridge"
	"github.com/adibhanna/focuslock/internal/errclass"
)

// IsLocked reports whether a concentration FOCUS phase is running.
func (e *Engine) IsLocked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Locked()
}

// NavigateTo checks whether the presentation layer may switch to tab. It
// returns ErrInvalidTransition for a blocked tab while locked.
func (e *Engine) NavigateTo(tab string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return block.CheckNavigation(tab, e.clock.Locked(), e.clock.Settings().BlockedTabs)
}

// ExitConfirmation is an outstanding request to leave the lock screen. While
// it is pending Start and Pause are rejected; the caller resolves it with
// Confirm or Cancel.
type ExitConfirmation struct {
	engine *Engine
}

// RequestExitConfirmation opens an exit prompt for the locked session. Asking
// again while one is pending returns the same prompt.
func (e *Engine) RequestExitConfirmation() (*ExitConfirmation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.clock.Locked() {
		return nil, errclass.ErrInvalidTransition.WithMessage("exit confirmation: session is not locked")
	}
	if e.exit != nil {
		return e.exit, nil
	}
	e.exit = &ExitConfirmation{engine: e}
	e.clock.SetExitPending(true)
	e.emitSnapshotLocked()
	return e.exit, nil
}

// Confirm pauses the session, which lifts the lock. It fails when the prompt
// is no longer pending, for example because the phase ended meanwhile.
func (x *ExitConfirmation) Confirm() error {
	e := x.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.exit != x {
		return errclass.ErrInvalidTransition.WithMessage("exit confirmation: no longer pending")
	}
	e.exit = nil
	e.clock.SetExitPending(false)
	if err := e.clock.Pause(); err != nil {
		return err
	}
	e.logger.Info("locked session exited by user")
	e.changedLocked()
	return nil
}

// Cancel dismisses the prompt and keeps the session locked. Cancelling a
// prompt that is no longer pending does nothing.
func (x *ExitConfirmation) Cancel() {
	e := x.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.exit != x {
		return
	}
	e.exit = nil
	e.clock.SetExitPending(false)
	e.emitSnapshotLocked()
}

// PermissionStatus checks the native blocking permissions. It is never
// cached.
func (e *Engine) PermissionStatus(ctx context.Context) (bridge.Capabilities, error) {
	return e.blocks.CheckPermissions(ctx)
}

// RequestBlockPermission prompts for blocking permissions and, when they are
// now granted, re-applies blocking for a session that is already locked.
func (e *Engine) RequestBlockPermission(ctx context.Context) (bridge.Capabilities, error) {
	caps, err := e.blocks.RequestPermission(ctx)
	if err != nil {
		return nil, err
	}
	if caps.BlockingAllowed() && e.IsLocked() {
		e.blocks.Refresh()
	}
	return caps, nil
}

// InstalledApps lists apps the user may choose to block. Platforms that
// cannot enumerate apps return an error wrapping bridge.ErrUnsupported.
func (e *Engine) InstalledApps(ctx context.Context) ([]bridge.InstalledApp, error) {
	return e.blocks.ListInstalledApps(ctx)
}
