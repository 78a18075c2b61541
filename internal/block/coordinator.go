// Package block keeps in-app navigation and native app blocking in sync with
// the session lock state.
package block

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/adibhanna/focuslock/internal/bridge"
	"github.com/adibhanna/focuslock/internal/errclass"
	"github.com/adibhanna/focuslock/internal/models"
)

// Condition is a non-fatal enforcement problem reported for one lock-state
// transition.
type Condition struct {
	Err    error
	Locked bool
	At     time.Time
}

// CheckNavigation rejects moving to a blocked tab while locked. Tabs stay
// visible; only the navigation attempt fails. The timer tab is always allowed.
func CheckNavigation(tab string, locked bool, blockedTabs []string) error {
	if !locked || tab == models.TimerTabID {
		return nil
	}
	if slices.Contains(blockedTabs, tab) {
		return errclass.ErrInvalidTransition.WithMessagef("navigate to %q: tab is blocked during focus", tab)
	}
	return nil
}

// Options configures a Coordinator.
type Options struct {
	Logger *slog.Logger
	// Timeout bounds each bridge call. Zero means bridge.DefaultTimeout.
	Timeout time.Duration
	// OnCondition receives at most one condition per lock-state transition.
	// Changing the blocked apps while locked is not a transition.
	OnCondition func(Condition)
	Now         func() time.Time
}

// Coordinator drives a bridge.Blocker toward the most recently requested lock
// state. SetLocked never blocks; a single background goroutine performs the
// bridge calls and, when a newer state arrives mid-call, discards the stale
// outcome and converges on the newest one.
type Coordinator struct {
	blocker bridge.Blocker
	logger  *slog.Logger
	timeout time.Duration
	report  func(Condition)
	now     func() time.Time

	// callMu serializes whole apply/clear sequences against the bridge.
	callMu sync.Mutex

	mu           sync.Mutex
	desired      bool
	apps         []string
	generation   uint64
	reconciled   uint64
	nativeActive bool
	activeApps   []string
	dirty        bool
	// reported is set once a condition went out for the current desired state.
	reported bool
	waiters  []chan struct{}

	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New starts a coordinator in the unlocked state.
func New(blocker bridge.Blocker, opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Coordinator{
		blocker: blocker,
		logger:  opts.Logger.With("component", "block"),
		timeout: opts.Timeout,
		report:  opts.OnCondition,
		now:     opts.Now,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.loop()
	return c
}

// SetLocked records the desired lock state and the apps to block while locked.
// Repeating the current state is a no-op, so callers may invoke it on every
// state change without producing duplicate bridge traffic or conditions.
func (c *Coordinator) SetLocked(locked bool, blockedApps []string) {
	apps := append([]string(nil), blockedApps...)
	slices.Sort(apps)

	c.mu.Lock()
	if c.desired == locked && (!locked || slices.Equal(c.apps, apps)) {
		c.mu.Unlock()
		return
	}
	if c.desired != locked {
		c.reported = false
	}
	c.desired = locked
	c.apps = apps
	c.generation++
	c.logger.Debug("lock state changed", "locked", locked, "apps", len(apps), "generation", c.generation)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Refresh re-applies the current desired state, for example after the user
// granted a permission that was missing while locked.
func (c *Coordinator) Refresh() {
	c.mu.Lock()
	c.generation++
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Flush waits until the coordinator has caught up with the latest SetLocked.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.reconciled == c.generation {
		c.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the reconcile loop and lifts any native block still in place.
func (c *Coordinator) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		close(c.quit)
	})
	<-c.done
	return c.ClearBlocking(ctx)
}

func (c *Coordinator) loop() {
	defer close(c.done)
	for {
		select {
		case <-c.quit:
			return
		case <-c.wake:
			c.reconcile()
		}
	}
}

func (c *Coordinator) reconcile() {
	for {
		c.mu.Lock()
		gen := c.generation
		if gen == c.reconciled {
			waiters := c.waiters
			c.waiters = nil
			c.mu.Unlock()
			for _, ch := range waiters {
				close(ch)
			}
			return
		}
		want := c.desired
		apps := append([]string(nil), c.apps...)
		c.mu.Unlock()

		var err error
		if want {
			err = c.ApplyBlocking(context.Background(), apps)
		} else {
			err = c.ClearBlocking(context.Background())
		}

		c.mu.Lock()
		stale := c.generation != gen
		if !stale {
			c.reconciled = gen
		}
		repeat := c.reported
		if err != nil && !stale {
			c.reported = true
		}
		c.mu.Unlock()

		if err == nil {
			continue
		}
		if stale {
			c.logger.Debug("discarding stale blocking result", "generation", gen, "error", err)
			continue
		}
		if repeat {
			c.logger.Debug("blocking still degraded", "locked", want, "error", err)
			continue
		}
		c.logger.Warn("blocking degraded", "locked", want, "error", err)
		if c.report != nil {
			c.report(Condition{Err: err, Locked: want, At: c.now()})
		}
	}
}

// CheckPermissions asks the bridge for the current blocking permissions. The
// answer is never cached: the user can revoke access at any time.
func (c *Coordinator) CheckPermissions(ctx context.Context) (bridge.Capabilities, error) {
	var caps bridge.Capabilities
	err := bridge.Guard(ctx, c.timeout, "check permission", func(ctx context.Context) error {
		var err error
		caps, err = c.blocker.CheckPermission(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if caps == nil {
		caps = bridge.Unsupported{}
	}
	return caps, nil
}

// RequestPermission prompts for blocking permissions.
func (c *Coordinator) RequestPermission(ctx context.Context) (bridge.Capabilities, error) {
	var caps bridge.Capabilities
	err := bridge.Guard(ctx, c.timeout, "request permission", func(ctx context.Context) error {
		var err error
		caps, err = c.blocker.RequestPermission(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if caps == nil {
		caps = bridge.Unsupported{}
	}
	return caps, nil
}

// ListInstalledApps returns the apps the user may block, when the platform
// can enumerate them.
func (c *Coordinator) ListInstalledApps(ctx context.Context) ([]bridge.InstalledApp, error) {
	var apps []bridge.InstalledApp
	err := bridge.Guard(ctx, c.timeout, "list installed apps", func(ctx context.Context) error {
		var err error
		apps, err = c.blocker.ListInstalledApps(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// ApplyBlocking blocks apps natively. Permissions are checked right before the
// call; when they are missing the native block is skipped and
// ErrPermissionMissing returned. Applying the same set twice is a no-op.
func (c *Coordinator) ApplyBlocking(ctx context.Context, apps []string) error {
	if len(apps) == 0 {
		return c.ClearBlocking(ctx)
	}
	apps = append([]string(nil), apps...)
	slices.Sort(apps)

	c.callMu.Lock()
	defer c.callMu.Unlock()

	caps, err := c.CheckPermissions(ctx)
	if err != nil {
		return err
	}
	if !caps.BlockingAllowed() {
		return errclass.ErrPermissionMissing.WithMessagef("app blocking needs permission: %s", caps)
	}

	c.mu.Lock()
	already := c.nativeActive && !c.dirty && slices.Equal(c.activeApps, apps)
	c.mu.Unlock()
	if already {
		return nil
	}

	err = bridge.Guard(ctx, c.timeout, "block apps", func(ctx context.Context) error {
		return c.blocker.BlockApps(ctx, apps)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.dirty = true
		return err
	}
	c.nativeActive = true
	c.activeApps = apps
	c.dirty = false
	return nil
}

// ClearBlocking lifts the native block. It does nothing when no block was
// ever attempted.
func (c *Coordinator) ClearBlocking(ctx context.Context) error {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	c.mu.Lock()
	needed := c.nativeActive || c.dirty
	c.mu.Unlock()
	if !needed {
		return nil
	}

	err := bridge.Guard(ctx, c.timeout, "unblock apps", func(ctx context.Context) error {
		return c.blocker.UnblockAllApps(ctx)
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.nativeActive = false
	c.activeApps = nil
	c.dirty = false
	c.mu.Unlock()
	return nil
}

// NativeActive reports whether the last successful bridge call left apps
// blocked.
func (c *Coordinator) NativeActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nativeActive
}

// IsPermissionMissing reports whether err means enforcement degraded because
// of a missing permission rather than a failed call.
func IsPermissionMissing(err error) bool {
	return errors.Is(err, errclass.ErrPermissionMissing)
}
