// Package bridgetest provides a scriptable in-memory platform bridge.
package bridgetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/adibhanna/focuslock/internal/bridge"
)

// Method names accepted by Fail, Panic and Calls.
const (
	CheckPermission               = "CheckPermission"
	RequestPermission             = "RequestPermission"
	BlockApps                     = "BlockApps"
	UnblockAllApps                = "UnblockAllApps"
	ListInstalledApps             = "ListInstalledApps"
	PlayMedia                     = "PlayMedia"
	StopMedia                     = "StopMedia"
	Vibrate                       = "Vibrate"
	CancelVibration               = "CancelVibration"
	ScheduleNotification          = "ScheduleNotification"
	CancelNotification            = "CancelNotification"
	CancelAllNotifications        = "CancelAllNotifications"
	RequestNotificationPermission = "RequestNotificationPermission"
)

// Scheduled is a notification the fake accepted.
type Scheduled struct {
	Handle  bridge.Handle
	Payload bridge.Notification
	Trigger time.Time
}

// Bridge implements bridge.Bridge in memory.
type Bridge struct {
	mu        sync.Mutex
	caps      bridge.Capabilities
	failures  map[string]error
	panics    map[string]bool
	gates     map[string]chan struct{}
	rejected  map[bridge.MediaKind]error
	calls     map[string]int
	apps      []bridge.InstalledApp
	blocked   []string
	played    []bridge.MediaSource
	playing   bool
	vibrating bool
	pending   map[bridge.Handle]Scheduled
	history   []Scheduled
	seq       int
}

// New returns a bridge that grants every permission and never fails.
func New() *Bridge {
	return &Bridge{
		caps:     bridge.UsageAccess{UsageStats: true, Accessibility: true},
		failures: make(map[string]error),
		panics:   make(map[string]bool),
		gates:    make(map[string]chan struct{}),
		rejected: make(map[bridge.MediaKind]error),
		calls:    make(map[string]int),
		pending:  make(map[bridge.Handle]Scheduled),
	}
}

// SetCapabilities changes what CheckPermission reports.
func (b *Bridge) SetCapabilities(caps bridge.Capabilities) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.caps = caps
}

// SetInstalledApps sets the ListInstalledApps result.
func (b *Bridge) SetInstalledApps(apps []bridge.InstalledApp) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.apps = apps
}

// Fail makes every call of method return err. A nil err clears the failure.
func (b *Bridge) Fail(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, method)
		return
	}
	b.failures[method] = err
}

// RejectMedia makes PlayMedia fail with err for sources of the given kind.
func (b *Bridge) RejectMedia(kind bridge.MediaKind, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rejected[kind] = err
}

// Panic makes every call of method panic.
func (b *Bridge) Panic(method string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.panics[method] = true
}

// Hold makes calls of method wait until the returned release func is called
// or the call's context ends.
func (b *Bridge) Hold(method string) (release func()) {
	gate := make(chan struct{})
	b.mu.Lock()
	b.gates[method] = gate
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.gates, method)
			b.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns how many times method was invoked.
func (b *Bridge) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

// Blocked returns the app ids currently blocked.
func (b *Bridge) Blocked() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.blocked...)
}

// Played returns every media source passed to a successful PlayMedia.
func (b *Bridge) Played() []bridge.MediaSource {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bridge.MediaSource(nil), b.played...)
}

// Playing reports whether a clip is playing.
func (b *Bridge) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

// Vibrating reports whether the vibration motor is on.
func (b *Bridge) Vibrating() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.vibrating
}

// Pending returns the notifications not yet cancelled, ordered by trigger.
func (b *Bridge) Pending() []Scheduled {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Scheduled, 0, len(b.pending))
	for _, s := range b.pending {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Trigger.Equal(out[j].Trigger) {
			return out[i].Handle < out[j].Handle
		}
		return out[i].Trigger.Before(out[j].Trigger)
	})
	return out
}

// History returns every notification ever accepted, in call order.
func (b *Bridge) History() []Scheduled {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Scheduled(nil), b.history...)
}

func (b *Bridge) enter(ctx context.Context, method string) error {
	b.mu.Lock()
	b.calls[method]++
	gate := b.gates[method]
	shouldPanic := b.panics[method]
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if shouldPanic {
		panic(fmt.Sprintf("bridgetest: %s panicked", method))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures[method]
}

func (b *Bridge) CheckPermission(ctx context.Context) (bridge.Capabilities, error) {
	if err := b.enter(ctx, CheckPermission); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caps, nil
}

func (b *Bridge) RequestPermission(ctx context.Context) (bridge.Capabilities, error) {
	if err := b.enter(ctx, RequestPermission); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caps, nil
}

func (b *Bridge) BlockApps(ctx context.Context, ids []string) error {
	if err := b.enter(ctx, BlockApps); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocked = append([]string(nil), ids...)
	return nil
}

func (b *Bridge) UnblockAllApps(ctx context.Context) error {
	if err := b.enter(ctx, UnblockAllApps); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocked = nil
	return nil
}

func (b *Bridge) ListInstalledApps(ctx context.Context) ([]bridge.InstalledApp, error) {
	if err := b.enter(ctx, ListInstalledApps); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.apps == nil {
		return nil, bridge.ErrUnsupported
	}
	return append([]bridge.InstalledApp(nil), b.apps...), nil
}

func (b *Bridge) PlayMedia(ctx context.Context, source bridge.MediaSource) error {
	if err := b.enter(ctx, PlayMedia); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.rejected[source.Kind]; err != nil {
		return err
	}
	b.played = append(b.played, source)
	b.playing = true
	return nil
}

func (b *Bridge) StopMedia(ctx context.Context) error {
	if err := b.enter(ctx, StopMedia); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playing = false
	return nil
}

func (b *Bridge) Vibrate(ctx context.Context, pattern []time.Duration) error {
	if err := b.enter(ctx, Vibrate); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vibrating = true
	return nil
}

func (b *Bridge) CancelVibration(ctx context.Context) error {
	if err := b.enter(ctx, CancelVibration); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vibrating = false
	return nil
}

func (b *Bridge) ScheduleNotification(ctx context.Context, payload bridge.Notification, trigger time.Time) (bridge.Handle, error) {
	if err := b.enter(ctx, ScheduleNotification); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	handle := bridge.Handle(fmt.Sprintf("n-%03d", b.seq))
	s := Scheduled{Handle: handle, Payload: payload, Trigger: trigger}
	b.pending[handle] = s
	b.history = append(b.history, s)
	return handle, nil
}

func (b *Bridge) CancelNotification(ctx context.Context, handle bridge.Handle) error {
	if err := b.enter(ctx, CancelNotification); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, handle)
	return nil
}

func (b *Bridge) CancelAllNotifications(ctx context.Context) error {
	if err := b.enter(ctx, CancelAllNotifications); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = make(map[bridge.Handle]Scheduled)
	return nil
}

func (b *Bridge) RequestNotificationPermission(ctx context.Context) (bool, error) {
	if err := b.enter(ctx, RequestNotificationPermission); err != nil {
		return false, err
	}
	return true, nil
}

var _ bridge.Bridge = (*Bridge)(nil)
