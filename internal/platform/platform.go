// Package platform is the desktop implementation of the platform bridge. It
// drives the host's notification daemon and audio players through external
// commands. Desktop operating systems offer no app-blocking primitive the
// engine could call, so blocking reports itself unsupported and the engine
// degrades to in-app tab blocking.
package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adibhanna/focuslock/internal/bridge"
)

// AppName is passed to the notification daemon.
const AppName = "focuslock"

type lookFunc func(file string) (string, error)

// toolset is the per-OS command vocabulary.
type toolset struct {
	// notify returns the command line posting n, or bridge.ErrUnsupported.
	notify func(look lookFunc, n bridge.Notification) ([]string, error)
	// play returns the command line playing src, or bridge.ErrUnsupported.
	play func(look lookFunc, src bridge.MediaSource) ([]string, error)
	// apps enumerates installed applications.
	apps func() ([]bridge.InstalledApp, error)
	// blocking describes why native blocking is unavailable.
	blocking string
}

// Options configures a Desktop bridge.
type Options struct {
	Runner Runner
	Logger *slog.Logger
	// Bell receives the BEL character for the minimal alert tone. Defaults to
	// stderr.
	Bell io.Writer
	Now  func() time.Time
}

// Desktop implements bridge.Bridge on top of external commands.
type Desktop struct {
	runner Runner
	tools  toolset
	logger *slog.Logger
	bell   io.Writer
	now    func() time.Time

	mu      sync.Mutex
	playing Process
	timers  map[bridge.Handle]*time.Timer
}

// New returns the bridge for the running OS.
func New(opts Options) *Desktop {
	return newDesktop(opts, nativeTools())
}

func newDesktop(opts Options, tools toolset) *Desktop {
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Bell == nil {
		opts.Bell = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Desktop{
		runner: opts.Runner,
		tools:  tools,
		logger: opts.Logger.With("component", "platform"),
		bell:   opts.Bell,
		now:    opts.Now,
		timers: make(map[bridge.Handle]*time.Timer),
	}
}

func (d *Desktop) CheckPermission(ctx context.Context) (bridge.Capabilities, error) {
	return bridge.Unsupported{Reason: d.tools.blocking}, nil
}

func (d *Desktop) RequestPermission(ctx context.Context) (bridge.Capabilities, error) {
	return bridge.Unsupported{Reason: d.tools.blocking}, nil
}

func (d *Desktop) BlockApps(ctx context.Context, ids []string) error {
	return fmt.Errorf("block apps: %w", bridge.ErrUnsupported)
}

// UnblockAllApps succeeds trivially: nothing was ever blocked natively.
func (d *Desktop) UnblockAllApps(ctx context.Context) error {
	return nil
}

func (d *Desktop) ListInstalledApps(ctx context.Context) ([]bridge.InstalledApp, error) {
	return d.tools.apps()
}

// PlayMedia starts playback in the background and returns once the player
// process is running. The alert tone rings the terminal bell.
func (d *Desktop) PlayMedia(ctx context.Context, src bridge.MediaSource) error {
	if src.Kind == bridge.MediaAlertTone {
		_, err := io.WriteString(d.bell, "\a")
		return err
	}
	if src.Kind == bridge.MediaFile {
		if _, err := os.Stat(src.Location); err != nil {
			return fmt.Errorf("play %s: %w", src.Location, err)
		}
	}
	argv, err := d.tools.play(d.runner.LookPath, src)
	if err != nil {
		return err
	}
	proc, err := d.runner.Start(argv[0], argv[1:]...)
	if err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}

	d.mu.Lock()
	previous := d.playing
	d.playing = proc
	d.mu.Unlock()
	if previous != nil {
		_ = previous.Stop()
	}
	d.logger.Debug("playback started", "player", argv[0], "location", src.Location)
	return nil
}

func (d *Desktop) StopMedia(ctx context.Context) error {
	d.mu.Lock()
	proc := d.playing
	d.playing = nil
	d.mu.Unlock()
	if proc == nil {
		return nil
	}
	return proc.Stop()
}

func (d *Desktop) Vibrate(ctx context.Context, pattern []time.Duration) error {
	return fmt.Errorf("vibrate: %w", bridge.ErrUnsupported)
}

func (d *Desktop) CancelVibration(ctx context.Context) error {
	return nil
}

// ScheduleNotification posts now when trigger is zero or past, otherwise arms
// an in-process timer. Scheduled notifications do not survive the process.
func (d *Desktop) ScheduleNotification(ctx context.Context, payload bridge.Notification, trigger time.Time) (bridge.Handle, error) {
	argv, err := d.tools.notify(d.runner.LookPath, payload)
	if err != nil {
		return "", err
	}
	handle := bridge.Handle(uuid.NewString())

	delay := trigger.Sub(d.now())
	if trigger.IsZero() || delay <= 0 {
		if err := d.runner.Run(ctx, argv[0], argv[1:]...); err != nil {
			return "", fmt.Errorf("post notification: %w", err)
		}
		return handle, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.timers[handle] = time.AfterFunc(delay, func() {
		d.mu.Lock()
		_, pending := d.timers[handle]
		delete(d.timers, handle)
		d.mu.Unlock()
		if !pending {
			return
		}
		if err := d.runner.Run(context.Background(), argv[0], argv[1:]...); err != nil {
			d.logger.Warn("scheduled notification failed", "handle", handle, "error", err)
		}
	})
	return handle, nil
}

func (d *Desktop) CancelNotification(ctx context.Context, handle bridge.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if timer, ok := d.timers[handle]; ok {
		timer.Stop()
		delete(d.timers, handle)
	}
	return nil
}

func (d *Desktop) CancelAllNotifications(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for handle, timer := range d.timers {
		timer.Stop()
		delete(d.timers, handle)
	}
	return nil
}

// RequestNotificationPermission reports whether a notification command is
// installed. Desktop daemons never prompt.
func (d *Desktop) RequestNotificationPermission(ctx context.Context) (bool, error) {
	_, err := d.tools.notify(d.runner.LookPath, bridge.Notification{Title: AppName})
	if errors.Is(err, bridge.ErrUnsupported) {
		return false, nil
	}
	return err == nil, err
}

// Pending returns how many notifications are armed.
func (d *Desktop) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// firstAvailable returns the first command that resolves on PATH.
func firstAvailable(look lookFunc, candidates ...[]string) ([]string, error) {
	for _, argv := range candidates {
		if path, err := look(argv[0]); err == nil {
			out := append([]string{path}, argv[1:]...)
			return out, nil
		}
	}
	return nil, bridge.ErrUnsupported
}

var _ bridge.Bridge = (*Desktop)(nil)
