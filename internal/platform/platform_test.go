package platform

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adibhanna/focuslock/internal/bridge"
)

type fakeProcess struct {
	mu      sync.Mutex
	stopped bool
}

func (p *fakeProcess) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	return nil
}

func (p *fakeProcess) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

type fakeRunner struct {
	mu        sync.Mutex
	installed map[string]bool
	runs      [][]string
	started   []*fakeProcess
	runErr    error
}

func (r *fakeRunner) LookPath(file string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.installed[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found")
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, append([]string{name}, args...))
	return r.runErr
}

func (r *fakeRunner) Start(name string, args ...string) (Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := &fakeProcess{}
	r.started = append(r.started, p)
	return p, nil
}

func (r *fakeRunner) Runs() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.runs...)
}

func testTools() toolset {
	return toolset{
		notify: func(look lookFunc, n bridge.Notification) ([]string, error) {
			argv, err := firstAvailable(look, []string{"notifier"})
			if err != nil {
				return nil, err
			}
			return append(argv, n.Sound.String(), n.Title), nil
		},
		play: func(look lookFunc, src bridge.MediaSource) ([]string, error) {
			return firstAvailable(look, []string{"player", src.Location})
		},
		apps: func() ([]bridge.InstalledApp, error) {
			return nil, bridge.ErrUnsupported
		},
		blocking: "not here",
	}
}

func newTestDesktop(runner *fakeRunner, bell io.Writer) *Desktop {
	return newDesktop(Options{
		Runner: runner,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Bell:   bell,
	}, testTools())
}

func TestDesktop_BlockingUnsupported(t *testing.T) {
	d := newTestDesktop(&fakeRunner{}, io.Discard)
	ctx := context.Background()

	caps, err := d.CheckPermission(ctx)
	require.NoError(t, err)
	assert.False(t, caps.BlockingAllowed())
	assert.Equal(t, bridge.Unsupported{Reason: "not here"}, caps)

	assert.True(t, errors.Is(d.BlockApps(ctx, []string{"x"}), bridge.ErrUnsupported))
	assert.NoError(t, d.UnblockAllApps(ctx))
	assert.True(t, errors.Is(d.Vibrate(ctx, nil), bridge.ErrUnsupported))
	assert.NoError(t, d.CancelVibration(ctx))
}

func TestDesktop_PlayMediaReplacesPreviousClip(t *testing.T) {
	runner := &fakeRunner{installed: map[string]bool{"player": true}}
	d := newTestDesktop(runner, io.Discard)
	ctx := context.Background()
	clip := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(clip, []byte("RIFF"), 0o644))

	require.NoError(t, d.PlayMedia(ctx, bridge.MediaSource{Kind: bridge.MediaFile, Location: clip}))
	require.NoError(t, d.PlayMedia(ctx, bridge.MediaSource{Kind: bridge.MediaBundled, Location: bridge.DefaultAlarmBundle}))
	require.Len(t, runner.started, 2)
	assert.True(t, runner.started[0].Stopped())
	assert.False(t, runner.started[1].Stopped())

	require.NoError(t, d.StopMedia(ctx))
	assert.True(t, runner.started[1].Stopped())
	require.NoError(t, d.StopMedia(ctx))
}

func TestDesktop_PlayMediaFailures(t *testing.T) {
	ctx := context.Background()

	d := newTestDesktop(&fakeRunner{installed: map[string]bool{"player": true}}, io.Discard)
	err := d.PlayMedia(ctx, bridge.MediaSource{Kind: bridge.MediaFile, Location: filepath.Join(t.TempDir(), "gone.mp3")})
	assert.True(t, errors.Is(err, os.ErrNotExist))

	d = newTestDesktop(&fakeRunner{}, io.Discard)
	err = d.PlayMedia(ctx, bridge.MediaSource{Kind: bridge.MediaBundled})
	assert.True(t, errors.Is(err, bridge.ErrUnsupported))
}

func TestDesktop_AlertToneRingsBell(t *testing.T) {
	var bell bytes.Buffer
	d := newTestDesktop(&fakeRunner{}, &bell)

	require.NoError(t, d.PlayMedia(context.Background(), bridge.MediaSource{Kind: bridge.MediaAlertTone}))
	assert.Equal(t, "\a", bell.String())
}

func TestDesktop_ImmediateNotification(t *testing.T) {
	runner := &fakeRunner{installed: map[string]bool{"notifier": true}}
	d := newTestDesktop(runner, io.Discard)

	handle, err := d.ScheduleNotification(context.Background(), bridge.Notification{Title: "Done", Sound: bridge.NotifySilent}, time.Time{})
	require.NoError(t, err)
	assert.NotEmpty(t, handle)
	assert.Equal(t, [][]string{{"/usr/bin/notifier", "silent", "Done"}}, runner.Runs())
	assert.Zero(t, d.Pending())

	runner.runErr = errors.New("daemon gone")
	_, err = d.ScheduleNotification(context.Background(), bridge.Notification{Title: "Again"}, time.Time{})
	assert.Error(t, err)
}

func TestDesktop_ScheduledNotificationFires(t *testing.T) {
	runner := &fakeRunner{installed: map[string]bool{"notifier": true}}
	d := newTestDesktop(runner, io.Discard)

	_, err := d.ScheduleNotification(context.Background(), bridge.Notification{Title: "Later"}, time.Now().Add(20*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 1, d.Pending())

	require.Eventually(t, func() bool { return len(runner.Runs()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "Later", runner.Runs()[0][2])
	assert.Zero(t, d.Pending())
}

func TestDesktop_CancelNotifications(t *testing.T) {
	runner := &fakeRunner{installed: map[string]bool{"notifier": true}}
	d := newTestDesktop(runner, io.Discard)
	ctx := context.Background()
	at := time.Now().Add(time.Hour)

	first, err := d.ScheduleNotification(ctx, bridge.Notification{Title: "a"}, at)
	require.NoError(t, err)
	_, err = d.ScheduleNotification(ctx, bridge.Notification{Title: "b"}, at)
	require.NoError(t, err)
	require.Equal(t, 2, d.Pending())

	require.NoError(t, d.CancelNotification(ctx, first))
	assert.Equal(t, 1, d.Pending())
	require.NoError(t, d.CancelNotification(ctx, "unknown"))
	require.NoError(t, d.CancelAllNotifications(ctx))
	assert.Zero(t, d.Pending())
	assert.Empty(t, runner.Runs())
}

func TestDesktop_NotificationPermission(t *testing.T) {
	granted, err := newTestDesktop(&fakeRunner{installed: map[string]bool{"notifier": true}}, io.Discard).
		RequestNotificationPermission(context.Background())
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = newTestDesktop(&fakeRunner{}, io.Discard).RequestNotificationPermission(context.Background())
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestParseDesktopEntry(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"application", "[Desktop Entry]\nType=Application\nName=Firefox\nExec=firefox\n", "Firefox", true},
		{"hidden", "[Desktop Entry]\nType=Application\nName=Helper\nNoDisplay=true\n", "Helper", false},
		{"link", "[Desktop Entry]\nType=Link\nName=Docs\n", "Docs", false},
		{"action group ignored", "[Desktop Entry]\nType=Application\nName=Chat\n[Desktop Action new]\nName=New Window\n", "Chat", true},
		{"comments", "# generated\n[Desktop Entry]\n\nName = Editor \nType=Application\n", "Editor", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := parseDesktopEntry(strings.NewReader(tt.input))
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, name)
			}
		})
	}
}

func TestScanDesktopEntries(t *testing.T) {
	user := t.TempDir()
	system := t.TempDir()
	write := func(dir, file, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644))
	}
	write(user, "org.chat.desktop", "[Desktop Entry]\nType=Application\nName=Chat (local)\n")
	write(system, "org.chat.desktop", "[Desktop Entry]\nType=Application\nName=Chat\n")
	write(system, "com.game.desktop", "[Desktop Entry]\nType=Application\nName=Arcade\n")
	write(system, "readme.txt", "ignored")

	apps := scanDesktopEntries([]string{user, system, filepath.Join(system, "missing")})

	assert.Equal(t, []bridge.InstalledApp{
		{ID: "com.game", Name: "Arcade"},
		{ID: "org.chat", Name: "Chat (local)"},
	}, apps)
}
