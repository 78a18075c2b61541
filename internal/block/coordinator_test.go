package block

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adibhanna/focuslock/internal/bridge"
	"github.com/adibhanna/focuslock/internal/bridge/bridgetest"
	"github.com/adibhanna/focuslock/internal/errclass"
)

type conditionLog struct {
	mu    sync.Mutex
	items []Condition
}

func (l *conditionLog) add(c Condition) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, c)
}

func (l *conditionLog) all() []Condition {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Condition(nil), l.items...)
}

func newCoordinator(t *testing.T, fake *bridgetest.Bridge) (*Coordinator, *conditionLog) {
	t.Helper()
	log := &conditionLog{}
	c := New(fake, Options{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Timeout:     time.Second,
		OnCondition: log.add,
	})
	t.Cleanup(func() {
		_ = c.Close(context.Background())
	})
	return c, log
}

func flush(t *testing.T, c *Coordinator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Flush(ctx))
}

func TestCheckNavigation(t *testing.T) {
	blocked := []string{"social", "stats"}

	assert.NoError(t, CheckNavigation("social", false, blocked))
	assert.NoError(t, CheckNavigation("settings", true, blocked))
	assert.NoError(t, CheckNavigation("timer", true, []string{"timer"}))

	err := CheckNavigation("social", true, blocked)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errclass.ErrInvalidTransition))
}

func TestCoordinator_LockAndUnlock(t *testing.T) {
	fake := bridgetest.New()
	c, log := newCoordinator(t, fake)

	c.SetLocked(true, []string{"com.game", "com.chat"})
	flush(t, c)
	assert.Equal(t, []string{"com.chat", "com.game"}, fake.Blocked())
	assert.True(t, c.NativeActive())
	assert.Equal(t, 1, fake.Calls(bridgetest.CheckPermission))

	c.SetLocked(false, nil)
	flush(t, c)
	assert.Empty(t, fake.Blocked())
	assert.False(t, c.NativeActive())
	assert.Empty(t, log.all())
}

func TestCoordinator_RepeatedStateIsNoop(t *testing.T) {
	fake := bridgetest.New()
	c, _ := newCoordinator(t, fake)

	for i := 0; i < 5; i++ {
		c.SetLocked(true, []string{"com.game"})
		flush(t, c)
	}
	assert.Equal(t, 1, fake.Calls(bridgetest.BlockApps))
}

func TestCoordinator_PermissionMissingDegrades(t *testing.T) {
	fake := bridgetest.New()
	fake.SetCapabilities(bridge.Authorization{Status: bridge.AuthorizationDenied})
	c, log := newCoordinator(t, fake)

	c.SetLocked(true, []string{"com.game"})
	flush(t, c)

	assert.Equal(t, 0, fake.Calls(bridgetest.BlockApps))
	conditions := log.all()
	require.Len(t, conditions, 1)
	assert.True(t, IsPermissionMissing(conditions[0].Err))
	assert.True(t, conditions[0].Locked)
}

func TestCoordinator_RefreshAfterPermissionGranted(t *testing.T) {
	fake := bridgetest.New()
	fake.SetCapabilities(bridge.UsageAccess{UsageStats: true})
	c, log := newCoordinator(t, fake)

	c.SetLocked(true, []string{"com.game"})
	flush(t, c)
	require.Len(t, log.all(), 1)
	assert.False(t, c.NativeActive())

	fake.SetCapabilities(bridge.UsageAccess{UsageStats: true, Accessibility: true})
	c.Refresh()
	flush(t, c)

	assert.True(t, c.NativeActive())
	assert.Equal(t, []string{"com.game"}, fake.Blocked())
	assert.Len(t, log.all(), 1)
}

func TestCoordinator_BridgeFailureReportedOncePerTransition(t *testing.T) {
	fake := bridgetest.New()
	fake.Fail(bridgetest.BlockApps, errors.New("native crash"))
	c, log := newCoordinator(t, fake)

	c.SetLocked(true, []string{"com.game"})
	for i := 0; i < 10; i++ {
		c.SetLocked(true, []string{"com.game"})
	}
	flush(t, c)

	conditions := log.all()
	require.Len(t, conditions, 1)
	assert.True(t, errors.Is(conditions[0].Err, errclass.ErrBridgeFailure))

	c.SetLocked(false, nil)
	flush(t, c)
	assert.Len(t, log.all(), 1)
	assert.Equal(t, 1, fake.Calls(bridgetest.UnblockAllApps))
}

func TestCoordinator_AppChangesWhileLockedReportOnce(t *testing.T) {
	fake := bridgetest.New()
	fake.Fail(bridgetest.BlockApps, errors.New("native crash"))
	c, log := newCoordinator(t, fake)

	c.SetLocked(true, []string{"com.a"})
	flush(t, c)
	c.SetLocked(true, []string{"com.b"})
	flush(t, c)
	c.SetLocked(true, []string{"com.b", "com.c"})
	flush(t, c)

	assert.Equal(t, 3, fake.Calls(bridgetest.BlockApps))
	require.Len(t, log.all(), 1)

	c.SetLocked(false, nil)
	flush(t, c)
	c.SetLocked(true, []string{"com.a"})
	flush(t, c)
	assert.Len(t, log.all(), 2, "relocking is a new transition")
}

func TestCoordinator_PanickingBridgeIsContained(t *testing.T) {
	fake := bridgetest.New()
	fake.Panic(bridgetest.CheckPermission)
	c, log := newCoordinator(t, fake)

	c.SetLocked(true, []string{"com.game"})
	flush(t, c)

	conditions := log.all()
	require.Len(t, conditions, 1)
	assert.True(t, errors.Is(conditions[0].Err, errclass.ErrBridgeFailure))
}

func TestCoordinator_NewestStateWins(t *testing.T) {
	fake := bridgetest.New()
	c, log := newCoordinator(t, fake)

	release := fake.Hold(bridgetest.BlockApps)
	c.SetLocked(true, []string{"com.game"})

	require.Eventually(t, func() bool {
		return fake.Calls(bridgetest.BlockApps) == 1
	}, time.Second, time.Millisecond)

	c.SetLocked(false, nil)
	release()
	flush(t, c)

	assert.Empty(t, fake.Blocked())
	assert.False(t, c.NativeActive())
	assert.Empty(t, log.all())
}

func TestCoordinator_EmptyAppListSkipsNative(t *testing.T) {
	fake := bridgetest.New()
	c, log := newCoordinator(t, fake)

	c.SetLocked(true, nil)
	flush(t, c)

	assert.Equal(t, 0, fake.Calls(bridgetest.CheckPermission))
	assert.Equal(t, 0, fake.Calls(bridgetest.BlockApps))
	assert.Empty(t, log.all())
}

func TestCoordinator_CloseLiftsBlock(t *testing.T) {
	fake := bridgetest.New()
	c := New(fake, Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	c.SetLocked(true, []string{"com.game"})
	flush(t, c)
	require.NotEmpty(t, fake.Blocked())

	require.NoError(t, c.Close(context.Background()))
	assert.Empty(t, fake.Blocked())
	require.NoError(t, c.Close(context.Background()))
}

func TestCoordinator_ListInstalledApps(t *testing.T) {
	fake := bridgetest.New()
	c, _ := newCoordinator(t, fake)

	_, err := c.ListInstalledApps(context.Background())
	assert.True(t, errors.Is(err, bridge.ErrUnsupported))

	fake.SetInstalledApps([]bridge.InstalledApp{{ID: "com.game", Name: "Game"}})
	apps, err := c.ListInstalledApps(context.Background())
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}
