package alarm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adibhanna/focuslock/internal/bridge"
	"github.com/adibhanna/focuslock/internal/bridge/bridgetest"
	"github.com/adibhanna/focuslock/internal/errclass"
	"github.com/adibhanna/focuslock/internal/models"
)

func newAlarms(t *testing.T) (*Alarms, *bridgetest.Bridge) {
	t.Helper()
	lib, _ := newLibrary(t)
	fake := bridgetest.New()
	return New(fake, fake, lib, Options{Logger: quietLogger(), Timeout: time.Second}), fake
}

var notice = bridge.Notification{Title: "Focus complete", Body: "Time for a break."}

func TestPlayImmediate_Default(t *testing.T) {
	alarms, fake := newAlarms(t)

	require.NoError(t, alarms.PlayImmediate(context.Background(), models.SoundDefault, true, notice))

	assert.Equal(t, []bridge.MediaSource{{Kind: bridge.MediaBundled, Location: bridge.DefaultAlarmBundle}}, fake.Played())
	assert.True(t, fake.Playing())
	assert.True(t, fake.Vibrating())

	history := fake.History()
	require.Len(t, history, 1)
	assert.Equal(t, bridge.NotifySilent, history[0].Payload.Sound)
	assert.Equal(t, notice.Title, history[0].Payload.Title)
	assert.True(t, history[0].Trigger.IsZero())
}

func TestPlayImmediate_SilentDoesNothing(t *testing.T) {
	alarms, fake := newAlarms(t)

	require.NoError(t, alarms.PlayImmediate(context.Background(), models.SoundSilent, true, notice))

	assert.Zero(t, fake.Calls(bridgetest.PlayMedia))
	assert.Zero(t, fake.Calls(bridgetest.Vibrate))
	assert.Zero(t, fake.Calls(bridgetest.ScheduleNotification))
}

func TestPlayImmediate_NoneVibratesEvenWhenDisabled(t *testing.T) {
	alarms, fake := newAlarms(t)

	require.NoError(t, alarms.PlayImmediate(context.Background(), models.SoundNone, false, notice))

	assert.Zero(t, fake.Calls(bridgetest.PlayMedia))
	assert.True(t, fake.Vibrating())
}

func TestPlayImmediate_VibrationOff(t *testing.T) {
	alarms, fake := newAlarms(t)

	require.NoError(t, alarms.PlayImmediate(context.Background(), models.SoundDefault, false, notice))

	assert.Zero(t, fake.Calls(bridgetest.Vibrate))
	assert.Equal(t, 1, fake.Calls(bridgetest.PlayMedia))
}

func TestPlayImmediate_FallsBackFromCustom(t *testing.T) {
	alarms, fake := newAlarms(t)
	sound, err := alarms.Sounds().Add(writeAudio(t, t.TempDir(), "broken.mp3"))
	require.NoError(t, err)
	fake.RejectMedia(bridge.MediaFile, errors.New("decoder error"))

	err = alarms.PlayImmediate(context.Background(), sound.ID, false, notice)

	assert.NoError(t, err)
	assert.Equal(t, 2, fake.Calls(bridgetest.PlayMedia))
	assert.Equal(t, []bridge.MediaSource{{Kind: bridge.MediaBundled, Location: bridge.DefaultAlarmBundle}}, fake.Played())
}

func TestPlayImmediate_FallsBackToAlertTone(t *testing.T) {
	alarms, fake := newAlarms(t)
	fake.RejectMedia(bridge.MediaBundled, errors.New("asset missing"))

	err := alarms.PlayImmediate(context.Background(), models.SoundDefault, true, notice)

	assert.NoError(t, err)
	assert.Equal(t, []bridge.MediaSource{{Kind: bridge.MediaAlertTone}}, fake.Played())
	assert.True(t, fake.Vibrating())
}

func TestPlayImmediate_EverythingFailsStillVibrates(t *testing.T) {
	alarms, fake := newAlarms(t)
	fake.Fail(bridgetest.PlayMedia, errors.New("no audio device"))
	fake.Fail(bridgetest.ScheduleNotification, errors.New("denied"))

	err := alarms.PlayImmediate(context.Background(), models.SoundDefault, true, notice)

	assert.True(t, errors.Is(err, errclass.ErrBridgeFailure))
	assert.Equal(t, 2, fake.Calls(bridgetest.PlayMedia))
	assert.True(t, fake.Vibrating())
}

func TestPlayImmediate_RecoversFromPanic(t *testing.T) {
	alarms, fake := newAlarms(t)
	fake.Panic(bridgetest.Vibrate)

	err := alarms.PlayImmediate(context.Background(), models.SoundDefault, true, notice)

	assert.True(t, errors.Is(err, errclass.ErrBridgeFailure))
	assert.True(t, fake.Playing())
}

func TestScheduleBackground_SoundMapping(t *testing.T) {
	alarms, fake := newAlarms(t)
	custom, err := alarms.Sounds().Add(writeAudio(t, t.TempDir(), "waves.flac"))
	require.NoError(t, err)
	at := time.Date(2026, 3, 2, 9, 25, 0, 0, time.UTC)

	tests := []struct {
		id   string
		want bridge.NotificationSound
	}{
		{models.SoundDefault, bridge.NotifySoundDefault},
		{models.SoundNone, bridge.NotifyVibrationOnly},
		{models.SoundSilent, bridge.NotifySilent},
		{custom.ID, bridge.NotifySoundDefault},
	}
	for _, tt := range tests {
		handle, err := alarms.ScheduleBackground(context.Background(), "Focus complete", "Break time", at, tt.id)
		require.NoError(t, err, tt.id)
		assert.NotEmpty(t, handle)
	}

	history := fake.History()
	require.Len(t, history, len(tests))
	for i, tt := range tests {
		assert.Equal(t, tt.want, history[i].Payload.Sound, tt.id)
		assert.Equal(t, at, history[i].Trigger)
	}
	assert.Zero(t, fake.Calls(bridgetest.PlayMedia))
}

func TestScheduleBackground_Failure(t *testing.T) {
	alarms, fake := newAlarms(t)
	fake.Fail(bridgetest.ScheduleNotification, errors.New("quota"))

	handle, err := alarms.ScheduleBackground(context.Background(), "t", "b", time.Now().Add(time.Minute), models.SoundDefault)

	assert.Empty(t, handle)
	assert.True(t, errors.Is(err, errclass.ErrBridgeFailure))
}

func TestCancelAndStop(t *testing.T) {
	alarms, fake := newAlarms(t)
	ctx := context.Background()
	at := time.Now().Add(time.Hour)

	first, err := alarms.ScheduleBackground(ctx, "a", "b", at, models.SoundDefault)
	require.NoError(t, err)
	_, err = alarms.ScheduleBackground(ctx, "c", "d", at.Add(time.Minute), models.SoundDefault)
	require.NoError(t, err)

	require.NoError(t, alarms.Cancel(ctx, first))
	require.Len(t, fake.Pending(), 1)
	require.NoError(t, alarms.Cancel(ctx, ""))

	require.NoError(t, alarms.PlayImmediate(ctx, models.SoundDefault, true, notice))
	require.NoError(t, alarms.Stop(ctx))

	assert.False(t, fake.Playing())
	assert.False(t, fake.Vibrating())
	assert.Empty(t, fake.Pending())
}

func TestStop_AttemptsEveryStep(t *testing.T) {
	alarms, fake := newAlarms(t)
	fake.Fail(bridgetest.CancelVibration, errors.New("busy"))

	err := alarms.Stop(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 1, fake.Calls(bridgetest.StopMedia))
	assert.Equal(t, 1, fake.Calls(bridgetest.CancelAllNotifications))
}

func TestRequestNotificationPermission_AsksOnce(t *testing.T) {
	alarms, fake := newAlarms(t)

	var wg sync.WaitGroup
	for n := 0; n < 5; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted, err := alarms.RequestNotificationPermission(context.Background())
			assert.NoError(t, err)
			assert.True(t, granted)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fake.Calls(bridgetest.RequestNotificationPermission))
}

func TestRequestNotificationPermission_FailureIsSticky(t *testing.T) {
	alarms, fake := newAlarms(t)
	fake.Fail(bridgetest.RequestNotificationPermission, errors.New("no daemon"))

	granted, err := alarms.RequestNotificationPermission(context.Background())
	assert.False(t, granted)
	assert.True(t, errors.Is(err, errclass.ErrBridgeFailure))

	fake.Fail(bridgetest.RequestNotificationPermission, nil)
	_, err = alarms.RequestNotificationPermission(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, fake.Calls(bridgetest.RequestNotificationPermission))
}

func TestCompletionNotice(t *testing.T) {
	assert.Equal(t, "Focus complete", CompletionNotice(models.ModeFocus, false).Title)
	assert.Equal(t, "Break over", CompletionNotice(models.ModeBreak, false).Title)
	assert.Equal(t, "Session complete", CompletionNotice(models.ModeBreak, true).Title)
}
