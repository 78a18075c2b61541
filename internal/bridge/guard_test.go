package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adibhanna/focuslock/internal/errclass"
)

func TestGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		err := Guard(ctx, time.Second, "noop", func(context.Context) error { return nil })
		require.NoError(t, err)
	})

	t.Run("error keeps cause", func(t *testing.T) {
		err := Guard(ctx, time.Second, "block apps", func(context.Context) error { return ErrUnsupported })
		require.Error(t, err)
		assert.True(t, errors.Is(err, errclass.ErrBridgeFailure))
		assert.True(t, errors.Is(err, ErrUnsupported))
		assert.Contains(t, err.Error(), "block apps")
	})

	t.Run("panic recovered", func(t *testing.T) {
		err := Guard(ctx, time.Second, "vibrate", func(context.Context) error { panic("motor on fire") })
		require.Error(t, err)
		assert.True(t, errors.Is(err, errclass.ErrBridgeFailure))
		assert.Contains(t, err.Error(), "motor on fire")
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		err := Guard(ctx, 20*time.Millisecond, "hang", func(context.Context) error {
			<-release
			return nil
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errclass.ErrBridgeFailure))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}
