package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/adibhanna/focuslock/internal/errclass"
)

// DefaultTimeout bounds a single bridge call when the caller sets none.
const DefaultTimeout = 5 * time.Second

// Guard runs one bridge call with a timeout and turns every way it can go
// wrong (error, panic, deadline) into an ErrBridgeFailure. The call runs on
// its own goroutine so an implementation that ignores ctx cannot hold the
// caller past the deadline.
func Guard(ctx context.Context, timeout time.Duration, op string, call func(ctx context.Context) error) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- call(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %s: %w", errclass.ErrBridgeFailure, op, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", errclass.ErrBridgeFailure, op, ctx.Err())
	}
}
