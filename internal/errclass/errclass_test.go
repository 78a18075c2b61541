package errclass_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adibhanna/focuslock/internal/errclass"
)

func TestError_Error(t *testing.T) {
	assert.Equal(t, "E_INVALID_TRANSITION", errclass.ErrInvalidTransition.Error())
	assert.Equal(t, "E_BRIDGE_FAILURE: boom",
		errclass.ErrBridgeFailure.WithMessage("boom").Error())
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := errclass.ErrPermissionMissing.WithMessagef("%d apps", 3)
	require.True(t, errors.Is(err, errclass.ErrPermissionMissing))
	require.False(t, errors.Is(err, errclass.ErrBridgeFailure))

	wrapped := fmt.Errorf("apply blocking: %w", err)
	require.True(t, errors.Is(wrapped, errclass.ErrPermissionMissing))
}

func TestWithMessage_LeavesBaseUntouched(t *testing.T) {
	_ = errclass.ErrResourceFailure.WithMessage("disk full")
	assert.Empty(t, errclass.ErrResourceFailure.Message)
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("x"), ""},
		{"class", errclass.ErrResourceFailure, "E_RESOURCE_FAILURE"},
		{"wrapped", fmt.Errorf("ctx: %w", errclass.ErrInvalidTransition.WithMessage("running")), "E_INVALID_TRANSITION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errclass.Code(tt.err))
		})
	}
}
