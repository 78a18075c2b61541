package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilities_BlockingAllowed(t *testing.T) {
	tests := []struct {
		name string
		caps Capabilities
		want bool
	}{
		{"usage access both granted", UsageAccess{UsageStats: true, Accessibility: true}, true},
		{"usage access missing accessibility", UsageAccess{UsageStats: true}, false},
		{"usage access none", UsageAccess{}, false},
		{"authorization approved", Authorization{Status: AuthorizationApproved}, true},
		{"authorization denied", Authorization{Status: AuthorizationDenied}, false},
		{"authorization not determined", Authorization{Status: AuthorizationNotDetermined}, false},
		{"unsupported", Unsupported{Reason: "desktop"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.caps.BlockingAllowed())
			assert.NotEmpty(t, tt.caps.String())
		})
	}
}

func TestNotificationSound_String(t *testing.T) {
	assert.Equal(t, "default", NotifySoundDefault.String())
	assert.Equal(t, "vibration", NotifyVibrationOnly.String())
	assert.Equal(t, "silent", NotifySilent.String())
	assert.Equal(t, "unknown", NotificationSound(42).String())
}
