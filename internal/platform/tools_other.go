//go:build !linux && !darwin

package platform

import (
	"github.com/adibhanna/focuslock/internal/bridge"
)

func nativeTools() toolset {
	return toolset{
		notify: func(lookFunc, bridge.Notification) ([]string, error) {
			return nil, bridge.ErrUnsupported
		},
		play: func(lookFunc, bridge.MediaSource) ([]string, error) {
			return nil, bridge.ErrUnsupported
		},
		apps: func() ([]bridge.InstalledApp, error) {
			return nil, bridge.ErrUnsupported
		},
		blocking: "app blocking is not available on this platform",
	}
}
