// Package bridge declares the native capability surface the engine calls
// through: permission queries, app blocking, media playback, vibration and
// OS notification scheduling. Implementations live in internal/platform;
// the engine depends only on these interfaces.
package bridge

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported indicates the platform does not offer the capability.
var ErrUnsupported = errors.New("capability unsupported on this platform")

// InstalledApp is an application the user can choose to block.
type InstalledApp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Blocker is the native app-blocking surface.
type Blocker interface {
	CheckPermission(ctx context.Context) (Capabilities, error)
	RequestPermission(ctx context.Context) (Capabilities, error)
	BlockApps(ctx context.Context, ids []string) error
	UnblockAllApps(ctx context.Context) error
	// ListInstalledApps is best-effort and may return ErrUnsupported.
	ListInstalledApps(ctx context.Context) ([]InstalledApp, error)
}

// MediaKind selects how a MediaSource is located.
type MediaKind int

const (
	// MediaFile is a file on disk, used for custom sounds.
	MediaFile MediaKind = iota
	// MediaBundled is an asset shipped with the application.
	MediaBundled
	// MediaAlertTone is the minimal platform alert tone.
	MediaAlertTone
)

// MediaSource identifies something PlayMedia can play.
type MediaSource struct {
	Kind MediaKind
	// Location is a file path for MediaFile or a bundle reference for
	// MediaBundled. Empty for MediaAlertTone.
	Location string
}

// DefaultAlarmBundle is the bundle reference of the built-in alarm clip.
const DefaultAlarmBundle = "alarm_default"

// Media plays alarm clips at media volume and drives the vibration motor.
type Media interface {
	PlayMedia(ctx context.Context, source MediaSource) error
	StopMedia(ctx context.Context) error
	Vibrate(ctx context.Context, pattern []time.Duration) error
	CancelVibration(ctx context.Context) error
}

// NotificationSound selects the native sound behaviour of a notification.
type NotificationSound int

const (
	// NotifySoundDefault uses the OS notification sound and vibration.
	NotifySoundDefault NotificationSound = iota
	// NotifyVibrationOnly vibrates without sound.
	NotifyVibrationOnly
	// NotifySilent produces neither sound nor vibration.
	NotifySilent
)

func (s NotificationSound) String() string {
	switch s {
	case NotifySoundDefault:
		return "default"
	case NotifyVibrationOnly:
		return "vibration"
	case NotifySilent:
		return "silent"
	default:
		return "unknown"
	}
}

// Notification is the payload of an OS-level notification.
type Notification struct {
	Title string
	Body  string
	Sound NotificationSound
}

// Handle identifies a scheduled notification.
type Handle string

// Notifier schedules and cancels OS notifications. A zero trigger time or one
// in the past posts the notification immediately.
type Notifier interface {
	ScheduleNotification(ctx context.Context, payload Notification, trigger time.Time) (Handle, error)
	CancelNotification(ctx context.Context, handle Handle) error
	CancelAllNotifications(ctx context.Context) error
	RequestNotificationPermission(ctx context.Context) (bool, error)
}

// Bridge is the full native capability surface.
type Bridge interface {
	Blocker
	Media
	Notifier
}
