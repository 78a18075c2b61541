package alarm

import (
	"github.com/adibhanna/focuslock/internal/bridge"
	"github.com/adibhanna/focuslock/internal/models"
)

// Output is what an alarm sound id amounts to on the device.
type Output int

const (
	// OutputSilent: no sound, no vibration.
	OutputSilent Output = iota
	// OutputVibrationOnly: vibration without sound.
	OutputVibrationOnly
	// OutputMedia: a clip played at media volume.
	OutputMedia
)

func (o Output) String() string {
	switch o {
	case OutputSilent:
		return "silent"
	case OutputVibrationOnly:
		return "vibration"
	case OutputMedia:
		return "media"
	default:
		return "unknown"
	}
}

// Resolution is the catalog answer for one sound id. Both the immediate and
// the background delivery paths start from it.
type Resolution struct {
	Sound  models.AlarmSound
	Output Output
	// Source is set for OutputMedia.
	Source bridge.MediaSource
}

// Resolve maps a sound id to its output. Unknown ids, including custom sounds
// removed since the setting was saved, resolve to the default sound.
func (l *Library) Resolve(id string) Resolution {
	sound, ok := l.Get(id)
	if !ok {
		sound, _ = l.Get(models.SoundDefault)
	}
	switch {
	case sound.ID == models.SoundSilent:
		return Resolution{Sound: sound, Output: OutputSilent}
	case sound.ID == models.SoundNone:
		return Resolution{Sound: sound, Output: OutputVibrationOnly}
	case sound.IsCustom:
		return Resolution{
			Sound:  sound,
			Output: OutputMedia,
			Source: bridge.MediaSource{Kind: bridge.MediaFile, Location: sound.SourceLocation},
		}
	default:
		return Resolution{
			Sound:  sound,
			Output: OutputMedia,
			Source: bridge.MediaSource{Kind: bridge.MediaBundled, Location: bridge.DefaultAlarmBundle},
		}
	}
}

// NotificationSound is the native notification behaviour for a resolution.
// Background delivery never plays media; customs and the default use the OS
// notification sound.
func (r Resolution) NotificationSound() bridge.NotificationSound {
	switch r.Output {
	case OutputSilent:
		return bridge.NotifySilent
	case OutputVibrationOnly:
		return bridge.NotifyVibrationOnly
	default:
		return bridge.NotifySoundDefault
	}
}

// fallbacks lists what to try, in order, to make an audible alarm.
func (r Resolution) fallbacks() []bridge.MediaSource {
	if r.Output != OutputMedia {
		return nil
	}
	bundled := bridge.MediaSource{Kind: bridge.MediaBundled, Location: bridge.DefaultAlarmBundle}
	tone := bridge.MediaSource{Kind: bridge.MediaAlertTone}
	if r.Source == bundled {
		return []bridge.MediaSource{bundled, tone}
	}
	return []bridge.MediaSource{r.Source, bundled, tone}
}
