//go:build linux

package platform

import (
	"github.com/adibhanna/focuslock/internal/bridge"
)

const freedesktopAlarm = "/usr/share/sounds/freedesktop/stereo/alarm-clock-elapsed.oga"

func nativeTools() toolset {
	return toolset{
		notify:   linuxNotify,
		play:     linuxPlay,
		apps:     linuxApps,
		blocking: "app blocking is not available on Linux desktops",
	}
}

func linuxNotify(look lookFunc, n bridge.Notification) ([]string, error) {
	argv, err := firstAvailable(look, []string{"notify-send"})
	if err != nil {
		return nil, err
	}
	argv = append(argv, "--app-name="+AppName)
	switch n.Sound {
	case bridge.NotifySoundDefault:
		argv = append(argv, "--urgency=critical", "--hint=string:sound-name:alarm-clock-elapsed")
	default:
		argv = append(argv, "--hint=boolean:suppress-sound:true")
	}
	return append(argv, n.Title, n.Body), nil
}

func linuxPlay(look lookFunc, src bridge.MediaSource) ([]string, error) {
	switch src.Kind {
	case bridge.MediaFile:
		return firstAvailable(look,
			[]string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", src.Location},
			[]string{"mpv", "--no-video", "--really-quiet", src.Location},
			[]string{"paplay", src.Location},
			[]string{"pw-play", src.Location},
		)
	case bridge.MediaBundled:
		return firstAvailable(look,
			[]string{"canberra-gtk-play", "--id=alarm-clock-elapsed"},
			[]string{"paplay", freedesktopAlarm},
			[]string{"pw-play", freedesktopAlarm},
		)
	default:
		return nil, bridge.ErrUnsupported
	}
}

func linuxApps() ([]bridge.InstalledApp, error) {
	return scanDesktopEntries(xdgApplicationDirs()), nil
}
