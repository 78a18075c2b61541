//go:build darwin

package platform

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adibhanna/focuslock/internal/bridge"
)

const macAlarmSound = "/System/Library/Sounds/Glass.aiff"

func nativeTools() toolset {
	return toolset{
		notify:   darwinNotify,
		play:     darwinPlay,
		apps:     darwinApps,
		blocking: "app blocking needs Screen Time APIs that are not reachable from a terminal app",
	}
}

func darwinNotify(look lookFunc, n bridge.Notification) ([]string, error) {
	argv, err := firstAvailable(look, []string{"osascript"})
	if err != nil {
		return nil, err
	}
	script := fmt.Sprintf("display notification %s with title %s", appleString(n.Body), appleString(n.Title))
	if n.Sound == bridge.NotifySoundDefault {
		script += ` sound name "Glass"`
	}
	return append(argv, "-e", script), nil
}

func appleString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func darwinPlay(look lookFunc, src bridge.MediaSource) ([]string, error) {
	switch src.Kind {
	case bridge.MediaFile:
		return firstAvailable(look, []string{"afplay", src.Location})
	case bridge.MediaBundled:
		return firstAvailable(look, []string{"afplay", macAlarmSound})
	default:
		return nil, bridge.ErrUnsupported
	}
}

func darwinApps() ([]bridge.InstalledApp, error) {
	matches, err := filepath.Glob("/Applications/*.app")
	if err != nil {
		return nil, err
	}
	apps := make([]bridge.InstalledApp, 0, len(matches))
	for _, path := range matches {
		name := strings.TrimSuffix(filepath.Base(path), ".app")
		apps = append(apps, bridge.InstalledApp{ID: name, Name: name})
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })
	return apps, nil
}
