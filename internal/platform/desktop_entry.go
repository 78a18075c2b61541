package platform

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adibhanna/focuslock/internal/bridge"
)

// parseDesktopEntry reads the [Desktop Entry] group of a freedesktop .desktop
// file. ok is false for entries that should not be offered to the user.
func parseDesktopEntry(r io.Reader) (name string, ok bool) {
	scanner := bufio.NewScanner(r)
	inEntry := false
	appType := ""
	hidden := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Name":
			name = strings.TrimSpace(value)
		case "Type":
			appType = strings.TrimSpace(value)
		case "NoDisplay", "Hidden":
			if strings.EqualFold(strings.TrimSpace(value), "true") {
				hidden = true
			}
		}
	}
	if scanner.Err() != nil {
		return "", false
	}
	return name, name != "" && appType == "Application" && !hidden
}

// scanDesktopEntries lists applications from the given directories. An id
// found in an earlier directory shadows the same id later on, the way the
// XDG lookup order works.
func scanDesktopEntries(dirs []string) []bridge.InstalledApp {
	seen := make(map[string]bool)
	var apps []bridge.InstalledApp
	for _, dir := range dirs {
		matches, _ := filepath.Glob(filepath.Join(dir, "*.desktop"))
		for _, path := range matches {
			id := strings.TrimSuffix(filepath.Base(path), ".desktop")
			if seen[id] {
				continue
			}
			seen[id] = true

			f, err := os.Open(path)
			if err != nil {
				continue
			}
			name, ok := parseDesktopEntry(f)
			f.Close()
			if ok {
				apps = append(apps, bridge.InstalledApp{ID: id, Name: name})
			}
		}
	}
	sort.Slice(apps, func(i, j int) bool {
		return strings.ToLower(apps[i].Name) < strings.ToLower(apps[j].Name)
	})
	return apps
}

// xdgApplicationDirs returns the application directories in lookup order.
func xdgApplicationDirs() []string {
	var dirs []string
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataHome = filepath.Join(home, ".local", "share")
		}
	}
	if dataHome != "" {
		dirs = append(dirs, filepath.Join(dataHome, "applications"))
	}
	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, dir := range filepath.SplitList(dataDirs) {
		if dir != "" {
			dirs = append(dirs, filepath.Join(dir, "applications"))
		}
	}
	return dirs
}
