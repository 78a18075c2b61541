package alarm

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/adibhanna/focuslock/internal/errclass"
	"github.com/adibhanna/focuslock/internal/models"
)

// soundNamespace seeds custom sound ids so that rescanning the directory
// yields the same id for the same file.
var soundNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/adibhanna/focuslock/sounds"))

var supportedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".m4a":  true,
	".aac":  true,
	".flac": true,
}

// Library is the set of built-in and imported alarm sounds. Imported sounds
// are plain files in a private directory, one file per sound.
type Library struct {
	dir    string
	logger *slog.Logger

	mu     sync.RWMutex
	custom []models.AlarmSound
}

// LoadLibrary creates dir if needed and scans it for custom sounds.
func LoadLibrary(dir string, logger *slog.Logger) (*Library, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sound directory: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan sound directory: %w", err)
	}

	lib := &Library{dir: dir, logger: logger.With("component", "sounds")}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			lib.logger.Debug("skipping non-audio file", "name", entry.Name())
			continue
		}
		lib.custom = append(lib.custom, lib.entryFor(entry.Name()))
	}
	lib.sortLocked()
	return lib, nil
}

// Dir returns the private sound directory.
func (l *Library) Dir() string {
	return l.dir
}

// All returns built-ins followed by custom sounds ordered by display name.
func (l *Library) All() []models.AlarmSound {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := models.BuiltinSounds()
	return append(out, l.custom...)
}

// Get looks a sound up by id.
func (l *Library) Get(id string) (models.AlarmSound, bool) {
	for _, sound := range models.BuiltinSounds() {
		if sound.ID == id {
			return sound, true
		}
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, sound := range l.custom {
		if sound.ID == id {
			return sound, true
		}
	}
	return models.AlarmSound{}, false
}

// Add copies the file at srcPath into the sound directory and registers it.
// The copy lands under a temporary name and is renamed into place, so a
// failed import leaves neither a partial file nor a library entry.
func (l *Library) Add(srcPath string) (models.AlarmSound, error) {
	ext := strings.ToLower(filepath.Ext(srcPath))
	if !supportedExtensions[ext] {
		return models.AlarmSound{}, errclass.ErrResourceFailure.WithMessagef("import %s: unsupported audio format %q", filepath.Base(srcPath), ext)
	}
	info, err := os.Stat(srcPath)
	if err != nil {
		return models.AlarmSound{}, fmt.Errorf("%w: import %s: %w", errclass.ErrResourceFailure, filepath.Base(srcPath), err)
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		return models.AlarmSound{}, errclass.ErrResourceFailure.WithMessagef("import %s: not a non-empty regular file", filepath.Base(srcPath))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	name := l.uniqueNameLocked(base, filepath.Ext(srcPath))
	if err := copyInto(srcPath, filepath.Join(l.dir, name)); err != nil {
		l.logger.Error("sound import failed", "source", srcPath, "error", err)
		return models.AlarmSound{}, fmt.Errorf("%w: import %s: %w", errclass.ErrResourceFailure, filepath.Base(srcPath), err)
	}

	sound := l.entryFor(name)
	l.custom = append(l.custom, sound)
	l.sortLocked()
	l.logger.Info("sound imported", "id", sound.ID, "name", sound.DisplayName)
	return sound, nil
}

// Remove deletes a custom sound's file and then its entry. When the file
// cannot be deleted the entry stays.
func (l *Library) Remove(id string) error {
	if models.IsBuiltinSound(id) {
		return errclass.ErrResourceFailure.WithMessagef("remove %s: built-in sounds cannot be removed", id)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	index := -1
	for i, sound := range l.custom {
		if sound.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return errclass.ErrResourceFailure.WithMessagef("remove %s: no such sound", id)
	}

	sound := l.custom[index]
	if err := os.Remove(sound.SourceLocation); err != nil && !errors.Is(err, fs.ErrNotExist) {
		l.logger.Error("sound removal failed", "id", id, "error", err)
		return fmt.Errorf("%w: remove %s: %w", errclass.ErrResourceFailure, sound.DisplayName, err)
	}
	l.custom = append(l.custom[:index:index], l.custom[index+1:]...)
	l.logger.Info("sound removed", "id", id, "name", sound.DisplayName)
	return nil
}

func (l *Library) entryFor(fileName string) models.AlarmSound {
	return models.AlarmSound{
		ID:             "custom-" + uuid.NewSHA1(soundNamespace, []byte(fileName)).String(),
		DisplayName:    strings.TrimSuffix(fileName, filepath.Ext(fileName)),
		IsCustom:       true,
		SourceLocation: filepath.Join(l.dir, fileName),
	}
}

func (l *Library) uniqueNameLocked(base, ext string) string {
	name := base + ext
	for n := 2; ; n++ {
		if _, err := os.Lstat(filepath.Join(l.dir, name)); errors.Is(err, fs.ErrNotExist) {
			return name
		}
		name = fmt.Sprintf("%s (%d)%s", base, n, ext)
	}
}

func (l *Library) sortLocked() {
	sort.SliceStable(l.custom, func(i, j int) bool {
		return strings.ToLower(l.custom[i].DisplayName) < strings.ToLower(l.custom[j].DisplayName)
	})
}

func copyInto(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".import-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	success = true
	return nil
}
