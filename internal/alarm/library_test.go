package alarm

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adibhanna/focuslock/internal/bridge"
	"github.com/adibhanna/focuslock/internal/errclass"
	"github.com/adibhanna/focuslock/internal/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeAudio(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("RIFF....WAVEfmt "), 0o644))
	return path
}

func newLibrary(t *testing.T) (*Library, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "sounds")
	lib, err := LoadLibrary(dir, quietLogger())
	require.NoError(t, err)
	return lib, dir
}

func TestLibrary_BuiltinsOnly(t *testing.T) {
	lib, dir := newLibrary(t)
	assert.Equal(t, models.BuiltinSounds(), lib.All())
	assert.DirExists(t, dir)
}

func TestLibrary_AddThenRemoveRestoresState(t *testing.T) {
	lib, dir := newLibrary(t)
	src := writeAudio(t, t.TempDir(), "Rain Drops.mp3")
	before := lib.All()

	sound, err := lib.Add(src)
	require.NoError(t, err)
	assert.True(t, sound.IsCustom)
	assert.Equal(t, "Rain Drops", sound.DisplayName)
	assert.FileExists(t, sound.SourceLocation)
	assert.Len(t, lib.All(), len(before)+1)

	require.NoError(t, lib.Remove(sound.ID))
	assert.Equal(t, before, lib.All())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.FileExists(t, src)
}

func TestLibrary_RescanKeepsIDs(t *testing.T) {
	lib, dir := newLibrary(t)
	sound, err := lib.Add(writeAudio(t, t.TempDir(), "bell.wav"))
	require.NoError(t, err)

	reloaded, err := LoadLibrary(dir, quietLogger())
	require.NoError(t, err)
	got, ok := reloaded.Get(sound.ID)
	require.True(t, ok)
	assert.Equal(t, sound, got)
}

func TestLibrary_ScanSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	writeAudio(t, dir, "chime.ogg")
	writeAudio(t, dir, "notes.txt")
	writeAudio(t, dir, ".import-123")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.mp3"), 0o755))

	lib, err := LoadLibrary(dir, quietLogger())
	require.NoError(t, err)
	all := lib.All()
	require.Len(t, all, 4)
	assert.Equal(t, "chime", all[3].DisplayName)
}

func TestLibrary_NameCollision(t *testing.T) {
	lib, _ := newLibrary(t)
	first, err := lib.Add(writeAudio(t, t.TempDir(), "gong.mp3"))
	require.NoError(t, err)
	second, err := lib.Add(writeAudio(t, t.TempDir(), "gong.mp3"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "gong (2)", second.DisplayName)
}

func TestLibrary_AddRejectsBadInput(t *testing.T) {
	lib, dir := newLibrary(t)
	before := lib.All()

	_, err := lib.Add(writeAudio(t, t.TempDir(), "virus.exe"))
	assert.True(t, errors.Is(err, errclass.ErrResourceFailure))

	_, err = lib.Add(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.True(t, errors.Is(err, errclass.ErrResourceFailure))

	empty := filepath.Join(t.TempDir(), "empty.wav")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = lib.Add(empty)
	assert.True(t, errors.Is(err, errclass.ErrResourceFailure))

	assert.Equal(t, before, lib.All())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLibrary_RemoveFailureKeepsEntry(t *testing.T) {
	lib, _ := newLibrary(t)
	sound, err := lib.Add(writeAudio(t, t.TempDir(), "alarm.mp3"))
	require.NoError(t, err)

	// A non-empty directory in place of the file makes the delete fail.
	require.NoError(t, os.Remove(sound.SourceLocation))
	require.NoError(t, os.Mkdir(sound.SourceLocation, 0o755))
	writeAudio(t, sound.SourceLocation, "inner.mp3")

	err = lib.Remove(sound.ID)
	assert.True(t, errors.Is(err, errclass.ErrResourceFailure))
	_, ok := lib.Get(sound.ID)
	assert.True(t, ok)
}

func TestLibrary_RemoveRejectsBuiltinAndUnknown(t *testing.T) {
	lib, _ := newLibrary(t)
	assert.True(t, errors.Is(lib.Remove(models.SoundDefault), errclass.ErrResourceFailure))
	assert.True(t, errors.Is(lib.Remove("custom-nope"), errclass.ErrResourceFailure))
	assert.Len(t, lib.All(), 3)
}

func TestLibrary_Resolve(t *testing.T) {
	lib, _ := newLibrary(t)
	custom, err := lib.Add(writeAudio(t, t.TempDir(), "birds.m4a"))
	require.NoError(t, err)

	bundled := bridge.MediaSource{Kind: bridge.MediaBundled, Location: bridge.DefaultAlarmBundle}
	tests := []struct {
		id         string
		output     Output
		source     bridge.MediaSource
		background bridge.NotificationSound
	}{
		{models.SoundDefault, OutputMedia, bundled, bridge.NotifySoundDefault},
		{models.SoundNone, OutputVibrationOnly, bridge.MediaSource{}, bridge.NotifyVibrationOnly},
		{models.SoundSilent, OutputSilent, bridge.MediaSource{}, bridge.NotifySilent},
		{custom.ID, OutputMedia, bridge.MediaSource{Kind: bridge.MediaFile, Location: custom.SourceLocation}, bridge.NotifySoundDefault},
		{"custom-deleted", OutputMedia, bundled, bridge.NotifySoundDefault},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			res := lib.Resolve(tt.id)
			assert.Equal(t, tt.output, res.Output)
			assert.Equal(t, tt.source, res.Source)
			assert.Equal(t, tt.background, res.NotificationSound())
		})
	}
}
