package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adibhanna/focuslock/internal/alarm"
	"github.com/adibhanna/focuslock/internal/engine"
	"github.com/adibhanna/focuslock/internal/platform"
	"github.com/adibhanna/focuslock/internal/storage"
)

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", s)
	}
}

// app is everything a command needs, opened from the root flags.
type app struct {
	logger   *slog.Logger
	logFile  io.Closer
	store    *storage.Storage
	settings *storage.SettingsFile
	sounds   *alarm.Library
	desktop  *platform.Desktop
	engine   *engine.Engine
}

// openApp wires storage, the desktop bridge and the engine. Logs go to
// --log-file, else to defaultLog when set, else to stderr.
func openApp(opts *rootOptions, defaultLog func(*storage.Storage) string) (*app, error) {
	level, err := parseLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(opts.dataDir)
	if err != nil {
		return nil, fmt.Errorf("open data directory: %w", err)
	}

	a := &app{store: store}
	var out io.Writer = os.Stderr
	logPath := opts.logFile
	if logPath == "" && defaultLog != nil {
		logPath = defaultLog(store)
	}
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
		}
		out = f
		a.logFile = f
	}
	a.logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	if a.settings, err = storage.NewSettingsFile(opts.configPath); err != nil {
		a.close()
		return nil, err
	}
	if a.sounds, err = alarm.LoadLibrary(store.SoundDir(), a.logger); err != nil {
		a.close()
		return nil, err
	}
	a.desktop = platform.New(platform.Options{Logger: a.logger})
	a.engine, err = engine.New(engine.Options{
		Store:         a.settings,
		Blocker:       a.desktop,
		Media:         a.desktop,
		Notifier:      a.desktop,
		Sounds:        a.sounds,
		Recorder:      store,
		Logger:        a.logger,
		BridgeTimeout: opts.bridgeTimeout,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() error {
	var errs []error
	if a.engine != nil {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		errs = append(errs, a.engine.Close(ctx))
		cancel()
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}
