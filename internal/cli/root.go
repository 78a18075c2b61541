// Package cli is the focuslock command line: the terminal app plus a few
// scriptable commands over the same engine and data directory.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adibhanna/focuslock/internal/bridge"
)

type rootOptions struct {
	dataDir       string
	configPath    string
	logLevel      string
	logFile       string
	jsonOutput    bool
	bridgeTimeout time.Duration
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "focuslock",
		Short: "focuslock - focus sessions that lock distractions away",
		Long: `focuslock runs focus/break sessions in the terminal. In concentration mode a
running focus phase locks the app: chosen tabs refuse to open and chosen apps
are blocked where the platform allows it. Breaks unlock everything.

Run without a command to open the terminal app.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data-dir", "", "statistics and sound directory (default ~/.focuslock)")
	flags.StringVar(&opts.configPath, "config", "", "settings file (default <user config dir>/focuslock/settings.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFile, "log-file", "", "log file (the terminal app defaults to <data-dir>/focuslock.log)")
	flags.BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")
	flags.DurationVar(&opts.bridgeTimeout, "bridge-timeout", bridge.DefaultTimeout, "upper bound on each platform call")

	root.AddCommand(
		newRunCmd(opts),
		newSoundsCmd(opts),
		newStatsCmd(opts),
		newSettingsCmd(opts),
		newAppsCmd(opts),
		newResetCmd(opts),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err.Error())
		os.Exit(1)
	}
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
