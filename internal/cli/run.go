package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/adibhanna/focuslock/internal/storage"
	"github.com/adibhanna/focuslock/internal/ui/dashboard"
)

// closeTimeout bounds the unblock and alarm cancellation done on exit.
const closeTimeout = 10 * time.Second

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the terminal app (the default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	a, err := openApp(opts, (*storage.Storage).LogFile)
	if err != nil {
		return err
	}
	defer a.close()

	welcome := ""
	if a.store.IsFirstTime() {
		welcome = "Welcome to focuslock! Press 3 to choose your durations, or space to start focusing."
	}
	model := dashboard.New(a.engine, dashboard.Options{
		Stats:         a.store,
		DataDir:       a.store.DataDir(),
		BridgeTimeout: opts.bridgeTimeout,
		Welcome:       welcome,
	})

	a.logger.Info("starting terminal app", "data_dir", a.store.DataDir(), "settings", a.settings.Path())
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal app: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), ">>> See you next session!")
	return nil
}
