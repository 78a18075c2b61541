package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adibhanna/focuslock/internal/storage"
)

func newResetCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all recorded statistics",
		Long:  "Delete the phase log. Settings and imported sounds are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("this deletes every recorded phase; pass --yes to confirm")
			}
			store, err := storage.New(opts.dataDir)
			if err != nil {
				return err
			}
			if err := store.ResetAllData(); err != nil {
				return fmt.Errorf("reset statistics: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All statistics deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
