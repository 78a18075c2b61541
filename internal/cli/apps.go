package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adibhanna/focuslock/internal/bridge"
)

func newAppsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List installed apps that can go on the blocked list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, nil)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.bridgeTimeout)
			defer cancel()
			apps, err := a.engine.InstalledApps(ctx)
			if errors.Is(err, bridge.ErrUnsupported) {
				return fmt.Errorf("listing apps is not supported on this platform")
			}
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), apps)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, app := range apps {
				fmt.Fprintf(w, "%s\t%s\n", app.ID, app.Name)
			}
			return w.Flush()
		},
	}
}
