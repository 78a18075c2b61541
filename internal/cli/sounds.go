package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adibhanna/focuslock/internal/models"
)

func newSoundsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sounds",
		Short: "Manage alarm sounds",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List built-in and imported sounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, nil)
			if err != nil {
				return err
			}
			defer a.close()

			sounds := a.engine.AllSounds()
			if opts.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), sounds)
			}
			current := a.engine.Settings().AlarmSound
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "\tID\tNAME\tKIND")
			for _, s := range sounds {
				mark, kind := "", "built-in"
				if s.ID == current {
					mark = "*"
				}
				if s.IsCustom {
					kind = "imported"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, s.ID, s.DisplayName, kind)
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <file>",
		Short: "Import an audio file (mp3, wav, ogg, m4a, aac, flac)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, nil)
			if err != nil {
				return err
			}
			defer a.close()

			sound, err := a.engine.AddCustomSound(args[0])
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), sound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s)\n", sound.DisplayName, sound.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Delete an imported sound",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, nil)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.engine.RemoveCustomSound(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "use <id>",
		Short: "Set the alarm sound",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, nil)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.engine.UpdateSettings(models.SettingsPatch{AlarmSound: &args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Alarm sound: %s\n", a.engine.Settings().AlarmSound)
			return nil
		},
	})
	return cmd
}
