package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adibhanna/focuslock/internal/models"
	"github.com/adibhanna/focuslock/internal/ui/dashboard"
)

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, nil)
			if err != nil {
				return err
			}
			defer a.close()

			settings := a.engine.Settings()
			if opts.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), settings)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", a.settings.Path())
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(settings); err != nil {
				return err
			}
			return enc.Close()
		},
	})

	var (
		mode        string
		focus       int
		rest        int
		cycles      int
		blockedTabs []string
		blockedApps []string
		sound       string
		alarm       bool
		breakAlarm  bool
		vibration   bool
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change settings; only the given flags are touched",
		Example: `  focuslock settings set --mode concentration --focus 50 --break 10
  focuslock settings set --block-tab stats,sounds --block-app firefox`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var patch models.SettingsPatch
			if flags.Changed("mode") {
				patch.AppMode = models.Ptr(models.AppMode(mode))
			}
			if flags.Changed("focus") {
				patch.FocusDurationMinutes = &focus
			}
			if flags.Changed("break") {
				patch.BreakDurationMinutes = &rest
			}
			if flags.Changed("cycles") {
				patch.CycleCount = &cycles
			}
			if flags.Changed("block-tab") {
				for _, tab := range blockedTabs {
					if !slices.Contains(dashboard.BlockableTabs(), tab) {
						return fmt.Errorf("unknown tab %q; blockable tabs are %s", tab, strings.Join(dashboard.BlockableTabs(), ", "))
					}
				}
				patch.BlockedTabs = &blockedTabs
			}
			if flags.Changed("block-app") {
				patch.BlockedApps = &blockedApps
			}
			if flags.Changed("sound") {
				patch.AlarmSound = &sound
			}
			if flags.Changed("alarm") {
				patch.AlarmEnabled = &alarm
			}
			if flags.Changed("break-alarm") {
				patch.BreakAlarmEnabled = &breakAlarm
			}
			if flags.Changed("vibration") {
				patch.AlarmVibration = &vibration
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to change; see focuslock settings set --help")
			}

			a, err := openApp(opts, nil)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.engine.UpdateSettings(patch); err != nil {
				return err
			}
			if opts.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), a.engine.Settings())
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
			return nil
		},
	}
	f := set.Flags()
	f.StringVar(&mode, "mode", "", "app mode: free or concentration")
	f.IntVar(&focus, "focus", 0, "focus duration in minutes")
	f.IntVar(&rest, "break", 0, "break duration in minutes")
	f.IntVar(&cycles, "cycles", 0, "focus phases per concentration session")
	f.StringSliceVar(&blockedTabs, "block-tab", nil, "tabs blocked during focus (replaces the list)")
	f.StringSliceVar(&blockedApps, "block-app", nil, "apps blocked during focus (replaces the list)")
	f.StringVar(&sound, "sound", "", "alarm sound id")
	f.BoolVar(&alarm, "alarm", true, "play an alarm when focus ends")
	f.BoolVar(&breakAlarm, "break-alarm", true, "play an alarm when a break ends")
	f.BoolVar(&vibration, "vibration", true, "vibrate with the alarm where supported")
	cmd.AddCommand(set)
	return cmd
}
