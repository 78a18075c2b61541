package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adibhanna/focuslock/internal/models"
	"github.com/adibhanna/focuslock/internal/storage"
)

type statsReport struct {
	Day   models.DayStats   `json:"day"`
	Week  models.WeekStats  `json:"week"`
	Month models.MonthStats `json:"month"`
	Year  models.YearStats  `json:"year"`
}

func collectStats(s *storage.Storage, now time.Time) (statsReport, error) {
	var r statsReport
	var err error
	_, week := now.ISOWeek()
	if r.Day, err = s.GetDayStats(now.Format("2006-01-02")); err != nil {
		return r, err
	}
	if r.Week, err = s.GetWeekStats(now.Year(), week); err != nil {
		return r, err
	}
	if r.Month, err = s.GetMonthStats(now.Year(), int(now.Month())); err != nil {
		return r, err
	}
	if r.Year, err = s.GetYearStats(now.Year()); err != nil {
		return r, err
	}
	return r, nil
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print focus statistics",
		Long: `Print the plain-text statistics report, or with --json the day, week,
month and year summaries around today.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.New(opts.dataDir)
			if err != nil {
				return err
			}
			now := time.Now()

			if opts.jsonOutput {
				report, err := collectStats(store, now)
				if err != nil {
					return err
				}
				return outputJSON(cmd.OutOrStdout(), report)
			}

			report, err := store.ExportAllStats(now)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), report)
				return err
			}
			if err := os.WriteFile(output, []byte(report), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file")
	return cmd
}
