package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adibhanna/focuslock/internal/models"
)

// ExportAllStats renders a plain-text report of the whole phase log, with
// "today" and "this week" taken from now.
func (s *Storage) ExportAllStats(now time.Time) (string, error) {
	phases, err := s.GetAllPhases()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "focuslock - Statistics Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", now.Format("January 2, 2006 3:04 PM"))
	fmt.Fprintf(&b, "=====================================\n\n")

	sessions, focus, rest := tally(phases)
	fmt.Fprintf(&b, "OVERALL STATISTICS\n")
	fmt.Fprintf(&b, "------------------\n")
	fmt.Fprintf(&b, "Phases Recorded: %d\n", len(phases))
	fmt.Fprintf(&b, "Focus Sessions: %d\n", sessions)
	fmt.Fprintf(&b, "Total Focus Time: %s\n", FormatMinutes(focus))
	fmt.Fprintf(&b, "Total Break Time: %s\n", FormatMinutes(rest))
	if sessions > 0 {
		fmt.Fprintf(&b, "Average Focus Session: %d minutes\n", focus/sessions)
	}
	b.WriteString("\n")

	years := make(map[int]bool)
	for _, phase := range phases {
		years[phase.Year] = true
	}
	ordered := make([]int, 0, len(years))
	for year := range years {
		ordered = append(ordered, year)
	}
	sort.Ints(ordered)

	for _, year := range ordered {
		yearStats, err := s.GetYearStats(year)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "YEAR %d\n", year)
		fmt.Fprintf(&b, "--------\n")
		fmt.Fprintf(&b, "Focus Sessions: %d\n", yearStats.SessionsCount)
		fmt.Fprintf(&b, "Total Time: %s\n", FormatMinutes(yearStats.TotalMinutes))
		for _, monthStats := range yearStats.MonthlyStats {
			monthTime, _ := time.Parse("2006-01", monthStats.Month)
			fmt.Fprintf(&b, "  %s: %d sessions (%s)\n", monthTime.Format("January"), monthStats.SessionsCount, FormatMinutes(monthStats.TotalMinutes))
		}
		b.WriteString("\n")
	}

	year, week := now.ISOWeek()
	weekStats, err := s.GetWeekStats(year, week)
	if err == nil && weekStats.SessionsCount > 0 {
		fmt.Fprintf(&b, "CURRENT WEEK (Week %d, %d)\n", weekStats.Week, weekStats.Year)
		fmt.Fprintf(&b, "------------------------\n")
		fmt.Fprintf(&b, "Focus Sessions: %d\n", weekStats.SessionsCount)
		fmt.Fprintf(&b, "Total Time: %s\n", FormatMinutes(weekStats.TotalMinutes))
		for _, day := range weekStats.DailyStats {
			date, _ := time.Parse("2006-01-02", day.Date)
			fmt.Fprintf(&b, "  %s: %d sessions (%s)\n", date.Format("Monday"), day.SessionsCount, FormatMinutes(day.TotalMinutes))
		}
		b.WriteString("\n")
	}

	today, err := s.GetDayStats(now.Format("2006-01-02"))
	if err == nil && len(today.Phases) > 0 {
		fmt.Fprintf(&b, "TODAY (%s)\n", now.Format("Monday, January 2, 2006"))
		fmt.Fprintf(&b, "-------------------------------\n")
		fmt.Fprintf(&b, "Focus Sessions: %d\n", today.SessionsCount)
		fmt.Fprintf(&b, "Total Time: %s\n", FormatMinutes(today.TotalMinutes))
		fmt.Fprintf(&b, "\nPhase Details:\n")
		for _, phase := range today.Phases {
			fmt.Fprintf(&b, "  %s %s - %s (%d min)\n",
				phaseLabel(phase),
				phase.StartTime.Format("3:04 PM"),
				phase.EndTime.Format("3:04 PM"),
				phase.Minutes(),
			)
		}
	}

	return b.String(), nil
}

func phaseLabel(phase models.PhaseRecord) string {
	if phase.Mode == models.ModeBreak {
		return "Break"
	}
	if phase.AppMode == models.AppModeConcentration {
		return fmt.Sprintf("Focus #%d", phase.Cycle)
	}
	return "Focus"
}
