package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adibhanna/focuslock/internal/models"
	"github.com/adibhanna/focuslock/internal/storage"
)

type ViewType int

const (
	DayView ViewType = iota
	WeekView
	MonthView
	YearView
)

// Source is the statistics backend, normally *storage.Storage.
type Source interface {
	GetDayStats(date string) (models.DayStats, error)
	GetWeekStats(year, week int) (models.WeekStats, error)
	GetMonthStats(year, month int) (models.MonthStats, error)
	GetYearStats(year int) (models.YearStats, error)
	ExportAllStats(now time.Time) (string, error)
}

// Options configures the stats tab.
type Options struct {
	Now func() time.Time
	// ExportDirs are tried in order when saving a report. Defaults to
	// ~/Downloads then the home directory.
	ExportDirs []string
}

type Model struct {
	source     Source
	now        func() time.Time
	exportDirs []string

	viewType   ViewType
	dayStats   models.DayStats
	weekStats  models.WeekStats
	monthStats models.MonthStats
	yearStats  models.YearStats
	loadErr    string

	exportMessage string
	width         int
	height        int
}

type exportResultMsg struct {
	message string
}

type clearMessageMsg struct{}

func New(source Source, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.ExportDirs) == 0 {
		if home, err := os.UserHomeDir(); err == nil {
			opts.ExportDirs = []string{filepath.Join(home, "Downloads"), home}
		}
	}
	m := Model{source: source, now: opts.Now, exportDirs: opts.ExportDirs}
	return m.Refresh()
}

// Refresh reloads all four periods around the current time.
func (m Model) Refresh() Model {
	now := m.now()
	_, week := now.ISOWeek()

	var errs []string
	var err error
	if m.dayStats, err = m.source.GetDayStats(now.Format("2006-01-02")); err != nil {
		errs = append(errs, err.Error())
	}
	if m.weekStats, err = m.source.GetWeekStats(now.Year(), week); err != nil {
		errs = append(errs, err.Error())
	}
	if m.monthStats, err = m.source.GetMonthStats(now.Year(), int(now.Month())); err != nil {
		errs = append(errs, err.Error())
	}
	if m.yearStats, err = m.source.GetYearStats(now.Year()); err != nil {
		errs = append(errs, err.Error())
	}
	m.loadErr = strings.Join(errs, "; ")
	return m
}

func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Daily):
			m.viewType = DayView
		case key.Matches(msg, keys.Weekly):
			m.viewType = WeekView
		case key.Matches(msg, keys.Monthly):
			m.viewType = MonthView
		case key.Matches(msg, keys.Yearly):
			m.viewType = YearView
		case key.Matches(msg, keys.Export):
			return m, m.exportStats()
		}

	case exportResultMsg:
		m.exportMessage = msg.message
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearMessageMsg{}
		})

	case clearMessageMsg:
		m.exportMessage = ""
	}
	return m, nil
}

func (m Model) View() string {
	var content string
	switch m.viewType {
	case WeekView:
		content = m.renderWeekView()
	case MonthView:
		content = m.renderMonthView()
	case YearView:
		content = m.renderYearView()
	default:
		content = m.renderDayView()
	}

	parts := []string{content}
	if m.loadErr != "" {
		parts = append(parts, errorStyle.Render("Could not read statistics: "+m.loadErr))
	}
	if m.exportMessage != "" {
		parts = append(parts, messageStyle.Render(m.exportMessage))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF7CCB")).
			MarginBottom(1)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FDFF8C")).
			MarginBottom(1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888")).
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginTop(1)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true).
			MarginTop(1)
)

func (m Model) renderDayView() string {
	date, _ := time.Parse("2006-01-02", m.dayStats.Date)
	title := titleStyle.Render("Today - " + date.Format("Monday, January 2, 2006"))
	summary := summaryStyle.Render(fmt.Sprintf(
		"Focus sessions: %d | Focus: %s | Breaks: %s",
		m.dayStats.SessionsCount,
		storage.FormatMinutes(m.dayStats.TotalMinutes),
		storage.FormatMinutes(m.dayStats.BreakMinutes),
	))

	if len(m.dayStats.Phases) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, summary,
			rowStyle.Render("Nothing recorded yet today. Time to focus!"))
	}

	var rows []string
	for _, phase := range m.dayStats.Phases {
		label := "Break"
		if phase.Mode == models.ModeFocus {
			label = "Focus"
			if phase.AppMode == models.AppModeConcentration {
				label = fmt.Sprintf("Focus #%d", phase.Cycle)
			}
		}
		rows = append(rows, rowStyle.Render(fmt.Sprintf("%-9s %s - %s (%d min)",
			label,
			phase.StartTime.Format("3:04 PM"),
			phase.EndTime.Format("3:04 PM"),
			phase.Minutes(),
		)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{title, summary}, rows...)...)
}

func (m Model) renderWeekView() string {
	title := titleStyle.Render(fmt.Sprintf("Week %d, %d", m.weekStats.Week, m.weekStats.Year))
	summary := summaryStyle.Render(fmt.Sprintf(
		"Focus sessions: %d | Focus: %s",
		m.weekStats.SessionsCount,
		storage.FormatMinutes(m.weekStats.TotalMinutes),
	))

	if len(m.weekStats.DailyStats) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, summary,
			rowStyle.Render("No sessions this week yet."))
	}

	rows := []string{title, summary, m.renderWeekChart()}
	for _, day := range m.weekStats.DailyStats {
		date, _ := time.Parse("2006-01-02", day.Date)
		rows = append(rows, rowStyle.Render(fmt.Sprintf("%-9s %d sessions (%s)",
			date.Format("Monday"), day.SessionsCount, storage.FormatMinutes(day.TotalMinutes))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderWeekChart draws one bar per weekday scaled to the busiest day.
func (m Model) renderWeekChart() string {
	const barHeight = 5
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

	perDay := make(map[string]int)
	busiest := 0
	for _, day := range m.weekStats.DailyStats {
		date, _ := time.Parse("2006-01-02", day.Date)
		perDay[date.Format("Mon")] = day.SessionsCount
		busiest = max(busiest, day.SessionsCount)
	}
	if busiest == 0 {
		return ""
	}

	var b strings.Builder
	for row := barHeight; row > 0; row-- {
		for _, day := range days {
			level := perDay[day] * barHeight / busiest
			if level >= row {
				b.WriteString("██ ")
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString("\n")
	}
	for _, day := range days {
		b.WriteString(day[:2] + " ")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#666")).MarginBottom(1).Render(b.String())
}

func (m Model) renderMonthView() string {
	month, _ := time.Parse("2006-01", m.monthStats.Month)
	title := titleStyle.Render(month.Format("January 2006"))
	summary := summaryStyle.Render(fmt.Sprintf(
		"Focus sessions: %d | Focus: %s | %.1f sessions per day",
		m.monthStats.SessionsCount,
		storage.FormatMinutes(m.monthStats.TotalMinutes),
		float64(m.monthStats.SessionsCount)/float64(daysIn(month)),
	))

	if len(m.monthStats.WeeklyStats) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, summary,
			rowStyle.Render("No sessions this month yet."))
	}

	rows := []string{title, summary}
	for _, week := range m.monthStats.WeeklyStats {
		rows = append(rows, rowStyle.Render(fmt.Sprintf("Week %-3d %d sessions (%s)",
			week.Week, week.SessionsCount, storage.FormatMinutes(week.TotalMinutes))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderYearView() string {
	title := titleStyle.Render(fmt.Sprintf("Year %d", m.yearStats.Year))
	summary := summaryStyle.Render(fmt.Sprintf(
		"Focus sessions: %d | Focus: %s | %.1f sessions per month",
		m.yearStats.SessionsCount,
		storage.FormatMinutes(m.yearStats.TotalMinutes),
		float64(m.yearStats.SessionsCount)/12,
	))

	if len(m.yearStats.MonthlyStats) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, summary,
			rowStyle.Render("No sessions this year yet."))
	}

	rows := []string{title, summary}
	for _, month := range m.yearStats.MonthlyStats {
		t, _ := time.Parse("2006-01", month.Month)
		rows = append(rows, rowStyle.Render(fmt.Sprintf("%-10s %d sessions (%s)",
			t.Format("January"), month.SessionsCount, storage.FormatMinutes(month.TotalMinutes))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func daysIn(month time.Time) int {
	if month.IsZero() {
		return 30
	}
	return month.AddDate(0, 1, -1).Day()
}

func (m Model) exportStats() tea.Cmd {
	source, now, dirs := m.source, m.now(), m.exportDirs
	return func() tea.Msg {
		report, err := source.ExportAllStats(now)
		if err != nil {
			return exportResultMsg{message: fmt.Sprintf("Export failed: %v", err)}
		}
		path, err := writeReport(dirs, now, report)
		if err != nil {
			return exportResultMsg{message: fmt.Sprintf("Failed to save report: %v", err)}
		}
		return exportResultMsg{message: "Exported to " + path}
	}
}

// writeReport saves into the first directory that accepts the file.
func writeReport(dirs []string, now time.Time, report string) (string, error) {
	if len(dirs) == 0 {
		return "", fmt.Errorf("no export directory available")
	}
	name := fmt.Sprintf("focuslock-stats-%s.txt", now.Format("2006-01-02-150405"))
	var err error
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if err = os.WriteFile(path, []byte(report), 0o644); err == nil {
			return path, nil
		}
	}
	return "", err
}

// KeyBindings lists the tab's keys for the footer.
func (m Model) KeyBindings() []key.Binding {
	return []key.Binding{keys.Daily, keys.Weekly, keys.Monthly, keys.Yearly, keys.Export}
}

type keyMap struct {
	Daily   key.Binding
	Weekly  key.Binding
	Monthly key.Binding
	Yearly  key.Binding
	Export  key.Binding
}

var keys = keyMap{
	Daily: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "today"),
	),
	Weekly: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "week"),
	),
	Monthly: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "month"),
	),
	Yearly: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "year"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
}
