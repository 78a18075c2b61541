package stats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adibhanna/focuslock/internal/models"
)

type fakeSource struct {
	dayErr error
}

func (f fakeSource) GetDayStats(date string) (models.DayStats, error) {
	return models.DayStats{Date: date, SessionsCount: 3, TotalMinutes: 75}, f.dayErr
}

func (fakeSource) GetWeekStats(year, week int) (models.WeekStats, error) {
	return models.WeekStats{Year: year, Week: week, SessionsCount: 9}, nil
}

func (fakeSource) GetMonthStats(year, month int) (models.MonthStats, error) {
	return models.MonthStats{Year: year, Month: fmt.Sprintf("%d-%02d", year, month), SessionsCount: 20}, nil
}

func (fakeSource) GetYearStats(year int) (models.YearStats, error) {
	return models.YearStats{Year: year, SessionsCount: 100}, nil
}

func (fakeSource) ExportAllStats(now time.Time) (string, error) {
	return "report for " + now.Format("2006-01-02"), nil
}

var fixedNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)

func newModel(t *testing.T, src Source) (Model, string) {
	dir := t.TempDir()
	return New(src, Options{Now: func() time.Time { return fixedNow }, ExportDirs: []string{dir}}), dir
}

func TestView_SwitchesPeriods(t *testing.T) {
	m, _ := newModel(t, fakeSource{})
	assert.Contains(t, m.View(), "Focus sessions: 3")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("w")})
	assert.Contains(t, m.View(), "Focus sessions: 9")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	assert.Contains(t, m.View(), "Focus sessions: 20")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	assert.Contains(t, m.View(), "Focus sessions: 100")
}

func TestRefresh_ReportsLoadErrors(t *testing.T) {
	m, _ := newModel(t, fakeSource{dayErr: errors.New("log unreadable")})
	assert.Contains(t, m.View(), "Could not read statistics: log unreadable")
}

func TestExport_WritesReport(t *testing.T) {
	m, dir := newModel(t, fakeSource{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.NotNil(t, cmd)
	msg, ok := cmd().(exportResultMsg)
	require.True(t, ok)

	path := filepath.Join(dir, "focuslock-stats-2026-03-10-090000.txt")
	assert.Equal(t, "Exported to "+path, msg.message)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "report for 2026-03-10", string(data))

	m, _ = m.Update(msg)
	assert.Contains(t, m.View(), "Exported to")
	m, _ = m.Update(clearMessageMsg{})
	assert.NotContains(t, m.View(), "Exported to")
}

func TestWriteReport_FallsBackToNextDirectory(t *testing.T) {
	good := t.TempDir()
	path, err := writeReport([]string{filepath.Join(good, "missing"), good}, fixedNow, "x")
	require.NoError(t, err)
	assert.Equal(t, good, filepath.Dir(path))

	_, err = writeReport(nil, fixedNow, "x")
	assert.Error(t, err)
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, daysIn(time.Date(2028, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 31, daysIn(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30, daysIn(time.Time{}))
}
