package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/adibhanna/focuslock/internal/models"
)

// Storage keeps the completed-phase log under the data directory.
type Storage struct {
	dataDir string
	mu      sync.Mutex
}

// DefaultDataDir is ~/.focuslock.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".focuslock"), nil
}

// New opens the data directory, creating it when missing. An empty dataDir
// means DefaultDataDir.
func New(dataDir string) (*Storage, error) {
	if dataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &Storage{dataDir: dataDir}, nil
}

func (s *Storage) DataDir() string {
	return s.dataDir
}

// SoundDir is where imported alarm sounds live.
func (s *Storage) SoundDir() string {
	return filepath.Join(s.dataDir, "sounds")
}

// LogFile is the default log destination for the terminal UI.
func (s *Storage) LogFile() string {
	return filepath.Join(s.dataDir, "focuslock.log")
}

func (s *Storage) phasesFile() string {
	return filepath.Join(s.dataDir, "phases.json")
}

// RecordPhase appends a completed phase. A record with a known ID replaces
// the stored one.
func (s *Storage) RecordPhase(record models.PhaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	phases, err := s.readPhasesLocked()
	if err != nil {
		return err
	}
	if record.Date == "" {
		record.Stamp()
	}

	found := false
	for i, existing := range phases {
		if existing.ID == record.ID {
			phases[i] = record
			found = true
			break
		}
	}
	if !found {
		phases = append(phases, record)
	}

	data, err := json.MarshalIndent(phases, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(s.phasesFile(), data, 0o644)
}

// GetAllPhases returns every recorded phase in the order they were recorded.
func (s *Storage) GetAllPhases() ([]models.PhaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readPhasesLocked()
}

func (s *Storage) readPhasesLocked() ([]models.PhaseRecord, error) {
	data, err := os.ReadFile(s.phasesFile())
	if err != nil {
		if os.IsNotExist(err) {
			return []models.PhaseRecord{}, nil
		}
		return nil, err
	}

	var phases []models.PhaseRecord
	if err := json.Unmarshal(data, &phases); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(s.phasesFile()), err)
	}
	return phases, nil
}

// CompletedCycles counts completed FOCUS phases over the whole log.
func (s *Storage) CompletedCycles() (int, error) {
	phases, err := s.GetAllPhases()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, phase := range phases {
		if phase.Mode == models.ModeFocus {
			count++
		}
	}
	return count, nil
}

func (s *Storage) phasesWhere(keep func(models.PhaseRecord) bool) ([]models.PhaseRecord, error) {
	all, err := s.GetAllPhases()
	if err != nil {
		return nil, err
	}
	var phases []models.PhaseRecord
	for _, phase := range all {
		if keep(phase) {
			phases = append(phases, phase)
		}
	}
	return phases, nil
}

func (s *Storage) GetPhasesByDate(date string) ([]models.PhaseRecord, error) {
	return s.phasesWhere(func(p models.PhaseRecord) bool { return p.Date == date })
}

func (s *Storage) GetWeekPhases(year, week int) ([]models.PhaseRecord, error) {
	return s.phasesWhere(func(p models.PhaseRecord) bool { return p.Year == year && p.Week == week })
}

func (s *Storage) GetMonthPhases(year, month int) ([]models.PhaseRecord, error) {
	monthStr := fmt.Sprintf("%04d-%02d", year, month)
	return s.phasesWhere(func(p models.PhaseRecord) bool { return p.Month == monthStr })
}

func (s *Storage) GetYearPhases(year int) ([]models.PhaseRecord, error) {
	return s.phasesWhere(func(p models.PhaseRecord) bool { return p.Year == year })
}

// tally splits phases into the focus count, focus minutes and break minutes.
func tally(phases []models.PhaseRecord) (sessions, focusMinutes, breakMinutes int) {
	for _, phase := range phases {
		if phase.Mode == models.ModeFocus {
			sessions++
			focusMinutes += phase.Minutes()
		} else {
			breakMinutes += phase.Minutes()
		}
	}
	return sessions, focusMinutes, breakMinutes
}

func (s *Storage) GetDayStats(date string) (models.DayStats, error) {
	phases, err := s.GetPhasesByDate(date)
	if err != nil {
		return models.DayStats{}, err
	}
	return dayStats(date, phases), nil
}

func dayStats(date string, phases []models.PhaseRecord) models.DayStats {
	sessions, focus, rest := tally(phases)
	return models.DayStats{
		Date:          date,
		SessionsCount: sessions,
		TotalMinutes:  focus,
		BreakMinutes:  rest,
		Phases:        phases,
	}
}

func (s *Storage) GetWeekStats(year, week int) (models.WeekStats, error) {
	phases, err := s.GetWeekPhases(year, week)
	if err != nil {
		return models.WeekStats{}, err
	}
	return weekStats(year, week, phases), nil
}

func weekStats(year, week int, phases []models.PhaseRecord) models.WeekStats {
	sessions, focus, _ := tally(phases)
	stats := models.WeekStats{
		Week:          week,
		Year:          year,
		SessionsCount: sessions,
		TotalMinutes:  focus,
	}

	byDate := make(map[string][]models.PhaseRecord)
	for _, phase := range phases {
		byDate[phase.Date] = append(byDate[phase.Date], phase)
	}
	for date, datePhases := range byDate {
		stats.DailyStats = append(stats.DailyStats, dayStats(date, datePhases))
	}
	sort.Slice(stats.DailyStats, func(i, j int) bool {
		return stats.DailyStats[i].Date < stats.DailyStats[j].Date
	})
	return stats
}

func (s *Storage) GetMonthStats(year, month int) (models.MonthStats, error) {
	phases, err := s.GetMonthPhases(year, month)
	if err != nil {
		return models.MonthStats{}, err
	}
	return monthStats(year, month, phases), nil
}

func monthStats(year, month int, phases []models.PhaseRecord) models.MonthStats {
	sessions, focus, _ := tally(phases)
	stats := models.MonthStats{
		Month:         fmt.Sprintf("%04d-%02d", year, month),
		Year:          year,
		SessionsCount: sessions,
		TotalMinutes:  focus,
	}

	byWeek := make(map[int][]models.PhaseRecord)
	for _, phase := range phases {
		byWeek[phase.Week] = append(byWeek[phase.Week], phase)
	}
	for week, weekPhases := range byWeek {
		stats.WeeklyStats = append(stats.WeeklyStats, weekStats(year, week, weekPhases))
	}
	sort.Slice(stats.WeeklyStats, func(i, j int) bool {
		return stats.WeeklyStats[i].Week < stats.WeeklyStats[j].Week
	})
	return stats
}

func (s *Storage) GetYearStats(year int) (models.YearStats, error) {
	phases, err := s.GetYearPhases(year)
	if err != nil {
		return models.YearStats{}, err
	}
	sessions, focus, _ := tally(phases)
	stats := models.YearStats{
		Year:          year,
		SessionsCount: sessions,
		TotalMinutes:  focus,
	}

	byMonth := make(map[int][]models.PhaseRecord)
	for _, phase := range phases {
		byMonth[int(phase.EndTime.Month())] = append(byMonth[int(phase.EndTime.Month())], phase)
	}
	for month, monthPhases := range byMonth {
		stats.MonthlyStats = append(stats.MonthlyStats, monthStats(year, month, monthPhases))
	}
	sort.Slice(stats.MonthlyStats, func(i, j int) bool {
		return stats.MonthlyStats[i].Month < stats.MonthlyStats[j].Month
	})
	return stats, nil
}

// ResetAllData deletes the phase log. Imported sounds and settings are kept.
func (s *Storage) ResetAllData() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.phasesFile()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsFirstTime reports whether no phase was ever recorded.
func (s *Storage) IsFirstTime() bool {
	_, err := os.Stat(s.phasesFile())
	return os.IsNotExist(err)
}

// FormatMinutes renders minutes as "1h 5m" or "45m".
func FormatMinutes(total int) string {
	hours := total / 60
	mins := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
