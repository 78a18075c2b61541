package models

import (
	"time"
)

// Mode is the phase kind the clock is counting down.
type Mode string

const (
	ModeFocus Mode = "focus"
	ModeBreak Mode = "break"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeFocus || m == ModeBreak
}

// Other returns the mode that follows m in a concentration cycle.
func (m Mode) Other() Mode {
	if m == ModeFocus {
		return ModeBreak
	}
	return ModeFocus
}

// TimerSession is the live countdown state. Only the session clock mutates it.
type TimerSession struct {
	Mode            Mode `json:"mode"`
	TimeLeftSeconds int  `json:"time_left_seconds"`
	IsRunning       bool `json:"is_running"`
	CurrentCycle    int  `json:"current_cycle"`
	CompletedCycles int  `json:"completed_cycles"`
}

// Snapshot is what the presentation layer renders.
type Snapshot struct {
	Mode            Mode    `json:"mode"`
	AppMode         AppMode `json:"app_mode"`
	TimeLeftSeconds int     `json:"time_left_seconds"`
	DurationSeconds int     `json:"duration_seconds"`
	IsRunning       bool    `json:"is_running"`
	CurrentCycle    int     `json:"current_cycle"`
	CycleCount      int     `json:"cycle_count"`
	CompletedCycles int     `json:"completed_cycles"`
	IsLocked        bool    `json:"is_locked"`
	ExitPending     bool    `json:"exit_pending"`
}

// PhaseRecord is one completed FOCUS or BREAK phase, kept for statistics.
type PhaseRecord struct {
	ID              string    `json:"id"`
	Mode            Mode      `json:"mode"`
	AppMode         AppMode   `json:"app_mode"`
	Cycle           int       `json:"cycle"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int       `json:"duration_seconds"` // planned length of the phase
	Date            string    `json:"date"`             // YYYY-MM-DD format
	Week            int       `json:"week"`             // ISO week number
	Month           string    `json:"month"`            // YYYY-MM format
	Year            int       `json:"year"`
}

// Stamp fills the calendar bucketing fields from EndTime.
func (r *PhaseRecord) Stamp() {
	_, week := r.EndTime.ISOWeek()
	r.Date = r.EndTime.Format("2006-01-02")
	r.Week = week
	r.Month = r.EndTime.Format("2006-01")
	r.Year = r.EndTime.Year()
}

// Minutes returns the time actually spent in the phase, falling back to the
// planned duration when the wall-clock span is unusable.
func (r PhaseRecord) Minutes() int {
	if !r.EndTime.IsZero() && !r.StartTime.IsZero() {
		if actual := int(r.EndTime.Sub(r.StartTime).Minutes()); actual > 0 {
			return actual
		}
	}
	return r.DurationSeconds / 60
}

type DayStats struct {
	Date          string        `json:"date"`
	SessionsCount int           `json:"sessions_count"`
	TotalMinutes  int           `json:"total_minutes"`
	BreakMinutes  int           `json:"break_minutes"`
	Phases        []PhaseRecord `json:"phases"`
}

type WeekStats struct {
	Week          int        `json:"week"`
	Year          int        `json:"year"`
	SessionsCount int        `json:"sessions_count"`
	TotalMinutes  int        `json:"total_minutes"`
	DailyStats    []DayStats `json:"daily_stats"`
}

type MonthStats struct {
	Month         string      `json:"month"`
	Year          int         `json:"year"`
	SessionsCount int         `json:"sessions_count"`
	TotalMinutes  int         `json:"total_minutes"`
	WeeklyStats   []WeekStats `json:"weekly_stats"`
}

type YearStats struct {
	Year          int          `json:"year"`
	SessionsCount int          `json:"sessions_count"`
	TotalMinutes  int          `json:"total_minutes"`
	MonthlyStats  []MonthStats `json:"monthly_stats"`
}
