package models

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// HabitMode selects how long a habit runs
type HabitMode string

const (
	// HabitModeAutopilot is the fixed 21-day variant
	HabitModeAutopilot HabitMode = "autopilot"
	// HabitModeManual lets the user pick the length and carries an end date
	HabitModeManual HabitMode = "manual"
)

// Valid reports whether m is a known mode
func (m HabitMode) Valid() bool {
	return m == HabitModeAutopilot || m == HabitModeManual
}

func (m HabitMode) String() string { return string(m) }

// UnmarshalText rejects unknown modes. Legacy records are coerced by the
// snapshot decoder before they ever reach this type.
func (m *HabitMode) UnmarshalText(text []byte) error {
	mode := HabitMode(text)
	if !mode.Valid() {
		return fmt.Errorf("invalid habit mode %q", string(text))
	}
	*m = mode
	return nil
}

// HabitStatus is derived from the completed dates, never set directly
type HabitStatus string

const (
	HabitStatusActive    HabitStatus = "active"
	HabitStatusCompleted HabitStatus = "completed"
	// HabitStatusFailed is reserved; no operation produces it yet.
	HabitStatusFailed HabitStatus = "failed"
)

// Valid reports whether s is a known status
func (s HabitStatus) Valid() bool {
	switch s {
	case HabitStatusActive, HabitStatusCompleted, HabitStatusFailed:
		return true
	}
	return false
}

func (s HabitStatus) String() string { return string(s) }

func (s *HabitStatus) UnmarshalText(text []byte) error {
	status := HabitStatus(text)
	if !status.Valid() {
		return fmt.Errorf("invalid habit status %q", string(text))
	}
	*s = status
	return nil
}

// Habit is a long-running mission tracked over a number of calendar days
type Habit struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	Mode           HabitMode   `json:"mode"`
	StartDate      time.Time   `json:"startDate"`
	EndDate        *time.Time  `json:"endDate,omitempty"`
	TotalDays      int         `json:"totalDays"`
	CompletedDates []string    `json:"completedDates"` // YYYY-MM-DD, sorted ascending
	Streak         int         `json:"streak"`
	IsCompleted    bool        `json:"isCompleted"`
	Status         HabitStatus `json:"status"`
}

// HasDay reports whether the day key is marked complete
func (h Habit) HasDay(day string) bool {
	_, found := slices.BinarySearch(h.CompletedDates, day)
	return found
}

// ProgressPercent returns completed days as a rounded percentage of the target
func (h Habit) ProgressPercent() int {
	if h.TotalDays <= 0 {
		return 0
	}
	return int(math.Round(float64(len(h.CompletedDates)) / float64(h.TotalDays) * 100))
}

// DaysRemaining returns the number of target days still open
func (h Habit) DaysRemaining() int {
	remaining := h.TotalDays - len(h.CompletedDates)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Clone returns a deep copy so callers can't mutate store-owned slices
func (h Habit) Clone() Habit {
	c := h
	c.CompletedDates = slices.Clone(h.CompletedDates)
	if c.CompletedDates == nil {
		c.CompletedDates = []string{}
	}
	if h.EndDate != nil {
		end := *h.EndDate
		c.EndDate = &end
	}
	return c
}
