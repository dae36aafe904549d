package engine

import (
	"slices"
	"time"

	"github.com/julianstephens/missionctl/internal/constants"
	"github.com/julianstephens/missionctl/internal/models"
)

// Streak counts consecutive completed days ending at today, or at yesterday
// when today is not marked. dates must be sorted ascending.
func Streak(dates []string, today, yesterday string) int {
	has := func(day string) bool {
		_, found := slices.BinarySearch(dates, day)
		return found
	}

	anchor := today
	if !has(today) {
		if !has(yesterday) {
			return 0
		}
		anchor = yesterday
	}

	day, err := time.Parse(constants.DateFormat, anchor)
	if err != nil {
		return 0
	}
	n := 0
	for has(day.Format(constants.DateFormat)) {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

// derive recomputes streak, completion and status together
func derive(h *models.Habit, today, yesterday string) {
	h.Streak = Streak(h.CompletedDates, today, yesterday)
	h.IsCompleted = len(h.CompletedDates) >= h.TotalDays
	if h.IsCompleted {
		h.Status = models.HabitStatusCompleted
	} else {
		h.Status = models.HabitStatusActive
	}
}
