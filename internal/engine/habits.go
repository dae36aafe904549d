package engine

import (
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/missionctl/internal/logger"
	"github.com/julianstephens/missionctl/internal/models"
	"github.com/julianstephens/missionctl/internal/snapshot"
	"github.com/julianstephens/missionctl/internal/utils"
	"github.com/julianstephens/missionctl/internal/xp"
)

// HabitInput holds the user-supplied fields of a new habit
type HabitInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Mode        models.HabitMode `json:"mode,omitempty"`
	// TotalDays is only read for manual habits; zero means the default
	TotalDays int `json:"totalDays,omitempty"`
}

// CreateHabit validates input and appends a new active habit
func (e *Engine) CreateHabit(in HabitInput) (models.Habit, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Habit{}, ErrEmptyTitle
	}
	mode := in.Mode
	if mode == "" {
		mode = models.HabitModeAutopilot
	}
	if !mode.Valid() {
		return models.Habit{}, ErrInvalidMode
	}

	var created models.Habit
	e.mutate(func(now time.Time) []Event {
		h := models.Habit{
			ID:             e.newID(),
			Title:          title,
			Description:    strings.TrimSpace(in.Description),
			Mode:           mode,
			StartDate:      now,
			TotalDays:      snapshot.NormalizeTotalDays(mode, in.TotalDays),
			CompletedDates: []string{},
			Status:         models.HabitStatusActive,
		}
		if mode == models.HabitModeManual {
			end := snapshot.EndDate(now, h.TotalDays, e.loc)
			h.EndDate = &end
		}
		e.habits = append(e.habits, h)
		created = h.Clone()
		return []Event{{Kind: EventHabitCreated, ID: h.ID, Time: now}}
	})

	logger.Debug("Created habit", "id", created.ID, "mode", created.Mode, "totalDays", created.TotalDays)
	return created, nil
}

func (e *Engine) habitIndexLocked(id string) int {
	return slices.IndexFunc(e.habits, func(h models.Habit) bool { return h.ID == id })
}

// ToggleCompletion flips day in the habit's completed set. Only today and
// yesterday may be edited; any other day, or an unknown id, is rejected
// without mutation and returns false.
func (e *Engine) ToggleCompletion(id, day string) bool {
	day = strings.TrimSpace(day)
	changed := false

	e.mutate(func(now time.Time) []Event {
		today, yesterday := utils.TodayAndYesterday(now, e.loc)
		if day != today && day != yesterday {
			logger.Debug("Rejected toggle outside edit window", "id", id, "day", day)
			return nil
		}
		i := e.habitIndexLocked(id)
		if i < 0 {
			return nil
		}

		h := &e.habits[i]
		added := !h.HasDay(day)
		if added {
			h.CompletedDates = snapshot.NormalizeDates(append(h.CompletedDates, day))
		} else {
			h.CompletedDates = slices.DeleteFunc(h.CompletedDates, func(d string) bool { return d == day })
		}
		derive(h, today, yesterday)
		changed = true

		ev := Event{Kind: EventHabitToggled, ID: id, Day: day, Added: added, Time: now}
		// Unchecking keeps the XP the day already earned
		if added {
			ev.XPAwarded = xp.HabitDayAward(h.Streak)
			e.ledger.Add(ev.XPAwarded)
		}
		return []Event{ev}
	})
	return changed
}

// DeleteHabit removes the habit; false if it did not exist
func (e *Engine) DeleteHabit(id string) bool {
	found := false
	e.mutate(func(now time.Time) []Event {
		i := e.habitIndexLocked(id)
		if i < 0 {
			return nil
		}
		e.habits = slices.Delete(e.habits, i, i+1)
		found = true
		return []Event{{Kind: EventHabitDeleted, ID: id, Time: now}}
	})
	return found
}

// ResetHabit clears progress and restarts the habit from now, keeping its id
func (e *Engine) ResetHabit(id string) bool {
	found := false
	e.mutate(func(now time.Time) []Event {
		i := e.habitIndexLocked(id)
		if i < 0 {
			return nil
		}
		h := &e.habits[i]
		h.CompletedDates = []string{}
		h.StartDate = now
		h.EndDate = nil
		if h.Mode == models.HabitModeManual {
			end := snapshot.EndDate(now, h.TotalDays, e.loc)
			h.EndDate = &end
		}
		today, yesterday := utils.TodayAndYesterday(now, e.loc)
		derive(h, today, yesterday)
		found = true
		return []Event{{Kind: EventHabitReset, ID: id, Time: now}}
	})
	return found
}

// GetHabit looks up a habit by id
func (e *Engine) GetHabit(id string) (models.Habit, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.habitIndexLocked(id)
	if i < 0 {
		return models.Habit{}, false
	}
	today, yesterday := utils.TodayAndYesterday(e.now(), e.loc)
	derive(&e.habits[i], today, yesterday)
	return e.habits[i].Clone(), true
}

// Habits returns all habits in creation order
func (e *Engine) Habits() []models.Habit {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()
	out := make([]models.Habit, len(e.habits))
	for i, h := range e.habits {
		out[i] = h.Clone()
	}
	return out
}
