package engine

import (
	"github.com/julianstephens/missionctl/internal/models"
	"github.com/julianstephens/missionctl/internal/xp"
)

// Stats summarizes the collections for dashboards
type Stats struct {
	ActiveHabits    int      `json:"activeHabits"`
	CompletedHabits int      `json:"completedHabits"`
	QueuedMissions  int      `json:"queuedMissions"`
	RunningMissions int      `json:"runningMissions"`
	BestStreak      int      `json:"bestStreak"`
	Level           xp.Level `json:"level"`
}

// Stats counts habits by status and missions by progress. Queued missions
// are all that have not completed.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refreshLocked()

	var s Stats
	for _, h := range e.habits {
		if h.Status == models.HabitStatusCompleted {
			s.CompletedHabits++
		} else {
			s.ActiveHabits++
		}
		s.BestStreak = max(s.BestStreak, h.Streak)
	}
	for _, m := range e.missions {
		if m.Status != models.MissionCompleted {
			s.QueuedMissions++
		}
		if m.Status == models.MissionInProgress {
			s.RunningMissions++
		}
	}
	s.Level = e.ledger.Level()
	return s
}
