package engine

import (
	"time"

	"github.com/julianstephens/missionctl/internal/models"
)

// CountdownView is the timer state of a mini mission at one instant
type CountdownView struct {
	Total     time.Duration `json:"total"`
	Remaining time.Duration `json:"remaining"`
	Elapsed   time.Duration `json:"elapsed"`
	// Progress is Elapsed/Total capped at 1
	Progress float64 `json:"progress"`
	// TimeUp is set once a started, unfinished mission has no time left
	TimeUp bool `json:"timeUp"`
	// EarlyBy is how much allotted time a completed mission left unused
	EarlyBy time.Duration `json:"earlyBy"`
	EndsAt  *time.Time    `json:"endsAt,omitempty"`
}

// Countdown derives the timer state of m at now. Completed missions are
// measured against their completion time so the view stays frozen.
func Countdown(m models.MiniMission, now time.Time) CountdownView {
	v := CountdownView{Total: m.TotalDuration(), Remaining: m.TotalDuration()}
	end, started := m.EndsAt()
	if !started {
		return v
	}
	v.EndsAt = &end

	anchor := now
	if m.Status == models.MissionCompleted && m.CompletedAt != nil {
		anchor = *m.CompletedAt
	}

	v.Elapsed = max(0, anchor.Sub(*m.StartedAt))
	v.Remaining = max(0, end.Sub(anchor))
	if v.Total > 0 {
		v.Progress = min(1, float64(v.Elapsed)/float64(v.Total))
	}

	if m.Status == models.MissionCompleted {
		v.EarlyBy = max(0, v.Total-v.Elapsed)
	} else {
		v.TimeUp = v.Remaining == 0
	}
	return v
}

// Countdown derives the timer state of mission id at the engine clock
func (e *Engine) Countdown(id string) (CountdownView, bool) {
	m, ok := e.GetMiniMission(id)
	if !ok {
		return CountdownView{}, false
	}
	return Countdown(m, e.now()), true
}
