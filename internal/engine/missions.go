package engine

import (
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/missionctl/internal/constants"
	"github.com/julianstephens/missionctl/internal/logger"
	"github.com/julianstephens/missionctl/internal/models"
	"github.com/julianstephens/missionctl/internal/snapshot"
	"github.com/julianstephens/missionctl/internal/xp"
)

// MiniMissionInput holds the user-supplied fields of a new mini mission
type MiniMissionInput struct {
	Title            string  `json:"title"`
	Objective        string  `json:"objective,omitempty"`
	EstimatedMinutes float64 `json:"estimatedMinutes"`
	// StartMode defaults to now
	StartMode models.StartMode `json:"startMode,omitempty"`
}

// CreateMiniMission appends a new mission, started immediately or queued
// with a scheduled start marker
func (e *Engine) CreateMiniMission(in MiniMissionInput) (models.MiniMission, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.MiniMission{}, ErrEmptyTitle
	}
	mode := in.StartMode
	if mode == "" {
		mode = models.StartNow
	}
	if !mode.Valid() {
		return models.MiniMission{}, ErrInvalidStartMode
	}

	var created models.MiniMission
	e.mutate(func(now time.Time) []Event {
		m := models.MiniMission{
			ID:               e.newID(),
			Title:            title,
			Objective:        strings.TrimSpace(in.Objective),
			EstimatedMinutes: snapshot.NormalizeMinutes(snapshot.FloorInt(in.EstimatedMinutes)),
			CreatedAt:        now,
		}
		at := now
		if mode == models.StartNow {
			m.Status = models.MissionInProgress
			m.StartedAt = &at
		} else {
			m.Status = models.MissionPending
			m.ScheduledStartAt = &at
		}
		e.missions = append(e.missions, m)
		created = m.Clone()
		return []Event{{Kind: EventMissionCreated, ID: m.ID, Time: now}}
	})

	logger.Debug("Created mini mission", "id", created.ID, "status", created.Status, "minutes", created.EstimatedMinutes)
	return created, nil
}

func (e *Engine) missionIndexLocked(id string) int {
	return slices.IndexFunc(e.missions, func(m models.MiniMission) bool { return m.ID == id })
}

// StartMiniMission moves the mission to in_progress. The first start time is
// kept on repeated calls. Completed missions are left alone.
func (e *Engine) StartMiniMission(id string) bool {
	ok := false
	e.mutate(func(now time.Time) []Event {
		i := e.missionIndexLocked(id)
		if i < 0 || e.missions[i].Status == models.MissionCompleted {
			return nil
		}
		m := &e.missions[i]
		m.Status = models.MissionInProgress
		if m.StartedAt == nil {
			at := now
			m.StartedAt = &at
		}
		ok = true
		return []Event{{Kind: EventMissionStarted, ID: id, Time: now}}
	})
	return ok
}

// CompleteMiniMission finishes the mission and returns the XP it earned.
// Completing an already completed mission is a no-op that returns false.
func (e *Engine) CompleteMiniMission(id string) (int, bool) {
	awarded, ok := 0, false
	e.mutate(func(now time.Time) []Event {
		i := e.missionIndexLocked(id)
		if i < 0 || e.missions[i].Status == models.MissionCompleted {
			return nil
		}
		m := &e.missions[i]
		at := now
		if m.StartedAt == nil {
			m.StartedAt = &at
		}
		m.Status = models.MissionCompleted
		m.CompletedAt = &at

		early := at.Sub(*m.StartedAt) < m.TotalDuration()
		awarded = xp.MissionAward(early)
		e.ledger.Add(awarded)
		ok = true
		return []Event{{Kind: EventMissionCompleted, ID: id, XPAwarded: awarded, Time: now}}
	})
	return awarded, ok
}

// ExtendMiniMission adds minutes to a running mission, capped so the total
// stays within MaxMissionMinutes. Missions in any other state, and
// non-positive amounts, are ignored.
func (e *Engine) ExtendMiniMission(id string, minutes int) bool {
	if minutes <= 0 {
		return false
	}
	ok := false
	e.mutate(func(now time.Time) []Event {
		i := e.missionIndexLocked(id)
		if i < 0 || e.missions[i].Status != models.MissionInProgress {
			return nil
		}
		m := &e.missions[i]
		room := max(constants.MaxMissionMinutes-m.TotalMinutes(), 0)
		m.ExtendedMinutes = snapshot.NormalizeExtended(m.EstimatedMinutes, m.ExtendedMinutes+min(minutes, room))
		ok = true
		return []Event{{Kind: EventMissionExtended, ID: id, Time: now}}
	})
	return ok
}

// CancelMiniMission marks the mission cancelled unless it already completed
func (e *Engine) CancelMiniMission(id string) bool {
	ok := false
	e.mutate(func(now time.Time) []Event {
		i := e.missionIndexLocked(id)
		if i < 0 || e.missions[i].Status == models.MissionCompleted {
			return nil
		}
		e.missions[i].Status = models.MissionCancelled
		ok = true
		return []Event{{Kind: EventMissionCancelled, ID: id, Time: now}}
	})
	return ok
}

// DeleteMiniMission removes the mission regardless of state
func (e *Engine) DeleteMiniMission(id string) bool {
	found := false
	e.mutate(func(now time.Time) []Event {
		i := e.missionIndexLocked(id)
		if i < 0 {
			return nil
		}
		e.missions = slices.Delete(e.missions, i, i+1)
		found = true
		return []Event{{Kind: EventMissionDeleted, ID: id, Time: now}}
	})
	return found
}

// GetMiniMission looks up a mission by id
func (e *Engine) GetMiniMission(id string) (models.MiniMission, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.missionIndexLocked(id)
	if i < 0 {
		return models.MiniMission{}, false
	}
	return e.missions[i].Clone(), true
}

// MiniMissions returns all missions in creation order
func (e *Engine) MiniMissions() []models.MiniMission {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.MiniMission, len(e.missions))
	for i, m := range e.missions {
		out[i] = m.Clone()
	}
	return out
}
