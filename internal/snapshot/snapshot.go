// Package snapshot encodes engine state for the key/value store and
// upgrades legacy records on the way back in.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/missionctl/internal/constants"
	"github.com/julianstephens/missionctl/internal/models"
	"github.com/julianstephens/missionctl/internal/utils"
)

type envelope struct {
	State   json.RawMessage `json:"state"`
	Version *int            `json:"version,omitempty"`
}

type outEnvelope struct {
	State   models.Snapshot `json:"state"`
	Version int             `json:"version"`
}

// Loose mirrors of the models. Every field that older builds may have
// omitted or written with a different shape is a pointer or plain string.
type looseState struct {
	Habits       []looseHabit   `json:"habits"`
	MiniMissions []looseMission `json:"miniMissions"`
	XP           *float64       `json:"xp"`
}

type looseHabit struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Mode           string     `json:"mode"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	TotalDays      *float64   `json:"totalDays"`
	CompletedDates []string   `json:"completedDates"`
}

type looseMission struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Objective        string     `json:"objective"`
	EstimatedMinutes *float64   `json:"estimatedMinutes"`
	ExtendedMinutes  *float64   `json:"extendedMinutes"`
	Status           string     `json:"status"`
	CreatedAt        *time.Time `json:"createdAt"`
	ScheduledStartAt *time.Time `json:"scheduledStartAt"`
	StartedAt        *time.Time `json:"startedAt"`
	CompletedAt      *time.Time `json:"completedAt"`
}

// Options control the fallbacks used while upgrading legacy records
type Options struct {
	// Now stamps records that carry no usable timestamp
	Now time.Time
	// Location is used to compute manual end dates
	Location *time.Location
}

// Encode writes the snapshot in the versioned envelope
func Encode(s models.Snapshot) ([]byte, error) {
	s = s.Clone()
	data, err := json.Marshal(outEnvelope{State: s, Version: constants.SnapshotVersion})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode reads either the versioned envelope or a bare state object and
// runs the migration pass. The returned version is 0 when none was stored.
// Derived habit fields (streak, completion) are left for the caller, which
// owns the clock they depend on.
func Decode(data []byte, opts Options) (models.Snapshot, int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return emptySnapshot(), 0, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return models.Snapshot{}, 0, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	version := 0
	raw := data
	if len(env.State) > 0 && !bytes.Equal(env.State, []byte("null")) {
		raw = env.State
		if env.Version != nil {
			version = *env.Version
		}
	}
	if version > constants.SnapshotVersion {
		return models.Snapshot{}, version, fmt.Errorf("snapshot version %d is newer than supported version %d", version, constants.SnapshotVersion)
	}

	var loose looseState
	if err := json.Unmarshal(raw, &loose); err != nil {
		return models.Snapshot{}, version, fmt.Errorf("failed to decode snapshot state: %w", err)
	}

	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	return migrate(loose, opts), version, nil
}

func emptySnapshot() models.Snapshot {
	return models.Snapshot{Habits: []models.Habit{}, MiniMissions: []models.MiniMission{}}
}

func migrate(in looseState, opts Options) models.Snapshot {
	out := emptySnapshot()

	seen := make(map[string]bool, len(in.Habits))
	for _, lh := range in.Habits {
		if lh.ID == "" || seen[lh.ID] {
			continue
		}
		seen[lh.ID] = true
		out.Habits = append(out.Habits, migrateHabit(lh, opts))
	}

	seen = make(map[string]bool, len(in.MiniMissions))
	for _, lm := range in.MiniMissions {
		if lm.ID == "" || seen[lm.ID] {
			continue
		}
		seen[lm.ID] = true
		out.MiniMissions = append(out.MiniMissions, migrateMission(lm, opts))
	}

	if in.XP != nil && *in.XP > 0 {
		out.XP = int(math.Floor(*in.XP))
	}
	return out
}

func migrateHabit(lh looseHabit, opts Options) models.Habit {
	h := models.Habit{
		ID:          lh.ID,
		Title:       strings.TrimSpace(lh.Title),
		Description: strings.TrimSpace(lh.Description),
		Mode:        models.HabitMode(lh.Mode),
		Status:      models.HabitStatusActive,
	}
	if !h.Mode.Valid() {
		h.Mode = models.HabitModeAutopilot
	}

	if lh.StartDate != nil && !lh.StartDate.IsZero() {
		h.StartDate = *lh.StartDate
	} else {
		h.StartDate = opts.Now
	}

	h.TotalDays = NormalizeTotalDays(h.Mode, floorPtr(lh.TotalDays))
	h.CompletedDates = NormalizeDates(lh.CompletedDates)

	if h.Mode == models.HabitModeManual {
		if lh.EndDate != nil && !lh.EndDate.IsZero() {
			end := *lh.EndDate
			h.EndDate = &end
		} else {
			end := EndDate(h.StartDate, h.TotalDays, opts.Location)
			h.EndDate = &end
		}
	}
	return h
}

func migrateMission(lm looseMission, opts Options) models.MiniMission {
	m := models.MiniMission{
		ID:               lm.ID,
		Title:            strings.TrimSpace(lm.Title),
		Objective:        strings.TrimSpace(lm.Objective),
		EstimatedMinutes: NormalizeMinutes(floorPtr(lm.EstimatedMinutes)),
		Status:           models.MissionStatus(lm.Status),
		ScheduledStartAt: nonZero(lm.ScheduledStartAt),
		StartedAt:        nonZero(lm.StartedAt),
		CompletedAt:      nonZero(lm.CompletedAt),
	}
	m.ExtendedMinutes = NormalizeExtended(m.EstimatedMinutes, floorPtr(lm.ExtendedMinutes))
	if !m.Status.Valid() {
		m.Status = models.MissionPending
	}

	switch {
	case lm.CreatedAt != nil && !lm.CreatedAt.IsZero():
		m.CreatedAt = *lm.CreatedAt
	case m.ScheduledStartAt != nil:
		m.CreatedAt = *m.ScheduledStartAt
	case m.StartedAt != nil:
		m.CreatedAt = *m.StartedAt
	default:
		m.CreatedAt = opts.Now
	}
	return m
}

// NormalizeTotalDays applies the length rules for a habit mode. Autopilot is
// always the fixed length; manual requests are clamped and zero means
// "not given".
func NormalizeTotalDays(mode models.HabitMode, requested int) int {
	if mode != models.HabitModeManual || requested == 0 {
		return constants.DefaultHabitDays
	}
	return min(max(requested, constants.ManualMinDays), constants.ManualMaxDays)
}

// NormalizeMinutes clamps the estimate to [MinEstimatedMinutes, MaxMissionMinutes]
func NormalizeMinutes(minutes int) int {
	return min(max(minutes, constants.MinEstimatedMinutes), constants.MaxMissionMinutes)
}

// NormalizeExtended clamps extended minutes to what is left of
// MaxMissionMinutes after the estimate
func NormalizeExtended(estimated, extended int) int {
	return min(max(extended, 0), max(constants.MaxMissionMinutes-estimated, 0))
}

// FloorInt floors v into an int, saturating far outside any clamp range.
// NaN is 0.
func FloorInt(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Floor(v))
}

// NormalizeDates drops invalid keys and duplicates and sorts ascending
func NormalizeDates(days []string) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		d = strings.TrimSpace(d)
		if utils.ValidDayKey(d) {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// EndDate adds totalDays calendar days to start in loc
func EndDate(start time.Time, totalDays int, loc *time.Location) time.Time {
	return start.In(loc).AddDate(0, 0, totalDays)
}

func floorPtr(v *float64) int {
	if v == nil {
		return 0
	}
	return FloorInt(*v)
}

func nonZero(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := *t
	return &v
}
