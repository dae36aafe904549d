package models

// Snapshot is the full persisted engine state
type Snapshot struct {
	Habits       []Habit       `json:"habits"`
	MiniMissions []MiniMission `json:"miniMissions"`
	XP           int           `json:"xp"`
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{
		Habits:       make([]Habit, len(s.Habits)),
		MiniMissions: make([]MiniMission, len(s.MiniMissions)),
		XP:           s.XP,
	}
	for i, h := range s.Habits {
		c.Habits[i] = h.Clone()
	}
	for i, m := range s.MiniMissions {
		c.MiniMissions[i] = m.Clone()
	}
	return c
}
