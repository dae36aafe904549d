package models

import (
	"fmt"
	"time"
)

// MissionStatus is the lifecycle state of a mini mission
type MissionStatus string

const (
	MissionPending    MissionStatus = "pending"
	MissionScheduled  MissionStatus = "scheduled"
	MissionInProgress MissionStatus = "in_progress"
	MissionCompleted  MissionStatus = "completed"
	MissionCancelled  MissionStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s MissionStatus) Valid() bool {
	switch s {
	case MissionPending, MissionScheduled, MissionInProgress, MissionCompleted, MissionCancelled:
		return true
	}
	return false
}

func (s MissionStatus) String() string { return string(s) }

func (s *MissionStatus) UnmarshalText(text []byte) error {
	status := MissionStatus(text)
	if !status.Valid() {
		return fmt.Errorf("invalid mission status %q", string(text))
	}
	*s = status
	return nil
}

// StartMode picks whether a new mini mission starts right away
type StartMode string

const (
	StartNow   StartMode = "now"
	StartLater StartMode = "later"
)

func (m StartMode) Valid() bool {
	return m == StartNow || m == StartLater
}

func (m *StartMode) UnmarshalText(text []byte) error {
	mode := StartMode(text)
	if !mode.Valid() {
		return fmt.Errorf("invalid start mode %q", string(text))
	}
	*m = mode
	return nil
}

// MiniMission is a short timed focus sprint
type MiniMission struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Objective        string        `json:"objective,omitempty"`
	EstimatedMinutes int           `json:"estimatedMinutes"`
	ExtendedMinutes  int           `json:"extendedMinutes"`
	Status           MissionStatus `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
	ScheduledStartAt *time.Time    `json:"scheduledStartAt,omitempty"`
	StartedAt        *time.Time    `json:"startedAt,omitempty"`
	CompletedAt      *time.Time    `json:"completedAt,omitempty"`
}

// TotalMinutes is the allotted time including extensions
func (m MiniMission) TotalMinutes() int {
	return m.EstimatedMinutes + m.ExtendedMinutes
}

// TotalDuration is TotalMinutes as a duration
func (m MiniMission) TotalDuration() time.Duration {
	return time.Duration(m.TotalMinutes()) * time.Minute
}

// EndsAt returns when the allotted time runs out, if the mission has started
func (m MiniMission) EndsAt() (time.Time, bool) {
	if m.StartedAt == nil {
		return time.Time{}, false
	}
	return m.StartedAt.Add(m.TotalDuration()), true
}

// IsScheduled reports a deferred start that has not happened yet
func (m MiniMission) IsScheduled() bool {
	return (m.Status == MissionPending || m.Status == MissionScheduled) && m.ScheduledStartAt != nil
}

// IsOpen reports whether the mission still counts as queued work
func (m MiniMission) IsOpen() bool {
	return m.Status != MissionCompleted && m.Status != MissionCancelled
}

func (m MiniMission) Clone() MiniMission {
	c := m
	c.ScheduledStartAt = cloneTime(m.ScheduledStartAt)
	c.StartedAt = cloneTime(m.StartedAt)
	c.CompletedAt = cloneTime(m.CompletedAt)
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
