// Package xp holds the experience ledger and the award tables that feed it.
package xp

import "github.com/julianstephens/missionctl/internal/constants"

// Level is the ledger total split into a level and progress within it
type Level struct {
	XP       int `json:"xp"`
	Level    int `json:"level"`
	Progress int `json:"progress"`
}

// LevelFor splits a total into level and in-level progress
func LevelFor(total int) Level {
	if total < 0 {
		total = 0
	}
	return Level{
		XP:       total,
		Level:    total / constants.XPPerLevel,
		Progress: total % constants.XPPerLevel,
	}
}

// Ledger is a monotonically increasing XP accumulator
type Ledger struct {
	total int
}

// NewLedger starts a ledger at total, clamping negative values to zero
func NewLedger(total int) *Ledger {
	if total < 0 {
		total = 0
	}
	return &Ledger{total: total}
}

// Add credits amount and returns the new total. Negative amounts are ignored;
// XP is never taken back.
func (l *Ledger) Add(amount int) int {
	if amount > 0 {
		l.total += amount
	}
	return l.total
}

// Total returns the current XP
func (l *Ledger) Total() int { return l.total }

// Level returns the current level breakdown
func (l *Ledger) Level() Level { return LevelFor(l.total) }

// HabitDayAward returns the XP for checking off a habit day that leaves the
// habit at the given streak.
func HabitDayAward(streak int) int {
	award := constants.HabitDayXP
	switch {
	case streak == 7:
		award += constants.StreakWeekBonusXP
	case streak == 14:
		award += constants.StreakTwoWeekBonusXP
	case streak == 21:
		award += constants.StreakHabitBonusXP
	case streak >= 3 && streak%7 == 0:
		award += constants.StreakWeeklyBonusXP
	}
	return award
}

// MissionAward returns the XP for completing a mini mission
func MissionAward(early bool) int {
	if early {
		return constants.MissionCompleteXP + constants.MissionEarlyBonusXP
	}
	return constants.MissionCompleteXP
}
