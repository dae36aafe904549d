package constants

const (
	// Habit lengths
	AutopilotDays    = 21
	ManualMinDays    = 3
	ManualMaxDays    = 365
	DefaultHabitDays = AutopilotDays

	// Mini missions. MaxMissionMinutes (one year) bounds estimated plus
	// extended minutes so the allotted time fits a time.Duration.
	MinEstimatedMinutes = 1
	MaxMissionMinutes   = 365 * 24 * 60

	// XP awards
	HabitDayXP           = 10
	StreakWeekBonusXP    = 50  // streak == 7
	StreakTwoWeekBonusXP = 75  // streak == 14
	StreakHabitBonusXP   = 150 // streak == 21
	StreakWeeklyBonusXP  = 30  // any other multiple of 7 from streak 3 onward
	MissionCompleteXP    = 15
	MissionEarlyBonusXP  = 10

	// XPPerLevel is the size of one level on the ledger
	XPPerLevel = 100
)
