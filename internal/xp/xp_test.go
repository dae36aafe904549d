package xp

import "testing"

func TestHabitDayAward(t *testing.T) {
	tests := []struct {
		streak int
		want   int
	}{
		{streak: 1, want: 10},
		{streak: 3, want: 10},
		{streak: 6, want: 10},
		{streak: 7, want: 60},
		{streak: 8, want: 10},
		{streak: 14, want: 85},
		{streak: 21, want: 160},
		{streak: 28, want: 40},
		{streak: 35, want: 40},
		{streak: 36, want: 10},
	}

	for _, tt := range tests {
		if got := HabitDayAward(tt.streak); got != tt.want {
			t.Errorf("HabitDayAward(%d) = %d, want %d", tt.streak, got, tt.want)
		}
	}
}

func TestMissionAward(t *testing.T) {
	if got := MissionAward(true); got != 25 {
		t.Errorf("MissionAward(true) = %d, want 25", got)
	}
	if got := MissionAward(false); got != 15 {
		t.Errorf("MissionAward(false) = %d, want 15", got)
	}
}

func TestLedger(t *testing.T) {
	l := NewLedger(-5)
	if l.Total() != 0 {
		t.Fatalf("NewLedger(-5).Total() = %d, want 0", l.Total())
	}

	l.Add(60)
	l.Add(-100)
	l.Add(55)
	if l.Total() != 115 {
		t.Errorf("Total() = %d, want 115", l.Total())
	}

	lvl := l.Level()
	if lvl.Level != 1 || lvl.Progress != 15 || lvl.XP != 115 {
		t.Errorf("Level() = %+v, want level 1 progress 15", lvl)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		total        int
		wantLevel    int
		wantProgress int
	}{
		{total: 0, wantLevel: 0, wantProgress: 0},
		{total: 99, wantLevel: 0, wantProgress: 99},
		{total: 100, wantLevel: 1, wantProgress: 0},
		{total: 1234, wantLevel: 12, wantProgress: 34},
	}
	for _, tt := range tests {
		got := LevelFor(tt.total)
		if got.Level != tt.wantLevel || got.Progress != tt.wantProgress {
			t.Errorf("LevelFor(%d) = %+v, want level %d progress %d", tt.total, got, tt.wantLevel, tt.wantProgress)
		}
	}
}
