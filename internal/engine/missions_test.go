package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/julianstephens/missionctl/internal/constants"
	"github.com/julianstephens/missionctl/internal/models"
)

func TestCreateMiniMission(t *testing.T) {
	e, clock, _ := newTestEngine(t)

	now, err := e.CreateMiniMission(MiniMissionInput{Title: " Inbox ", Objective: " zero ", EstimatedMinutes: 12.9})
	if err != nil {
		t.Fatalf("CreateMiniMission failed: %v", err)
	}
	if now.Title != "Inbox" || now.Objective != "zero" || now.EstimatedMinutes != 12 {
		t.Errorf("unexpected mission: %+v", now)
	}
	if now.Status != models.MissionInProgress || now.StartedAt == nil || !now.StartedAt.Equal(clock.Now()) {
		t.Errorf("start-now mission not running: %+v", now)
	}

	later, _ := e.CreateMiniMission(MiniMissionInput{Title: "Review", EstimatedMinutes: 0, StartMode: models.StartLater})
	if later.Status != models.MissionPending || later.StartedAt != nil || later.ScheduledStartAt == nil {
		t.Errorf("start-later mission: %+v", later)
	}
	if later.EstimatedMinutes != 1 || later.ExtendedMinutes != 0 {
		t.Errorf("minutes = %d+%d, want 1+0", later.EstimatedMinutes, later.ExtendedMinutes)
	}

	nan, _ := e.CreateMiniMission(MiniMissionInput{Title: "NaN", EstimatedMinutes: math.NaN()})
	if nan.EstimatedMinutes != 1 {
		t.Errorf("NaN estimate = %d, want 1", nan.EstimatedMinutes)
	}

	if _, err := e.CreateMiniMission(MiniMissionInput{Title: ""}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("empty title error = %v", err)
	}
	if _, err := e.CreateMiniMission(MiniMissionInput{Title: "x", StartMode: "tomorrow"}); !errors.Is(err, ErrInvalidStartMode) {
		t.Errorf("invalid start mode error = %v", err)
	}
}

func TestIdempotentStart(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	m, _ := e.CreateMiniMission(MiniMissionInput{Title: "Deep work", EstimatedMinutes: 30, StartMode: models.StartLater})

	if !e.StartMiniMission(m.ID) {
		t.Fatal("first start rejected")
	}
	first, _ := e.GetMiniMission(m.ID)

	clock.Advance(10 * time.Minute)
	if !e.StartMiniMission(m.ID) {
		t.Fatal("second start rejected")
	}
	second, _ := e.GetMiniMission(m.ID)

	if second.Status != models.MissionInProgress || !second.StartedAt.Equal(*first.StartedAt) {
		t.Errorf("startedAt moved from %v to %v", first.StartedAt, second.StartedAt)
	}
}

func TestStartCompletedIsNoop(t *testing.T) {
	e, _, _ := newTestEngine(t)
	m, _ := e.CreateMiniMission(MiniMissionInput{Title: "Done", EstimatedMinutes: 5})
	e.CompleteMiniMission(m.ID)

	if e.StartMiniMission(m.ID) {
		t.Error("start on completed mission returned true")
	}
	if got, _ := e.GetMiniMission(m.ID); got.Status != models.MissionCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

func TestEarlyFinishXP(t *testing.T) {
	tests := []struct {
		name    string
		after   time.Duration
		extend  int
		award   int
		earlyBy time.Duration
	}{
		{"early", 5 * time.Minute, 0, 25, 5 * time.Minute},
		{"late", 15 * time.Minute, 0, 15, 0},
		{"exactly on time", 10 * time.Minute, 0, 15, 0},
		{"extension makes it early", 15 * time.Minute, 10, 25, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, clock, _ := newTestEngine(t)
			m, _ := e.CreateMiniMission(MiniMissionInput{Title: "Sprint", EstimatedMinutes: 10})
			if tt.extend > 0 {
				e.ExtendMiniMission(m.ID, tt.extend)
			}
			clock.Advance(tt.after)

			awarded, ok := e.CompleteMiniMission(m.ID)
			if !ok || awarded != tt.award {
				t.Errorf("CompleteMiniMission() = %d, %v; want %d, true", awarded, ok, tt.award)
			}
			if e.XP() != tt.award {
				t.Errorf("XP = %d, want %d", e.XP(), tt.award)
			}

			got, _ := e.GetMiniMission(m.ID)
			if got.CompletedAt == nil || !got.CompletedAt.Equal(clock.Now()) {
				t.Errorf("completedAt = %v", got.CompletedAt)
			}
			if view := Countdown(got, clock.Now().Add(time.Hour)); view.EarlyBy != tt.earlyBy {
				t.Errorf("EarlyBy = %v, want %v", view.EarlyBy, tt.earlyBy)
			}
		})
	}
}

func TestCompleteIsGuarded(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	m, _ := e.CreateMiniMission(MiniMissionInput{Title: "Once", EstimatedMinutes: 10})
	clock.Advance(time.Minute)
	e.CompleteMiniMission(m.ID)
	first, _ := e.GetMiniMission(m.ID)

	clock.Advance(time.Hour)
	if awarded, ok := e.CompleteMiniMission(m.ID); ok || awarded != 0 {
		t.Errorf("second complete = %d, %v; want 0, false", awarded, ok)
	}
	second, _ := e.GetMiniMission(m.ID)
	if !second.CompletedAt.Equal(*first.CompletedAt) || e.XP() != 25 {
		t.Errorf("second complete changed state: completedAt=%v xp=%d", second.CompletedAt, e.XP())
	}

	if _, ok := e.CompleteMiniMission("missing"); ok {
		t.Error("complete on unknown id returned true")
	}
}

func TestCompleteBackfillsStart(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	m, _ := e.CreateMiniMission(MiniMissionInput{Title: "Skip ahead", EstimatedMinutes: 10, StartMode: models.StartLater})
	clock.Advance(time.Hour)

	awarded, ok := e.CompleteMiniMission(m.ID)
	if !ok || awarded != 25 {
		t.Errorf("CompleteMiniMission() = %d, %v; want 25, true", awarded, ok)
	}
	got, _ := e.GetMiniMission(m.ID)
	if got.StartedAt == nil || !got.StartedAt.Equal(*got.CompletedAt) {
		t.Errorf("startedAt = %v, want backfilled to %v", got.StartedAt, got.CompletedAt)
	}
}

func TestExtendOnlyWhileRunning(t *testing.T) {
	e, _, _ := newTestEngine(t)

	pending, _ := e.CreateMiniMission(MiniMissionInput{Title: "Queued", EstimatedMinutes: 10, StartMode: models.StartLater})
	if e.ExtendMiniMission(pending.ID, 5) {
		t.Error("extend on pending returned true")
	}

	running, _ := e.CreateMiniMission(MiniMissionInput{Title: "Running", EstimatedMinutes: 10})
	if e.ExtendMiniMission(running.ID, 0) || e.ExtendMiniMission(running.ID, -5) {
		t.Error("non-positive extension accepted")
	}
	if !e.ExtendMiniMission(running.ID, 5) || !e.ExtendMiniMission(running.ID, 3) {
		t.Fatal("extend on running mission rejected")
	}
	e.CompleteMiniMission(running.ID)
	if e.ExtendMiniMission(running.ID, 5) {
		t.Error("extend on completed returned true")
	}

	if got, _ := e.GetMiniMission(pending.ID); got.ExtendedMinutes != 0 {
		t.Errorf("pending extendedMinutes = %d", got.ExtendedMinutes)
	}
	if got, _ := e.GetMiniMission(running.ID); got.ExtendedMinutes != 8 || got.TotalMinutes() != 18 {
		t.Errorf("running extendedMinutes = %d, total = %d", got.ExtendedMinutes, got.TotalMinutes())
	}
}

func TestHugeEstimateIsCapped(t *testing.T) {
	for _, estimate := range []float64{1e12, 1e20, math.Inf(1)} {
		e, clock, _ := newTestEngine(t)
		m, err := e.CreateMiniMission(MiniMissionInput{Title: "Marathon", EstimatedMinutes: estimate})
		if err != nil {
			t.Fatalf("CreateMiniMission(%g) failed: %v", estimate, err)
		}
		if m.EstimatedMinutes != constants.MaxMissionMinutes {
			t.Errorf("estimate %g: estimatedMinutes = %d, want %d", estimate, m.EstimatedMinutes, constants.MaxMissionMinutes)
		}

		view := Countdown(m, clock.Now())
		if view.Total <= 0 || view.TimeUp || view.Remaining != view.Total {
			t.Errorf("estimate %g: countdown = %+v", estimate, view)
		}

		clock.Advance(time.Minute)
		if awarded, ok := e.CompleteMiniMission(m.ID); !ok || awarded != 25 {
			t.Errorf("estimate %g: CompleteMiniMission() = %d, %v; want 25, true", estimate, awarded, ok)
		}
	}
}

func TestHugeExtensionIsCapped(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	m, _ := e.CreateMiniMission(MiniMissionInput{Title: "Open ended", EstimatedMinutes: 30})

	if !e.ExtendMiniMission(m.ID, math.MaxInt) {
		t.Fatal("extend on running mission rejected")
	}
	if !e.ExtendMiniMission(m.ID, math.MaxInt) {
		t.Fatal("second extend on running mission rejected")
	}

	got, _ := e.GetMiniMission(m.ID)
	if got.TotalMinutes() != constants.MaxMissionMinutes {
		t.Errorf("total minutes = %d, want %d", got.TotalMinutes(), constants.MaxMissionMinutes)
	}
	if got.ExtendedMinutes != constants.MaxMissionMinutes-30 {
		t.Errorf("extendedMinutes = %d", got.ExtendedMinutes)
	}
	if view := Countdown(got, clock.Now()); view.Total <= 0 || view.TimeUp {
		t.Errorf("countdown after huge extension = %+v", view)
	}
}

func TestCancel(t *testing.T) {
	e, _, _ := newTestEngine(t)

	m, _ := e.CreateMiniMission(MiniMissionInput{Title: "Maybe", EstimatedMinutes: 10})
	if !e.CancelMiniMission(m.ID) {
		t.Fatal("cancel rejected")
	}
	if got, _ := e.GetMiniMission(m.ID); got.Status != models.MissionCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}

	done, _ := e.CreateMiniMission(MiniMissionInput{Title: "Done", EstimatedMinutes: 10})
	e.CompleteMiniMission(done.ID)
	if e.CancelMiniMission(done.ID) {
		t.Error("cancel on completed returned true")
	}
	if got, _ := e.GetMiniMission(done.ID); got.Status != models.MissionCompleted {
		t.Errorf("completed mission status = %s", got.Status)
	}

	// A cancelled mission can be reopened
	if !e.StartMiniMission(m.ID) {
		t.Error("start on cancelled mission rejected")
	}
}

func TestDeleteMiniMission(t *testing.T) {
	e, _, _ := newTestEngine(t)
	m, _ := e.CreateMiniMission(MiniMissionInput{Title: "Gone", EstimatedMinutes: 10})
	e.CompleteMiniMission(m.ID)

	if !e.DeleteMiniMission(m.ID) {
		t.Fatal("delete rejected")
	}
	if _, ok := e.GetMiniMission(m.ID); ok {
		t.Error("deleted mission still found")
	}
	if e.DeleteMiniMission(m.ID) {
		t.Error("second delete returned true")
	}
	if e.XP() != 25 {
		t.Errorf("delete changed XP to %d", e.XP())
	}
}
