package habits

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/missionctl/internal/cli"
	"github.com/julianstephens/missionctl/internal/engine"
	clierrors "github.com/julianstephens/missionctl/internal/errors"
	"github.com/julianstephens/missionctl/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := storage.NewMemoryStore()
	var out bytes.Buffer
	return &cli.Context{
		Store:     store,
		Engine:    engine.New(store, engine.Options{Now: func() time.Time { return now }, Location: time.UTC}),
		ConfigDir: t.TempDir(),
		Out:       &out,
	}, &out
}

func addHabit(t *testing.T, ctx *cli.Context, cmd HabitAddCmd) string {
	t.Helper()
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	habits := ctx.Engine.Habits()
	return habits[len(habits)-1].ID
}

func TestHabitAddCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	addHabit(t, ctx, HabitAddCmd{Title: "Meditate", Mode: "manual", Days: 400})
	h := ctx.Engine.Habits()[0]
	if h.TotalDays != 365 || h.EndDate == nil {
		t.Errorf("manual habit = %+v, want clamped to 365 with end date", h)
	}
	if !strings.Contains(out.String(), "Added habit Meditate (manual, 365 days)") {
		t.Errorf("unexpected output: %q", out.String())
	}

	err := (&HabitAddCmd{Title: "  ", Mode: "autopilot"}).Run(ctx)
	if clierrors.ExitCode(err) != clierrors.ExitUsage {
		t.Errorf("empty title error = %v, want usage error", err)
	}
}

func TestHabitToggleCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	id := addHabit(t, ctx, HabitAddCmd{Title: "Read", Mode: "autopilot"})

	if err := (&HabitToggleCmd{ID: id[:4]}).Run(ctx); err != nil {
		t.Fatalf("toggle today failed: %v", err)
	}
	if err := (&HabitToggleCmd{ID: id, Yesterday: true}).Run(ctx); err != nil {
		t.Fatalf("toggle yesterday failed: %v", err)
	}
	h, _ := ctx.Engine.GetHabit(id)
	if h.Streak != 2 {
		t.Errorf("streak = %d, want 2", h.Streak)
	}
	if !strings.Contains(out.String(), "Marked Read done for 2026-03-10 (+10 XP)") {
		t.Errorf("unexpected output: %q", out.String())
	}

	err := (&HabitToggleCmd{ID: id, Day: "2026-03-01"}).Run(ctx)
	if clierrors.ExitCode(err) != clierrors.ExitUsage {
		t.Errorf("out-of-window toggle error = %v, want usage error", err)
	}
	err = (&HabitToggleCmd{ID: id, Day: "2026-03-10", Yesterday: true}).Run(ctx)
	if clierrors.ExitCode(err) != clierrors.ExitUsage {
		t.Errorf("conflicting flags error = %v, want usage error", err)
	}

	out.Reset()
	if err := (&HabitToggleCmd{ID: id}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Unmarked Read for 2026-03-10") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestHabitUnknownID(t *testing.T) {
	ctx, _ := setupTestContext(t)
	for _, cmd := range []interface{ Run(*cli.Context) error }{
		&HabitShowCmd{ID: "missing"},
		&HabitToggleCmd{ID: "missing"},
		&HabitResetCmd{ID: "missing", Yes: true},
		&HabitDeleteCmd{ID: "missing"},
	} {
		if err := cmd.Run(ctx); clierrors.ExitCode(err) != clierrors.ExitUsage {
			t.Errorf("%T error = %v, want usage error", cmd, err)
		}
	}
}

func TestHabitResetCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	id := addHabit(t, ctx, HabitAddCmd{Title: "Run", Mode: "autopilot"})
	ctx.Engine.ToggleCompletion(id, "2026-03-10")

	ctx.In = strings.NewReader("n\n")
	if err := (&HabitResetCmd{ID: id}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if h, _ := ctx.Engine.GetHabit(id); len(h.CompletedDates) != 1 {
		t.Error("declined reset cleared completed days")
	}
	if !strings.Contains(out.String(), "Reset cancelled.") {
		t.Errorf("unexpected output: %q", out.String())
	}

	ctx.In = strings.NewReader("y\n")
	if err := (&HabitResetCmd{ID: id}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if h, _ := ctx.Engine.GetHabit(id); len(h.CompletedDates) != 0 {
		t.Error("confirmed reset kept completed days")
	}
	if ctx.Engine.XP() != 10 {
		t.Errorf("XP = %d, want 10 kept after reset", ctx.Engine.XP())
	}
}

func TestHabitListAndDelete(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&HabitListCmd{Status: "all"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No habits found.") {
		t.Errorf("unexpected output: %q", out.String())
	}

	id := addHabit(t, ctx, HabitAddCmd{Title: "Stretch", Mode: "autopilot"})
	out.Reset()
	if err := (&HabitListCmd{Status: "active"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Stretch") {
		t.Errorf("list missing habit: %q", out.String())
	}

	out.Reset()
	if err := (&HabitListCmd{Status: "completed"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "Stretch") {
		t.Errorf("status filter ignored: %q", out.String())
	}

	if err := (&HabitDeleteCmd{ID: id}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if len(ctx.Engine.Habits()) != 0 {
		t.Error("habit not deleted")
	}
}
