package missions

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/missionctl/internal/cli"
	"github.com/julianstephens/missionctl/internal/engine"
	clierrors "github.com/julianstephens/missionctl/internal/errors"
	"github.com/julianstephens/missionctl/internal/models"
	"github.com/julianstephens/missionctl/internal/storage"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setupTestContext(t *testing.T) (*cli.Context, *clock, *bytes.Buffer) {
	t.Helper()
	clk := &clock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	store := storage.NewMemoryStore()
	var out bytes.Buffer
	return &cli.Context{
		Store:     store,
		Engine:    engine.New(store, engine.Options{Now: clk.now, Location: time.UTC}),
		ConfigDir: t.TempDir(),
		Out:       &out,
	}, clk, &out
}

func lastMission(ctx *cli.Context) models.MiniMission {
	ms := ctx.Engine.MiniMissions()
	return ms[len(ms)-1]
}

func TestMiniAddCmd(t *testing.T) {
	ctx, _, out := setupTestContext(t)

	if err := (&MiniAddCmd{Title: "Write report", Minutes: 30}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	m := lastMission(ctx)
	if m.Status != models.MissionInProgress || m.StartedAt == nil {
		t.Errorf("started mission = %+v", m)
	}
	if !strings.Contains(out.String(), "Started Write report (30 min, ends 12:30)") {
		t.Errorf("unexpected output: %q", out.String())
	}

	if err := (&MiniAddCmd{Title: "Later thing", Minutes: 0.4, Later: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	m = lastMission(ctx)
	if m.Status != models.MissionPending || m.EstimatedMinutes != 1 || m.ScheduledStartAt == nil {
		t.Errorf("queued mission = %+v", m)
	}

	if err := (&MiniAddCmd{Title: ""}).Run(ctx); clierrors.ExitCode(err) != clierrors.ExitUsage {
		t.Errorf("empty title error = %v, want usage error", err)
	}
}

func TestMiniLifecycle(t *testing.T) {
	ctx, clk, out := setupTestContext(t)
	if err := (&MiniAddCmd{Title: "Deep work", Minutes: 20, Later: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	id := lastMission(ctx).ID

	if err := (&MiniExtendCmd{ID: id, Minutes: 5}).Run(ctx); clierrors.ExitCode(err) != clierrors.ExitUsage {
		t.Errorf("extend queued mission error = %v, want usage error", err)
	}
	if err := (&MiniStartCmd{ID: id}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&MiniExtendCmd{ID: id, Minutes: 10}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&MiniExtendCmd{ID: id, Minutes: 0}).Run(ctx); clierrors.ExitCode(err) != clierrors.ExitUsage {
		t.Errorf("extend by zero error = %v, want usage error", err)
	}

	clk.t = clk.t.Add(40 * time.Minute)
	out.Reset()
	if err := (&MiniShowCmd{ID: id}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "time's up") || !strings.Contains(out.String(), "(+10 extended)") {
		t.Errorf("unexpected show output: %q", out.String())
	}
	if m := lastMission(ctx); m.Status != models.MissionInProgress {
		t.Errorf("time's up changed status to %s", m.Status)
	}

	out.Reset()
	if err := (&MiniCompleteCmd{ID: id}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Completed Deep work (+15 XP)") {
		t.Errorf("late completion output: %q", out.String())
	}
	if err := (&MiniCompleteCmd{ID: id}).Run(ctx); clierrors.ExitCode(err) != clierrors.ExitUsage {
		t.Errorf("second complete error = %v, want usage error", err)
	}
	if err := (&MiniCancelCmd{ID: id}).Run(ctx); clierrors.ExitCode(err) != clierrors.ExitUsage {
		t.Errorf("cancel completed error = %v, want usage error", err)
	}
	if ctx.Engine.XP() != 15 {
		t.Errorf("XP = %d, want 15", ctx.Engine.XP())
	}
}

func TestMiniCompleteEarly(t *testing.T) {
	ctx, clk, out := setupTestContext(t)
	if err := (&MiniAddCmd{Title: "Quick", Minutes: 10}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	clk.t = clk.t.Add(4 * time.Minute)
	if err := (&MiniCompleteCmd{ID: lastMission(ctx).ID}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "(+25 XP)") || !strings.Contains(out.String(), "06:00 ahead of plan") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestMiniListAndDelete(t *testing.T) {
	ctx, _, out := setupTestContext(t)
	if err := (&MiniAddCmd{Title: "One", Minutes: 5}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	id := lastMission(ctx).ID
	if err := (&MiniCancelCmd{ID: id}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&MiniListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No mini missions found.") {
		t.Errorf("cancelled mission listed without --all: %q", out.String())
	}

	out.Reset()
	if err := (&MiniListCmd{All: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "One") {
		t.Errorf("--all missing mission: %q", out.String())
	}

	if err := (&MiniDeleteCmd{ID: id}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&MiniDeleteCmd{ID: id}).Run(ctx); clierrors.ExitCode(err) != clierrors.ExitUsage {
		t.Errorf("delete missing error = %v, want usage error", err)
	}
}
