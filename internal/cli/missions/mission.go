package missions

import (
	"errors"
	"fmt"

	"github.com/julianstephens/missionctl/internal/cli"
	"github.com/julianstephens/missionctl/internal/engine"
	clierrors "github.com/julianstephens/missionctl/internal/errors"
	"github.com/julianstephens/missionctl/internal/models"
)

type MiniCmd struct {
	Add      MiniAddCmd      `cmd:"" help:"Add a mini mission."`
	List     MiniListCmd     `cmd:"" help:"List mini missions." default:"1"`
	Show     MiniShowCmd     `cmd:"" help:"Show a mini mission and its countdown."`
	Start    MiniStartCmd    `cmd:"" help:"Start a queued mini mission."`
	Complete MiniCompleteCmd `cmd:"" help:"Complete a mini mission."`
	Extend   MiniExtendCmd   `cmd:"" help:"Add minutes to a running mini mission."`
	Cancel   MiniCancelCmd   `cmd:"" help:"Cancel a mini mission."`
	Delete   MiniDeleteCmd   `cmd:"" help:"Delete a mini mission."`
}

type MiniAddCmd struct {
	Title     string  `arg:"" help:"Mission title."`
	Objective string  `help:"What done looks like." short:"o"`
	Minutes   float64 `help:"Estimated minutes." short:"m" default:"25"`
	Later     bool    `help:"Queue the mission instead of starting it now."`
}

func (c *MiniAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	mode := models.StartNow
	if c.Later {
		mode = models.StartLater
	}
	m, err := ctx.Engine.CreateMiniMission(engine.MiniMissionInput{
		Title:            c.Title,
		Objective:        c.Objective,
		EstimatedMinutes: c.Minutes,
		StartMode:        mode,
	})
	if err != nil {
		if errors.Is(err, engine.ErrEmptyTitle) {
			return clierrors.Usage(err)
		}
		return err
	}

	if m.Status == models.MissionInProgress {
		end, _ := m.EndsAt()
		ctx.Printf("✓ Started %s (%d min, ends %s)\n", m.Title, m.EstimatedMinutes, end.In(ctx.Engine.Location()).Format("15:04"))
	} else {
		ctx.Printf("✓ Queued %s (%d min)\n", m.Title, m.EstimatedMinutes)
	}
	ctx.Printf("  id: %s\n", m.ID)
	return nil
}

type MiniListCmd struct {
	All bool `help:"Include completed and cancelled missions."`
}

func (c *MiniListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	now := ctx.Engine.Now()
	shown := 0
	for _, m := range ctx.Engine.MiniMissions() {
		if !c.All && !m.IsOpen() {
			continue
		}
		view := engine.Countdown(m, now)
		timer := fmt.Sprintf("%d min", m.TotalMinutes())
		switch {
		case m.Status == models.MissionInProgress && view.TimeUp:
			timer = "time's up"
		case m.Status == models.MissionInProgress:
			timer = cli.FormatClock(view.Remaining) + " left"
		}
		ctx.Printf("%-8s  %-28s  %-12s  %s\n", cli.ShortID(m.ID), m.Title, timer, cli.MissionStatusLabel(m.Status))
		shown++
	}
	if shown == 0 {
		ctx.Println("No mini missions found.")
	}
	return nil
}

type MiniShowCmd struct {
	ID string `arg:"" help:"Mission id or unique id prefix."`
}

func (c *MiniShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	id, err := ctx.ResolveMissionID(c.ID)
	if err != nil {
		return err
	}
	m, _ := ctx.Engine.GetMiniMission(id)
	view, _ := ctx.Engine.Countdown(id)
	loc := ctx.Engine.Location()

	ctx.Printf("%s\n", m.Title)
	if m.Objective != "" {
		ctx.Printf("  %s\n", m.Objective)
	}
	ctx.Printf("  id:        %s\n", m.ID)
	ctx.Printf("  status:    %s\n", cli.MissionStatusLabel(m.Status))
	ctx.Printf("  planned:   %d min", m.EstimatedMinutes)
	if m.ExtendedMinutes > 0 {
		ctx.Printf(" (+%d extended)", m.ExtendedMinutes)
	}
	ctx.Println()
	ctx.Printf("  created:   %s\n", cli.FormatTime(&m.CreatedAt, loc))
	ctx.Printf("  started:   %s\n", cli.FormatTime(m.StartedAt, loc))
	if m.CompletedAt != nil {
		ctx.Printf("  completed: %s\n", cli.FormatTime(m.CompletedAt, loc))
	}

	if m.StartedAt != nil {
		ctx.Printf("  progress:  %s\n", cli.ProgressBar(view.Progress))
		switch {
		case m.Status == models.MissionCompleted && view.EarlyBy > 0:
			ctx.Printf("  finished %s early\n", cli.FormatClock(view.EarlyBy))
		case view.TimeUp:
			ctx.Printf("  %s\n", cli.Warning("time's up"))
		case m.Status == models.MissionInProgress:
			ctx.Printf("  remaining: %s\n", cli.FormatClock(view.Remaining))
		}
	}
	return nil
}

type MiniStartCmd struct {
	ID string `arg:"" help:"Mission id or unique id prefix."`
}

func (c *MiniStartCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	id, err := ctx.ResolveMissionID(c.ID)
	if err != nil {
		return err
	}
	if !ctx.Engine.StartMiniMission(id) {
		return clierrors.Usagef("mini mission %s is already completed", cli.ShortID(id))
	}
	m, _ := ctx.Engine.GetMiniMission(id)
	end, _ := m.EndsAt()
	ctx.Printf("✓ %s in progress, ends %s\n", m.Title, end.In(ctx.Engine.Location()).Format("15:04"))
	return nil
}

type MiniCompleteCmd struct {
	ID string `arg:"" help:"Mission id or unique id prefix."`
}

func (c *MiniCompleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	id, err := ctx.ResolveMissionID(c.ID)
	if err != nil {
		return err
	}
	awarded, ok := ctx.Engine.CompleteMiniMission(id)
	if !ok {
		return clierrors.Usagef("mini mission %s is already completed", cli.ShortID(id))
	}
	m, _ := ctx.Engine.GetMiniMission(id)
	view, _ := ctx.Engine.Countdown(id)

	ctx.Printf("✓ Completed %s (+%d XP)\n", m.Title, awarded)
	if view.EarlyBy > 0 {
		ctx.Printf("  %s ahead of plan\n", cli.FormatClock(view.EarlyBy))
	}
	return nil
}

type MiniExtendCmd struct {
	ID      string `arg:"" help:"Mission id or unique id prefix."`
	Minutes int    `arg:"" help:"Minutes to add."`
}

func (c *MiniExtendCmd) Run(ctx *cli.Context) error {
	if c.Minutes <= 0 {
		return clierrors.Usagef("minutes must be positive, got %d", c.Minutes)
	}
	if err := ctx.Load(); err != nil {
		return err
	}
	id, err := ctx.ResolveMissionID(c.ID)
	if err != nil {
		return err
	}
	if !ctx.Engine.ExtendMiniMission(id, c.Minutes) {
		return clierrors.Usagef("only running mini missions can be extended")
	}
	m, _ := ctx.Engine.GetMiniMission(id)
	ctx.Printf("✓ Extended %s by %d min (%d min total)\n", m.Title, c.Minutes, m.TotalMinutes())
	return nil
}

type MiniCancelCmd struct {
	ID string `arg:"" help:"Mission id or unique id prefix."`
}

func (c *MiniCancelCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	id, err := ctx.ResolveMissionID(c.ID)
	if err != nil {
		return err
	}
	if !ctx.Engine.CancelMiniMission(id) {
		return clierrors.Usagef("completed mini missions cannot be cancelled")
	}
	m, _ := ctx.Engine.GetMiniMission(id)
	ctx.Printf("Cancelled %s\n", m.Title)
	return nil
}

type MiniDeleteCmd struct {
	ID string `arg:"" help:"Mission id or unique id prefix."`
}

func (c *MiniDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	id, err := ctx.ResolveMissionID(c.ID)
	if err != nil {
		return err
	}
	m, _ := ctx.Engine.GetMiniMission(id)
	ctx.Engine.DeleteMiniMission(id)
	ctx.Printf("✓ Deleted mini mission %s\n", m.Title)
	return nil
}
