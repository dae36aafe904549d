package habits

import (
	"errors"
	"fmt"

	"github.com/julianstephens/missionctl/internal/cli"
	"github.com/julianstephens/missionctl/internal/engine"
	clierrors "github.com/julianstephens/missionctl/internal/errors"
	"github.com/julianstephens/missionctl/internal/models"
	"github.com/julianstephens/missionctl/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits." default:"1"`
	Show   HabitShowCmd   `cmd:"" help:"Show a habit in detail."`
	Toggle HabitToggleCmd `cmd:"" help:"Mark or unmark a habit day (today or yesterday)."`
	Reset  HabitResetCmd  `cmd:"" help:"Clear a habit's completed days."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit."`
}

type HabitAddCmd struct {
	Title       string `arg:"" help:"Habit title."`
	Description string `help:"Optional description." short:"d"`
	Mode        string `help:"Habit mode." enum:"autopilot,manual" default:"autopilot"`
	Days        int    `help:"Target length in days for manual habits (3-365)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	h, err := ctx.Engine.CreateHabit(engine.HabitInput{
		Title:       c.Title,
		Description: c.Description,
		Mode:        models.HabitMode(c.Mode),
		TotalDays:   c.Days,
	})
	if err != nil {
		if errors.Is(err, engine.ErrEmptyTitle) || errors.Is(err, engine.ErrInvalidMode) {
			return clierrors.Usage(err)
		}
		return err
	}

	ctx.Printf("✓ Added habit %s (%s, %d days)\n", h.Title, h.Mode, h.TotalDays)
	ctx.Printf("  id: %s\n", h.ID)
	return nil
}

type HabitListCmd struct {
	Status string `help:"Only show habits with this status." enum:"all,active,completed" default:"all"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	habits := ctx.Engine.Habits()
	shown := 0
	for _, h := range habits {
		if c.Status != "all" && string(h.Status) != c.Status {
			continue
		}
		ctx.Println(cli.HabitSummary(h))
		shown++
	}
	if shown == 0 {
		ctx.Println("No habits found.")
	}
	return nil
}

type HabitShowCmd struct {
	ID string `arg:"" help:"Habit id or unique id prefix."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	id, err := ctx.ResolveHabitID(c.ID)
	if err != nil {
		return err
	}
	h, _ := ctx.Engine.GetHabit(id)
	loc := ctx.Engine.Location()

	ctx.Printf("%s\n", h.Title)
	if h.Description != "" {
		ctx.Printf("  %s\n", h.Description)
	}
	ctx.Printf("  id:        %s\n", h.ID)
	ctx.Printf("  mode:      %s\n", h.Mode)
	ctx.Printf("  status:    %s\n", cli.HabitStatusLabel(h.Status))
	ctx.Printf("  started:   %s\n", utils.DayKey(h.StartDate, loc))
	if h.EndDate != nil {
		ctx.Printf("  ends:      %s\n", utils.DayKey(*h.EndDate, loc))
	}
	ctx.Printf("  streak:    %d\n", h.Streak)
	ctx.Printf("  progress:  %s (%d/%d days, %d left)\n",
		cli.ProgressBar(float64(h.ProgressPercent())/100), len(h.CompletedDates), h.TotalDays, h.DaysRemaining())
	if n := len(h.CompletedDates); n > 0 {
		ctx.Printf("  last done: %s\n", h.CompletedDates[n-1])
	}
	return nil
}

type HabitToggleCmd struct {
	ID        string `arg:"" help:"Habit id or unique id prefix."`
	Day       string `help:"Day to toggle (YYYY-MM-DD). Defaults to today."`
	Yesterday bool   `help:"Toggle yesterday instead of today." short:"y"`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	id, err := ctx.ResolveHabitID(c.ID)
	if err != nil {
		return err
	}

	today, yesterday := utils.TodayAndYesterday(ctx.Engine.Now(), ctx.Engine.Location())
	day := today
	switch {
	case c.Day != "" && c.Yesterday:
		return clierrors.Usagef("--day and --yesterday are mutually exclusive")
	case c.Day != "":
		day = c.Day
	case c.Yesterday:
		day = yesterday
	}

	before := ctx.Engine.XP()
	if !ctx.Engine.ToggleCompletion(id, day) {
		return clierrors.Usagef("only today (%s) and yesterday (%s) can be toggled", today, yesterday)
	}
	h, _ := ctx.Engine.GetHabit(id)

	if h.HasDay(day) {
		ctx.Printf("✓ Marked %s done for %s (+%d XP)\n", h.Title, day, ctx.Engine.XP()-before)
	} else {
		ctx.Printf("Unmarked %s for %s\n", h.Title, day)
	}
	ctx.Printf("  streak: %d, %d/%d days\n", h.Streak, len(h.CompletedDates), h.TotalDays)
	if h.IsCompleted {
		ctx.Printf("  %s: habit target reached\n", cli.HabitStatusLabel(models.HabitStatusCompleted))
	}
	return nil
}

type HabitResetCmd struct {
	ID  string `arg:"" help:"Habit id or unique id prefix."`
	Yes bool   `help:"Skip the confirmation prompt."`
}

func (c *HabitResetCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	id, err := ctx.ResolveHabitID(c.ID)
	if err != nil {
		return err
	}
	h, _ := ctx.Engine.GetHabit(id)

	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Clear all %d completed days of %s? XP already earned is kept.", len(h.CompletedDates), h.Title))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Reset cancelled.")
			return nil
		}
	}

	ctx.Engine.ResetHabit(id)
	ctx.Printf("✓ Reset %s\n", h.Title)
	return nil
}

type HabitDeleteCmd struct {
	ID string `arg:"" help:"Habit id or unique id prefix."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	id, err := ctx.ResolveHabitID(c.ID)
	if err != nil {
		return err
	}
	h, _ := ctx.Engine.GetHabit(id)
	ctx.Engine.DeleteHabit(id)
	ctx.Printf("✓ Deleted habit %s\n", h.Title)
	return nil
}
