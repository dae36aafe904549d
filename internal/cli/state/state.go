package state

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/missionctl/internal/cli"
	"github.com/julianstephens/missionctl/internal/constants"
)

type ExportCmd struct {
	Output string `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	data, err := ctx.Engine.Export()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if c.Output == "" {
		ctx.Printf("%s\n", data)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Output), 0700); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(c.Output, data, 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	ctx.Printf("✓ Exported state to %s\n", c.Output)
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"Snapshot file to import, or - for stdin."`
	Yes  bool   `help:"Skip the confirmation prompt."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	var data []byte
	var err error
	if c.File == "-" {
		in := ctx.In
		if in == nil {
			in = os.Stdin
		}
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(c.File)
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	// stdin is the payload, so it can't also answer the prompt
	if !c.Yes && c.File != "-" {
		ok, err := ctx.Confirm("This replaces all current habits, mini missions and XP. Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Import cancelled.")
			return nil
		}
	}

	preImport, err := ctx.Backups().CreateBackup(ctx.Engine)
	if err != nil {
		return fmt.Errorf("failed to backup current state before import: %w", err)
	}
	if err := ctx.Engine.Import(data); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	snap := ctx.Engine.Snapshot()
	ctx.Printf("✓ Imported %d habits, %d mini missions, %d XP\n", len(snap.Habits), len(snap.MiniMissions), snap.XP)
	ctx.Printf("  Previous state saved to %s\n", filepath.Base(preImport))
	return nil
}

type XPCmd struct{}

func (c *XPCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	lvl := ctx.Engine.Level()
	ctx.Printf("Level %d  (%d XP total)\n", lvl.Level, lvl.XP)
	ctx.Printf("%s  %d/%d to level %d\n",
		cli.ProgressBar(float64(lvl.Progress)/constants.XPPerLevel), lvl.Progress, constants.XPPerLevel, lvl.Level+1)
	return nil
}

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	s := ctx.Engine.Stats()
	ctx.Printf("Habits:        %d active, %d completed\n", s.ActiveHabits, s.CompletedHabits)
	ctx.Printf("Best streak:   %d\n", s.BestStreak)
	ctx.Printf("Mini missions: %d queued, %d running\n", s.QueuedMissions, s.RunningMissions)
	ctx.Printf("Level:         %d (%d XP)\n", s.Level.Level, s.Level.XP)
	return nil
}
