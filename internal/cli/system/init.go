package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/missionctl/internal/cli"
	"github.com/julianstephens/missionctl/internal/config"
	"github.com/julianstephens/missionctl/internal/constants"
	"github.com/julianstephens/missionctl/internal/engine"
	"github.com/julianstephens/missionctl/internal/storage"
)

type InitCmd struct {
	Force bool   `help:"Discard any existing state before initialization."`
	From  string `help:"Copy the state from another database (SQLite, JSON or PostgreSQL)."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	fileBacked := config.BackendFor(ctx.Config.DB) != config.BackendPostgres

	if c.Force && fileBacked {
		// Don't delete if it's the source
		if c.From != "" {
			absDB, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDB
			}
			if fromPath, err := config.ExpandPath(c.From); err == nil {
				if absFrom, err := filepath.Abs(fromPath); err == nil && absFrom == dbPath {
					return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
				}
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}

	if c.Force && !fileBacked {
		if err := ctx.Store.Delete(constants.SnapshotKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to clear existing state: %w", err)
		}
		ctx.Println("Cleared existing state.")
	}
	ctx.Printf("Initialized missionctl storage at: %s\n", ctx.Store.GetConfigPath())

	if c.From != "" {
		ctx.Printf("Copying state from: %s\n", c.From)
		n, err := c.copyFrom(ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Printf("✓ Copied %d habits and %d mini missions\n", n.Habits, n.MiniMissions)
	}
	return nil
}

type copied struct {
	Habits       int
	MiniMissions int
}

func (c *InitCmd) copyFrom(ctx *cli.Context) (copied, error) {
	source, err := cli.OpenStore(c.From, "")
	if err != nil {
		return copied{}, err
	}
	if err := source.Load(); err != nil {
		return copied{}, fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	src := engine.New(source, engine.Options{Location: ctx.Engine.Location()})
	if err := src.Load(); err != nil {
		return copied{}, fmt.Errorf("failed to read source state: %w", err)
	}
	data, err := src.Export()
	if err != nil {
		return copied{}, err
	}

	if err := ctx.Engine.Import(data); err != nil {
		return copied{}, err
	}
	snap := ctx.Engine.Snapshot()
	return copied{Habits: len(snap.Habits), MiniMissions: len(snap.MiniMissions)}, nil
}
