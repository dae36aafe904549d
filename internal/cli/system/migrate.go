package system

import (
	"fmt"

	"github.com/julianstephens/missionctl/internal/cli"
	"github.com/julianstephens/missionctl/internal/storage"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(storage.Migratable)
	if !ok {
		return fmt.Errorf("migrate command only supports SQLite and PostgreSQL storage")
	}
	defer ctx.Store.Close()

	before, latest, err := m.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if before > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", before, latest)
	}

	if err := m.RunMigrations(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	current, _, err := m.SchemaVersion()
	if err != nil {
		return err
	}
	if current == before {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully migrated schema from version %d to %d.\n", before, current)
	}
	return nil
}
