package backups

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/missionctl/internal/cli"
	"github.com/julianstephens/missionctl/internal/engine"
	"github.com/julianstephens/missionctl/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := storage.NewMemoryStore()
	var out bytes.Buffer
	return &cli.Context{
		Store:     store,
		Engine:    engine.New(store, engine.Options{Location: time.UTC}),
		ConfigDir: t.TempDir(),
		Out:       &out,
	}, &out
}

func TestBackupListEmpty(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestBackupCreateAndRestore(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := ctx.Load(); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Engine.CreateHabit(engine.HabitInput{Title: "Keep me"}); err != nil {
		t.Fatal(err)
	}

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	backups, err := ctx.Backups().ListBackups()
	if err != nil || len(backups) != 1 {
		t.Fatalf("ListBackups() = %v, %v", backups, err)
	}

	h, _ := ctx.Engine.CreateHabit(engine.HabitInput{Title: "Drop me"})

	// Declining leaves state alone
	ctx.In = strings.NewReader("no\n")
	if err := (&BackupRestoreCmd{BackupFile: backups[0].Path}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := ctx.Engine.GetHabit(h.ID); !ok {
		t.Fatal("declined restore changed state")
	}

	if err := (&BackupRestoreCmd{BackupFile: backups[0].Path, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if _, ok := ctx.Engine.GetHabit(h.ID); ok {
		t.Error("restore kept habit created after the backup")
	}
	if len(ctx.Engine.Habits()) != 1 {
		t.Errorf("habits after restore = %d, want 1", len(ctx.Engine.Habits()))
	}
	if !strings.Contains(out.String(), "State restored successfully") {
		t.Errorf("unexpected output: %q", out.String())
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "2 total") {
		t.Errorf("expected the pre-restore backup to be listed: %q", out.String())
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&BackupRestoreCmd{BackupFile: "missionctl-19990101-000000.json", Yes: true}).Run(ctx); err == nil {
		t.Error("expected error for missing backup")
	}
}
