package main

import (
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/missionctl/internal/cli"
	"github.com/julianstephens/missionctl/internal/cli/backups"
	"github.com/julianstephens/missionctl/internal/cli/habits"
	"github.com/julianstephens/missionctl/internal/cli/missions"
	"github.com/julianstephens/missionctl/internal/cli/state"
	"github.com/julianstephens/missionctl/internal/cli/system"
	"github.com/julianstephens/missionctl/internal/config"
	"github.com/julianstephens/missionctl/internal/constants"
	"github.com/julianstephens/missionctl/internal/engine"
	clierrors "github.com/julianstephens/missionctl/internal/errors"
	"github.com/julianstephens/missionctl/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	DB       string `help:"SQLite path, *.json path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded; use the OS keyring, MISSIONCTL_DB_CONNECTION or .pgpass. Defaults to MISSIONCTL_DB." name:"db"`
	EnvFile  string `help:"Load environment variables from this file instead of ./.env." type:"path"`
	Timezone string `help:"IANA timezone used for day boundaries. Defaults to MISSIONCTL_TIMEZONE." name:"tz"`
	Debug    bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize missionctl storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Habit   habits.HabitCmd   `cmd:"" help:"Manage habits and habit tracking."`
	Mini    missions.MiniCmd  `cmd:"" help:"Manage timeboxed mini missions."`
	XP      state.XPCmd       `cmd:"" name:"xp" help:"Show total XP and level progress."`
	Stats   state.StatsCmd    `cmd:"" help:"Show habit and mini mission statistics."`
	Backup  struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage state backups."`
	Export  state.ExportCmd    `cmd:"" help:"Export the full state as JSON."`
	Import  state.ImportCmd    `cmd:"" help:"Replace the full state from a JSON export."`
	Keyring system.KeyringCmd  `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Watch   system.WatchCmd    `cmd:"" help:"Poll mini missions and send time's up notifications."`
	Serve   system.ServeCmd    `cmd:"" help:"Serve the HTTP API and metrics."`
	Notify  system.NotifyCmd   `cmd:"" hidden:"" help:"Send pending time's up notifications once (used by cron)."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker and timeboxed mini missions with an XP ledger"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		clierrors.Fatal(clierrors.Usage(err))
	}
	if CLI.DB != "" {
		cfg.DB = CLI.DB
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	configDir, err := config.ConfigDir(cfg.DB)
	if err != nil {
		clierrors.Fatal(err)
	}
	command := ctx.Command()
	longRunning := strings.HasPrefix(command, "watch") || strings.HasPrefix(command, "serve")
	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: configDir, Console: longRunning}); err != nil {
		logger.InitWriter(os.Stderr, cfg.Debug)
		logger.Warn("Falling back to stderr logging", "error", err)
	}
	logger.Debug("Starting command", "command", command, "db", config.BackendFor(cfg.DB))

	loc, err := cfg.Location()
	if err != nil {
		clierrors.Fatal(clierrors.Usage(err))
	}

	store, err := cli.OpenStore(cfg.DB, cfg.DBConnection)
	if err != nil {
		clierrors.Fatal(err)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:     store,
		Engine:    engine.New(store, engine.Options{Location: loc}),
		Config:    cfg,
		ConfigDir: configDir,
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		clierrors.Fatal(err)
	}
}
