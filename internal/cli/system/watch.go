package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/missionctl/internal/alerts"
	"github.com/julianstephens/missionctl/internal/cli"
	"github.com/julianstephens/missionctl/internal/logger"
	"github.com/julianstephens/missionctl/internal/models"
)

// storeSource re-reads the store on every poll so edits made by other
// missionctl processes are picked up
type storeSource struct {
	ctx *cli.Context
}

func (s storeSource) Load() error {
	if err := s.ctx.Store.Load(); err != nil {
		return err
	}
	return s.ctx.Engine.Load()
}

func (s storeSource) MiniMissions() []models.MiniMission { return s.ctx.Engine.MiniMissions() }
func (s storeSource) Now() time.Time                     { return s.ctx.Engine.Now() }

type WatchCmd struct {
	Interval time.Duration `help:"Poll interval. Defaults to MISSIONCTL_POLL_INTERVAL."`
	DryRun   bool          `help:"Print notifications to stdout instead of sending them."`
	Once     bool          `help:"Poll a single time and exit."`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	if !ctx.Config.Notify {
		ctx.Println("Notifications are disabled (MISSIONCTL_NOTIFICATIONS=false).")
		return nil
	}

	interval := c.Interval
	if interval <= 0 {
		interval = ctx.Config.PollInterval
	}
	w := alerts.NewWatcher(storeSource{ctx}, newSender(ctx, c.DryRun), interval, ctx.Config.NotifyWindow)
	w.OnSend = func(a alerts.Alert, err error) {
		if err == nil {
			logger.Info("Sent time's up alert", "mission", a.MissionID)
		}
	}

	if c.Once {
		_, err := w.Tick()
		return err
	}

	ctx.PerformAutomaticBackup()
	ctx.Printf("Watching mini missions every %s (Ctrl+C to stop)\n", interval)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Run(runCtx)
}
