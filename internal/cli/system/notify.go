package system

import (
	"time"

	"github.com/julianstephens/missionctl/internal/alerts"
	"github.com/julianstephens/missionctl/internal/cli"
	"github.com/julianstephens/missionctl/internal/notifier"
)

// newSender is swapped out in tests
var newSender = func(ctx *cli.Context, dryRun bool) notifier.Sender {
	n := notifier.New()
	n.DryRun = dryRun
	if ctx.Out != nil {
		n.Out = ctx.Out
	}
	return n
}

// NotifyCmd sends time's up alerts for missions that ran out within the
// window. It keeps no state, so run it from cron at the window's interval.
type NotifyCmd struct {
	DryRun bool          `help:"Print notifications to stdout instead of sending them."`
	Window time.Duration `help:"Alert for missions that ended within this long ago. Defaults to MISSIONCTL_NOTIFY_WINDOW."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	if !ctx.Config.Notify {
		if c.DryRun {
			ctx.Println("Notifications are disabled (MISSIONCTL_NOTIFICATIONS=false).")
		}
		return nil
	}

	window := c.Window
	if window <= 0 {
		window = ctx.Config.NotifyWindow
	}

	due := alerts.Due(ctx.Engine.MiniMissions(), ctx.Engine.Now(), window)
	if len(due) == 0 {
		if c.DryRun {
			ctx.Println("No mini missions ran out of time.")
		}
		return nil
	}

	sender := newSender(ctx, c.DryRun)
	for _, a := range due {
		if err := alerts.Deliver(sender, a); err != nil {
			// Keep going so one failure doesn't swallow the rest
			ctx.Printf("Failed to send notification: %v\n", err)
		}
	}
	return nil
}
