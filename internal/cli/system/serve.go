package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/missionctl/internal/alerts"
	"github.com/julianstephens/missionctl/internal/api"
	"github.com/julianstephens/missionctl/internal/cli"
	"github.com/julianstephens/missionctl/internal/engine"
	"github.com/julianstephens/missionctl/internal/logger"
	"github.com/julianstephens/missionctl/internal/metrics"
	"github.com/julianstephens/missionctl/internal/storage"
)

// liveSource reads the served engine directly; it is the only writer, so
// there is nothing to reload
type liveSource struct {
	*engine.Engine
}

func (liveSource) Load() error { return nil }

var _ alerts.Source = liveSource{}

type ServeCmd struct {
	Addr      string   `help:"Listen address. Defaults to MISSIONCTL_LISTEN_ADDR."`
	Ephemeral bool     `help:"Serve an empty in-memory state that is discarded on exit."`
	NoNotify  bool     `help:"Don't send time's up notifications while serving."`
	Origins   []string `help:"Allowed CORS origins." default:"*"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	e := ctx.Engine
	if c.Ephemeral {
		store := storage.NewMemoryStore()
		if err := store.Init(); err != nil {
			return err
		}
		e = engine.New(store, engine.Options{Location: ctx.Engine.Location()})
		if err := e.Load(); err != nil {
			return err
		}
	} else {
		if err := ctx.Load(); err != nil {
			return err
		}
		ctx.PerformAutomaticBackup()
	}

	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.ListenAddr
	}

	m := metrics.New()
	detach := m.Attach(e)
	defer detach()

	server := api.NewServer(e, m, api.Options{
		RateLimit:      ctx.Config.RateLimit,
		RateBurst:      ctx.Config.RateBurst,
		AllowedOrigins: c.Origins,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if ctx.Config.Notify && !c.NoNotify {
		w := alerts.NewWatcher(liveSource{e}, newSender(ctx, false), pollInterval(ctx), ctx.Config.NotifyWindow)
		w.OnSend = func(a alerts.Alert, err error) { m.AlertSent(err) }
		go func() {
			if err := w.Run(runCtx); err != nil {
				logger.Error("Alert watcher stopped", "error", err)
			}
		}()
	}

	ctx.Printf("Serving missionctl on http://%s (Ctrl+C to stop)\n", addr)
	return server.ListenAndServe(runCtx, addr)
}

func pollInterval(ctx *cli.Context) time.Duration {
	if ctx.Config.PollInterval > 0 {
		return ctx.Config.PollInterval
	}
	return time.Second
}
