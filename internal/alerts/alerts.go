// Package alerts finds mini missions whose allotted time ran out and
// delivers "time's up" notifications for them.
package alerts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/missionctl/internal/logger"
	"github.com/julianstephens/missionctl/internal/models"
	"github.com/julianstephens/missionctl/internal/notifier"
)

// Alert is one mission whose countdown reached zero
type Alert struct {
	MissionID string
	Title     string
	EndsAt    time.Time
}

// Message renders the notification text for a
func (a Alert) Message() (string, string) {
	return "Time's up", fmt.Sprintf("%s (ended %s)", a.Title, a.EndsAt.Format("15:04"))
}

// Due returns in-progress missions whose end falls in (now-window, now],
// ordered by end time. Missions are never transitioned here.
func Due(missions []models.MiniMission, now time.Time, window time.Duration) []Alert {
	var due []Alert
	from := now.Add(-window)
	for _, m := range missions {
		if m.Status != models.MissionInProgress {
			continue
		}
		end, ok := m.EndsAt()
		if !ok || !end.After(from) || end.After(now) {
			continue
		}
		due = append(due, Alert{MissionID: m.ID, Title: m.Title, EndsAt: end})
	}
	sort.Slice(due, func(i, j int) bool { return due[i].EndsAt.Before(due[j].EndsAt) })
	return due
}

// Source supplies the mission list and clock a Watcher polls
type Source interface {
	Load() error
	MiniMissions() []models.MiniMission
	Now() time.Time
}

// Watcher polls a Source and sends each due alert once per end time. An
// extension moves the end time, so the mission alerts again when it runs
// out a second time.
type Watcher struct {
	src      Source
	sender   notifier.Sender
	interval time.Duration
	window   time.Duration
	sent     map[string]time.Time
	// OnSend is called after every delivery attempt
	OnSend func(a Alert, err error)
}

func NewWatcher(src Source, sender notifier.Sender, interval, window time.Duration) *Watcher {
	return &Watcher{
		src:      src,
		sender:   sender,
		interval: interval,
		window:   window,
		sent:     make(map[string]time.Time),
	}
}

// Tick reloads the source and delivers new alerts. It returns how many were
// sent successfully.
func (w *Watcher) Tick() (int, error) {
	if err := w.src.Load(); err != nil {
		return 0, fmt.Errorf("failed to reload state: %w", err)
	}

	due := Due(w.src.MiniMissions(), w.src.Now(), w.window)
	current := make(map[string]bool, len(due))
	sent := 0
	for _, a := range due {
		current[a.MissionID] = true
		if last, ok := w.sent[a.MissionID]; ok && last.Equal(a.EndsAt) {
			continue
		}
		err := Deliver(w.sender, a)
		if w.OnSend != nil {
			w.OnSend(a, err)
		}
		if err != nil {
			logger.Warn("Failed to send time's up alert", "mission", a.MissionID, "error", err)
			continue
		}
		w.sent[a.MissionID] = a.EndsAt
		sent++
	}

	for id := range w.sent {
		if !current[id] {
			delete(w.sent, id)
		}
	}
	return sent, nil
}

// Run ticks until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.Tick(); err != nil {
			logger.Error("Watch tick failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Deliver sends a single alert through sender
func Deliver(sender notifier.Sender, a Alert) error {
	title, body := a.Message()
	return sender.Notify(title, body)
}
