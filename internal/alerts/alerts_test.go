package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/missionctl/internal/models"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func mission(id string, status models.MissionStatus, startOffset time.Duration, minutes int) models.MiniMission {
	m := models.MiniMission{ID: id, Title: "Mission " + id, EstimatedMinutes: minutes, Status: status}
	if startOffset >= 0 {
		start := base.Add(startOffset)
		m.StartedAt = &start
	}
	return m
}

func TestDue(t *testing.T) {
	now := base.Add(30 * time.Minute)
	missions := []models.MiniMission{
		mission("ended-in-window", models.MissionInProgress, 0, 30),
		mission("ended-earlier", models.MissionInProgress, 0, 25),
		mission("still-running", models.MissionInProgress, 0, 31),
		mission("completed", models.MissionCompleted, 0, 30),
		mission("not-started", models.MissionPending, -1, 30),
		mission("window-edge", models.MissionInProgress, 0, 29),
	}

	due := Due(missions, now, time.Minute)
	if len(due) != 1 || due[0].MissionID != "ended-in-window" {
		t.Fatalf("Due() = %+v, want only ended-in-window", due)
	}
	if !due[0].EndsAt.Equal(now) {
		t.Errorf("EndsAt = %v, want %v", due[0].EndsAt, now)
	}

	wide := Due(missions, now, 10*time.Minute)
	if len(wide) != 3 || wide[0].MissionID != "ended-earlier" {
		t.Errorf("wide window = %+v, want three sorted by end", wide)
	}
}

type fakeSource struct {
	missions []models.MiniMission
	now      time.Time
	loadErr  error
	loads    int
}

func (f *fakeSource) Load() error                        { f.loads++; return f.loadErr }
func (f *fakeSource) MiniMissions() []models.MiniMission { return f.missions }
func (f *fakeSource) Now() time.Time                     { return f.now }

type fakeSender struct {
	bodies []string
	err    error
}

func (f *fakeSender) Notify(title, body string) error {
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	return nil
}

func TestWatcherDedupes(t *testing.T) {
	src := &fakeSource{
		missions: []models.MiniMission{mission("m1", models.MissionInProgress, 0, 10)},
		now:      base.Add(10 * time.Minute),
	}
	sender := &fakeSender{}
	w := NewWatcher(src, sender, time.Second, time.Minute)

	if n, err := w.Tick(); err != nil || n != 1 {
		t.Fatalf("first Tick() = %d, %v; want 1", n, err)
	}
	src.now = src.now.Add(10 * time.Second)
	if n, _ := w.Tick(); n != 0 {
		t.Errorf("second Tick() sent %d, want 0", n)
	}

	// Extending moves the end, which alerts again
	src.missions[0].ExtendedMinutes = 5
	src.now = base.Add(15 * time.Minute)
	if n, _ := w.Tick(); n != 1 {
		t.Errorf("Tick() after extension sent %d, want 1", n)
	}
	if len(sender.bodies) != 2 || src.loads != 3 {
		t.Errorf("bodies=%v loads=%d", sender.bodies, src.loads)
	}
}

func TestWatcherRetriesFailedSend(t *testing.T) {
	src := &fakeSource{
		missions: []models.MiniMission{mission("m1", models.MissionInProgress, 0, 10)},
		now:      base.Add(10 * time.Minute),
	}
	sender := &fakeSender{err: errors.New("tray down")}
	w := NewWatcher(src, sender, time.Second, time.Minute)

	var attempts int
	w.OnSend = func(Alert, error) { attempts++ }

	if n, _ := w.Tick(); n != 0 {
		t.Errorf("failed send counted: %d", n)
	}
	sender.err = nil
	if n, _ := w.Tick(); n != 1 {
		t.Errorf("retry Tick() sent %d, want 1", n)
	}
	if attempts != 2 {
		t.Errorf("OnSend called %d times, want 2", attempts)
	}
}

func TestWatcherLoadError(t *testing.T) {
	src := &fakeSource{loadErr: errors.New("db locked")}
	w := NewWatcher(src, &fakeSender{}, time.Second, time.Minute)
	if _, err := w.Tick(); err == nil {
		t.Error("expected reload error")
	}
}

func TestWatcherRunStops(t *testing.T) {
	src := &fakeSource{}
	w := NewWatcher(src, &fakeSender{}, time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
