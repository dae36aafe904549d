// Package engine owns the habit and mini mission collections and the XP
// ledger. Every operation validates input, mutates the collection, recomputes
// derived fields and then persists the full snapshot.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/missionctl/internal/constants"
	"github.com/julianstephens/missionctl/internal/logger"
	"github.com/julianstephens/missionctl/internal/models"
	"github.com/julianstephens/missionctl/internal/snapshot"
	"github.com/julianstephens/missionctl/internal/storage"
	"github.com/julianstephens/missionctl/internal/utils"
	"github.com/julianstephens/missionctl/internal/xp"
)

var (
	ErrEmptyTitle       = errors.New("title must not be empty")
	ErrInvalidMode      = errors.New("invalid habit mode")
	ErrInvalidStartMode = errors.New("invalid start mode")
	ErrNotLoaded        = errors.New("engine state not loaded")
)

// Options configure an Engine. Zero values fall back to the wall clock, the
// local timezone, random UUIDs and the default snapshot key.
type Options struct {
	Now      func() time.Time
	Location *time.Location
	NewID    func() string
	Key      string
}

type Engine struct {
	mu       sync.Mutex
	store    storage.Provider
	clock    func() time.Time
	loc      *time.Location
	newID    func() string
	key      string
	loaded   bool
	habits   []models.Habit
	missions []models.MiniMission
	ledger   *xp.Ledger

	obsMu     sync.Mutex
	observers map[int]func(Event)
	nextObs   int
}

// New creates an engine backed by store. store may be nil, in which case
// nothing is persisted.
func New(store storage.Provider, opts Options) *Engine {
	e := &Engine{
		store:     store,
		clock:     opts.Now,
		loc:       opts.Location,
		newID:     opts.NewID,
		key:       opts.Key,
		habits:    []models.Habit{},
		missions:  []models.MiniMission{},
		ledger:    xp.NewLedger(0),
		observers: make(map[int]func(Event)),
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.key == "" {
		e.key = constants.SnapshotKey
	}
	if store == nil {
		e.loaded = true
	}
	return e
}

func (e *Engine) now() time.Time {
	return e.clock().In(e.loc)
}

// Location returns the timezone used for calendar-day keys
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Now returns the engine clock in its timezone
func (e *Engine) Now() time.Time {
	return e.now()
}

// Load replaces the in-memory state with the stored snapshot. A store that
// has never been written yields an empty state.
func (e *Engine) Load() error {
	if e.store == nil {
		return nil
	}

	data, err := e.store.Get(e.key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	e.mu.Lock()
	snap, version, err := snapshot.Decode(data, snapshot.Options{Now: e.now(), Location: e.loc})
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.replaceLocked(snap)
	e.loaded = true
	e.mu.Unlock()

	logger.Debug("Loaded snapshot", "key", e.key, "version", version,
		"habits", len(snap.Habits), "missions", len(snap.MiniMissions), "xp", snap.XP)
	e.emit(Event{Kind: EventLoaded, Time: e.now()})
	return nil
}

// Snapshot returns a deep copy of the current state with derived fields
// brought up to date
func (e *Engine) Snapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Export encodes the current state in the persisted envelope
func (e *Engine) Export() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return nil, ErrNotLoaded
	}
	return snapshot.Encode(e.snapshotLocked())
}

// Import decodes data through the migration pass, replaces the whole state
// and persists it. Unlike regular mutations a failed write is returned.
func (e *Engine) Import(data []byte) error {
	e.mu.Lock()
	snap, _, err := snapshot.Decode(data, snapshot.Options{Now: e.now(), Location: e.loc})
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.replaceLocked(snap)
	e.loaded = true
	err = e.writeLocked()
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.emit(Event{Kind: EventImported, Time: e.now()})
	return nil
}

func (e *Engine) replaceLocked(snap models.Snapshot) {
	e.habits = snap.Habits
	e.missions = snap.MiniMissions
	e.ledger = xp.NewLedger(snap.XP)
	e.refreshLocked()
}

// refreshLocked recomputes every clock-dependent derived field
func (e *Engine) refreshLocked() {
	today, yesterday := utils.TodayAndYesterday(e.now(), e.loc)
	for i := range e.habits {
		derive(&e.habits[i], today, yesterday)
	}
}

func (e *Engine) snapshotLocked() models.Snapshot {
	e.refreshLocked()
	return models.Snapshot{
		Habits:       e.habits,
		MiniMissions: e.missions,
		XP:           e.ledger.Total(),
	}.Clone()
}

func (e *Engine) writeLocked() error {
	if e.store == nil {
		return nil
	}
	data, err := snapshot.Encode(e.snapshotLocked())
	if err != nil {
		return err
	}
	if err := e.store.Put(e.key, data); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return nil
}

// persistLocked is the fire-and-forget write that follows every mutation
func (e *Engine) persistLocked() {
	if !e.loaded {
		logger.Warn("Skipping persist before load", "key", e.key)
		return
	}
	if err := e.writeLocked(); err != nil {
		logger.Warn("Failed to persist snapshot", "key", e.key, "error", err)
	}
}

// mutate runs fn under the state lock. If fn reports events the snapshot is
// persisted before the lock is released and observers run afterwards.
func (e *Engine) mutate(fn func(now time.Time) []Event) {
	e.mu.Lock()
	events := fn(e.now())
	if len(events) > 0 {
		e.persistLocked()
	}
	e.mu.Unlock()

	e.emit(events...)
}

// XP returns the ledger total
func (e *Engine) XP() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Total()
}

// Level returns the ledger total split into level and progress
func (e *Engine) Level() xp.Level {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Level()
}
