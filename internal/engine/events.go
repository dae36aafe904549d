package engine

import "time"

type EventKind string

const (
	EventLoaded           EventKind = "loaded"
	EventImported         EventKind = "imported"
	EventHabitCreated     EventKind = "habit_created"
	EventHabitToggled     EventKind = "habit_toggled"
	EventHabitReset       EventKind = "habit_reset"
	EventHabitDeleted     EventKind = "habit_deleted"
	EventMissionCreated   EventKind = "mission_created"
	EventMissionStarted   EventKind = "mission_started"
	EventMissionCompleted EventKind = "mission_completed"
	EventMissionExtended  EventKind = "mission_extended"
	EventMissionCancelled EventKind = "mission_cancelled"
	EventMissionDeleted   EventKind = "mission_deleted"
)

// Event describes one applied change
type Event struct {
	Kind EventKind
	ID   string
	// Day is the toggled day key for habit toggles
	Day string
	// Added is true when a toggle marked the day complete
	Added     bool
	XPAwarded int
	Time      time.Time
}

// Subscribe registers fn to be called after every applied change. The
// returned func removes the subscription.
func (e *Engine) Subscribe(fn func(Event)) func() {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	id := e.nextObs
	e.nextObs++
	e.observers[id] = fn

	return func() {
		e.obsMu.Lock()
		defer e.obsMu.Unlock()
		delete(e.observers, id)
	}
}

func (e *Engine) emit(events ...Event) {
	if len(events) == 0 {
		return
	}

	e.obsMu.Lock()
	fns := make([]func(Event), 0, len(e.observers))
	for i := 0; i < e.nextObs; i++ {
		if fn, ok := e.observers[i]; ok {
			fns = append(fns, fn)
		}
	}
	e.obsMu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}
