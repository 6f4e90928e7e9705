package wizard

import (
	"slices"
	"sync"

	"ai-pack-planner/internal/logger"
)

// Store owns the current run state. All writes go through Dispatch.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []func(State)
	log       *logger.Logger
}

func NewStore(log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{state: State{Phase: PhaseIdle}, log: log}
}

// Subscribe registers fn to receive every new snapshot. Snapshots from
// concurrent dispatches may arrive out of order; compare Version.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies ev and reports whether it changed the state. Events of a
// superseded run are dropped.
func (s *Store) Dispatch(ev Event) (State, bool) {
	s.mu.Lock()
	prev := s.state
	if _, ok := ev.(RunStarted); ok && prev.RunID != "" && prev.Loading {
		s.log.Warn("new run supersedes one still in flight",
			"previous_run", prev.RunID, "run_id", ev.Run())
	}
	next := Reduce(prev, ev)
	applied := next.Version != prev.Version
	if applied {
		s.state = next
	}
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if !applied {
		s.log.Debug("dropped event from stale run", "run_id", ev.Run(), "current_run", prev.RunID)
		return prev, false
	}
	for _, fn := range listeners {
		fn(next)
	}
	return next, true
}
