package session

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/voicenote/internal/domain"
	"github.com/kailas-cloud/voicenote/internal/metrics"
)

type entry struct {
	// mu allows one action in flight per session.
	mu       sync.Mutex
	state    State
	lastUsed time.Time
	busy     int
}

// Registry holds live sessions keyed by id.
type Registry struct {
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry creates a registry. Sessions idle longer than idleTTL are evicted by Sweep;
// a zero idleTTL disables eviction.
func NewRegistry(idleTTL time.Duration) *Registry {
	return &Registry{
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Create registers a new session and returns its initial state.
func (r *Registry) Create() State {
	st := NewState()

	r.mu.Lock()
	r.sessions[st.ID] = &entry{state: st, lastUsed: r.now()}
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return st
}

// Get returns a snapshot of the session state. It waits for an in-flight action.
func (r *Registry) Get(id string) (State, error) {
	e, err := r.acquire(id)
	if err != nil {
		return State{}, err
	}
	defer r.release(e)
	return e.state, nil
}

// Do runs fn with exclusive access to the session. The returned state replaces the
// stored one only when fn succeeds.
func (r *Registry) Do(id string, fn func(State) (Result, error)) (Result, error) {
	e, err := r.acquire(id)
	if err != nil {
		return Result{}, err
	}
	defer r.release(e)

	res, err := fn(e.state)
	if err != nil {
		return Result{State: e.state}, err
	}
	e.state = res.State
	return res, nil
}

// Delete ends a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	metrics.ActiveSessions.Set(float64(n))
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions that have been idle longer than the TTL and reports how many
// were removed. Sessions with an action in flight are never evicted.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	removed := 0
	for id, e := range r.sessions {
		if e.busy == 0 && e.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if removed > 0 {
		metrics.ActiveSessions.Set(float64(n))
	}
	return removed
}

// Run sweeps periodically until ctx is canceled.
func (r *Registry) Run(ctx context.Context) {
	if r.idleTTL <= 0 {
		return
	}
	interval := max(r.idleTTL/2, time.Second)
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep()
		}
	}
}

func (r *Registry) acquire(id string) (*entry, error) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	e.busy++
	r.mu.Unlock()

	e.mu.Lock()
	return e, nil
}

func (r *Registry) release(e *entry) {
	r.mu.Lock()
	e.busy--
	e.lastUsed = r.now()
	r.mu.Unlock()
	e.mu.Unlock()
}
