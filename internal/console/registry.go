package console

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aethra/marketconsole/internal/view"
)

// Registry holds the live console states. Idle states are evicted; the
// session's token outlives them, so a returning browser simply starts over.
type Registry struct {
	mu     sync.Mutex
	states map[string]*State
	idle   time.Duration
	brand  string
	logger *zap.Logger
	now    func() time.Time
}

func NewRegistry(brand string, idle time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		states: make(map[string]*State),
		idle:   idle,
		brand:  brand,
		logger: logger.Named("registry"),
		now:    time.Now,
	}
}

// Acquire returns the state of sid, creating it on first use
func (r *Registry) Acquire(sid string, newDoc func(brand string) *view.Document) *State {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if st, ok := r.states[sid]; ok {
		st.mu.Lock()
		st.lastUsed = now
		st.mu.Unlock()
		return st
	}
	st := newState(sid, newDoc(r.brand), now)
	r.states[sid] = st
	return st
}

// Lookup returns an existing state without creating one
func (r *Registry) Lookup(sid string) (*State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[sid]
	return st, ok
}

func (r *Registry) Remove(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, sid)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// Sweep evicts states idle for longer than the idle timeout
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idle)
	evicted := 0
	for sid, st := range r.states {
		st.mu.Lock()
		idle := st.lastUsed.Before(cutoff)
		st.mu.Unlock()
		if idle {
			delete(r.states, sid)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Debug("evicted idle console sessions", zap.Int("count", evicted), zap.Int("remaining", len(r.states)))
	}
	return evicted
}

// Run sweeps every interval until ctx is done
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
