package account

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type registryEntry struct {
	controller *Controller
	lastSeen   time.Time
}

// Registry keeps one Controller per session so that the loading flag and the
// generation survive across requests of that session.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*registryEntry
	factory     func(sessionID string) *Controller
	idleTTL     time.Duration
	now         func() time.Time
}

func NewRegistry(factory func(sessionID string) *Controller, idleTTL time.Duration) *Registry {
	return &Registry{
		controllers: make(map[string]*registryEntry),
		factory:     factory,
		idleTTL:     idleTTL,
		now:         time.Now,
	}
}

// Get returns the controller of a session, creating it on first use.
func (r *Registry) Get(sessionID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.controllers[sessionID]
	if !ok {
		entry = &registryEntry{controller: r.factory(sessionID)}
		r.controllers[sessionID] = entry
	}
	entry.lastSeen = r.now()
	return entry.controller
}

func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, sessionID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Sweep removes controllers that are idle for longer than the TTL and not busy.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.idleTTL)
	removed := 0
	for id, entry := range r.controllers {
		if entry.lastSeen.After(cutoff) {
			continue
		}
		if entry.controller.View().Loading {
			continue
		}
		delete(r.controllers, id)
		removed++
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Debug("evicted idle profile controllers", "count", n)
			}
		}
	}
}
