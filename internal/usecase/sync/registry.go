package syncuc

import (
	"context"
	"sync"

	"github.com/papercircuit/elektronVersion/internal/domain/listing"
)

// Subscriber receives the reconciled listing set after every successful cycle.
type Subscriber interface {
	Notify(ctx context.Context, set listing.Set)
}

// Registry is a set of subscribers keyed by interface identity.
// Add/Remove are idempotent; every subscriber is invoked once per cycle,
// each with the same snapshot.
type Registry struct {
	mu   sync.RWMutex
	subs map[Subscriber]struct{}
}

func NewRegistry() *Registry {
	return &Registry{subs: make(map[Subscriber]struct{})}
}

func (r *Registry) Add(s Subscriber) {
	if s == nil {
		return
	}
	r.mu.Lock()
	r.subs[s] = struct{}{}
	r.mu.Unlock()
}

func (r *Registry) Remove(s Subscriber) {
	r.mu.Lock()
	delete(r.subs, s)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

func (r *Registry) Notify(ctx context.Context, set listing.Set) {
	r.mu.RLock()
	subs := make([]Subscriber, 0, len(r.subs))
	for s := range r.subs {
		subs = append(subs, s)
	}
	r.mu.RUnlock()

	for _, s := range subs {
		s.Notify(ctx, set)
	}
}
