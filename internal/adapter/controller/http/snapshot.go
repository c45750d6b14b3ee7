package httpctrl

import (
	"context"
	"sync/atomic"

	dm "github.com/papercircuit/elektronVersion/internal/domain/listing"
)

// LatestSnapshot holds the most recent reconciled listing set in memory.
// It is registered as a cycle subscriber and read by the listings endpoint.
type LatestSnapshot struct {
	v atomic.Value // dm.Set
}

func (h *LatestSnapshot) Notify(_ context.Context, set dm.Set) {
	h.v.Store(set)
}

func (h *LatestSnapshot) Get() (dm.Set, bool) {
	set, ok := h.v.Load().(dm.Set)
	return set, ok
}
