package syncuc

import "errors"

// Cycle-fatal failures. Per-record failures never escalate out of RunCycle;
// they are logged and the record is dropped for the cycle.
var (
	// ErrSourceUnavailable: the batch fetch itself failed. Nothing is
	// committed and no notification fires.
	ErrSourceUnavailable = errors.New("listing source unavailable")
	// ErrStoreUnavailable: the post-batch read of the store failed, so the
	// merge cannot be trusted. No notification fires.
	ErrStoreUnavailable = errors.New("listing store unavailable")
)
