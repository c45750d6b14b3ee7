package syncuc

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/papercircuit/elektronVersion/internal/domain/listing"
)

// Engine runs one ingestion cycle: fetch a batch from the source, enrich each
// admitted record with its trailing-window aggregate, upsert it, merge the
// batch with the stored history and notify subscribers with the result.
type Engine struct {
	Source   listing.Source
	Repo     listing.Repo
	Subs     *Registry
	Currency string        // accepted currency code, default USD
	Window   time.Duration // trailing window, default 30 days
	PageSize int
	Timeout  time.Duration // per fetch/store operation
	Logger   *slog.Logger
	Now      func() time.Time

	// serializes cycles: the scheduler drops overlapping ticks, but a manual
	// trigger must not interleave with a scheduled cycle either
	mu sync.Mutex
}

func (e *Engine) log() *slog.Logger {
	if e.Logger != nil { return e.Logger }
	return slog.Default()
}

func (e *Engine) now() time.Time {
	if e.Now != nil { return e.Now() }
	return time.Now()
}

// RunCycle returns the reconciled listing set for this cycle. It fails only
// when the batch fetch or the final store read fails; a failure on a single
// record is logged and that record is skipped.
func (e *Engine) RunCycle(ctx context.Context) (listing.Set, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Timeout <= 0 { e.Timeout = 30 * time.Second }
	if e.Currency == "" { e.Currency = "USD" }
	if e.Window <= 0 { e.Window = 30 * 24 * time.Hour }
	if e.PageSize <= 0 { e.PageSize = 300 }
	l := e.log().With("source", e.Source.Name())
	l.Info("cycle start", "page_size", e.PageSize)

	fctx, cancel := context.WithTimeout(ctx, e.Timeout)
	batch, err := e.Source.FetchBatch(fctx, e.PageSize)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	since := e.now().Add(-e.Window)
	fresh := make(listing.Set, 0, len(batch))
	var filtered, failed int
	for _, it := range batch {
		if !strings.EqualFold(it.CurrencyCode(), e.Currency) {
			filtered++
			continue
		}
		enriched, err := e.ingest(ctx, it, since)
		if err != nil {
			failed++
			l.Warn("listing skipped", "id", it.ID, "err", err)
			continue
		}
		fresh = append(fresh, enriched)
	}

	rctx, cancel := context.WithTimeout(ctx, e.Timeout)
	stored, err := e.Repo.All(rctx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	merged := Merge(fresh, stored)
	l.Info("cycle summary\n" + FormatSummary(Summary{
		Fetched:  len(batch),
		Admitted: len(fresh),
		Filtered: filtered,
		Failed:   failed,
		Merged:   len(merged),
	}))

	if e.Subs != nil {
		e.Subs.Notify(ctx, merged)
	}
	return merged, nil
}

// ingest computes the trailing-window aggregate and persists the record.
// The window query runs before the upsert; a row already stored for the same
// id in an earlier cycle does take part in its own window.
func (e *Engine) ingest(ctx context.Context, it listing.Listing, since time.Time) (listing.Listing, error) {
	cctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	prices, err := e.Repo.WindowPrices(cctx, it.Make, it.Model, since)
	if err != nil {
		return listing.Listing{}, fmt.Errorf("window query: %w", err)
	}
	it.AveragePrice, it.CurrentVsAverage = WindowStats(it.Price.Amount, prices)

	if err := e.Repo.Upsert(cctx, it); err != nil {
		return listing.Listing{}, fmt.Errorf("upsert: %w", err)
	}
	return it, nil
}

// WindowStats computes the trailing-window aggregate for one price.
// An empty window defaults to (price, 0).
func WindowStats(price float64, window []float64) (avg, vsAvg float64) {
	if len(window) == 0 {
		return price, 0
	}
	var sum float64
	for _, p := range window {
		sum += p
	}
	avg = sum / float64(len(window))
	vsAvg = (price - avg) / avg * 100
	return avg, vsAvg
}

// Merge deduplicates the union of the fresh batch and the stored history.
// A freshly fetched version always wins over the stored one; the result is
// ordered by created_at descending.
func Merge(fresh, stored listing.Set) listing.Set {
	out := make(listing.Set, 0, len(fresh)+len(stored))
	seen := make(map[string]struct{}, len(fresh))
	for _, it := range fresh {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	for _, it := range stored {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
