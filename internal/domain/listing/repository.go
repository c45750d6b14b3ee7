package listing

import (
	"context"
	"time"
)

type Repo interface {
	// Upsert inserts the listing or, on an ID conflict, updates only the
	// volatile fields (price, average_price, current_vs_average).
	Upsert(ctx context.Context, l Listing) error
	// WindowPrices returns prices of stored listings sharing (make, model)
	// with created_at >= since.
	WindowPrices(ctx context.Context, make, model string, since time.Time) ([]float64, error)
	All(ctx context.Context) (Set, error)
}
