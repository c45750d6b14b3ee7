package listing

import "context"

type Source interface {
	Name() string
	FetchBatch(ctx context.Context, pageSize int) ([]Listing, error)
}
