package dbping

import (
	"context"
	"database/sql"
)

// DBPing exposes the listings store as a health check target.
type DBPing struct {
	DB *sql.DB
}

func (DBPing) Name() string { return "postgres" }

func (d DBPing) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}
