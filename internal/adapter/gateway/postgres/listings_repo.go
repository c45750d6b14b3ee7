package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	dm "github.com/papercircuit/elektronVersion/internal/domain/listing"
	"github.com/papercircuit/elektronVersion/internal/pkg/money"
)

type ListingsRepo struct {
	db *sql.DB
}

func NewListingsRepo(db *sql.DB) *ListingsRepo { return &ListingsRepo{db: db} }

// Migrate bootstraps the schema. The derived columns are added separately so
// a store created before they existed upgrades in place without data loss.
func (r *ListingsRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id              TEXT PRIMARY KEY,
			make            TEXT,
			model           TEXT,
			finish          TEXT,
			year            TEXT,
			title           TEXT,
			created_at      TIMESTAMPTZ,
			shop_name       TEXT,
			description     TEXT,
			condition       TEXT,
			condition_uuid  TEXT,
			condition_slug  TEXT,
			price           DOUBLE PRECISION,
			inventory       INTEGER,
			has_inventory   BOOLEAN,
			offers_enabled  BOOLEAN,
			auction         BOOLEAN,
			category_uuids  TEXT[],
			listing_currency TEXT,
			published_at    TIMESTAMPTZ,
			buyer_price     DOUBLE PRECISION,
			state           TEXT,
			shipping        JSONB,
			slug            TEXT,
			photos          JSONB,
			link_photo      TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_listings_group_window
			ON listings (make, model, created_at);
	`); err != nil {
		return fmt.Errorf("create listings: %w", err)
	}

	// additive migration for pre-existing stores
	for _, col := range []string{
		`ALTER TABLE listings ADD COLUMN IF NOT EXISTS average_price DOUBLE PRECISION`,
		`ALTER TABLE listings ADD COLUMN IF NOT EXISTS current_vs_average DOUBLE PRECISION`,
	} {
		if _, err := r.db.ExecContext(ctx, col); err != nil {
			return fmt.Errorf("add column: %w", err)
		}
	}
	return nil
}

// Upsert inserts the listing; on an id conflict only the volatile fields
// are updated, everything else keeps its originally stored value.
func (r *ListingsRepo) Upsert(ctx context.Context, l dm.Listing) error {
	const q = `
		INSERT INTO listings (
			id, make, model, finish, year, title, created_at, shop_name,
			description, condition, condition_uuid, condition_slug, price,
			inventory, has_inventory, offers_enabled, auction, category_uuids,
			listing_currency, published_at, buyer_price, state, shipping, slug,
			photos, link_photo, average_price, current_vs_average
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,
			$19,$20,$21,$22,$23,$24,$25,$26,$27,$28
		)
		ON CONFLICT (id) DO UPDATE SET
			price              = EXCLUDED.price,
			average_price      = EXCLUDED.average_price,
			current_vs_average = EXCLUDED.current_vs_average
	`
	_, err := r.db.ExecContext(ctx, q,
		l.ID, l.Make, l.Model, l.Finish, l.Year, l.Title, nullTime(l.CreatedAt), l.ShopName,
		l.Description, l.Condition, l.ConditionUUID, l.ConditionSlug, l.Price.Amount,
		l.Inventory, l.HasInventory, l.OffersEnabled, l.Auction, pq.Array(l.CategoryUUIDs),
		l.CurrencyCode(), nullTime(l.PublishedAt), l.BuyerPrice.Amount, l.State, nullJSON(l.Shipping), l.Slug,
		nullJSON(l.Photos), l.PhotoLink, l.AveragePrice, l.CurrentVsAverage,
	)
	if err != nil {
		return fmt.Errorf("upsert listing %s: %w", l.ID, err)
	}
	return nil
}

func (r *ListingsRepo) WindowPrices(ctx context.Context, make, model string, since time.Time) ([]float64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT price FROM listings
		WHERE make = $1 AND model = $2 AND created_at >= $3
	`, make, model, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var p sql.NullFloat64
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		if p.Valid {
			out = append(out, p.Float64)
		}
	}
	return out, rows.Err()
}

func (r *ListingsRepo) All(ctx context.Context) (dm.Set, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, make, model, finish, year, title, created_at, shop_name,
		       description, condition, condition_uuid, condition_slug, price,
		       inventory, has_inventory, offers_enabled, auction, category_uuids,
		       listing_currency, published_at, buyer_price, state, shipping, slug,
		       photos, link_photo, average_price, current_vs_average
		FROM listings
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out dm.Set
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanListing(rows *sql.Rows) (dm.Listing, error) {
	var (
		l                        dm.Listing
		mk, md, fin, yr, title   sql.NullString
		created, published       sql.NullTime
		shop, desc, cond         sql.NullString
		condUUID, condSlug       sql.NullString
		price, buyerPrice        sql.NullFloat64
		inventory                sql.NullInt64
		hasInv, offers, auction  sql.NullBool
		uuids                    pq.StringArray
		currency, state, slug    sql.NullString
		shipping, photos         []byte
		photoLink                sql.NullString
		avgPrice, vsAvg          sql.NullFloat64
	)
	if err := rows.Scan(
		&l.ID, &mk, &md, &fin, &yr, &title, &created, &shop,
		&desc, &cond, &condUUID, &condSlug, &price,
		&inventory, &hasInv, &offers, &auction, &uuids,
		&currency, &published, &buyerPrice, &state, &shipping, &slug,
		&photos, &photoLink, &avgPrice, &vsAvg,
	); err != nil {
		return dm.Listing{}, err
	}
	l.Make, l.Model, l.Finish, l.Year, l.Title = mk.String, md.String, fin.String, yr.String, title.String
	l.ShopName, l.Description, l.Condition = shop.String, desc.String, cond.String
	l.ConditionUUID, l.ConditionSlug = condUUID.String, condSlug.String
	l.Price = money.Money{Amount: price.Float64, Currency: currency.String}
	l.BuyerPrice = money.Money{Amount: buyerPrice.Float64, Currency: currency.String}
	l.Inventory = int(inventory.Int64)
	l.HasInventory, l.OffersEnabled, l.Auction = hasInv.Bool, offers.Bool, auction.Bool
	l.CategoryUUIDs = uuids
	l.Currency, l.State, l.Slug, l.PhotoLink = currency.String, state.String, slug.String, photoLink.String
	if created.Valid {
		l.CreatedAt = created.Time
	}
	if published.Valid {
		l.PublishedAt = published.Time
	}
	if len(shipping) > 0 {
		l.Shipping = json.RawMessage(shipping)
	}
	if len(photos) > 0 {
		l.Photos = json.RawMessage(photos)
	}
	l.AveragePrice, l.CurrentVsAverage = avgPrice.Float64, vsAvg.Float64
	return l, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullJSON(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	return []byte(b)
}
