package listing

import (
	"encoding/json"
	"time"

	"github.com/papercircuit/elektronVersion/internal/pkg/money"
)

// Listing is one marketplace record. ID is the primary key and is stable
// across fetches; AveragePrice and CurrentVsAverage are derived at ingestion
// time and are the only fields (besides Price) updated on re-ingestion.
type Listing struct {
	ID            string          `json:"id"`
	Make          string          `json:"make"`
	Model         string          `json:"model"`
	Finish        string          `json:"finish"`
	Year          string          `json:"year,omitempty"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	ShopName      string          `json:"shop_name,omitempty"`
	Condition     string          `json:"condition,omitempty"`
	ConditionUUID string          `json:"condition_uuid,omitempty"`
	ConditionSlug string          `json:"condition_slug,omitempty"`
	Price         money.Money     `json:"price"`
	BuyerPrice    money.Money     `json:"buyer_price"`
	Inventory     int             `json:"inventory"`
	HasInventory  bool            `json:"has_inventory"`
	OffersEnabled bool            `json:"offers_enabled"`
	Auction       bool            `json:"auction"`
	CategoryUUIDs []string        `json:"category_uuids,omitempty"`
	Currency      string          `json:"listing_currency"`
	CreatedAt     time.Time       `json:"created_at"`
	PublishedAt   time.Time       `json:"published_at"`
	State         string          `json:"state,omitempty"`
	Shipping      json.RawMessage `json:"shipping,omitempty"`
	Slug          string          `json:"slug,omitempty"`
	Photos        json.RawMessage `json:"photos,omitempty"`
	PhotoLink     string          `json:"link_photo,omitempty"`

	AveragePrice     float64 `json:"averagePrice"`
	CurrentVsAverage float64 `json:"currentVsAverage"`
}

// CurrencyCode is the code the ingestion filter matches against.
// Sources report it as listing_currency; fall back to the price currency.
func (l Listing) CurrencyCode() string {
	if l.Currency != "" {
		return l.Currency
	}
	return l.Price.Currency
}

// Set is an ordered reconciled listing set: each ID appears at most once.
type Set []Listing
