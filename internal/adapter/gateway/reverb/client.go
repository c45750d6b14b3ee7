package reverb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/papercircuit/elektronVersion/internal/adapter/gateway/common"
	dm "github.com/papercircuit/elektronVersion/internal/domain/listing"
	"github.com/papercircuit/elektronVersion/internal/pkg/money"
)

const DefaultBaseURL = "https://api.reverb.com"

// Client fetches listing batches from a Reverb-style HAL+JSON API.
type Client struct {
	c        *common.Client
	currency string
	region   string
}

func New() *Client { return NewWithBaseURL(DefaultBaseURL) }

func NewWithBaseURL(base string) *Client {
	cl := &Client{
		c:        common.NewWith(base, common.DefaultOptionsFromEnv()),
		currency: "USD",
		region:   "US",
	}
	h := cl.c.Headers
	h.Set("Accept-Version", "3.0")
	h.Set("Accept", "application/hal+json")
	h.Set("Content-Type", "application/hal+json")
	h.Set("Accept-Language", "en")
	h.Set("X-Display-Currency", cl.currency)
	h.Set("X-Shipping-Region", cl.region)
	return cl
}

func (Client) Name() string { return "reverb" }

type apiBatch struct {
	Listings []apiListing `json:"listings"`
}

type apiListing struct {
	ID            json.Number     `json:"id"`
	Make          string          `json:"make"`
	Model         string          `json:"model"`
	Finish        string          `json:"finish"`
	Year          string          `json:"year"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	ShopName      string          `json:"shop_name"`
	Condition     string          `json:"condition"`
	ConditionUUID string          `json:"condition_uuid"`
	ConditionSlug string          `json:"condition_slug"`
	Price         money.Money     `json:"price"`
	BuyerPrice    money.Money     `json:"buyer_price"`
	Inventory     int             `json:"inventory"`
	HasInventory  bool            `json:"has_inventory"`
	OffersEnabled bool            `json:"offers_enabled"`
	Auction       bool            `json:"auction"`
	CategoryUUIDs []string        `json:"category_uuids"`
	Currency      string          `json:"listing_currency"`
	CreatedAt     time.Time       `json:"created_at"`
	PublishedAt   time.Time       `json:"published_at"`
	State         struct {
		Slug string `json:"slug"`
	} `json:"state"`
	Shipping json.RawMessage `json:"shipping"`
	Slug     string          `json:"slug"`
	Photos   json.RawMessage `json:"photos"`
	Links    struct {
		Photo struct {
			Href string `json:"href"`
		} `json:"photo"`
	} `json:"_links"`
}

// FetchBatch pulls one page of the newest listings.
func (cl *Client) FetchBatch(ctx context.Context, pageSize int) ([]dm.Listing, error) {
	if pageSize <= 0 {
		pageSize = 300
	}
	var v apiBatch
	path := fmt.Sprintf("/api/listings/all?per_page=%d&sort=created_at", pageSize)
	if err := cl.c.GetJSON(ctx, path, http.Header{}, &v); err != nil {
		return nil, err
	}
	out := make([]dm.Listing, 0, len(v.Listings))
	for _, a := range v.Listings {
		out = append(out, a.toDomain())
	}
	return out, nil
}

func (a apiListing) toDomain() dm.Listing {
	return dm.Listing{
		ID:            a.ID.String(),
		Make:          a.Make,
		Model:         a.Model,
		Finish:        a.Finish,
		Year:          a.Year,
		Title:         a.Title,
		Description:   a.Description,
		ShopName:      a.ShopName,
		Condition:     a.Condition,
		ConditionUUID: a.ConditionUUID,
		ConditionSlug: a.ConditionSlug,
		Price:         a.Price,
		BuyerPrice:    a.BuyerPrice,
		Inventory:     a.Inventory,
		HasInventory:  a.HasInventory,
		OffersEnabled: a.OffersEnabled,
		Auction:       a.Auction,
		CategoryUUIDs: a.CategoryUUIDs,
		Currency:      a.Currency,
		CreatedAt:     a.CreatedAt,
		PublishedAt:   a.PublishedAt,
		State:         a.State.Slug,
		Shipping:      a.Shipping,
		Slug:          a.Slug,
		Photos:        a.Photos,
		PhotoLink:     a.Links.Photo.Href,
	}
}
