package listingsjson

import (
	dm "github.com/papercircuit/elektronVersion/internal/domain/listing"
)

// Row is the flattened per-listing view consumers get: the stored fields the
// UI actually renders plus the derived price benchmark.
type Row struct {
	ID               string  `json:"id"`
	Make             string  `json:"make"`
	Model            string  `json:"model"`
	Finish           string  `json:"finish"`
	Title            string  `json:"title"`
	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	AveragePrice     float64 `json:"averagePrice"`
	CurrentVsAverage float64 `json:"currentVsAverage"`
	CreatedAt        string  `json:"createdAt,omitempty"`
	PhotoLink        string  `json:"linkPhoto,omitempty"`
}

func Rows(set dm.Set) []Row {
	out := make([]Row, 0, len(set))
	for _, l := range set {
		r := Row{
			ID:               l.ID,
			Make:             l.Make,
			Model:            l.Model,
			Finish:           l.Finish,
			Title:            l.Title,
			Price:            l.Price.Amount,
			Currency:         l.CurrencyCode(),
			AveragePrice:     l.AveragePrice,
			CurrentVsAverage: l.CurrentVsAverage,
			PhotoLink:        l.PhotoLink,
		}
		if !l.CreatedAt.IsZero() {
			r.CreatedAt = l.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		out = append(out, r)
	}
	return out
}
