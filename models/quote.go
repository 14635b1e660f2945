package models

import "time"

// QuoteSnapshot holds one successful read of the quote feed. It is replaced
// wholesale on refresh and never partially populated.
type QuoteSnapshot struct {
	Gold      float64   `json:"gold"`
	Silver    float64   `json:"silver"`
	FetchedAt time.Time `json:"fetched_at"`
}
