package models

// RateRow is one exchange-rate line as stored upstream, display only
type RateRow struct {
	Rate string `json:"rate"`
	Type string `json:"type"`
}

// RatesPayload is the /api/xrates response body
type RatesPayload struct {
	Status string    `json:"status"`
	Items  []RateRow `json:"items"`
}
