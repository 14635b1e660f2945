package models

import (
	"time"

	"github.com/google/uuid"
)

type OverrideChange struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	Timestamp time.Time `json:"timestamp"`
}

// StorePayload is the /api/store response body
type StorePayload struct {
	Status    string             `json:"status"`
	Overrides map[string]float64 `json:"overrides"`
	Changes   []OverrideChange   `json:"changes"`
}

// SetResult is the /api/set success response body
type SetResult struct {
	Status   string    `json:"status"`
	ChangeID uuid.UUID `json:"change_id"`
	Applied  []string  `json:"applied"`
}
