package models

import (
	"time"

	"goflare.io/storefront/models/enum"
)

// CartEvent announces that the persisted cart of Owner changed.
// Origin is the id of the instance that made the change.
type CartEvent struct {
	ID         string             `json:"id"`
	Origin     string             `json:"origin"`
	Owner      string             `json:"owner"`
	Type       enum.CartEventType `json:"type"`
	OccurredAt time.Time          `json:"occurredAt"`
}
