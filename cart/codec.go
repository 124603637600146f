package cart

import (
	"encoding/json"
	"fmt"

	"goflare.io/storefront/models"
)

func encode(c *models.Cart) ([]byte, error) {
	if c == nil {
		c = models.NewCart()
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart: %w", err)
	}
	return raw, nil
}

// decode parses a stored record and repairs it, since the storage medium is
// outside this process's control.
func decode(raw []byte) (*models.Cart, error) {
	var c models.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return Normalize(&c), nil
}
