// README: Tariff (base fare per destination) definitions.
package tariff

import (
	"errors"
	"strings"
	"time"
)

const DefaultCurrency = "CLP"

type Tariff struct {
	Destination string    `json:"destination"`
	Label       string    `json:"label"`
	BasePrice   int64     `json:"base_price"`
	Currency    string    `json:"currency"`
	Active      bool      `json:"active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	ErrNotFound   = errors.New("tariff not found")
	ErrBadRequest = errors.New("bad request")
)

// Key normalizes a destination into its catalogue key.
func Key(destination string) string {
	return strings.ToLower(strings.TrimSpace(destination))
}
