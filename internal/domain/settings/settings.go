// Package settings exposes the key/value store configuration: store name,
// GST toggle and rate, and the UPI collection address.
package settings

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Well-known setting keys.
const (
	KeyStoreName  = "store_name"
	KeyGSTEnabled = "gst_enabled"
	KeyGSTPercent = "gst_percent"
	KeyUPIID      = "upi_id"
)

// ErrUnknownKey is returned when updating a key that is not recognised.
var ErrUnknownKey = errors.New("unknown setting key")

var knownKeys = map[string]struct{}{
	KeyStoreName:  {},
	KeyGSTEnabled: {},
	KeyGSTPercent: {},
	KeyUPIID:      {},
}

// KnownKey reports whether k is a recognised setting.
func KnownKey(k string) bool {
	_, ok := knownKeys[k]
	return ok
}

// Store holds the parsed store configuration used during billing.
type Store struct {
	StoreName  string
	GSTEnabled bool
	GSTPercent decimal.Decimal
	UPIID      string
}

// FromMap builds a Store view from raw key/value rows, applying the same
// defaults the seed data uses for anything missing.
func FromMap(m map[string]string) Store {
	s := Store{
		StoreName:  "SmartInventory Enterprise",
		GSTEnabled: true,
		GSTPercent: decimal.NewFromInt(18),
		UPIID:      "merchant@okaxis",
	}
	if v, ok := m[KeyStoreName]; ok && v != "" {
		s.StoreName = v
	}
	if v, ok := m[KeyGSTEnabled]; ok {
		s.GSTEnabled = v == "True" || v == "true"
	}
	if v, ok := m[KeyGSTPercent]; ok {
		if pct, err := decimal.NewFromString(v); err == nil {
			s.GSTPercent = pct
		}
	}
	if v, ok := m[KeyUPIID]; ok && v != "" {
		s.UPIID = v
	}
	return s
}

// Repository defines persistence operations for settings.
type Repository interface {
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}
