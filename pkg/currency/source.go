package currency

import (
	"context"
	"time"
)

// Quote is an exchange rate for one currency pair. UpdatedAt is zero when the
// source does not know when the rate was last refreshed.
type Quote struct {
	Rate      float64
	UpdatedAt time.Time
}

// RateSource obtains the rate multiplier for converting from one currency to
// another. Implementations classify unsupported codes and dependency failures
// through the fault taxonomy.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (Quote, error)
}
