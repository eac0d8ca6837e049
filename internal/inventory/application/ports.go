package application

import (
	"context"

	"github.com/dmehra2102/flash-sale-inventory/internal/inventory/domain"
)

// CounterStore is the outbound port to the shared stock counter. Every call
// is one round trip to the store; the store linearizes them.
type CounterStore interface {
	// Get returns the counter value and whether the key exists.
	Get(ctx context.Context, key string) (int64, bool, error)
	// Set overwrites the counter unconditionally. Reset only.
	Set(ctx context.Context, key string, value int64) error
	// DecrementIfPositive runs the atomic check-and-decrement script.
	DecrementIfPositive(ctx context.Context, key string) (domain.DecrementResult, error)
}
