package application

import (
	"context"
	"time"

	"github.com/dmehra2102/flash-sale-inventory/internal/inventory/domain"
)

// Service exposes the two purchase paths over a shared counter. It holds no
// mutable state of its own; every request may construct a fresh one.
type Service struct {
	store       CounterStore
	stockKey    string
	unsafeDelay time.Duration
}

func NewService(store CounterStore, stockKey string, unsafeDelay time.Duration) *Service {
	return &Service{store: store, stockKey: stockKey, unsafeDelay: unsafeDelay}
}

// PurchaseSafe decrements the counter through the store's atomic script.
// One round trip, one linearization slot; the counter never goes negative.
func (s *Service) PurchaseSafe(ctx context.Context) (domain.PurchaseOutcome, error) {
	res, err := s.store.DecrementIfPositive(ctx, s.stockKey)
	if err != nil {
		return domain.PurchaseOutcome{}, err
	}
	return domain.PurchaseOutcome{Success: res.Decremented, Remaining: res.Remaining}, nil
}

// PurchaseUnsafe is the lost-update demonstration: it reads the counter,
// decides in the client, and writes back a value computed from the stale
// read. Concurrent callers overwrite each other and the stock oversells.
// Intentionally broken; do not route real traffic here.
func (s *Service) PurchaseUnsafe(ctx context.Context) (domain.PurchaseOutcome, error) {
	stock, ok, err := s.store.Get(ctx, s.stockKey)
	if err != nil {
		return domain.PurchaseOutcome{}, err
	}
	if !ok || stock <= 0 {
		return domain.PurchaseOutcome{Success: false, Remaining: 0}, nil
	}

	// Widens the window between read and write so the race reproduces
	// reliably under load.
	if s.unsafeDelay > 0 {
		select {
		case <-time.After(s.unsafeDelay):
		case <-ctx.Done():
			return domain.PurchaseOutcome{}, ctx.Err()
		}
	}

	if err := s.store.Set(ctx, s.stockKey, stock-1); err != nil {
		return domain.PurchaseOutcome{}, err
	}
	return domain.PurchaseOutcome{Success: true, Remaining: stock - 1}, nil
}

// Stock returns the current counter value, absent normalized to zero.
func (s *Service) Stock(ctx context.Context) (int64, error) {
	stock, ok, err := s.store.Get(ctx, s.stockKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return stock, nil
}

// Reset overwrites the counter. Callers validate value >= 0.
func (s *Service) Reset(ctx context.Context, value int64) error {
	return s.store.Set(ctx, s.stockKey, value)
}
