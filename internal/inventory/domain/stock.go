package domain

import "errors"

// ErrStoreUnavailable marks transport failures against the counter store.
// Depletion is not an error; it surfaces as an unsuccessful PurchaseOutcome.
var ErrStoreUnavailable = errors.New("counter store unavailable")

// DecrementResult is what the store's atomic script reports back.
type DecrementResult struct {
	Decremented bool
	Remaining   int64
}

// PurchaseOutcome is the result of one purchase attempt. Remaining is a
// snapshot taken after the attempt and may lag the true value under load.
type PurchaseOutcome struct {
	Success   bool  `json:"success"`
	Remaining int64 `json:"remaining"`
}
