package repositories

import "errors"

var (
	// ErrDuplicateIdempotencyKey is returned by OrderRepository.Place when
	// another order with the same (user, idempotency key) pair already
	// exists. The caller resolves it by fetching and returning that order.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")

	// ErrStatusConflict is returned by OrderRepository.UpdateStatus when the
	// order's status no longer matches the expected current status.
	ErrStatusConflict = errors.New("order status changed concurrently")
)
