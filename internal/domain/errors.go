package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrMutationInFlight = errors.New("mutation already in flight")
	ErrLockHeld         = errors.New("lock already held")
	ErrRateLimited      = errors.New("rate limited")
	ErrNoWallet         = errors.New("no wallet configured")
	ErrTxReverted       = errors.New("transaction reverted")
)
