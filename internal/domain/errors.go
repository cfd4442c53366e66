package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is not active")
	ErrAccountFrozen      = errors.New("account is frozen")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAccountType = errors.New("invalid account type")

	// Transfer errors
	ErrTransferNotFound       = errors.New("transfer not found")
	ErrSameAccount            = errors.New("cannot transfer to same account")
	ErrCurrencyMismatch       = errors.New("cannot transfer between different currencies")
	ErrInvalidStateTransition = errors.New("invalid transfer state transition")

	// Input errors
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrDescriptionTooLong = errors.New("description exceeds maximum length")

	// ErrDuplicateReference is returned by repositories when an insert hits
	// the reference-number uniqueness constraint. The caller regenerates the
	// reference and retries.
	ErrDuplicateReference = errors.New("reference number already exists")

	// ErrReferenceExhausted is returned when reference generation keeps
	// colliding with the persistent uniqueness constraint.
	ErrReferenceExhausted = errors.New("could not generate a unique reference number")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
