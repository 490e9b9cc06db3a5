// Package common defines shared constants and sentinel errors used across
// the notemint server layers. Callers should use errors.Is / errors.As to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrFatalStorage marks storage failures that must not be handled
	// gracefully (identifier counter corruption, failed migrations).
	ErrFatalStorage = errors.New("fatal storage error")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorForbidden  = errors.New("forbidden")
	ErrorAnonymous  = errors.New("anonymous principal not allowed")
	ErrorValidation = errors.New("validation error")

	// Note lifecycle errors.
	ErrNoteHasNft = errors.New("cannot delete note that has been minted to an NFT")

	// Marketplace errors.
	ErrNftNotListed     = errors.New("NFT not listed for sale")
	ErrNftPriceInvalid  = errors.New("NFT price is invalid")
	ErrPriceBelowFee    = errors.New("NFT price too low to cover administration fee")
	ErrPurchaseConflict = errors.New("purchase conflict: listing changed during settlement")

	// Key-release errors. One opaque value covers both "no such note" and
	// "not allowed to read it": unauthorized key requests must not learn
	// which of the two applied.
	ErrKeyReleaseDenied = errors.New("unauthorized key request")

	// Profile errors.
	ErrUsernameTaken = errors.New("username is already taken")
	ErrUsernameEmpty = errors.New("username cannot be empty")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// SizeExceededError reports a note payload over the current ceiling. Both
// lengths are part of the message so clients can show a usable limit.
type SizeExceededError struct {
	Actual int
	Limit  int
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("note too large: %d bytes exceeds limit of %d bytes", e.Actual, e.Limit)
}

// Is lets errors.Is(err, ErrorValidation) match size errors as well.
func (e *SizeExceededError) Is(target error) bool {
	return target == ErrorValidation
}

// FeeTransferError marks the recognized partial-failure state of a purchase:
// the seller payment already settled on the ledger but collecting the
// administration fee did not. It is not rolled back automatically.
type FeeTransferError struct {
	Err error
}

func (e *FeeTransferError) Error() string {
	return fmt.Sprintf("admin fee transfer failed after seller payment settled: %v", e.Err)
}

func (e *FeeTransferError) Unwrap() error { return e.Err }
