package domain

import "errors"

var (
	// ErrSyncInProgress is returned when a historical sync is requested while
	// another one is still running
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrSubscriptionFailed is returned when subscription to contract events fails
	ErrSubscriptionFailed = errors.New("subscription failed")

	// ErrResourceNotFound is returned when a resource is not found
	ErrResourceNotFound = errors.New("resource not found")

	// ErrAccessTokenNotFound is returned when an access token is not found
	ErrAccessTokenNotFound = errors.New("access token not found")

	// ErrUnsupportedEvent is returned when the contract deployment does not
	// support the requested event
	ErrUnsupportedEvent = errors.New("event not supported by contract deployment")

	// Write-path preflight errors
	ErrNotOwner            = errors.New("signer is not the token owner")
	ErrNotApproved         = errors.New("marketplace is not approved for this token")
	ErrAlreadyListed       = errors.New("token is already listed")
	ErrListingInactive     = errors.New("token is not listed")
	ErrPriceMismatch       = errors.New("price does not match the active listing")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSignatureMismatch   = errors.New("signature does not match the expected signer")
	ErrAccessUnavailable   = errors.New("access is not for sale on this resource")
	ErrAccessInactive      = errors.New("access token is not active")
	ErrAccessExpired       = errors.New("access token has expired")
	ErrAccessExhausted     = errors.New("access token has no remaining uses")
	ErrInvalidRoyalty      = errors.New("royalty percentage out of range")
)

// TxErrorKind classifies transaction submission failures into the categories
// surfaced to API clients
type TxErrorKind string

const (
	TxErrorInsufficientFunds TxErrorKind = "insufficient_funds"
	TxErrorGas               TxErrorKind = "gas"
	TxErrorReverted          TxErrorKind = "reverted"
	TxErrorUnknown           TxErrorKind = "unknown"
)

// TxError wraps a transaction failure with its classification
type TxError struct {
	Kind TxErrorKind
	Err  error
}

func (e *TxError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *TxError) Unwrap() error {
	return e.Err
}

// NewTxError builds a classified transaction error
func NewTxError(kind TxErrorKind, err error) *TxError {
	return &TxError{Kind: kind, Err: err}
}
