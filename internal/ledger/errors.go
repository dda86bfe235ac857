package ledger

import "errors"

// Transition failures. None are retryable; a failed call leaves the record untouched.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidRepayAmount = errors.New("invalid repay amount")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrOverflow           = errors.New("overflow")
	ErrNotListed          = errors.New("listing is not available for rent")
)

// Storage collaborator failures.
var (
	ErrAlreadyExists = errors.New("record already exists")
	ErrNotFound      = errors.New("record not found")
)

// Code returns the stable name of a ledger error, or "" for anything else.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, ErrInvalidRepayAmount):
		return "InvalidRepayAmount"
	case errors.Is(err, ErrInsufficientFunds):
		return "InsufficientFunds"
	case errors.Is(err, ErrInvalidAmount):
		return "InvalidAmount"
	case errors.Is(err, ErrOverflow):
		return "Overflow"
	case errors.Is(err, ErrNotListed):
		return "NotListed"
	case errors.Is(err, ErrAlreadyExists):
		return "AlreadyExists"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	}
	return ""
}
