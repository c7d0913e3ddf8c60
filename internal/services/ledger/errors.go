package ledger

import "errors"

// Service errors
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrMissingReference    = errors.New("missing transaction reference")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateReference  = errors.New("duplicate transaction reference")
	ErrWalletNotFound      = errors.New("wallet not found")
)
