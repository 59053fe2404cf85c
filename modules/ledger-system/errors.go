package ledgerSystem

import "errors"

var (
	ErrAlreadyInitialized       = errors.New("ledger already initialized")
	ErrNotInitialized           = errors.New("ledger not initialized")
	ErrInvalidBlockSequence     = errors.New("block number does not follow the last recorded block")
	ErrMissingPriorToken        = errors.New("no prior token supply version")
	ErrMissingPriorState        = errors.New("no prior account state")
	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrInsufficientIssuedSupply = errors.New("insufficient issued supply")
	ErrArithmeticOverflow       = errors.New("arithmetic overflow")

	// ErrStateExists means a versioned record was about to be overwritten.
	// Pointers and records are written together, so this only happens on a
	// corrupted store.
	ErrStateExists = errors.New("versioned record already exists")
)
