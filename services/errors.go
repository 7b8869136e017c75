package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientBalance: a transfer, withdrawal or reinvestment exceeds
	// the sender's derived ledger balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrAlreadyProcessed: a state transition was attempted on a record that
	// already left the eligible state (lost compare-and-swap).
	ErrAlreadyProcessed = errors.New("request already processed")

	ErrSelfTransfer = errors.New("cannot transfer to your own account")
)

// ValidationError rejects malformed input before any mutation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
