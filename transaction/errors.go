package transaction

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
)

// ExecutionError wraps a phase failure with the contract context it
// happened in, so a rejected transaction reports which call failed.
type ExecutionError struct {
	Err            error
	ClassHash      felt.Felt
	StorageAddress felt.Felt
	Selector       felt.Felt
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("transaction execution failed in contract %s (class %s, selector %s): %v",
		e.StorageAddress.String(), e.ClassHash.String(), e.Selector.String(), e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// MaxFeeExceededError rejects a transaction whose computed fee is above
// what the sender agreed to pay.
type MaxFeeExceededError struct {
	ActualFee *felt.Felt
	MaxFee    *felt.Felt
}

func (e *MaxFeeExceededError) Error() string {
	return fmt.Sprintf("actual fee %s exceeded the declared max fee %s",
		e.ActualFee.String(), e.MaxFee.String())
}
