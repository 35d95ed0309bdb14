package api

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
)

// BlockContext carries the per-block configuration every transaction in
// the block reads: identity of the block, fee parameters and execution
// limits. It is built once per block and never mutated afterwards.
type BlockContext struct {
	ChainID        string
	BlockNumber    uint64
	BlockTimestamp uint64

	// Fee related.
	SequencerAddress felt.Felt
	FeeTokenAddress  felt.Felt
	// VMResourceFeeCost weighs each VM resource in L1 gas per unit.
	VMResourceFeeCost map[string]Fixed
	// GasPrice is the L1 gas price in wei. Must fit in 128 bits.
	GasPrice *uint256.Int

	// Limits.
	InvokeTxMaxNSteps uint32
	ValidateMaxNSteps uint32
	MaxRecursionDepth uint64
}

// ExecutionMode selects which step limit applies to a run.
type ExecutionMode uint8

const (
	ModeExecute ExecutionMode = iota
	ModeValidate
)

func (m ExecutionMode) String() string {
	switch m {
	case ModeExecute:
		return "execute"
	case ModeValidate:
		return "validate"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(m))
	}
}

// MaxSteps returns the step budget for the given execution mode.
func (b *BlockContext) MaxSteps(mode ExecutionMode) uint32 {
	if mode == ModeValidate {
		return b.ValidateMaxNSteps
	}
	return b.InvokeTxMaxNSteps
}

var maxGasPrice = func() *uint256.Int {
	max := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	return max.SubUint64(max, 1)
}()

// Validate checks the invariants a block context must satisfy before any
// transaction of the block is executed against it.
func (b *BlockContext) Validate() error {
	if b.ChainID == "" {
		return errors.New("block context: empty chain id")
	}
	if b.GasPrice == nil {
		return errors.New("block context: nil gas price")
	}
	if b.GasPrice.Gt(maxGasPrice) {
		return fmt.Errorf("block context: gas price %s exceeds 128 bits", b.GasPrice)
	}
	if b.MaxRecursionDepth == 0 {
		return errors.New("block context: zero max recursion depth")
	}
	return nil
}
