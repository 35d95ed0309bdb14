package transaction

import (
	"github.com/NethermindEth/juno/core/felt"
	"github.com/massalabs/blockifier/abi"
	"github.com/massalabs/blockifier/api"
	"github.com/massalabs/blockifier/execution"
)

// buildFeeTransferCall constructs the ERC20 transfer moving the fee
// from the sender to the sequencer: `transfer(sequencer, amount_lo,
// amount_hi)` on the fee token, with the sender as caller. The high
// word is zero since fees fit in one felt.
func buildFeeTransferCall(blockContext *api.BlockContext, sender felt.Felt, actualFee *felt.Felt) *execution.CallEntryPoint {
	return &execution.CallEntryPoint{
		EntryPointType:     execution.EntryPointTypeExternal,
		EntryPointSelector: abi.SelectorFromName(abi.TransferEntryPointName),
		Calldata: []felt.Felt{
			blockContext.SequencerAddress,
			*actualFee,
			felt.Zero,
		},
		StorageAddress: blockContext.FeeTokenAddress,
		CallerAddress:  sender,
		CallType:       execution.CallTypeCall,
		InitialGas:     initialGasBudget,
	}
}

// assertFeeInBounds enforces the sender's declared fee cap. A nil cap
// means the sender accepts any fee.
func assertFeeInBounds(ctx *AccountTransactionContext, actualFee *felt.Felt) error {
	if ctx.MaxFee == nil {
		return nil
	}
	if actualFee.Cmp(ctx.MaxFee) > 0 {
		return &MaxFeeExceededError{ActualFee: actualFee, MaxFee: ctx.MaxFee}
	}
	return nil
}
