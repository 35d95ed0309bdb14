package transaction

import (
	"github.com/NethermindEth/juno/core/felt"
	"github.com/massalabs/blockifier/execution"
)

// AccountTransactionContext is the account information of a
// transaction's outermost call.
type AccountTransactionContext struct {
	TransactionHash felt.Felt   `json:"transaction_hash"`
	MaxFee          *felt.Felt  `json:"max_fee,omitempty"`
	Version         uint64      `json:"version"`
	Signature       []felt.Felt `json:"signature"`
	Nonce           felt.Felt   `json:"nonce"`
	SenderAddress   felt.Felt   `json:"sender_address"`
}

// IsV0 reports whether the transaction predates validation. V0 accounts
// run no validate phase.
func (c *AccountTransactionContext) IsV0() bool {
	return c.Version == 0
}

// TransactionExecutionInfo is the information gathered by executing one
// transaction. Field order is the canonical interchange order.
type TransactionExecutionInfo struct {
	// ValidateCallInfo is nil for L1 handler transactions.
	ValidateCallInfo *execution.CallInfo `json:"validate_call_info"`
	// ExecuteCallInfo is nil for declare transactions.
	ExecuteCallInfo *execution.CallInfo `json:"execute_call_info"`
	// FeeTransferCallInfo is nil for L1 handler transactions and when no
	// fee was charged.
	FeeTransferCallInfo *execution.CallInfo `json:"fee_transfer_call_info"`
	// ActualFee is the fee charged, in wei.
	ActualFee *felt.Felt `json:"actual_fee"`
	// ActualResources is what the transaction is charged for, including
	// the direct L1 gas component.
	ActualResources execution.ResourcesMapping `json:"actual_resources"`
	// RevertError is set iff the transaction was reverted. A reverted
	// transaction is still charged.
	RevertError *string `json:"revert_error"`
}

// NonOptionalCallInfos returns the present top-level call trees, in
// validate, execute, fee-transfer order.
func (info *TransactionExecutionInfo) NonOptionalCallInfos() []*execution.CallInfo {
	var calls []*execution.CallInfo
	for _, call := range []*execution.CallInfo{
		info.ValidateCallInfo,
		info.ExecuteCallInfo,
		info.FeeTransferCallInfo,
	} {
		if call != nil {
			calls = append(calls, call)
		}
	}
	return calls
}

// ExecutedClassHashes returns the union of class hashes visited by the
// present call trees.
func (info *TransactionExecutionInfo) ExecutedClassHashes() map[felt.Felt]struct{} {
	hashes := make(map[felt.Felt]struct{})
	for _, call := range info.NonOptionalCallInfos() {
		call.ExecutedClassHashes(hashes)
	}
	return hashes
}

func (info *TransactionExecutionInfo) IsReverted() bool {
	return info.RevertError != nil
}
