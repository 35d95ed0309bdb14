package transaction

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/juno/utils"
	"github.com/massalabs/blockifier/abi"
	"github.com/massalabs/blockifier/api"
	"github.com/massalabs/blockifier/execution"
	"github.com/massalabs/blockifier/fee"
	"github.com/massalabs/blockifier/state"
)

// Execute runs one transaction through its phases (validate, execute,
// fee transfer) and assembles the execution info.
//
// A rejected transaction returns an error and leaves the state view in
// an undefined partial condition; the caller discards the view. A
// reverted transaction returns info with RevertError set: its execute
// phase effects are rolled back, its validate effects kept, and the fee
// still charged.
func Execute(
	tx Transaction,
	s *state.CachedState,
	blockContext *api.BlockContext,
	vm execution.Runner,
	flags api.ExecutionFlags,
	log utils.SimpleLogger,
) (*TransactionExecutionInfo, error) {
	if log == nil {
		log = utils.NewNopZapLogger()
	}
	r := &runner{
		state:        s,
		blockContext: blockContext,
		vm:           vm,
		flags:        flags,
		log:          log,
		gas:          newGasCounter(initialGasBudget),
	}
	return r.run(tx)
}

type runner struct {
	state        *state.CachedState
	blockContext *api.BlockContext
	vm           execution.Runner
	flags        api.ExecutionFlags
	log          utils.SimpleLogger
	gas          *gasCounter
}

func (r *runner) run(tx Transaction) (*TransactionExecutionInfo, error) {
	if l1Tx, ok := tx.(*L1HandlerTransaction); ok {
		return r.runL1Handler(l1Tx)
	}
	return r.runAccountTransaction(tx)
}

// runL1Handler executes an L1-originated call. No validation and no fee
// transfer happen on L2; the fee was paid on L1.
func (r *runner) runL1Handler(tx *L1HandlerTransaction) (*TransactionExecutionInfo, error) {
	call := &execution.CallEntryPoint{
		EntryPointType:     execution.EntryPointTypeL1Handler,
		EntryPointSelector: tx.EntryPointSelector,
		Calldata:           tx.Calldata,
		StorageAddress:     tx.ContractAddress,
		CallType:           execution.CallTypeCall,
		InitialGas:         r.gas.remaining,
	}
	callInfo, err := r.executeCall(call, api.ModeExecute)
	if err != nil {
		return nil, err
	}

	resources := r.chargedResources(callInfo)
	return &TransactionExecutionInfo{
		ExecuteCallInfo: callInfo,
		ActualFee:       &felt.Zero,
		ActualResources: resources,
	}, nil
}

func (r *runner) runAccountTransaction(tx Transaction) (*TransactionExecutionInfo, error) {
	info := &TransactionExecutionInfo{}

	// The account does not exist before a deploy runs, so bind its class
	// first; both the validation call and the constructor need it.
	if deployTx, ok := tx.(*DeployAccountTransaction); ok {
		if err := r.state.SetClassHashAt(deployTx.SenderAddress, deployTx.ClassHash); err != nil {
			return nil, err
		}
	}

	validateInfo, err := r.validate(tx)
	if err != nil {
		return nil, err
	}
	info.ValidateCallInfo = validateInfo

	if err := r.state.IncrementNonce(tx.Context().SenderAddress); err != nil {
		return nil, err
	}

	executeInfo, extraResources, revertErr, err := r.execute(tx)
	if err != nil {
		return nil, err
	}
	if revertErr != nil {
		// The execute phase was rolled back; only validation is charged.
		r.log.Debugw("transaction reverted", "type", tx.Type().String(), "err", *revertErr)
		info.RevertError = revertErr
	} else {
		info.ExecuteCallInfo = executeInfo
	}

	resources := r.chargedResources(info.ValidateCallInfo, info.ExecuteCallInfo)
	if extraResources != nil && revertErr == nil {
		resources.Add(extraResources.ToMapping())
	}
	info.ActualResources = resources

	actualFee, err := fee.CalculateTxFee(r.blockContext, resources)
	if err != nil {
		return nil, fmt.Errorf("transaction is not chargeable: %w", err)
	}
	info.ActualFee = actualFee

	feeTransferInfo, err := r.chargeFee(tx.Context(), actualFee)
	if err != nil {
		return nil, err
	}
	info.FeeTransferCallInfo = feeTransferInfo
	return info, nil
}

// validate runs the variant's validation entry point against the sender
// account under the validation mode's tighter step budget. V0
// transactions predate validation and skip it.
func (r *runner) validate(tx Transaction) (*execution.CallInfo, error) {
	ctx := tx.Context()
	if !r.flags.Validate || ctx.IsV0() {
		return nil, nil
	}

	var entryPointName string
	var calldata []felt.Felt
	switch tx := tx.(type) {
	case *InvokeTransaction:
		entryPointName = abi.ValidateEntryPointName
		calldata = tx.Calldata
	case *DeclareTransaction:
		entryPointName = abi.ValidateDeclareEntryPointName
		calldata = []felt.Felt{tx.ClassHash}
	case *DeployAccountTransaction:
		entryPointName = abi.ValidateDeployEntryPointName
		calldata = append([]felt.Felt{tx.ClassHash, tx.ContractAddressSalt}, tx.ConstructorCalldata...)
	default:
		return nil, fmt.Errorf("unknown transaction type %s", tx.Type())
	}

	call := &execution.CallEntryPoint{
		EntryPointType:     execution.EntryPointTypeExternal,
		EntryPointSelector: abi.SelectorFromName(entryPointName),
		Calldata:           calldata,
		StorageAddress:     ctx.SenderAddress,
		CallType:           execution.CallTypeCall,
		InitialGas:         r.gas.remaining,
	}
	callInfo, err := r.executeCall(call, api.ModeValidate)
	if err != nil {
		return nil, err
	}
	return callInfo, nil
}

// execute runs the variant's execution phase. For revertible variants
// an interpreter failure rolls the phase back and reports the trace as
// the revert reason instead of rejecting the transaction.
func (r *runner) execute(tx Transaction) (callInfo *execution.CallInfo, extra *execution.ExecutionResources, revertError *string, err error) {
	ctx := tx.Context()
	switch tx := tx.(type) {
	case *InvokeTransaction:
		call := &execution.CallEntryPoint{
			EntryPointType:     execution.EntryPointTypeExternal,
			EntryPointSelector: abi.SelectorFromName(abi.ExecuteEntryPointName),
			Calldata:           tx.Calldata,
			StorageAddress:     ctx.SenderAddress,
			CallType:           execution.CallTypeCall,
			InitialGas:         r.gas.remaining,
		}
		callInfo, revertError, err = r.executeRevertible(call)
		return callInfo, nil, revertError, err

	case *DeclareTransaction:
		if tx.Class == nil {
			return nil, nil, nil, errors.New("declare transaction carries no class")
		}
		if err := r.state.DeclareClass(tx.ClassHash, tx.Class); err != nil {
			return nil, nil, nil, err
		}
		// Declares have no execute call; they are charged the estimated
		// cost of hashing the class content.
		hashResources := tx.Class.EstimateCasmHashComputationResources()
		return nil, &hashResources, nil, nil

	case *DeployAccountTransaction:
		call := &execution.CallEntryPoint{
			EntryPointType:     execution.EntryPointTypeConstructor,
			EntryPointSelector: abi.ConstructorSelector,
			Calldata:           tx.ConstructorCalldata,
			StorageAddress:     ctx.SenderAddress,
			CallType:           execution.CallTypeCall,
			InitialGas:         r.gas.remaining,
		}
		callInfo, err := r.executeCall(call, api.ModeExecute)
		return callInfo, nil, nil, err

	default:
		return nil, nil, nil, fmt.Errorf("unknown transaction type %s", tx.Type())
	}
}

// executeCall runs one call non-revertibly: any failure rejects the
// transaction.
func (r *runner) executeCall(call *execution.CallEntryPoint, mode api.ExecutionMode) (*execution.CallInfo, error) {
	execCtx := execution.NewExecutionContext(r.blockContext, r.vm, mode, r.log)
	callInfo, err := call.Execute(r.state, execCtx)
	if err != nil {
		classHash := felt.Zero
		if call.ClassHash != nil {
			classHash = *call.ClassHash
		}
		return nil, &ExecutionError{
			Err:            err,
			ClassHash:      classHash,
			StorageAddress: call.StorageAddress,
			Selector:       call.EntryPointSelector,
		}
	}
	if err := r.gas.spend(callInfo.Execution.GasConsumed); err != nil {
		return nil, err
	}
	return callInfo, nil
}

// executeRevertible runs one call in a nested state scope. On an
// interpreter failure the scope is dropped, the trace becomes the
// revert reason and the transaction continues to fee charging. Any
// other failure rejects the transaction.
func (r *runner) executeRevertible(call *execution.CallEntryPoint) (*execution.CallInfo, *string, error) {
	scope, err := state.NewTransactional(r.state)
	if err != nil {
		return nil, nil, err
	}

	execCtx := execution.NewExecutionContext(r.blockContext, r.vm, api.ModeExecute, r.log)
	callInfo, err := call.Execute(scope, execCtx)
	if err != nil {
		var execErr *execution.VMExecutionError
		if errors.As(err, &execErr) {
			reason := execErr.Error()
			return nil, &reason, nil
		}
		return nil, nil, &ExecutionError{
			Err:            err,
			StorageAddress: call.StorageAddress,
			Selector:       call.EntryPointSelector,
		}
	}

	if err := scope.Commit(); err != nil {
		return nil, nil, err
	}
	if err := r.gas.spend(callInfo.Execution.GasConsumed); err != nil {
		return nil, nil, err
	}
	return callInfo, nil, nil
}

// chargeFee computes and executes the fee transfer. Transactions run
// without fee charging report the fee but move no tokens, and query runs
// additionally skip the max-fee bound so estimation works with a zero
// max fee.
func (r *runner) chargeFee(ctx *AccountTransactionContext, actualFee *felt.Felt) (*execution.CallInfo, error) {
	if !r.flags.OnlyQuery {
		if err := assertFeeInBounds(ctx, actualFee); err != nil {
			return nil, err
		}
	}
	if !r.flags.ChargeFee || r.flags.OnlyQuery || actualFee.IsZero() {
		return nil, nil
	}

	call := buildFeeTransferCall(r.blockContext, ctx.SenderAddress, actualFee)
	return r.executeCall(call, api.ModeExecute)
}

// chargedResources folds the present call trees into the transaction's
// resource mapping: the VM resources plus the direct L1 gas cost of the
// L2 to L1 messages the trees sent.
func (r *runner) chargedResources(callInfos ...*execution.CallInfo) execution.ResourcesMapping {
	var total execution.ExecutionResources
	var messageGas uint64
	for _, callInfo := range callInfos {
		if callInfo == nil {
			continue
		}
		callInfo.SumResources(&total)
		for call := range callInfo.All() {
			for _, message := range call.Execution.L2ToL1Messages {
				words := uint64(abi.L1MessageSegmentOverheadWords + len(message.Payload))
				messageGas += words * abi.SharpGasPerMemoryWord
			}
		}
	}

	resources := total.ToMapping()
	resources[abi.GasUsage] = messageGas
	return resources
}
