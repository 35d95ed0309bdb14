package execution

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/juno/utils"
	"github.com/massalabs/blockifier/api"
)

// CallType distinguishes a regular call from a delegate (library) call.
type CallType int

const (
	CallTypeCall CallType = iota
	CallTypeDelegate
)

func (c CallType) String() string {
	switch c {
	case CallTypeCall:
		return "CALL"
	case CallTypeDelegate:
		return "DELEGATE"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// CallEntryPoint is a request to run one entry point of a contract.
type CallEntryPoint struct {
	// ClassHash pins the class to run. Nil means resolve it from the
	// storage address.
	ClassHash *felt.Felt `json:"class_hash,omitempty"`

	// CodeAddress is absent for library calls and for outermost calls
	// triggered by the transaction itself.
	CodeAddress *felt.Felt `json:"code_address,omitempty"`

	EntryPointType     EntryPointType `json:"entry_point_type"`
	EntryPointSelector felt.Felt      `json:"entry_point_selector"`
	Calldata           []felt.Felt    `json:"calldata"`

	// StorageAddress is the contract whose storage the call reads and
	// writes.
	StorageAddress felt.Felt `json:"storage_address"`
	CallerAddress  felt.Felt `json:"caller_address"`
	CallType       CallType  `json:"call_type"`

	// InitialGas is assumed to fit in 64 bits.
	InitialGas uint64 `json:"initial_gas"`
}

// ExecutionContext carries the per-transaction data shared by every
// call in one execution: block parameters, the interpreter, the mode
// gating validation-only restrictions, and the recursion depth.
type ExecutionContext struct {
	BlockContext *api.BlockContext
	Runner       Runner
	Mode         api.ExecutionMode
	Log          utils.SimpleLogger

	currentDepth uint64

	// Transaction-wide ordering counters for events and L2 to L1
	// messages.
	nEmittedEvents    uint64
	nSentMessagesToL1 uint64
}

func NewExecutionContext(
	blockContext *api.BlockContext,
	runner Runner,
	mode api.ExecutionMode,
	log utils.SimpleLogger,
) *ExecutionContext {
	if log == nil {
		log = utils.NewNopZapLogger()
	}
	return &ExecutionContext{
		BlockContext: blockContext,
		Runner:       runner,
		Mode:         mode,
		Log:          log,
	}
}

// Execute resolves the call's class, dispatches it to the interpreter
// and returns the resulting call tree. Nested calls issued through the
// system call interface recurse back into Execute, so the returned
// CallInfo's InnerCalls mirror the dynamic call tree.
//
// An interpreter fault surfaces as a *VMExecutionError whose trace
// names every contract on the call stack, outermost first.
func (c *CallEntryPoint) Execute(s State, execCtx *ExecutionContext) (*CallInfo, error) {
	execCtx.currentDepth++
	if execCtx.currentDepth > execCtx.BlockContext.MaxRecursionDepth {
		execCtx.currentDepth--
		return nil, &RecursionDepthExceededError{MaxDepth: execCtx.BlockContext.MaxRecursionDepth}
	}
	defer func() { execCtx.currentDepth-- }()

	storageClassHash, err := s.ContractClassHash(c.StorageAddress)
	if err != nil {
		return nil, err
	}
	if storageClassHash.IsZero() {
		return nil, &UninitializedStorageAddressError{Address: c.StorageAddress}
	}

	classHash := storageClassHash
	if c.ClassHash != nil {
		classHash = *c.ClassHash
	}

	class, err := s.Class(classHash)
	if err != nil {
		return nil, err
	}

	entryPoint, err := class.EntryPoint(c)
	if err != nil {
		return nil, err
	}

	handler := newCallRecorder(c, s, execCtx)
	result, err := execCtx.Runner.Run(
		class.Program(),
		entryPoint,
		c.Calldata,
		c.InitialGas,
		RunResources{MaxSteps: uint64(execCtx.BlockContext.MaxSteps(execCtx.Mode))},
		handler,
	)
	if err != nil {
		var vmErr *VMError
		if errors.As(err, &vmErr) {
			execCtx.Log.Debugw("entry point run failed",
				"storageAddress", c.StorageAddress.String(),
				"selector", c.EntryPointSelector.String(),
				"err", vmErr.Message,
			)
			return nil, newVMExecutionError(&c.StorageAddress, vmErr, handler.innerFailure)
		}
		return nil, err
	}

	info := &CallInfo{
		Call:      *c,
		Execution: CallExecution{
			Retdata:        result.Retdata,
			Events:         handler.events,
			L2ToL1Messages: handler.messages,
			GasConsumed:    result.GasConsumed,
		},
		Resources:           result.Resources,
		InnerCalls:          handler.innerCalls,
		StorageReadValues:   handler.readValues,
		AccessedStorageKeys: handler.accessedKeys,
	}
	// Record which class actually served the call, even when it was
	// resolved from the storage address.
	resolved := classHash
	info.Call.ClassHash = &resolved
	return info, nil
}
