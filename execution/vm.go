package execution

import "github.com/NethermindEth/juno/core/felt"

// Runner is the narrow contract this package consumes the bytecode
// interpreter through: run a program from a resolved entry point and
// report either the consumed resources or a causal *VMError. Everything
// the running program needs from the outside world goes through the
// Syscalls it is handed, including nested calls into other contracts.
type Runner interface {
	Run(program *Program, entryPoint EntryPoint, calldata []felt.Felt,
		initialGas uint64, limits RunResources, syscalls Syscalls) (RunResult, error)
}

// RunResources bounds one VM run. A zero MaxSteps means no step limit.
// Exhausting the budget is a normal reported failure, not an abort.
type RunResources struct {
	MaxSteps uint64
}

// RunResult is a successful run's outcome.
type RunResult struct {
	Retdata     []felt.Felt
	Resources   ExecutionResources
	GasConsumed uint64
}

// Syscalls is the I/O surface the interpreter calls back into while a
// program runs. The execution layer implements it to record storage
// accesses and to recurse into nested calls.
type Syscalls interface {
	// StorageRead reads a key of the running contract's storage.
	StorageRead(key felt.Felt) (felt.Felt, error)
	// StorageWrite writes a key of the running contract's storage. The
	// pre-write value is recorded as a read.
	StorageWrite(key, value felt.Felt) error
	// CallContract synchronously executes a nested call and returns its
	// retdata. The caller blocks until the nested call completes.
	CallContract(call CallEntryPoint) ([]felt.Felt, error)
	// EmitEvent records an event of the running call.
	EmitEvent(keys, data []felt.Felt) error
	// SendMessageToL1 records an L2 to L1 message of the running call.
	SendMessageToL1(to felt.Felt, payload []felt.Felt) error
}
