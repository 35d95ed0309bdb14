package execution

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NethermindEth/juno/core/felt"
)

// Resolution errors terminate the single invocation that triggered them
// and are never retried.

var ErrInvalidConstructorEntryPointName = errors.New(
	"invalid constructor entry point name; a constructor call must use the 'constructor' selector")

type EntryPointNotFoundError struct {
	Selector felt.Felt
}

func (e *EntryPointNotFoundError) Error() string {
	return fmt.Sprintf("entry point %s not found in contract", e.Selector.String())
}

type DuplicatedEntryPointSelectorError struct {
	Selector felt.Felt
	Type     EntryPointType
}

func (e *DuplicatedEntryPointSelectorError) Error() string {
	return fmt.Sprintf("entry point %s of type %s is duplicated in the contract class",
		e.Selector.String(), e.Type)
}

type UninitializedStorageAddressError struct {
	Address felt.Felt
}

func (e *UninitializedStorageAddressError) Error() string {
	return fmt.Sprintf("requested contract address %s is not deployed", padFelt(&e.Address))
}

// RecursionDepthExceededError reports that a nested call would exceed
// the block's recursion limit. It is a normal, reported execution
// failure, not a process abort.
type RecursionDepthExceededError struct {
	MaxDepth uint64
}

func (e *RecursionDepthExceededError) Error() string {
	return fmt.Sprintf("call recursion depth exceeded the limit of %d", e.MaxDepth)
}

// VMError is the interpreter's causal error report: a message precise
// enough to reproduce the failed check, the failing program counter, and
// the program-counter locations control passed through, most recent call
// last. It covers the interpreter/security error kinds: bad memory
// references, inconsistent builtin deduction, malformed hints, invalid
// crypto inputs, read-only segment writes, scope imbalance and failed
// assertions.
type VMError struct {
	Message   string
	PC        uint64
	Traceback []uint64
}

func (e *VMError) Error() string {
	return e.Message
}

// VMExecutionError carries a VM failure together with the accumulated
// multi-contract traceback. Wrapping never changes the underlying error,
// only its presentation.
type VMExecutionError struct {
	Trace string
	cause *VMError
}

func (e *VMExecutionError) Error() string {
	return "virtual machine execution failed:\n" + e.Trace
}

func (e *VMExecutionError) Unwrap() error {
	return e.cause
}

// newVMExecutionError renders the failing call's own traceback block
// and, when the failure originated in a deeper contract, appends the
// already-assembled inner trace after a blank line. Blocks therefore
// read outermost contract first, with the innermost failing instruction
// closing the trace.
func newVMExecutionError(storageAddress *felt.Felt, vmErr *VMError, inner *VMExecutionError) *VMExecutionError {
	trace := traceFrame(storageAddress, vmErr)
	cause := vmErr
	if inner != nil {
		trace += "\n" + inner.Trace
		cause = inner.cause
	}
	return &VMExecutionError{Trace: trace, cause: cause}
}

// traceFrame renders one contract boundary block of a traceback.
func traceFrame(storageAddress *felt.Felt, vmErr *VMError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error in the called contract (%s):\n", padFelt(storageAddress))
	fmt.Fprintf(&b, "Error at pc=0:%d:\n", vmErr.PC)
	b.WriteString(vmErr.Message)
	b.WriteByte('\n')
	if len(vmErr.Traceback) > 0 {
		b.WriteString("Cairo traceback (most recent call last):\n")
		for _, pc := range vmErr.Traceback {
			fmt.Fprintf(&b, "Unknown location (pc=0:%d)\n", pc)
		}
	}
	return b.String()
}

// padFelt formats a felt as a full-width 64-digit hex string, the form
// tracebacks use for contract addresses.
func padFelt(f *felt.Felt) string {
	b := f.Bytes()
	return fmt.Sprintf("0x%x", b[:])
}
