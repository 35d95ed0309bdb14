package execution

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/massalabs/blockifier/abi"
)

// EntryPointType partitions a class's entry points.
type EntryPointType uint8

const (
	EntryPointTypeConstructor EntryPointType = iota
	EntryPointTypeExternal
	EntryPointTypeL1Handler
)

func (t EntryPointType) String() string {
	switch t {
	case EntryPointTypeConstructor:
		return "CONSTRUCTOR"
	case EntryPointTypeExternal:
		return "EXTERNAL"
	case EntryPointTypeL1Handler:
		return "L1_HANDLER"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

func (t EntryPointType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *EntryPointType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "CONSTRUCTOR":
		*t = EntryPointTypeConstructor
	case "EXTERNAL":
		*t = EntryPointTypeExternal
	case "L1_HANDLER":
		*t = EntryPointTypeL1Handler
	default:
		return fmt.Errorf("unknown entry point type %q", text)
	}
	return nil
}

// EntryPoint identifies one callable function of a class: its selector
// and the bytecode offset execution starts from. Builtins is populated
// for Cairo 1 classes only.
type EntryPoint struct {
	Selector felt.Felt
	Offset   uint64
	Builtins []string
}

// ContractClass is the runnable representation of a declared class.
// Exactly two variants exist: the legacy program-based ContractClassV0
// and the compiled-bytecode ContractClassV1. Instances are immutable and
// shared by pointer; the instruction stream is never copied per call.
type ContractClass interface {
	// Version is 0 for legacy classes and 1 for compiled classes.
	Version() uint64
	// ConstructorSelector returns the declared constructor's selector,
	// or nil if the class declares none.
	ConstructorSelector() *felt.Felt
	// EntryPoint resolves the entry point the call targets. Resolution
	// fails on a missing selector, an ambiguous (duplicated) selector,
	// or a constructor call that does not carry the canonical
	// constructor selector.
	EntryPoint(call *CallEntryPoint) (EntryPoint, error)
	// EstimateCasmHashComputationResources is the variant's cost model
	// for hashing the class content, charged to declare transactions
	// without performing the hash.
	EstimateCasmHashComputationResources() ExecutionResources
	// Program is the interpreter-facing program to run.
	Program() *Program
}

// resolveEntryPoint applies the shared tie-break policy: a constructor
// call must carry the canonical constructor selector; zero matches fail,
// one match wins, several matches are an ambiguity error rather than a
// silent first pick.
func resolveEntryPoint(entryPointsByType map[EntryPointType][]EntryPoint, call *CallEntryPoint) (EntryPoint, error) {
	if call.EntryPointType == EntryPointTypeConstructor && !call.EntryPointSelector.Equal(&abi.ConstructorSelector) {
		return EntryPoint{}, ErrInvalidConstructorEntryPointName
	}

	var matches []EntryPoint
	for _, entryPoint := range entryPointsByType[call.EntryPointType] {
		if entryPoint.Selector.Equal(&call.EntryPointSelector) {
			matches = append(matches, entryPoint)
		}
	}

	switch len(matches) {
	case 0:
		return EntryPoint{}, &EntryPointNotFoundError{Selector: call.EntryPointSelector}
	case 1:
		return matches[0], nil
	default:
		return EntryPoint{}, &DuplicatedEntryPointSelectorError{
			Selector: call.EntryPointSelector,
			Type:     call.EntryPointType,
		}
	}
}

func constructorSelector(entryPointsByType map[EntryPointType][]EntryPoint) *felt.Felt {
	constructors := entryPointsByType[EntryPointTypeConstructor]
	if len(constructors) == 0 {
		return nil
	}
	selector := constructors[0].Selector
	return &selector
}

// ContractClassV0 is a legacy program-based class.
type ContractClassV0 struct {
	program           *Program
	entryPointsByType map[EntryPointType][]EntryPoint
}

// NewContractClassV0 builds a legacy class from an already-parsed
// program. Duplicate selectors are accepted verbatim; they surface as
// resolution errors, since classes may be deserialized from untrusted
// sources.
func NewContractClassV0(program *Program, entryPointsByType map[EntryPointType][]EntryPoint) *ContractClassV0 {
	return &ContractClassV0{program: program, entryPointsByType: entryPointsByType}
}

var _ ContractClass = (*ContractClassV0)(nil)

func (c *ContractClassV0) Version() uint64 {
	return 0
}

func (c *ContractClassV0) Program() *Program {
	return c.program
}

func (c *ContractClassV0) ConstructorSelector() *felt.Felt {
	return constructorSelector(c.entryPointsByType)
}

func (c *ContractClassV0) EntryPoint(call *CallEntryPoint) (EntryPoint, error) {
	return resolveEntryPoint(c.entryPointsByType, call)
}

// NEntryPoints counts the entry points across all types.
func (c *ContractClassV0) NEntryPoints() uint64 {
	var n uint64
	for _, entryPoints := range c.entryPointsByType {
		n += uint64(len(entryPoints))
	}
	return n
}

func (c *ContractClassV0) NBuiltins() uint64 {
	return uint64(len(c.program.Builtins))
}

func (c *ContractClassV0) BytecodeLength() uint64 {
	return c.program.BytecodeLength()
}

// EstimateCasmHashComputationResources models the class hash as a
// Pedersen hash chain over the flattened class content: the entry point
// structs, the builtin list, the bytecode and one hinted-hash felt.
func (c *ContractClassV0) EstimateCasmHashComputationResources() ExecutionResources {
	hashedDataSize := abi.Cairo0EntryPointStructSize*c.NEntryPoints() +
		c.NBuiltins() +
		c.BytecodeLength() +
		1 // Hinted class hash.
	// The hashed data size approximates the number of hash invocations
	// in the chain.
	return ExecutionResources{
		Steps: abi.NStepsPerPedersen * hashedDataSize,
		BuiltinInstanceCounter: map[string]uint64{
			abi.PedersenBuiltinName: hashedDataSize,
		},
	}
}

// ContractClassV1 is a compiled (casm) class: bytecode, per-offset hints
// and the reverse hint mapping the interpreter uses to recover hint
// structure from a string key.
type ContractClassV1 struct {
	program           *Program
	entryPointsByType map[EntryPointType][]EntryPoint
	hints             map[string]Hint
}

// NewContractClassV1 builds a compiled class from its transformed parts.
func NewContractClassV1(program *Program, entryPointsByType map[EntryPointType][]EntryPoint, hints map[string]Hint) *ContractClassV1 {
	return &ContractClassV1{program: program, entryPointsByType: entryPointsByType, hints: hints}
}

var _ ContractClass = (*ContractClassV1)(nil)

func (c *ContractClassV1) Version() uint64 {
	return 1
}

func (c *ContractClassV1) Program() *Program {
	return c.program
}

func (c *ContractClassV1) ConstructorSelector() *felt.Felt {
	return constructorSelector(c.entryPointsByType)
}

func (c *ContractClassV1) EntryPoint(call *CallEntryPoint) (EntryPoint, error) {
	return resolveEntryPoint(c.entryPointsByType, call)
}

func (c *ContractClassV1) BytecodeLength() uint64 {
	return c.program.BytecodeLength()
}

// HintForCode returns the structured hint behind its canonical
// serialized form.
func (c *ContractClassV1) HintForCode(code string) (Hint, bool) {
	hint, ok := c.hints[code]
	return hint, ok
}

// EstimateCasmHashComputationResources is an empirically fitted linear
// model in the bytecode length, which dominates the hash cost. Both
// coefficient applications truncate toward zero.
func (c *ContractClassV1) EstimateCasmHashComputationResources() ExecutionResources {
	bytecodeLength := float64(c.BytecodeLength())
	nSteps := uint64(503.0 + bytecodeLength*5.7)
	nPoseidonBuiltins := uint64(10.9 + bytecodeLength*0.5)

	return ExecutionResources{
		Steps: nSteps,
		BuiltinInstanceCounter: map[string]uint64{
			abi.PoseidonBuiltinName: nPoseidonBuiltins,
		},
	}
}
