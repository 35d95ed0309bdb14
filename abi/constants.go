package abi

// Entry point names of the account contract interface. Selectors are
// derived from these with SelectorFromName.
const (
	ConstructorEntryPointName     = "constructor"
	ExecuteEntryPointName         = "__execute__"
	ValidateEntryPointName        = "__validate__"
	ValidateDeclareEntryPointName = "__validate_declare__"
	ValidateDeployEntryPointName  = "__validate_deploy__"
	TransferEntryPointName        = "transfer"
)

// Resource names used in fee accounting. GasUsage is a pseudo-resource:
// it is charged directly in L1 gas and never appears in the VM's own
// builtin counters.
const (
	GasUsage     = "l1_gas_usage"
	NSteps       = "n_steps"
	NMemoryHoles = "n_memory_holes"
)

// Builtin names follow the VM's convention of suffixing the compiler's
// short name with "_builtin".
const (
	BuiltinNameSuffix   = "_builtin"
	PedersenBuiltinName = "pedersen" + BuiltinNameSuffix
	RangeCheckBuiltin   = "range_check" + BuiltinNameSuffix
	PoseidonBuiltinName = "poseidon" + BuiltinNameSuffix
)

// L2 to L1 message gas model. A message occupies its payload plus a
// fixed word overhead (to address, from address, payload size) in the
// proof's output memory segment.
const (
	L1MessageSegmentOverheadWords = 3
	SharpGasPerMemoryWord         = 100
)

// Casm hash cost model constants.
const (
	// Felt width of the entry point struct hashed as part of a Cairo 0
	// class hash: (selector, offset).
	Cairo0EntryPointStructSize = 2
	// Steps the hash chain spends per Pedersen invocation.
	NStepsPerPedersen = 8
)
