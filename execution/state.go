package execution

import "github.com/NethermindEth/juno/core/felt"

// StateReader is the view of chain state entry-point execution reads
// from. It must stay internally consistent for the duration of one full
// transaction's recursive execution; failures surface as execution-phase
// errors, not as this package's own kinds.
type StateReader interface {
	// ContractClassHash returns the class hash deployed at the address,
	// or the zero felt when the contract does not exist.
	ContractClassHash(address felt.Felt) (felt.Felt, error)
	// ContractStorage returns the value of a storage key, the zero felt
	// for never-written keys.
	ContractStorage(address, key felt.Felt) (felt.Felt, error)
	// Class returns the compiled class declared under the hash.
	Class(classHash felt.Felt) (ContractClass, error)
}

// State adds the write half used while a transaction executes.
type State interface {
	StateReader
	SetContractStorage(address, key, value felt.Felt) error
}
