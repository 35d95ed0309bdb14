package transaction

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/massalabs/blockifier/execution"
)

// Type discriminates the executable transaction variants.
type Type uint8

const (
	TypeInvoke Type = iota
	TypeDeclare
	TypeDeployAccount
	TypeL1Handler
)

func (t Type) String() string {
	switch t {
	case TypeInvoke:
		return "INVOKE"
	case TypeDeclare:
		return "DECLARE"
	case TypeDeployAccount:
		return "DEPLOY_ACCOUNT"
	case TypeL1Handler:
		return "L1_HANDLER"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// Transaction is an executable transaction. Concrete variants carry the
// fields their flow needs; the runner type-switches on them.
type Transaction interface {
	Type() Type
	Context() *AccountTransactionContext
}

// InvokeTransaction runs an account's __execute__ entry point.
type InvokeTransaction struct {
	AccountTransactionContext
	Calldata []felt.Felt `json:"calldata"`
}

func (tx *InvokeTransaction) Type() Type { return TypeInvoke }

func (tx *InvokeTransaction) Context() *AccountTransactionContext {
	return &tx.AccountTransactionContext
}

// DeclareTransaction registers a class under its hash. The class itself
// travels with the transaction; only its hash goes on the wire.
type DeclareTransaction struct {
	AccountTransactionContext
	ClassHash felt.Felt               `json:"class_hash"`
	Class     execution.ContractClass `json:"-"`
}

func (tx *DeclareTransaction) Type() Type { return TypeDeclare }

func (tx *DeclareTransaction) Context() *AccountTransactionContext {
	return &tx.AccountTransactionContext
}

// DeployAccountTransaction deploys an account contract and runs its
// constructor. SenderAddress doubles as the deployed address.
type DeployAccountTransaction struct {
	AccountTransactionContext
	ClassHash           felt.Felt   `json:"class_hash"`
	ContractAddressSalt felt.Felt   `json:"contract_address_salt"`
	ConstructorCalldata []felt.Felt `json:"constructor_calldata"`
}

func (tx *DeployAccountTransaction) Type() Type { return TypeDeployAccount }

func (tx *DeployAccountTransaction) Context() *AccountTransactionContext {
	return &tx.AccountTransactionContext
}

// L1HandlerTransaction is an L1-originated call into a contract's L1
// handler. It is not an account transaction: no validation and no fee
// transfer happen on L2.
type L1HandlerTransaction struct {
	AccountTransactionContext
	ContractAddress    felt.Felt   `json:"contract_address"`
	EntryPointSelector felt.Felt   `json:"entry_point_selector"`
	Calldata           []felt.Felt `json:"calldata"`
}

func (tx *L1HandlerTransaction) Type() Type { return TypeL1Handler }

func (tx *L1HandlerTransaction) Context() *AccountTransactionContext {
	return &tx.AccountTransactionContext
}
