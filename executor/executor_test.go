package executor

import (
	"errors"
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
	"github.com/massalabs/blockifier/abi"
	"github.com/massalabs/blockifier/api"
	"github.com/massalabs/blockifier/execution"
	"github.com/massalabs/blockifier/state"
	"github.com/massalabs/blockifier/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accountAddress  = *new(felt.Felt).SetUint64(0xacc)
	accountClass    = *new(felt.Felt).SetUint64(0x111)
	feeTokenAddress = *new(felt.Felt).SetUint64(0xfee)
	feeTokenClass   = *new(felt.Felt).SetUint64(0x222)
	counterKey      = *new(felt.Felt).SetUint64(0x10)
)

// counterRunner increments a storage cell on every __execute__ and
// fails when the first calldata felt is non-zero.
type counterRunner struct{}

func (counterRunner) Run(_ *execution.Program, entryPoint execution.EntryPoint,
	calldata []felt.Felt, _ uint64, _ execution.RunResources,
	syscalls execution.Syscalls,
) (execution.RunResult, error) {
	if !entryPoint.Selector.Equal(&executeSelector) {
		return execution.RunResult{}, nil
	}
	if len(calldata) > 0 && !calldata[0].IsZero() {
		return execution.RunResult{}, errors.New("interpreter rejected the program")
	}
	current, err := syscalls.StorageRead(counterKey)
	if err != nil {
		return execution.RunResult{}, err
	}
	one := new(felt.Felt).SetUint64(1)
	if err := syscalls.StorageWrite(counterKey, *new(felt.Felt).Add(&current, one)); err != nil {
		return execution.RunResult{}, err
	}
	return execution.RunResult{Resources: execution.ExecutionResources{Steps: 10}}, nil
}

var executeSelector = abi.SelectorFromName(abi.ExecuteEntryPointName)

func accountClassDef() execution.ContractClass {
	return execution.NewContractClassV0(&execution.Program{},
		map[execution.EntryPointType][]execution.EntryPoint{
			execution.EntryPointTypeExternal: {
				{Selector: abi.SelectorFromName(abi.ValidateEntryPointName)},
				{Selector: executeSelector},
				{Selector: abi.SelectorFromName(abi.TransferEntryPointName)},
			},
		})
}

func testBlockContext(t *testing.T) *api.BlockContext {
	t.Helper()
	stepCost, err := api.ParseFixed("0.01")
	require.NoError(t, err)
	return &api.BlockContext{
		ChainID:           "SN_TEST",
		SequencerAddress:  *new(felt.Felt).SetUint64(0x5e9),
		FeeTokenAddress:   feeTokenAddress,
		GasPrice:          uint256.NewInt(1),
		VMResourceFeeCost: map[string]api.Fixed{abi.NSteps: stepCost},
		InvokeTxMaxNSteps: 1_000_000,
		ValidateMaxNSteps: 100_000,
		MaxRecursionDepth: 50,
	}
}

func blockState(t *testing.T) *state.CachedState {
	t.Helper()
	base := state.NewDictStateReader().
		WithClassHash(accountAddress, accountClass).
		WithClass(accountClass, accountClassDef()).
		WithClassHash(feeTokenAddress, feeTokenClass).
		WithClass(feeTokenClass, accountClassDef())
	s, err := state.New(base)
	require.NoError(t, err)
	return s
}

func invoke(nonce uint64, failing bool) *transaction.InvokeTransaction {
	calldata := []felt.Felt{felt.Zero}
	if failing {
		calldata = []felt.Felt{*new(felt.Felt).SetUint64(1)}
	}
	return &transaction.InvokeTransaction{
		AccountTransactionContext: transaction.AccountTransactionContext{
			SenderAddress: accountAddress,
			Version:       1,
			Nonce:         *new(felt.Felt).SetUint64(nonce),
		},
		Calldata: calldata,
	}
}

func TestExecuteBlock(t *testing.T) {
	s := blockState(t)
	executor := New(testBlockContext(t), counterRunner{}, api.DefaultExecutionFlags(), nil)

	results := executor.ExecuteBlock(s, []transaction.Transaction{
		invoke(0, false),
		invoke(1, false),
		invoke(2, false),
	})
	require.Len(t, results, 3)
	for i, result := range results {
		require.NoError(t, result.Err, "tx %d", i)
		require.NotNil(t, result.Info, "tx %d", i)
		assert.False(t, result.Info.IsReverted(), "tx %d", i)
	}

	// All three increments landed on the block state, in order.
	value, err := s.ContractStorage(accountAddress, counterKey)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), value.Uint64())

	nonce, err := s.ContractNonce(accountAddress)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), nonce.Uint64())
}

func TestExecuteBlockRejectedTransactionIsIsolated(t *testing.T) {
	s := blockState(t)
	executor := New(testBlockContext(t), counterRunner{}, api.DefaultExecutionFlags(), nil)

	results := executor.ExecuteBlock(s, []transaction.Transaction{
		invoke(0, false),
		invoke(1, true),
		invoke(2, false),
	})
	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	assert.Nil(t, results[1].Info)
	require.NoError(t, results[2].Err)

	// The rejected transaction left no trace; the block continued.
	value, err := s.ContractStorage(accountAddress, counterKey)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), value.Uint64())
}

func TestExecuteBlockEmpty(t *testing.T) {
	s := blockState(t)
	executor := New(testBlockContext(t), counterRunner{}, api.DefaultExecutionFlags(), nil)
	assert.Empty(t, executor.ExecuteBlock(s, nil))
}
