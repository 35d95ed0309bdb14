package api_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/massalabs/blockifier/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `chain-id: SN_SEPOLIA
block-number: 42
block-timestamp: 1700000000
sequencer-address: "0x4321"
fee-token-address: "0x1001"
gas-price: "100000000000"
invoke-tx-max-n-steps: 1000000
validate-max-n-steps: 1000000
max-recursion-depth: 50
vm-resource-fee-cost:
  n_steps: "0.01"
  pedersen_builtin: "0.32"
  range_check_builtin: "0.16"
`

func TestLoadBlockContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "block_context.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	blockContext, err := api.LoadBlockContext(path)
	require.NoError(t, err)

	assert.Equal(t, "SN_SEPOLIA", blockContext.ChainID)
	assert.Equal(t, uint64(42), blockContext.BlockNumber)
	assert.Equal(t, "0x4321", blockContext.SequencerAddress.String())
	assert.Equal(t, "0x1001", blockContext.FeeTokenAddress.String())
	assert.Equal(t, "100000000000", blockContext.GasPrice.Dec())
	assert.Equal(t, uint32(1000000), blockContext.MaxSteps(api.ModeValidate))
	assert.Equal(t, uint64(50), blockContext.MaxRecursionDepth)

	steps, ok := blockContext.VMResourceFeeCost["n_steps"]
	require.True(t, ok)
	assert.Equal(t, "0.01", steps.String())
}

func TestLoadBlockContextMissingFile(t *testing.T) {
	_, err := api.LoadBlockContext(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestBlockContextValidate(t *testing.T) {
	blockContext := &api.BlockContext{}
	require.Error(t, blockContext.Validate())
}
