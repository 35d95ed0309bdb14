// Package fee turns a transaction's measured resource usage into the
// L1 gas it is charged for and the final fee in fee-token units.
package fee

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/holiman/uint256"
	"github.com/massalabs/blockifier/abi"
	"github.com/massalabs/blockifier/api"
	"github.com/massalabs/blockifier/execution"
)

// CairoResourcesNotContainedInFeeCostsError reports a measured resource
// the block's cost table does not price. Charging for it would be
// guesswork, so the fee calculation refuses.
type CairoResourcesNotContainedInFeeCostsError struct {
	Resource string
}

func (e *CairoResourcesNotContainedInFeeCostsError) Error() string {
	return fmt.Sprintf("resource %s is not contained in the fee cost table", e.Resource)
}

// ExtractL1GasAndVMUsage splits a transaction's resource mapping into
// its direct L1 gas component and the VM resources proper. The mapping
// must carry the L1 gas entry; callers build it, so a missing entry is
// a programming error.
func ExtractL1GasAndVMUsage(resources execution.ResourcesMapping) (uint64, execution.ResourcesMapping) {
	l1Gas, ok := resources[abi.GasUsage]
	if !ok {
		panic("resource mapping built without an L1 gas entry")
	}
	vmUsage := resources.Clone()
	delete(vmUsage, abi.GasUsage)
	return l1Gas, vmUsage
}

// CalculateL1GasByVMUsage converts VM resource usage to its L1 gas
// equivalent: the maximum over resources of usage times the block's
// per-unit cost. Maximum, not sum, because the proof's trace is as wide
// as its widest column.
func CalculateL1GasByVMUsage(blockContext *api.BlockContext, vmUsage execution.ResourcesMapping) (api.Fixed, error) {
	for _, resource := range vmUsage.SortedKeys() {
		if _, ok := blockContext.VMResourceFeeCost[resource]; !ok {
			return api.Fixed{}, &CairoResourcesNotContainedInFeeCostsError{Resource: resource}
		}
	}

	var gas api.Fixed
	for resource, cost := range blockContext.VMResourceFeeCost {
		usage, err := api.FixedFromUint64(vmUsage[resource])
		if err != nil {
			return api.Fixed{}, err
		}
		gas = gas.Max(cost.Mul(usage))
	}
	return gas, nil
}

// CalculateTxFee prices a transaction's full resource mapping: the L1
// gas component plus the VM component, rounded up to a whole gas unit,
// times the block's gas price. The multiplication saturates rather than
// wraps.
func CalculateTxFee(blockContext *api.BlockContext, resources execution.ResourcesMapping) (*felt.Felt, error) {
	l1GasUsage, vmUsage := ExtractL1GasAndVMUsage(resources)

	vmGas, err := CalculateL1GasByVMUsage(blockContext, vmUsage)
	if err != nil {
		return nil, err
	}
	directGas, err := api.FixedFromUint64(l1GasUsage)
	if err != nil {
		return nil, err
	}

	totalGas := directGas.Add(vmGas).Ceil()
	amount := totalGas.SaturatingMulInt(blockContext.GasPrice)
	return feltFromUint256(amount), nil
}

func feltFromUint256(n *uint256.Int) *felt.Felt {
	b := n.Bytes32()
	return new(felt.Felt).SetBytes(b[:])
}
