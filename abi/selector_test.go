package abi_test

import (
	"testing"

	"github.com/massalabs/blockifier/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorFromName(t *testing.T) {
	tests := map[string]string{
		// Reference values from the feeder gateway ABI of the ERC20 and
		// account contracts.
		"transfer":    "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e",
		"constructor": "0x28ffe4ff0f226a9107253e17a904099aa4f63a02a5621de0576e5aa71bc5194",
		"__execute__": "0x15d40a3d6ca2ac30f4031e42be28da9b056fef9bb7357ac5e85627ee876e5ad",
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			selector := abi.SelectorFromName(name)
			assert.Equal(t, want, selector.String())
		})
	}
}

func TestConstructorSelector(t *testing.T) {
	require.Equal(t, abi.SelectorFromName(abi.ConstructorEntryPointName), abi.ConstructorSelector)
}
