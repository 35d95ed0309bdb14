package abi

import (
	"github.com/NethermindEth/juno/core/felt"
	"golang.org/x/crypto/sha3"
)

// starknetKeccak is the first 250 bits of the legacy keccak256 digest,
// obtained by masking the top 6 bits so the result fits in a felt.
func starknetKeccak(b []byte) (*felt.Felt, error) {
	h := sha3.NewLegacyKeccak256()
	if _, err := h.Write(b); err != nil {
		return nil, err
	}
	d := h.Sum(nil)
	d[0] &= 3
	return new(felt.Felt).SetBytes(d), nil
}

// SelectorFromName returns the selector identifying the entry point with
// the given function name.
func SelectorFromName(name string) felt.Felt {
	selector, err := starknetKeccak([]byte(name))
	if err != nil {
		// sha3 writes cannot fail on an in-memory buffer.
		panic(err)
	}
	return *selector
}

// ConstructorSelector is computed once; every constructor-type call must
// carry it regardless of the target class's entry points.
var ConstructorSelector = SelectorFromName(ConstructorEntryPointName)
