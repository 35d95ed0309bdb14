package state

import (
	"github.com/NethermindEth/juno/core/felt"
	"github.com/massalabs/blockifier/execution"
)

// DictStateReader is a map-backed StateReader, used as the innermost
// reader in tests and for ephemeral state built from scratch.
type DictStateReader struct {
	storage     map[StorageEntry]felt.Felt
	classHashes map[felt.Felt]felt.Felt
	classes     map[felt.Felt]execution.ContractClass
	nonces      map[felt.Felt]felt.Felt
}

var _ execution.StateReader = (*DictStateReader)(nil)

func NewDictStateReader() *DictStateReader {
	return &DictStateReader{
		storage:     make(map[StorageEntry]felt.Felt),
		classHashes: make(map[felt.Felt]felt.Felt),
		classes:     make(map[felt.Felt]execution.ContractClass),
		nonces:      make(map[felt.Felt]felt.Felt),
	}
}

func (r *DictStateReader) ContractStorage(address, key felt.Felt) (felt.Felt, error) {
	return r.storage[StorageEntry{ContractAddress: address, Key: key}], nil
}

func (r *DictStateReader) ContractClassHash(address felt.Felt) (felt.Felt, error) {
	return r.classHashes[address], nil
}

func (r *DictStateReader) ContractNonce(address felt.Felt) (felt.Felt, error) {
	return r.nonces[address], nil
}

func (r *DictStateReader) Class(classHash felt.Felt) (execution.ContractClass, error) {
	class, ok := r.classes[classHash]
	if !ok {
		return nil, &DeclaredClassError{ClassHash: classHash}
	}
	return class, nil
}

func (r *DictStateReader) WithStorage(address, key, value felt.Felt) *DictStateReader {
	r.storage[StorageEntry{ContractAddress: address, Key: key}] = value
	return r
}

func (r *DictStateReader) WithClassHash(address, classHash felt.Felt) *DictStateReader {
	r.classHashes[address] = classHash
	return r
}

func (r *DictStateReader) WithClass(classHash felt.Felt, class execution.ContractClass) *DictStateReader {
	r.classes[classHash] = class
	return r
}

func (r *DictStateReader) WithNonce(address, nonce felt.Felt) *DictStateReader {
	r.nonces[address] = nonce
	return r
}
