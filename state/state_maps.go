package state

import (
	"sync"

	"github.com/NethermindEth/juno/core/felt"
)

const (
	defaultStorageCapacity   = 100
	defaultClassHashCapacity = 100
	defaultNonceCapacity     = 100
)

// StorageEntry addresses one cell of contract storage.
type StorageEntry struct {
	ContractAddress felt.Felt
	Key             felt.Felt
}

// StateMaps is the write set of one execution scope: every storage
// cell, class hash and nonce written since the scope opened. Reads fall
// through to the underlying reader when a key is absent. The maps are
// safe for concurrent use so read-only callers can share a scope.
type StateMaps struct {
	storage   map[StorageEntry]felt.Felt
	storageMu sync.RWMutex

	classHashes   map[felt.Felt]felt.Felt
	classHashesMu sync.RWMutex

	nonces   map[felt.Felt]felt.Felt
	noncesMu sync.RWMutex
}

func NewStateMaps() *StateMaps {
	return &StateMaps{
		storage:     make(map[StorageEntry]felt.Felt, defaultStorageCapacity),
		classHashes: make(map[felt.Felt]felt.Felt, defaultClassHashCapacity),
		nonces:      make(map[felt.Felt]felt.Felt, defaultNonceCapacity),
	}
}

func (sm *StateMaps) Storage(entry StorageEntry) (felt.Felt, bool) {
	sm.storageMu.RLock()
	defer sm.storageMu.RUnlock()
	value, ok := sm.storage[entry]
	return value, ok
}

func (sm *StateMaps) SetStorage(entry StorageEntry, value felt.Felt) {
	sm.storageMu.Lock()
	defer sm.storageMu.Unlock()
	sm.storage[entry] = value
}

func (sm *StateMaps) ClassHash(contractAddress felt.Felt) (felt.Felt, bool) {
	sm.classHashesMu.RLock()
	defer sm.classHashesMu.RUnlock()
	classHash, ok := sm.classHashes[contractAddress]
	return classHash, ok
}

func (sm *StateMaps) SetClassHash(contractAddress, classHash felt.Felt) {
	sm.classHashesMu.Lock()
	defer sm.classHashesMu.Unlock()
	sm.classHashes[contractAddress] = classHash
}

func (sm *StateMaps) Nonce(contractAddress felt.Felt) (felt.Felt, bool) {
	sm.noncesMu.RLock()
	defer sm.noncesMu.RUnlock()
	nonce, ok := sm.nonces[contractAddress]
	return nonce, ok
}

func (sm *StateMaps) SetNonce(contractAddress, nonce felt.Felt) {
	sm.noncesMu.Lock()
	defer sm.noncesMu.Unlock()
	sm.nonces[contractAddress] = nonce
}

// MergeInto replays this write set on top of dst. Later writes win, so
// merging transactional scopes in commit order preserves transaction
// ordering.
func (sm *StateMaps) MergeInto(dst *StateMaps) {
	sm.storageMu.RLock()
	for entry, value := range sm.storage {
		dst.SetStorage(entry, value)
	}
	sm.storageMu.RUnlock()

	sm.classHashesMu.RLock()
	for address, classHash := range sm.classHashes {
		dst.SetClassHash(address, classHash)
	}
	sm.classHashesMu.RUnlock()

	sm.noncesMu.RLock()
	for address, nonce := range sm.nonces {
		dst.SetNonce(address, nonce)
	}
	sm.noncesMu.RUnlock()
}
