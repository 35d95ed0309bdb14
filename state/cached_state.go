package state

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/NethermindEth/juno/core/felt"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/massalabs/blockifier/execution"
	"github.com/pkg/errors"
)

// DefaultClassCacheSize bounds the number of deserialized classes a
// CachedState keeps hot. Classes can be large, so the cache evicts
// rather than grows.
const DefaultClassCacheSize = 128

// DeclaredClassError reports a class hash nothing has declared.
type DeclaredClassError struct {
	ClassHash felt.Felt
}

func (e *DeclaredClassError) Error() string {
	return fmt.Sprintf("class with hash %s is not declared", e.ClassHash.String())
}

// CachedState layers a write set over a read-only backing reader,
// giving each execution scope read-your-own-writes semantics without
// mutating the backing data. A bounded LRU keeps recently used
// deserialized classes; newly declared classes live outside it so a
// declare cannot be evicted before it commits.
type CachedState struct {
	base   execution.StateReader
	writes *StateMaps

	classCache *lru.Cache[felt.Felt, execution.ContractClass]
	cacheStats *classCacheStats

	declaredMu sync.RWMutex
	declared   map[felt.Felt]execution.ContractClass
}

// classCacheStats is shared across transactional scopes, like the cache
// it describes.
type classCacheStats struct {
	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ execution.State = (*CachedState)(nil)

// New wraps base in a fresh, empty write scope.
func New(base execution.StateReader) (*CachedState, error) {
	return NewWithCacheSize(base, DefaultClassCacheSize)
}

func NewWithCacheSize(base execution.StateReader, classCacheSize int) (*CachedState, error) {
	classCache, err := lru.New[felt.Felt, execution.ContractClass](classCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create class cache")
	}
	return &CachedState{
		base:       base,
		writes:     NewStateMaps(),
		classCache: classCache,
		cacheStats: &classCacheStats{},
		declared:   make(map[felt.Felt]execution.ContractClass),
	}, nil
}

// NewTransactional opens a nested scope over parent. Reads see the
// parent's writes; the scope's own writes stay invisible to the parent
// until Commit.
func NewTransactional(parent *CachedState) (*CachedState, error) {
	child, err := New(parent)
	if err != nil {
		return nil, err
	}
	// Share the class cache; classes are immutable so eviction is the
	// only coordination needed.
	child.classCache = parent.classCache
	child.cacheStats = parent.cacheStats
	return child, nil
}

// Commit replays this scope's writes onto the parent it was opened
// over. Committing a scope built by New rather than NewTransactional is
// a programming error.
func (s *CachedState) Commit() error {
	parent, ok := s.base.(*CachedState)
	if !ok {
		return errors.New("commit on a non-transactional state")
	}
	s.writes.MergeInto(parent.writes)

	s.declaredMu.RLock()
	defer s.declaredMu.RUnlock()
	parent.declaredMu.Lock()
	defer parent.declaredMu.Unlock()
	for classHash, class := range s.declared {
		parent.declared[classHash] = class
	}
	return nil
}

func (s *CachedState) ContractStorage(address, key felt.Felt) (felt.Felt, error) {
	if value, ok := s.writes.Storage(StorageEntry{ContractAddress: address, Key: key}); ok {
		return value, nil
	}
	return s.base.ContractStorage(address, key)
}

func (s *CachedState) SetContractStorage(address, key, value felt.Felt) error {
	s.writes.SetStorage(StorageEntry{ContractAddress: address, Key: key}, value)
	return nil
}

func (s *CachedState) ContractClassHash(address felt.Felt) (felt.Felt, error) {
	if classHash, ok := s.writes.ClassHash(address); ok {
		return classHash, nil
	}
	return s.base.ContractClassHash(address)
}

// SetClassHashAt deploys a class to an address within this scope.
func (s *CachedState) SetClassHashAt(address, classHash felt.Felt) error {
	s.writes.SetClassHash(address, classHash)
	return nil
}

// ContractNonce returns the zero felt for contracts never incremented.
func (s *CachedState) ContractNonce(address felt.Felt) (felt.Felt, error) {
	if nonce, ok := s.writes.Nonce(address); ok {
		return nonce, nil
	}
	if reader, ok := s.base.(interface {
		ContractNonce(address felt.Felt) (felt.Felt, error)
	}); ok {
		return reader.ContractNonce(address)
	}
	return felt.Felt{}, nil
}

// IncrementNonce bumps the contract's nonce by one.
func (s *CachedState) IncrementNonce(address felt.Felt) error {
	nonce, err := s.ContractNonce(address)
	if err != nil {
		return err
	}
	one := new(felt.Felt).SetUint64(1)
	s.writes.SetNonce(address, *new(felt.Felt).Add(&nonce, one))
	return nil
}

func (s *CachedState) Class(classHash felt.Felt) (execution.ContractClass, error) {
	s.declaredMu.RLock()
	class, ok := s.declared[classHash]
	s.declaredMu.RUnlock()
	if ok {
		return class, nil
	}

	if class, ok := s.classCache.Get(classHash); ok {
		s.cacheStats.hits.Add(1)
		return class, nil
	}
	s.cacheStats.misses.Add(1)

	class, err := s.base.Class(classHash)
	if err != nil {
		return nil, err
	}
	s.classCache.Add(classHash, class)
	return class, nil
}

// ClassCacheStats reports the cumulative hit and miss counts of the
// shared class cache and the number of classes currently held.
func (s *CachedState) ClassCacheStats() (hits, misses uint64, size int) {
	return s.cacheStats.hits.Load(), s.cacheStats.misses.Load(), s.classCache.Len()
}

// DeclareClass registers a class under its hash within this scope.
func (s *CachedState) DeclareClass(classHash felt.Felt, class execution.ContractClass) error {
	s.declaredMu.Lock()
	defer s.declaredMu.Unlock()
	s.declared[classHash] = class
	return nil
}
