package state

import (
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/massalabs/blockifier/execution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v uint64) felt.Felt {
	return *new(felt.Felt).SetUint64(v)
}

func emptyClass() execution.ContractClass {
	return execution.NewContractClassV0(&execution.Program{}, nil)
}

func TestCachedStateReadThrough(t *testing.T) {
	base := NewDictStateReader().
		WithStorage(f(0xaaa), f(1), f(7)).
		WithClassHash(f(0xaaa), f(0x111)).
		WithClass(f(0x111), emptyClass())

	s, err := New(base)
	require.NoError(t, err)

	value, err := s.ContractStorage(f(0xaaa), f(1))
	require.NoError(t, err)
	assert.Equal(t, f(7), value)

	classHash, err := s.ContractClassHash(f(0xaaa))
	require.NoError(t, err)
	assert.Equal(t, f(0x111), classHash)

	class, err := s.Class(f(0x111))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), class.Version())
}

func TestCachedStateReadYourOwnWrites(t *testing.T) {
	base := NewDictStateReader().WithStorage(f(0xaaa), f(1), f(7))
	s, err := New(base)
	require.NoError(t, err)

	require.NoError(t, s.SetContractStorage(f(0xaaa), f(1), f(8)))

	value, err := s.ContractStorage(f(0xaaa), f(1))
	require.NoError(t, err)
	assert.Equal(t, f(8), value)

	// The backing reader is untouched.
	baseValue, err := base.ContractStorage(f(0xaaa), f(1))
	require.NoError(t, err)
	assert.Equal(t, f(7), baseValue)
}

func TestCachedStateMissingClass(t *testing.T) {
	s, err := New(NewDictStateReader())
	require.NoError(t, err)

	_, err = s.Class(f(0x111))
	var notDeclared *DeclaredClassError
	require.ErrorAs(t, err, &notDeclared)
	assert.Equal(t, f(0x111), notDeclared.ClassHash)
}

func TestCachedStateDeclareClass(t *testing.T) {
	s, err := New(NewDictStateReader())
	require.NoError(t, err)

	require.NoError(t, s.DeclareClass(f(0x111), emptyClass()))
	class, err := s.Class(f(0x111))
	require.NoError(t, err)
	assert.NotNil(t, class)
}

func TestCachedStateNonces(t *testing.T) {
	s, err := New(NewDictStateReader().WithNonce(f(0xaaa), f(4)))
	require.NoError(t, err)

	nonce, err := s.ContractNonce(f(0xaaa))
	require.NoError(t, err)
	assert.Equal(t, f(4), nonce)

	// Contracts never touched read as zero.
	nonce, err = s.ContractNonce(f(0xbbb))
	require.NoError(t, err)
	assert.True(t, nonce.IsZero())

	require.NoError(t, s.IncrementNonce(f(0xaaa)))
	nonce, err = s.ContractNonce(f(0xaaa))
	require.NoError(t, err)
	assert.Equal(t, f(5), nonce)
}

func TestTransactionalCommit(t *testing.T) {
	parent, err := New(NewDictStateReader().WithStorage(f(0xaaa), f(1), f(7)))
	require.NoError(t, err)

	child, err := NewTransactional(parent)
	require.NoError(t, err)

	require.NoError(t, child.SetContractStorage(f(0xaaa), f(1), f(8)))
	require.NoError(t, child.SetClassHashAt(f(0xbbb), f(0x222)))
	require.NoError(t, child.DeclareClass(f(0x222), emptyClass()))

	// Child sees its own writes and the parent's data; the parent sees
	// nothing yet.
	value, err := child.ContractStorage(f(0xaaa), f(1))
	require.NoError(t, err)
	assert.Equal(t, f(8), value)

	value, err = parent.ContractStorage(f(0xaaa), f(1))
	require.NoError(t, err)
	assert.Equal(t, f(7), value)

	require.NoError(t, child.Commit())

	value, err = parent.ContractStorage(f(0xaaa), f(1))
	require.NoError(t, err)
	assert.Equal(t, f(8), value)

	classHash, err := parent.ContractClassHash(f(0xbbb))
	require.NoError(t, err)
	assert.Equal(t, f(0x222), classHash)

	_, err = parent.Class(f(0x222))
	require.NoError(t, err)
}

func TestTransactionalDiscard(t *testing.T) {
	parent, err := New(NewDictStateReader())
	require.NoError(t, err)

	child, err := NewTransactional(parent)
	require.NoError(t, err)
	require.NoError(t, child.SetContractStorage(f(0xaaa), f(1), f(8)))

	// Dropping the child without committing leaves the parent clean.
	value, err := parent.ContractStorage(f(0xaaa), f(1))
	require.NoError(t, err)
	assert.True(t, value.IsZero())
}

func TestCommitOnRootFails(t *testing.T) {
	s, err := New(NewDictStateReader())
	require.NoError(t, err)
	require.Error(t, s.Commit())
}

func TestClassCacheEvicts(t *testing.T) {
	base := NewDictStateReader()
	for i := uint64(0); i < 4; i++ {
		base.WithClass(f(i), emptyClass())
	}

	s, err := NewWithCacheSize(base, 2)
	require.NoError(t, err)

	for i := uint64(0); i < 4; i++ {
		_, err := s.Class(f(i))
		require.NoError(t, err)
	}
	_, _, size := s.ClassCacheStats()
	assert.Equal(t, 2, size)

	// Evicted classes are reloaded from the backing reader.
	_, err = s.Class(f(0))
	require.NoError(t, err)
}

func TestClassCacheStats(t *testing.T) {
	base := NewDictStateReader().WithClass(f(0x111), emptyClass())
	s, err := New(base)
	require.NoError(t, err)

	_, err = s.Class(f(0x111))
	require.NoError(t, err)
	_, err = s.Class(f(0x111))
	require.NoError(t, err)

	// Nested scopes share the cache and its counters.
	child, err := NewTransactional(s)
	require.NoError(t, err)
	_, err = child.Class(f(0x111))
	require.NoError(t, err)

	hits, misses, size := s.ClassCacheStats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 1, size)
}
