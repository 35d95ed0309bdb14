package execution

import (
	"encoding/json"
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCallTree returns a root call with a nested call that itself
// nests one more, followed by a second direct child:
//
//	0
//	├── 1
//	│   └── 2
//	└── 3
func buildCallTree() *CallInfo {
	node := func(id uint64, inner ...CallInfo) CallInfo {
		classHash := *new(felt.Felt).SetUint64(100 + id)
		return CallInfo{
			Call: CallEntryPoint{
				ClassHash:          &classHash,
				EntryPointSelector: *new(felt.Felt).SetUint64(id),
			},
			Resources: ExecutionResources{
				Steps:       10 * (id + 1),
				MemoryHoles: id,
				BuiltinInstanceCounter: map[string]uint64{
					"range_check_builtin": id + 1,
				},
			},
			StorageReadValues: []felt.Felt{*new(felt.Felt).SetUint64(1000 + id)},
			AccessedStorageKeys: map[felt.Felt]struct{}{
				*new(felt.Felt).SetUint64(2000 + id): {},
			},
			InnerCalls: inner,
		}
	}
	root := node(0, node(1, node(2)), node(3))
	return &root
}

func TestCallInfoPreOrder(t *testing.T) {
	root := buildCallTree()

	var order []uint64
	for call := range root.All() {
		order = append(order, call.Call.EntryPointSelector.Uint64())
	}
	assert.Equal(t, []uint64{0, 1, 2, 3}, order)
}

func TestCallInfoPreOrderEarlyStop(t *testing.T) {
	root := buildCallTree()

	var seen int
	for range root.All() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestExecutedClassHashes(t *testing.T) {
	root := buildCallTree()

	hashes := make(map[felt.Felt]struct{})
	root.ExecutedClassHashes(hashes)
	require.Len(t, hashes, 4)
	for id := uint64(0); id < 4; id++ {
		assert.Contains(t, hashes, *new(felt.Felt).SetUint64(100+id))
	}
}

func TestExecutedClassHashesSkipsUnresolved(t *testing.T) {
	root := &CallInfo{}
	hashes := make(map[felt.Felt]struct{})
	root.ExecutedClassHashes(hashes)
	assert.Empty(t, hashes)
}

func TestAllAccessedStorageKeys(t *testing.T) {
	root := buildCallTree()
	// Duplicate a key across two nodes; the union must not double it.
	shared := *new(felt.Felt).SetUint64(2000)
	root.InnerCalls[1].AccessedStorageKeys[shared] = struct{}{}

	keys := make(map[felt.Felt]struct{})
	root.AllAccessedStorageKeys(keys)
	assert.Len(t, keys, 4)
}

func TestAllStorageReadValues(t *testing.T) {
	root := buildCallTree()

	values := root.AllStorageReadValues()
	require.Len(t, values, 4)
	// Read values follow traversal order and keep duplicates.
	assert.Equal(t, uint64(1000), values[0].Uint64())
	assert.Equal(t, uint64(1001), values[1].Uint64())
	assert.Equal(t, uint64(1002), values[2].Uint64())
	assert.Equal(t, uint64(1003), values[3].Uint64())
}

func TestStorageKeySetJSON(t *testing.T) {
	set := StorageKeySet{
		*new(felt.Felt).SetUint64(9): {},
		*new(felt.Felt).SetUint64(2): {},
		*new(felt.Felt).SetUint64(5): {},
	}

	data, err := json.Marshal(set)
	require.NoError(t, err)

	// The array form is sorted by key value.
	var keys []felt.Felt
	require.NoError(t, json.Unmarshal(data, &keys))
	require.Len(t, keys, 3)
	assert.Equal(t, uint64(2), keys[0].Uint64())
	assert.Equal(t, uint64(5), keys[1].Uint64())
	assert.Equal(t, uint64(9), keys[2].Uint64())

	var decoded StorageKeySet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, set, decoded)
}

func TestSumResources(t *testing.T) {
	root := buildCallTree()

	var total ExecutionResources
	root.SumResources(&total)
	assert.Equal(t, uint64(10+20+30+40), total.Steps)
	assert.Equal(t, uint64(0+1+2+3), total.MemoryHoles)
	assert.Equal(t, uint64(1+2+3+4), total.BuiltinInstanceCounter["range_check_builtin"])
}
