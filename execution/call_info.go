package execution

import (
	"encoding/json"
	"iter"
	"slices"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/fxamacker/cbor/v2"
)

// StorageKeySet is a set of storage keys. Both serialized forms render
// it as a sorted array so encoding is deterministic.
type StorageKeySet map[felt.Felt]struct{}

func (s StorageKeySet) sorted() []felt.Felt {
	if s == nil {
		return nil
	}
	keys := make([]felt.Felt, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b felt.Felt) int { return a.Cmp(&b) })
	return keys
}

func (s *StorageKeySet) reset(keys []felt.Felt) {
	if keys == nil {
		*s = nil
		return
	}
	set := make(StorageKeySet, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	*s = set
}

func (s StorageKeySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.sorted())
}

func (s *StorageKeySet) UnmarshalJSON(data []byte) error {
	var keys []felt.Felt
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	s.reset(keys)
	return nil
}

func (s StorageKeySet) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(s.sorted())
}

func (s *StorageKeySet) UnmarshalCBOR(data []byte) error {
	var keys []felt.Felt
	if err := cbor.Unmarshal(data, &keys); err != nil {
		return err
	}
	s.reset(keys)
	return nil
}

// OrderedEvent is an event a call emitted, tagged with its emission
// order within the transaction.
type OrderedEvent struct {
	Order uint64      `json:"order"`
	Keys  []felt.Felt `json:"keys"`
	Data  []felt.Felt `json:"data"`
}

// OrderedL2ToL1Message is a message to L1 a call sent, tagged with its
// sending order within the transaction.
type OrderedL2ToL1Message struct {
	Order   uint64      `json:"order"`
	To      felt.Felt   `json:"to_address"`
	Payload []felt.Felt `json:"payload"`
}

// CallExecution is the outcome of running one entry point.
type CallExecution struct {
	Retdata        []felt.Felt            `json:"retdata"`
	Events         []OrderedEvent         `json:"events"`
	L2ToL1Messages []OrderedL2ToL1Message `json:"l2_to_l1_messages"`
	Failed         bool                   `json:"failed"`
	GasConsumed    uint64                 `json:"gas_consumed"`
}

// CallInfo records one entry-point invocation and, recursively, every
// invocation it triggered, in call order. The tree is built bottom-up as
// the interpreter returns from each nested call.
type CallInfo struct {
	Call      CallEntryPoint     `json:"call"`
	Execution CallExecution      `json:"execution"`
	Resources ExecutionResources `json:"resources"`
	// InnerCalls are the calls this invocation issued, in the order the
	// program issued them.
	InnerCalls []CallInfo `json:"inner_calls"`

	// StorageReadValues lists every value read by this call alone, in
	// read order. Reads performed immediately before a write are
	// recorded too; duplicates are preserved.
	StorageReadValues []felt.Felt `json:"storage_read_values"`
	// AccessedStorageKeys is the set of storage keys this call alone
	// touched.
	AccessedStorageKeys StorageKeySet `json:"accessed_storage_keys"`
}

// All yields the call and every nested call in depth-first pre-order:
// a node before its descendants, descendants in invocation order. Both
// deterministic result replay and traceback alignment depend on this
// exact order.
func (c *CallInfo) All() iter.Seq[*CallInfo] {
	return func(yield func(*CallInfo) bool) {
		c.visit(yield)
	}
}

func (c *CallInfo) visit(yield func(*CallInfo) bool) bool {
	if !yield(c) {
		return false
	}
	for i := range c.InnerCalls {
		if !c.InnerCalls[i].visit(yield) {
			return false
		}
	}
	return true
}

// ExecutedClassHashes collects into dst the class hash that served every
// node of the tree.
func (c *CallInfo) ExecutedClassHashes(dst map[felt.Felt]struct{}) {
	for call := range c.All() {
		if call.Call.ClassHash != nil {
			dst[*call.Call.ClassHash] = struct{}{}
		}
	}
}

// AllAccessedStorageKeys collects into dst the union of storage keys
// every node of the tree touched.
func (c *CallInfo) AllAccessedStorageKeys(dst map[felt.Felt]struct{}) {
	for call := range c.All() {
		for key := range call.AccessedStorageKeys {
			dst[key] = struct{}{}
		}
	}
}

// AllStorageReadValues concatenates each node's own read values in
// traversal order. Duplicates are preserved.
func (c *CallInfo) AllStorageReadValues() []felt.Felt {
	var values []felt.Felt
	for call := range c.All() {
		values = append(values, call.StorageReadValues...)
	}
	return values
}

// SumResources accumulates the resources of every node into dst.
func (c *CallInfo) SumResources(dst *ExecutionResources) {
	for call := range c.All() {
		dst.Add(&call.Resources)
	}
}
