package execution

import (
	"maps"
	"slices"

	"github.com/fxamacker/cbor/v2"

	"github.com/massalabs/blockifier/abi"
)

// ExecutionResources is the metered cost of one VM run: plain steps,
// memory holes and per-builtin invocation counts.
type ExecutionResources struct {
	Steps                  uint64
	MemoryHoles            uint64
	BuiltinInstanceCounter map[string]uint64
}

// Add accumulates other into r.
func (r *ExecutionResources) Add(other *ExecutionResources) {
	r.Steps += other.Steps
	r.MemoryHoles += other.MemoryHoles
	if len(other.BuiltinInstanceCounter) == 0 {
		return
	}
	if r.BuiltinInstanceCounter == nil {
		r.BuiltinInstanceCounter = make(map[string]uint64, len(other.BuiltinInstanceCounter))
	}
	for builtin, count := range other.BuiltinInstanceCounter {
		r.BuiltinInstanceCounter[builtin] += count
	}
}

// ToMapping converts r into the string-keyed form used by fee
// accounting. Memory holes are metered but not priced, so they are left
// out of the charged mapping.
func (r *ExecutionResources) ToMapping() ResourcesMapping {
	m := make(ResourcesMapping, 1+len(r.BuiltinInstanceCounter))
	m[abi.NSteps] = r.Steps
	for builtin, count := range r.BuiltinInstanceCounter {
		m[builtin] = count
	}
	return m
}

// ResourcesMapping maps a charged resource name to its usage count.
// Iteration for serialization purposes must go through SortedKeys so the
// encoded form is deterministic.
type ResourcesMapping map[string]uint64

// SortedKeys returns the resource names in lexicographic order.
func (m ResourcesMapping) SortedKeys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Clone returns a copy that can be mutated independently.
func (m ResourcesMapping) Clone() ResourcesMapping {
	return maps.Clone(m)
}

// Add accumulates other into m.
func (m ResourcesMapping) Add(other ResourcesMapping) {
	for resource, usage := range other {
		m[resource] += usage
	}
}

type resourceEntry struct {
	_     struct{} `cbor:",toarray"`
	Name  string
	Usage uint64
}

// MarshalCBOR encodes the mapping as a length-prefixed list of
// (name, usage) pairs sorted by name, so the wire form is deterministic
// regardless of map iteration order or encoder options.
func (m ResourcesMapping) MarshalCBOR() ([]byte, error) {
	if m == nil {
		return cbor.Marshal(([]resourceEntry)(nil))
	}
	entries := make([]resourceEntry, 0, len(m))
	for _, name := range m.SortedKeys() {
		entries = append(entries, resourceEntry{Name: name, Usage: m[name]})
	}
	return cbor.Marshal(entries)
}

func (m *ResourcesMapping) UnmarshalCBOR(data []byte) error {
	var entries []resourceEntry
	if err := cbor.Unmarshal(data, &entries); err != nil {
		return err
	}
	if entries == nil {
		*m = nil
		return nil
	}
	*m = make(ResourcesMapping, len(entries))
	for _, entry := range entries {
		(*m)[entry.Name] = entry.Usage
	}
	return nil
}
