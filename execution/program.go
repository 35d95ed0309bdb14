package execution

import (
	"bytes"
	"encoding/json"

	"github.com/NethermindEth/juno/core/felt"
)

// Program is the interpreter-facing view of a contract class: the felt
// instruction stream, the builtins it imports and the hints attached to
// bytecode offsets. For Cairo 1 classes it is synthesized from the
// compiled class at construction time.
type Program struct {
	// Data is the instruction stream plus embedded constants.
	Data []*felt.Felt
	// Builtins the program imports, in declaration order, already
	// carrying the interpreter's "_builtin" suffix.
	Builtins []string
	// Hints maps a bytecode offset to the hints triggered there, in
	// trigger order.
	Hints map[uint64][]HintParams
	// Identifiers and debug metadata are kept verbatim; the interpreter
	// consumes them for traceback symbolication only.
	Identifiers json.RawMessage
}

// BytecodeLength returns the felt length of the instruction stream.
func (p *Program) BytecodeLength() uint64 {
	return uint64(len(p.Data))
}

// HintParams is the interpreter's per-hint dispatch record. Scopes and
// tracking references are resolved dynamically at run time, so only the
// canonical code string is populated for compiled-class hints.
type HintParams struct {
	Code             string           `json:"code"`
	AccessibleScopes []string         `json:"accessible_scopes"`
	FlowTrackingData FlowTrackingData `json:"flow_tracking_data"`
}

type FlowTrackingData struct {
	APTracking   APTracking        `json:"ap_tracking"`
	ReferenceIDs map[string]uint64 `json:"reference_ids"`
}

type APTracking struct {
	Group  uint64 `json:"group"`
	Offset uint64 `json:"offset"`
}

// Hint is the structured representation of one compiled-class hint. The
// interpreter addresses hints by their canonical serialized form; the
// class keeps the reverse mapping so structure can be recovered from the
// string key.
type Hint struct {
	raw json.RawMessage
}

func (h Hint) MarshalJSON() ([]byte, error) {
	return h.raw, nil
}

func (h *Hint) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &h.raw)
}

// Canonical returns the hint's canonical serialized form: its JSON with
// insignificant whitespace removed.
func (h Hint) Canonical() (string, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, h.raw); err != nil {
		return "", err
	}
	return compact.String(), nil
}
