package execution

import (
	"encoding/json"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/massalabs/blockifier/abi"
	"github.com/pkg/errors"
)

// The canonical class JSON comes in two schemas, one per variant. The
// discriminator is the presence of a "program" object: legacy classes
// embed one, compiled classes carry flat bytecode instead. ABI metadata
// is accepted but ignored; it plays no part in execution.

type jsonEntryPoint struct {
	Selector *felt.Felt `json:"selector"`
	// Offset may appear as a hex string or a number, both of which a
	// felt accepts.
	Offset *felt.Felt `json:"offset"`
}

type jsonEntryPoints struct {
	Constructor []jsonEntryPoint `json:"CONSTRUCTOR"`
	External    []jsonEntryPoint `json:"EXTERNAL"`
	L1Handler   []jsonEntryPoint `json:"L1_HANDLER"`
}

type jsonProgram struct {
	Builtins    []string        `json:"builtins"`
	Data        []*felt.Felt    `json:"data"`
	Identifiers json.RawMessage `json:"identifiers"`
}

type jsonDeprecatedClass struct {
	Abi         json.RawMessage `json:"abi"`
	EntryPoints jsonEntryPoints `json:"entry_points_by_type"`
	Program     jsonProgram     `json:"program"`
}

type jsonCasmEntryPoint struct {
	Selector *felt.Felt `json:"selector"`
	Offset   uint64     `json:"offset"`
	Builtins []string   `json:"builtins"`
}

type jsonCasmClass struct {
	Prime           string         `json:"prime"`
	CompilerVersion string         `json:"compiler_version"`
	Bytecode        []*felt.Felt   `json:"bytecode"`
	Hints           []casmHintList `json:"hints"`
	EntryPoints     struct {
		Constructor []jsonCasmEntryPoint `json:"CONSTRUCTOR"`
		External    []jsonCasmEntryPoint `json:"EXTERNAL"`
		L1Handler   []jsonCasmEntryPoint `json:"L1_HANDLER"`
	} `json:"entry_points_by_type"`
}

// casmHintList is one [offset, [hint, ...]] pair of the compiled class's
// hint table.
type casmHintList struct {
	Offset uint64
	Hints  []Hint
}

func (h *casmHintList) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &h.Offset); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &h.Hints)
}

func (h casmHintList) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{h.Offset, h.Hints})
}

// ContractClassFromJSON builds a runnable class from its canonical JSON
// form, selecting the variant by the schema discriminator.
func ContractClassFromJSON(definition json.RawMessage) (ContractClass, error) {
	var discriminator map[string]json.RawMessage
	if err := json.Unmarshal(definition, &discriminator); err != nil {
		return nil, errors.Wrap(err, "decode class definition")
	}
	if len(discriminator["program"]) > 0 {
		return ContractClassV0FromJSON(definition)
	}
	return ContractClassV1FromJSON(definition)
}

// ContractClassV0FromJSON deserializes a legacy class verbatim: program
// plus entry-point buckets. Selector uniqueness is not enforced here.
func ContractClassV0FromJSON(definition json.RawMessage) (*ContractClassV0, error) {
	var class jsonDeprecatedClass
	if err := json.Unmarshal(definition, &class); err != nil {
		return nil, errors.Wrap(err, "decode deprecated class")
	}

	program := &Program{
		Data:        class.Program.Data,
		Builtins:    class.Program.Builtins,
		Identifiers: class.Program.Identifiers,
	}
	entryPointsByType, err := adaptJSONEntryPoints(&class.EntryPoints)
	if err != nil {
		return nil, err
	}
	return NewContractClassV0(program, entryPointsByType), nil
}

func adaptJSONEntryPoints(entryPoints *jsonEntryPoints) (map[EntryPointType][]EntryPoint, error) {
	byType := make(map[EntryPointType][]EntryPoint, 3)
	for _, bucket := range []struct {
		typ         EntryPointType
		entryPoints []jsonEntryPoint
	}{
		{EntryPointTypeConstructor, entryPoints.Constructor},
		{EntryPointTypeExternal, entryPoints.External},
		{EntryPointTypeL1Handler, entryPoints.L1Handler},
	} {
		adapted := make([]EntryPoint, 0, len(bucket.entryPoints))
		for _, entryPoint := range bucket.entryPoints {
			if entryPoint.Selector == nil || entryPoint.Offset == nil {
				return nil, errors.Errorf("%s entry point with missing selector or offset", bucket.typ)
			}
			adapted = append(adapted, EntryPoint{
				Selector: *entryPoint.Selector,
				Offset:   entryPoint.Offset.Uint64(),
			})
		}
		byType[bucket.typ] = adapted
	}
	return byType, nil
}

// ContractClassV1FromJSON deserializes a compiled class and performs the
// construction-time transform pass: hints are flattened into the
// interpreter's position-indexed parameter shape, the reverse
// string-to-hint mapping is collected, and a program representation is
// synthesized from the bytecode. Builtin names gain the interpreter's
// "_builtin" suffix.
func ContractClassV1FromJSON(definition json.RawMessage) (*ContractClassV1, error) {
	var class jsonCasmClass
	if err := json.Unmarshal(definition, &class); err != nil {
		return nil, errors.Wrap(err, "decode casm class")
	}

	hintParams := make(map[uint64][]HintParams, len(class.Hints))
	stringToHint := make(map[string]Hint)
	for _, hintList := range class.Hints {
		params := make([]HintParams, 0, len(hintList.Hints))
		for _, hint := range hintList.Hints {
			code, err := hint.Canonical()
			if err != nil {
				return nil, errors.Wrapf(err, "canonicalize hint at offset %d", hintList.Offset)
			}
			// Scopes and tracked references are resolved dynamically at
			// run time, so the params carry the code string only.
			params = append(params, HintParams{Code: code})
			stringToHint[code] = hint
		}
		hintParams[hintList.Offset] = params
	}

	entryPointsByType := make(map[EntryPointType][]EntryPoint, 3)
	for _, bucket := range []struct {
		typ         EntryPointType
		entryPoints []jsonCasmEntryPoint
	}{
		{EntryPointTypeConstructor, class.EntryPoints.Constructor},
		{EntryPointTypeExternal, class.EntryPoints.External},
		{EntryPointTypeL1Handler, class.EntryPoints.L1Handler},
	} {
		adapted := make([]EntryPoint, 0, len(bucket.entryPoints))
		for _, entryPoint := range bucket.entryPoints {
			if entryPoint.Selector == nil {
				return nil, errors.Errorf("%s entry point with missing selector", bucket.typ)
			}
			builtins := make([]string, len(entryPoint.Builtins))
			for i, builtin := range entryPoint.Builtins {
				builtins[i] = builtin + abi.BuiltinNameSuffix
			}
			adapted = append(adapted, EntryPoint{
				Selector: *entryPoint.Selector,
				Offset:   entryPoint.Offset,
				Builtins: builtins,
			})
		}
		entryPointsByType[bucket.typ] = adapted
	}

	program := &Program{
		// Builtins are initialized per entry point at run time.
		Data:  class.Bytecode,
		Hints: hintParams,
	}
	return NewContractClassV1(program, entryPointsByType, stringToHint), nil
}
