package transaction

import (
	"reflect"
	"sync"

	"github.com/NethermindEth/juno/encoder"
	"github.com/pkg/errors"
)

var registerOnce sync.Once

// registerCodecTypes tags the interchange types in the CBOR registry.
// Registration is global and idempotent.
func registerCodecTypes() {
	registerOnce.Do(func() {
		types := []reflect.Type{
			reflect.TypeOf(TransactionExecutionInfo{}),
			reflect.TypeOf(InvokeTransaction{}),
			reflect.TypeOf(DeclareTransaction{}),
			reflect.TypeOf(DeployAccountTransaction{}),
			reflect.TypeOf(L1HandlerTransaction{}),
		}
		for _, t := range types {
			if err := encoder.RegisterType(t); err != nil {
				panic(err)
			}
		}
	})
}

// plainExecutionInfo strips the Marshal/UnmarshalBinary methods so the
// CBOR encoder serializes the struct fields instead of recursing back
// into the binary marshaler.
type plainExecutionInfo TransactionExecutionInfo

// MarshalBinary encodes the execution info into its compact canonical
// form: CBOR with deterministic map ordering, the resource mapping as a
// length-prefixed map.
func (info *TransactionExecutionInfo) MarshalBinary() ([]byte, error) {
	registerCodecTypes()
	data, err := encoder.Marshal((*plainExecutionInfo)(info))
	if err != nil {
		return nil, errors.Wrap(err, "encode execution info")
	}
	return data, nil
}

func (info *TransactionExecutionInfo) UnmarshalBinary(data []byte) error {
	registerCodecTypes()
	if err := encoder.Unmarshal(data, (*plainExecutionInfo)(info)); err != nil {
		return errors.Wrap(err, "decode execution info")
	}
	return nil
}
