package execution

import (
	"errors"

	"github.com/NethermindEth/juno/core/felt"
)

// callRecorder implements Syscalls for one running call. It tracks the
// storage accesses of that call alone, assigns transaction-wide order
// numbers to events and messages, and recurses into nested calls. When
// a nested call fails with a *VMExecutionError the recorder keeps it so
// the caller's own trace can be stacked on top.
type callRecorder struct {
	call    *CallEntryPoint
	state   State
	execCtx *ExecutionContext

	readValues   []felt.Felt
	accessedKeys StorageKeySet
	events       []OrderedEvent
	messages     []OrderedL2ToL1Message
	innerCalls   []CallInfo

	innerFailure *VMExecutionError
}

func newCallRecorder(call *CallEntryPoint, s State, execCtx *ExecutionContext) *callRecorder {
	return &callRecorder{
		call:         call,
		state:        s,
		execCtx:      execCtx,
		accessedKeys: make(StorageKeySet),
	}
}

func (r *callRecorder) StorageRead(key felt.Felt) (felt.Felt, error) {
	value, err := r.state.ContractStorage(r.call.StorageAddress, key)
	if err != nil {
		return felt.Felt{}, err
	}
	r.accessedKeys[key] = struct{}{}
	r.readValues = append(r.readValues, value)
	return value, nil
}

func (r *callRecorder) StorageWrite(key, value felt.Felt) error {
	// The pre-write value counts as a read.
	if _, err := r.StorageRead(key); err != nil {
		return err
	}
	return r.state.SetContractStorage(r.call.StorageAddress, key, value)
}

func (r *callRecorder) CallContract(call CallEntryPoint) ([]felt.Felt, error) {
	call.CallerAddress = r.call.StorageAddress
	info, err := call.Execute(r.state, r.execCtx)
	if err != nil {
		var execErr *VMExecutionError
		if errors.As(err, &execErr) {
			r.innerFailure = execErr
		}
		return nil, err
	}
	r.innerCalls = append(r.innerCalls, *info)
	return info.Execution.Retdata, nil
}

func (r *callRecorder) EmitEvent(keys, data []felt.Felt) error {
	r.events = append(r.events, OrderedEvent{
		Order: r.execCtx.nEmittedEvents,
		Keys:  keys,
		Data:  data,
	})
	r.execCtx.nEmittedEvents++
	return nil
}

func (r *callRecorder) SendMessageToL1(to felt.Felt, payload []felt.Felt) error {
	r.messages = append(r.messages, OrderedL2ToL1Message{
		Order:   r.execCtx.nSentMessagesToL1,
		To:      to,
		Payload: payload,
	})
	r.execCtx.nSentMessagesToL1++
	return nil
}
