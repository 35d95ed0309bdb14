// Package executor processes whole blocks: each transaction runs
// against its own transactional state view, committed in order, with
// the block's classes prefetched concurrently up front.
package executor

import (
	"runtime"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/juno/utils"
	"github.com/massalabs/blockifier/api"
	"github.com/massalabs/blockifier/execution"
	"github.com/massalabs/blockifier/state"
	"github.com/massalabs/blockifier/transaction"
	"github.com/sourcegraph/conc/pool"
)

// BlockExecutor executes the transactions of one block serially over a
// shared block-level state.
type BlockExecutor struct {
	blockContext *api.BlockContext
	vm           execution.Runner
	flags        api.ExecutionFlags
	log          utils.SimpleLogger

	prefetchWorkers int
}

func New(blockContext *api.BlockContext, vm execution.Runner, flags api.ExecutionFlags, log utils.SimpleLogger) *BlockExecutor {
	if log == nil {
		log = utils.NewNopZapLogger()
	}
	return &BlockExecutor{
		blockContext:    blockContext,
		vm:              vm,
		flags:           flags,
		log:             log,
		prefetchWorkers: runtime.GOMAXPROCS(0),
	}
}

// TransactionResult is one transaction's outcome within a block. A
// rejected transaction carries its rejection error and no info; its
// state changes are dropped.
type TransactionResult struct {
	Info *transaction.TransactionExecutionInfo
	Err  error
}

// ExecuteBlock runs txs in order against blockState. Every transaction
// executes in its own nested scope; a scope commits only if its
// transaction was accepted, so a rejection cannot poison the block
// state. The returned slice is index-aligned with txs.
//
// Unique sender and fee-token classes are prefetched concurrently
// before execution to warm the class cache; the backing reader must
// tolerate concurrent reads.
func (e *BlockExecutor) ExecuteBlock(blockState *state.CachedState, txs []transaction.Transaction) []TransactionResult {
	e.prefetchClasses(blockState, txs)

	results := make([]TransactionResult, len(txs))
	for i, tx := range txs {
		txState, err := state.NewTransactional(blockState)
		if err != nil {
			results[i] = TransactionResult{Err: err}
			continue
		}

		info, err := transaction.Execute(tx, txState, e.blockContext, e.vm, e.flags, e.log)
		if err != nil {
			e.log.Infow("transaction rejected", "index", i, "type", tx.Type().String(), "err", err)
			results[i] = TransactionResult{Err: err}
			continue
		}
		if err := txState.Commit(); err != nil {
			results[i] = TransactionResult{Err: err}
			continue
		}
		results[i] = TransactionResult{Info: info}
	}
	return results
}

// prefetchClasses resolves the classes the block's transactions will
// hit first: each sender's account class and the fee token's class.
// Misses are left for execution to report; prefetching is best effort.
func (e *BlockExecutor) prefetchClasses(blockState *state.CachedState, txs []transaction.Transaction) {
	addresses := make(map[felt.Felt]struct{}, len(txs)+1)
	for _, tx := range txs {
		switch tx := tx.(type) {
		case *transaction.L1HandlerTransaction:
			addresses[tx.ContractAddress] = struct{}{}
		default:
			addresses[tx.Context().SenderAddress] = struct{}{}
		}
	}
	if e.flags.ChargeFee {
		addresses[e.blockContext.FeeTokenAddress] = struct{}{}
	}

	workerPool := pool.New().WithMaxGoroutines(e.prefetchWorkers)
	for address := range addresses {
		workerPool.Go(func() {
			classHash, err := blockState.ContractClassHash(address)
			if err != nil || classHash.IsZero() {
				return
			}
			if _, err := blockState.Class(classHash); err != nil {
				e.log.Debugw("class prefetch miss",
					"address", address.String(), "classHash", classHash.String())
			}
		})
	}
	workerPool.Wait()
}
