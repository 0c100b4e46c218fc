package worker

import (
	"errors"
	"time"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
)

// miningOperations handles mining.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation mines a block from the mempool for the node's miner.
// Closing the shut channel is what stops a mining operation in progress.
func (w *Worker) runMiningOperation() {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	if length := w.state.QueryMempoolLength(); length == 0 {
		w.evHandler("worker: runMiningOperation: MINING: no transactions to mine: Txs[%d]", length)
		return
	}

	ctx, cancel := w.shutdownContext()
	defer cancel()

	t := time.Now()
	block, err := w.state.Mine(ctx, "")
	w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", time.Since(t))

	switch {
	case err == nil:
		w.evHandler("worker: runMiningOperation: MINING: mined %s", block)

	case errors.Is(err, database.ErrNothingToMine):
		w.evHandler("worker: runMiningOperation: MINING: WARNING: no transactions in mempool")
		return

	case ctx.Err() != nil:
		w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
		return

	default:
		w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		return
	}

	// Transactions that arrived while mining need another block.
	if length := w.state.QueryMempoolLength(); length > 0 && !w.isShutdown() {
		w.evHandler("worker: runMiningOperation: MINING: signal new mining operation: Txs[%d]", length)
		w.SignalStartMining()
	}
}
