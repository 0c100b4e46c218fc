package state

import (
	"context"
	"time"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/message"
)

// Mine creates a new block from the transactions in the mempool, paying the
// mining reward to the specified miner, and proposes the block to the known
// peers. An empty miner uses the node's configured miner address. The node
// lock is held while the proof of work is performed, so no message changes
// the chain or the mempool until mining completes or is cancelled.
func (s *State) Mine(ctx context.Context, miner string) (database.Block, error) {
	if miner == "" {
		miner = s.minerAddress
	}

	s.evHandler("state: Mine: MINING: started: miner[%s]", database.ShortAddress(miner))
	defer s.evHandler("state: Mine: MINING: completed")

	// Mining must stop when the node shuts down.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	block, err := func() (database.Block, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		t := time.Now()
		block, err := s.ledger.AppendMinedBlock(ctx, s.mempool, miner, s.genesis.MiningReward, s.genesis.Difficulty)
		if err != nil {
			return database.Block{}, err
		}

		s.evHandler("state: Mine: MINING: mined: %s: duration[%v]", block, time.Since(t).Round(time.Millisecond))

		return block, nil
	}()

	if err != nil {
		return database.Block{}, err
	}

	// WOW, we mined a block. Propose the new block to the network.
	s.Broadcast(message.NewBlock{Block: block})

	return block, nil
}
