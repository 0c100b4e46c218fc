package state

import (
	"io"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/message"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/peer"
)

// processMessage dispatches a message received on the connection. Messages
// that are rejected are logged. Only a failure to write a reply is returned.
func (s *State) processMessage(w io.Writer, msg message.Message) error {
	switch m := msg.(type) {
	case message.GetChain:
		return s.reply(w, message.Chain{Blocks: s.ledger.Copy()})

	case message.Chain:
		s.processChain(m.Blocks)

	case message.NewBlock:
		s.processNewBlock(m.Block)

	case message.NewTransaction:
		s.processNewTransaction(m.Tx)

	case message.GetPeers:
		return s.reply(w, message.Peers{Addresses: s.knownAddresses()})

	case message.Peers:
		s.processPeers(m.Addresses)
	}

	return nil
}

// reply writes the message back on the connection it was requested on.
func (s *State) reply(w io.Writer, msg message.Message) error {
	s.evHandler("state: reply: %s", msg.Type())

	return message.Write(w, msg)
}

// processChain replaces the local chain with the received chain when it's
// longer and valid.
func (s *State) processChain(blocks []database.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(blocks) <= s.ledger.Length() {
		s.evHandler("state: processChain: ignoring chain: blocks[%d]: have[%d]", len(blocks), s.ledger.Length())
		return
	}

	if err := s.ledger.ReplaceChain(blocks); err != nil {
		s.evHandler("state: processChain: rejected chain: blocks[%d]: %s", len(blocks), err)
		return
	}

	s.pruneMempool()

	s.evHandler("state: processChain: accepted longer chain: blocks[%d]", len(blocks))
}

// processNewBlock appends the block when it links onto the latest block.
// Otherwise this node may have missed blocks or be on a fork, so every peer
// is asked for its chain.
func (s *State) processNewBlock(block database.Block) {
	appended := func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()

		if block.PrevHash != s.ledger.Latest().Hash {
			return false
		}

		// A block mined elsewhere on the same height wins over the local
		// mining effort.
		if err := s.ledger.AppendBlock(block); err != nil {
			s.evHandler("state: processNewBlock: rejected block: %s: %s", block, err)
			return true
		}

		s.pruneMempool()

		s.evHandler("state: processNewBlock: added block: %s", block)
		return true
	}()

	if appended {
		return
	}

	s.evHandler("state: processNewBlock: block doesn't link to latest: %s: requesting chains", block)
	s.Broadcast(message.GetChain{})
}

// processNewTransaction adds a transaction received from a peer to the
// mempool.
func (s *State) processNewTransaction(tx database.Tx) {
	added, err := func() (bool, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.mempool.Contains(tx.Hash()) {
			return false, nil
		}

		return s.mempool.Admit(tx, s.ledger.Balance)
	}()

	switch {
	case err != nil:
		s.evHandler("state: processNewTransaction: rejected tx: %s: %s", tx, err)
	case added:
		s.evHandler("state: processNewTransaction: received tx: %s", tx)
		s.signalMining()
	}
}

// processPeers connects to every peer in the list this node doesn't
// know yet.
func (s *State) processPeers(addresses []string) {
	for _, address := range addresses {
		p, err := peer.Parse(address)
		if err != nil {
			s.evHandler("state: processPeers: %s", err)
			continue
		}

		if p.Match(s.RetrieveHost()) || s.knownPeers.Contains(p) {
			continue
		}

		if err := s.connectToPeer(p); err != nil {
			s.evHandler("state: processPeers: WARNING: %s", err)
		}
	}
}

// =============================================================================

// pruneMempool removes the transactions that are already in the chain.
func (s *State) pruneMempool() {
	pending := s.mempool.Copy()
	if len(pending) == 0 {
		return
	}

	included := make(map[string]struct{})
	for _, tx := range s.ledger.Transactions() {
		included[tx.Hash()] = struct{}{}
	}

	var remove []database.Tx
	for _, tx := range pending {
		if _, exists := included[tx.Hash()]; exists {
			remove = append(remove, tx)
		}
	}

	if len(remove) > 0 {
		s.mempool.Delete(remove)
		s.evHandler("state: pruneMempool: removed txs[%d]", len(remove))
	}
}

// knownAddresses returns the host:port address of every known peer.
func (s *State) knownAddresses() []string {
	peers := s.RetrieveKnownPeers()

	addrs := make([]string, len(peers))
	for i, p := range peers {
		addrs[i] = p.Host
	}

	return addrs
}

// =============================================================================

// signalMining lets the worker know there are transactions to mine.
func (s *State) signalMining() {
	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}
}
