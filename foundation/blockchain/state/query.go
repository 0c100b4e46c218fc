package state

import "github.com/RyanLatimer/Corundum/foundation/blockchain/database"

// QueryBalance returns the balance of the specified address computed over
// the full chain.
func (s *State) QueryBalance(address string) int64 {
	return s.ledger.Balance(address)
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryChainLength returns the number of blocks in the chain.
func (s *State) QueryChainLength() int {
	return s.ledger.Length()
}

// ValidateChain validates the full chain. The returned error identifies
// the first invalid block.
func (s *State) ValidateChain() error {
	return database.ValidateChain(s.ledger.Copy())
}
