package state

import (
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/message"
)

// SubmitTransaction accepts a transaction from a wallet for inclusion. Once
// admitted the transaction is shared with the known peers, through the
// worker when one is registered.
func (s *State) SubmitTransaction(tx database.Tx) error {
	added, err := func() (bool, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		return s.mempool.Admit(tx, s.ledger.Balance)
	}()

	if err != nil {
		return err
	}

	if !added {
		s.evHandler("state: SubmitTransaction: already pending: %s", tx)
		return nil
	}

	s.evHandler("state: SubmitTransaction: added: %s", tx)

	if s.Worker == nil {
		s.Broadcast(message.NewTransaction{Tx: tx})
		return nil
	}

	s.Worker.SignalShareTx(tx)
	s.Worker.SignalStartMining()

	return nil
}
