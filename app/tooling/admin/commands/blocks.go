package commands

import (
	"fmt"
	"io"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
)

// Blocks prints every block in the stored chain with its transactions.
func Blocks(w io.Writer, storage database.Storage) error {
	chain, err := database.ReadChain(storage)
	if err != nil {
		return err
	}

	for _, block := range chain {
		fmt.Fprintf(w, "Block: %d  Hash: %s  Prev: %s  Nonce: %d  Txs: %d\n",
			block.Index, block.Hash, block.PrevHash, block.Nonce, len(block.Transactions))

		for _, tx := range block.Transactions {
			fmt.Fprintf(w, "  Tx: %s  From: %s  To: %s  Amount: %d\n",
				tx.Hash(), database.ShortAddress(tx.Sender), database.ShortAddress(tx.Receiver), tx.Amount)
		}
	}

	return nil
}
