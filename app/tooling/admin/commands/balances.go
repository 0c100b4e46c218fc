package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
)

// Balances prints the balance of every account in the stored chain, or
// only the specified account.
func Balances(w io.Writer, storage database.Storage, account string) error {
	chain, err := database.ReadChain(storage)
	if err != nil {
		return err
	}

	if len(chain) == 0 {
		return fmt.Errorf("storage holds no blocks")
	}

	fmt.Fprintf(w, "LatestBlockHash: %s\n\n", chain[len(chain)-1].Hash)

	bals := make(map[string]int64)
	for _, block := range chain {
		for _, tx := range block.Transactions {
			bals[tx.Sender] -= int64(tx.Amount)
			bals[tx.Receiver] += int64(tx.Amount)
		}
	}

	if account != "" {
		fmt.Fprintf(w, "Account: %s  Balance: %d\n", account, bals[account])
		return nil
	}

	accounts := make([]string, 0, len(bals))
	for act := range bals {
		accounts = append(accounts, act)
	}
	sort.Strings(accounts)

	for _, act := range accounts {
		fmt.Fprintf(w, "Account: %s  Balance: %d\n", act, bals[act])
	}

	return nil
}
