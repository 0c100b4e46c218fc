package commands

import (
	"fmt"
	"io"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
)

// Validate checks the integrity of the stored chain.
func Validate(w io.Writer, storage database.Storage) error {
	chain, err := database.ReadChain(storage)
	if err != nil {
		return err
	}

	if err := database.ValidateChain(chain); err != nil {
		return err
	}

	fmt.Fprintf(w, "Chain is valid: blocks[%d]\n", len(chain))

	return nil
}
