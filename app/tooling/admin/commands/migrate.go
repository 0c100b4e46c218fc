package commands

import (
	"fmt"
	"io"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
)

// Migrate copies a valid chain from one storage into another. The
// destination must be empty.
func Migrate(w io.Writer, from database.Storage, to database.Storage) error {
	chain, err := database.ReadChain(from)
	if err != nil {
		return err
	}

	if err := database.ValidateChain(chain); err != nil {
		return err
	}

	existing, err := database.ReadChain(to)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("destination holds %d blocks", len(existing))
	}

	for _, block := range chain {
		if err := to.Write(block); err != nil {
			return fmt.Errorf("writing block %d: %w", block.Index, err)
		}
	}

	fmt.Fprintf(w, "Migrated blocks[%d]\n", len(chain))

	return nil
}
