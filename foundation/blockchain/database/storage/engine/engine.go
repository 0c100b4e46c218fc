// Package engine opens the chain storage selected by name.
package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database/storage/badger"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database/storage/bolt"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database/storage/disk"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database/storage/memory"
)

// Set of storage engine names.
const (
	Memory = "memory"
	Disk   = "disk"
	Badger = "badger"
	Bolt   = "bolt"
)

// Names lists the supported storage engines.
var Names = []string{Memory, Disk, Badger, Bolt}

// Open constructs the named storage engine rooted at the specified folder.
// Every engine keeps its files in its own location under the folder so the
// engines can share one data folder.
func Open(name string, dbPath string) (database.Storage, error) {
	switch name {
	case Memory:
		return memory.New()

	case Disk:
		return disk.New(filepath.Join(dbPath, "blocks"))

	case Badger:
		return badger.New(filepath.Join(dbPath, "badger"))

	case Bolt:
		if err := os.MkdirAll(dbPath, 0755); err != nil {
			return nil, err
		}
		return bolt.New(filepath.Join(dbPath, "blocks.bolt"))
	}

	return nil, fmt.Errorf("unknown storage engine %q", name)
}
