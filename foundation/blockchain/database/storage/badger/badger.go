// Package badger implements the ability to read and write blocks to a
// BadgerDB key/value store.
package badger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/dgraph-io/badger/v4"
)

// blockPrefix is the key prefix for every block in the store.
var blockPrefix = []byte("block:")

// Badger represents the serialization implementation for reading and storing
// blocks in BadgerDB. Keys are the block number in big endian so the key
// order matches the chain order. This implements the database.Storage
// interface.
type Badger struct {
	db *badger.DB
}

// New constructs a Badger value for use with the database in the
// specified directory.
func New(dbPath string) (*Badger, error) {
	return open(badger.DefaultOptions(dbPath).WithLogger(nil))
}

// NewInMemory constructs a Badger value that keeps everything in memory.
func NewInMemory() (*Badger, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badger.Options) (*Badger, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}

	return &Badger{db: db}, nil
}

// Close closes the underlying database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// Write takes the specified database block and stores it under the
// block number.
func (b *Badger) Write(block database.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(block.Index), data)
	})
}

// GetBlock locates and returns the contents of the specified block by number.
func (b *Badger) GetBlock(num uint64) (database.Block, error) {
	var block database.Block

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(num))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("block %d does not exist", num)
			}
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &block)
		})
	})

	if err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// ForEach returns an iterator to walk through all the blocks starting with
// the genesis block. The blocks are read in a single read transaction.
func (b *Badger) ForEach() database.Iterator {
	var blocks []database.Block

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(blockPrefix); iter.ValidForPrefix(blockPrefix); iter.Next() {
			var block database.Block
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &block)
			})
			if err != nil {
				return err
			}
			blocks = append(blocks, block)
		}

		return nil
	})

	if err != nil {
		return database.NewFailedIterator(err)
	}

	return database.NewSliceIterator(blocks)
}

// Reset will clear out the blockchain in the store.
func (b *Badger) Reset() error {
	return b.db.DropPrefix(blockPrefix)
}

// key forms the key for the specified block number.
func key(num uint64) []byte {
	k := make([]byte, len(blockPrefix)+8)
	copy(k, blockPrefix)
	binary.BigEndian.PutUint64(k[len(blockPrefix):], num)
	return k
}
