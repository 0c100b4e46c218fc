// Package bolt implements the ability to read and write blocks to a
// BoltDB file.
package bolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/boltdb/bolt"
)

// blocksBucket is the bucket holding every block.
var blocksBucket = []byte("blocks")

// Bolt represents the serialization implementation for reading and storing
// blocks in a single BoltDB file. This implements the database.Storage
// interface.
type Bolt struct {
	db *bolt.DB
}

// New constructs a Bolt value for use with the database file at the
// specified path.
func New(dbPath string) (*Bolt, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blocksBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close closes the underlying database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Write takes the specified database block and stores it under the
// block number.
func (b *Bolt) Write(block database.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blocksBucket).Put(key(block.Index), data)
	})
}

// GetBlock locates and returns the contents of the specified block by number.
func (b *Bolt) GetBlock(num uint64) (database.Block, error) {
	var block database.Block

	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(blocksBucket).Get(key(num))
		if data == nil {
			return fmt.Errorf("block %d does not exist", num)
		}
		return json.Unmarshal(data, &block)
	})

	if err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// ForEach returns an iterator to walk through all the blocks starting with
// the genesis block. The blocks are read in a single read transaction.
func (b *Bolt) ForEach() database.Iterator {
	var blocks []database.Block

	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(blocksBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var block database.Block
			if err := json.Unmarshal(v, &block); err != nil {
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

// Reset will clear out the blockchain in the file.
func (b *Bolt) Reset() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(blocksBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(blocksBucket)
		return err
	})
}

// key forms the key for the specified block number.
func key(num uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, num)
	return k
}
