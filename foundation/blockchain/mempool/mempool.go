// Package mempool maintains the pool of pending transactions for the
// blockchain.
package mempool

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
)

// Set of error variables for admitting transactions.
var (
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrPoolFull            = errors.New("mempool is full")
)

// BalanceFunc returns the committed balance for the specified address.
type BalanceFunc func(address string) int64

// Mempool represents a cache of pending transactions keyed by their content
// hash. Transactions are kept in the order they were admitted.
type Mempool struct {
	mu      sync.RWMutex
	pool    map[string]database.Tx
	order   []string
	maxSize int
}

// New constructs a new mempool with no capacity limit.
func New() (*Mempool, error) {
	return NewWithMaxSize(0)
}

// NewWithMaxSize constructs a new mempool that holds at most maxSize
// transactions. A value of 0 means there is no limit.
func NewWithMaxSize(maxSize int) (*Mempool, error) {
	if maxSize < 0 {
		return nil, fmt.Errorf("invalid max size %d", maxSize)
	}

	mp := Mempool{
		pool:    make(map[string]database.Tx),
		maxSize: maxSize,
	}

	return &mp, nil
}

// MaxSize returns the capacity of the pool, 0 means unbounded.
func (mp *Mempool) MaxSize() int {
	return mp.maxSize
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Contains reports whether a transaction with the specified content hash is
// in the pool.
func (mp *Mempool) Contains(hash string) bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	_, exists := mp.pool[hash]
	return exists
}

// Admit validates the transaction and adds it to the pool. Transactions from
// the system address are admitted without checks. Any other transaction must
// carry a valid signature and the sender's committed balance must cover the
// amount. Spends that are still pending in the pool are not reserved, so a
// sender can have more value pending than they own. A transaction already in
// the pool is ignored. The return value reports whether the transaction was
// added.
func (mp *Mempool) Admit(tx database.Tx, balance BalanceFunc) (bool, error) {
	if !tx.IsSystem() {
		if !tx.Verify() {
			return false, ErrInvalidSignature
		}

		// The balance is read before taking the pool lock. The ledger
		// holds its own lock while removing mined transactions from here.
		have := balance(tx.Sender)
		if tx.Amount > math.MaxInt64 || have < int64(tx.Amount) {
			return false, fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, have, tx.Amount)
		}
	}

	hash := tx.Hash()

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.pool[hash]; exists {
		return false, nil
	}

	if mp.maxSize > 0 && len(mp.pool) >= mp.maxSize {
		return false, fmt.Errorf("%w: size %d", ErrPoolFull, mp.maxSize)
	}

	mp.pool[hash] = tx
	mp.order = append(mp.order, hash)

	return true, nil
}

// Copy returns the transactions in the pool in the order they were admitted.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	trans := make([]database.Tx, 0, len(mp.order))
	for _, hash := range mp.order {
		trans = append(trans, mp.pool[hash])
	}

	return trans
}

// Drain empties the pool and returns what it held in the order the
// transactions were admitted.
func (mp *Mempool) Drain() []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := make([]database.Tx, 0, len(mp.order))
	for _, hash := range mp.order {
		trans = append(trans, mp.pool[hash])
	}

	mp.pool = make(map[string]database.Tx)
	mp.order = nil

	return trans
}

// Delete removes the specified transactions from the pool. Transactions
// that are not in the pool are ignored.
func (mp *Mempool) Delete(trans []database.Tx) {
	if len(trans) == 0 {
		return
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	var deleted bool
	for _, tx := range trans {
		hash := tx.Hash()
		if _, exists := mp.pool[hash]; exists {
			delete(mp.pool, hash)
			deleted = true
		}
	}

	if !deleted {
		return
	}

	order := mp.order[:0]
	for _, hash := range mp.order {
		if _, exists := mp.pool[hash]; exists {
			order = append(order, hash)
		}
	}
	mp.order = order
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Tx)
	mp.order = nil
}
