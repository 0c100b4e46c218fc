// Package database handles all the lower level support for maintaining the
// blockchain in memory and on disk. It defines the transaction and block
// data structures and the ledger that validates and holds the chain.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/genesis"
)

// Set of error variables for the ledger.
var (
	ErrNothingToMine  = errors.New("nothing to mine")
	ErrChainNotLonger = errors.New("received chain is not longer")
	ErrChainInvalid   = errors.New("chain is invalid")
	ErrDecode         = errors.New("decode failure")
	ErrStorage        = errors.New("storage failure")
)

// =============================================================================

// ValidationError identifies the block that failed chain validation.
type ValidationError struct {
	Index  uint64
	Reason string
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("block %d: %s", ve.Index, ve.Reason)
}

// Unwrap allows errors.Is to match ErrChainInvalid.
func (ve *ValidationError) Unwrap() error {
	return ErrChainInvalid
}

// =============================================================================

// TxSource represents the set of pending transactions a new block is
// assembled from.
type TxSource interface {
	Copy() []Tx
	Delete(trans []Tx)
}

// Ledger manages the chain of blocks.
type Ledger struct {
	mu sync.RWMutex

	genesis   genesis.Genesis
	chain     []Block
	storage   Storage
	evHandler func(v string, args ...any)
}

// New constructs a ledger and loads the chain from the storage. An empty
// storage is seeded with the genesis block. A nil storage keeps the chain in
// memory only.
func New(gen genesis.Genesis, storage Storage, evHandler func(v string, args ...any)) (*Ledger, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	l := Ledger{
		genesis:   gen,
		storage:   storage,
		evHandler: ev,
	}

	if storage == nil {
		l.chain = []Block{Genesis(gen)}
		return &l, nil
	}

	chain, err := ReadChain(storage)
	if err != nil {
		return nil, err
	}

	if len(chain) == 0 {
		ev("database: New: seeding storage with genesis")

		gb := Genesis(gen)
		if err := storage.Write(gb); err != nil {
			return nil, fmt.Errorf("writing genesis: %w", err)
		}
		chain = []Block{gb}
	}

	if err := ValidateChain(chain); err != nil {
		return nil, fmt.Errorf("loading chain: %w", err)
	}

	ev("database: New: loaded chain: blocks[%d]", len(chain))

	l.chain = chain

	return &l, nil
}

// Close closes the storage.
func (l *Ledger) Close() error {
	if l.storage == nil {
		return nil
	}
	return l.storage.Close()
}

// Genesis returns the genesis values the ledger was built with.
func (l *Ledger) Genesis() genesis.Genesis {
	return l.genesis
}

// Latest returns a copy of the last block in the chain.
func (l *Ledger) Latest() Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.chain[len(l.chain)-1].clone()
}

// Length returns the number of blocks in the chain.
func (l *Ledger) Length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.chain)
}

// Copy returns a copy of the chain that shares no memory with the ledger.
func (l *Ledger) Copy() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return copyChain(l.chain)
}

// Transactions returns every transaction in the chain in chain order.
func (l *Ledger) Transactions() []Tx {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var trans []Tx
	for _, block := range l.chain {
		trans = append(trans, block.Transactions...)
	}

	return trans
}

// Balance folds over every transaction in the chain. The amount is subtracted
// when the address is the sender and added when the address is the receiver.
// System issued value has no matching debit, so the system address itself
// trends negative without bound.
func (l *Ledger) Balance(address string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var balance int64
	for _, block := range l.chain {
		for _, tx := range block.Transactions {
			if tx.Sender == address {
				balance -= int64(tx.Amount)
			}
			if tx.Receiver == address {
				balance += int64(tx.Amount)
			}
		}
	}

	return balance
}

// AppendMinedBlock assembles a new block from the pending transactions plus a
// mining reward, performs the proof of work, and appends the block to the
// chain. Only the transactions included in the block are removed from the
// source.
func (l *Ledger) AppendMinedBlock(ctx context.Context, pool TxSource, miner string, reward uint64, difficulty uint16) (Block, error) {
	trans := pool.Copy()
	if len(trans) == 0 {
		return Block{}, ErrNothingToMine
	}

	l.evHandler("database: AppendMinedBlock: MINING: pending txs[%d]", len(trans))

	// Pay the miner for the work.
	trans = append(trans, NewRewardTx(miner, reward))

	latest := l.Latest()
	block := NewBlock(uint64(l.Length()), trans, latest.Hash)

	if _, err := block.Mine(ctx, difficulty, l.evHandler); err != nil {
		return Block{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// The chain can't change under a mining operation when the caller holds
	// the node lock. Check anyway so a misuse can't corrupt the chain.
	if l.chain[len(l.chain)-1].Hash != block.PrevHash {
		return Block{}, errors.New("chain changed while mining")
	}

	if err := l.write(block); err != nil {
		return Block{}, err
	}
	l.chain = append(l.chain, block)

	// Remove the included transactions from the source.
	pool.Delete(trans[:len(trans)-1])

	l.evHandler("database: AppendMinedBlock: MINING: appended %s", block)

	return block.clone(), nil
}

// AppendBlock adds a block received from a peer to the end of the chain. The
// block must be the next block in the chain and pass validation.
func (l *Ledger) AppendBlock(block Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := validateNext(l.chain[len(l.chain)-1], block); err != nil {
		return err
	}

	if err := l.write(block); err != nil {
		return err
	}
	l.chain = append(l.chain, block.clone())

	l.evHandler("database: AppendBlock: appended %s", block)

	return nil
}

// ReplaceChain installs the candidate chain if it's longer than the current
// chain and valid on its own. A rejected candidate, or one the storage fails
// to persist, leaves the chain unchanged. Storage failures are reported with
// ErrStorage.
func (l *Ledger) ReplaceChain(candidate []Block) error {
	current := l.Length()
	if len(candidate) <= current {
		return fmt.Errorf("%w: got %d, have %d", ErrChainNotLonger, len(candidate), current)
	}

	if err := ValidateChain(candidate); err != nil {
		return err
	}

	chain := copyChain(candidate)

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(chain) <= len(l.chain) {
		return fmt.Errorf("%w: got %d, have %d", ErrChainNotLonger, len(chain), len(l.chain))
	}

	// Persist before swapping. On failure put the current chain back.
	if l.storage != nil {
		if err := l.rewrite(chain); err != nil {
			if rerr := l.rewrite(l.chain); rerr != nil {
				return fmt.Errorf("%w: %w: restoring: %w", ErrStorage, err, rerr)
			}
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
	}

	l.chain = chain

	l.evHandler("database: ReplaceChain: replaced chain: blocks[%d]", len(chain))

	return nil
}

// write persists the block if storage is configured.
func (l *Ledger) write(block Block) error {
	if l.storage == nil {
		return nil
	}

	if err := l.storage.Write(block); err != nil {
		return fmt.Errorf("writing block %d: %w", block.Index, err)
	}

	return nil
}

// rewrite resets the storage and writes the specified chain.
func (l *Ledger) rewrite(chain []Block) error {
	if err := l.storage.Reset(); err != nil {
		return err
	}

	for _, block := range chain {
		if err := l.storage.Write(block); err != nil {
			return fmt.Errorf("writing block %d: %w", block.Index, err)
		}
	}

	return nil
}

// =============================================================================

// ValidateChain checks that every block's index is its position in the chain
// and, for every block after genesis, that the transactions verify, the stored
// hash matches the content, and the block links to the previous block. The
// first violation is returned as a ValidationError.
func ValidateChain(chain []Block) error {
	if len(chain) > 0 && chain[0].Index != 0 {
		return &ValidationError{Index: 0, Reason: fmt.Sprintf("index %d does not match position", chain[0].Index)}
	}

	for i := 1; i < len(chain); i++ {
		block := chain[i]
		prev := chain[i-1]

		if block.Index != uint64(i) {
			return &ValidationError{Index: uint64(i), Reason: fmt.Sprintf("index %d does not match position", block.Index)}
		}

		if !block.TransactionsValid() {
			return &ValidationError{Index: uint64(i), Reason: "invalid transaction"}
		}

		if block.Hash != block.ComputeHash() {
			return &ValidationError{Index: uint64(i), Reason: "invalid hash"}
		}

		if block.PrevHash != prev.Hash {
			return &ValidationError{Index: uint64(i), Reason: "broken link to previous block"}
		}
	}

	return nil
}

// IsValid reports whether the chain passes ValidateChain.
func IsValid(chain []Block) bool {
	return ValidateChain(chain) == nil
}

// validateNext applies the chain checks to a single block that is to be
// placed after prev.
func validateNext(prev Block, block Block) error {
	if block.Index != prev.Index+1 {
		return &ValidationError{Index: block.Index, Reason: fmt.Sprintf("not the next block, exp %d", prev.Index+1)}
	}

	if !block.TransactionsValid() {
		return &ValidationError{Index: block.Index, Reason: "invalid transaction"}
	}

	if block.Hash != block.ComputeHash() {
		return &ValidationError{Index: block.Index, Reason: "invalid hash"}
	}

	if block.PrevHash != prev.Hash {
		return &ValidationError{Index: block.Index, Reason: "broken link to previous block"}
	}

	return nil
}

// copyChain makes a copy of the chain that shares no memory with the original.
func copyChain(chain []Block) []Block {
	cpy := make([]Block, len(chain))
	for i, block := range chain {
		cpy[i] = block.clone()
	}
	return cpy
}
