package database

import "errors"

// ErrEndOfChain is returned by an iterator when there are no more blocks.
var ErrEndOfChain = errors.New("end of chain")

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(block Block) error
	GetBlock(num uint64) (Block, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// ReadChain reads every block from the storage starting with the genesis
// block.
func ReadChain(storage Storage) ([]Block, error) {
	var chain []Block
	iter := storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		chain = append(chain, block)
	}

	return chain, nil
}

// =============================================================================

// SliceIterator walks a set of blocks that were read into memory. Storage
// implementations that must read inside a transaction use it.
type SliceIterator struct {
	blocks  []Block
	current int
	eoc     bool
	err     error
}

// NewSliceIterator constructs an iterator over the specified blocks.
func NewSliceIterator(blocks []Block) *SliceIterator {
	return &SliceIterator{blocks: blocks}
}

// NewFailedIterator constructs an iterator that reports the specified error
// on the first call to Next.
func NewFailedIterator(err error) *SliceIterator {
	return &SliceIterator{err: err}
}

// Next retrieves the next block.
func (si *SliceIterator) Next() (Block, error) {
	if si.err != nil && !si.eoc {
		err := si.err
		si.err = nil
		return Block{}, err
	}

	if si.eoc || si.current >= len(si.blocks) {
		si.eoc = true
		return Block{}, ErrEndOfChain
	}

	block := si.blocks[si.current]
	si.current++

	return block, nil
}

// Done returns the end of chain value.
func (si *SliceIterator) Done() bool {
	return si.eoc
}
