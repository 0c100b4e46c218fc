package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/genesis"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/signature"
	"github.com/RyanLatimer/Corundum/foundation/validate"
)

// GenesisPrevHash is the previous hash recorded in the genesis block.
const GenesisPrevHash = "0"

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	Index        uint64 `json:"index"`         // Position of the block in the chain.
	TimeStamp    uint64 `json:"timestamp"`     // Unix milliseconds when the block was created.
	Transactions []Tx   `json:"transactions"`  // Transactions in the order they were added.
	PrevHash     string `json:"previous_hash"` // Hash of the previous block in the chain.
	Nonce        uint64 `json:"nonce"`         // Value identified to solve the hash solution.
	Hash         string `json:"hash"`          // Content hash of the block.
}

// NewBlock constructs a block that still needs to be mined.
func NewBlock(index uint64, trans []Tx, prevHash string) Block {
	b := Block{
		Index:        index,
		TimeStamp:    uint64(time.Now().UTC().UnixMilli()),
		Transactions: append([]Tx(nil), trans...),
		PrevHash:     prevHash,
		Nonce:        0,
	}
	b.Hash = b.ComputeHash()

	return b
}

// Genesis constructs the first block of the chain. The block only depends on
// the genesis values so every node builds an identical genesis block.
func Genesis(gen genesis.Genesis) Block {
	ts := uint64(gen.Date.UTC().UnixMilli())

	tx := Tx{
		Sender:    SystemAddress,
		Receiver:  GenesisAddress,
		Amount:    0,
		TimeStamp: ts,
	}

	b := Block{
		Index:        0,
		TimeStamp:    ts,
		Transactions: []Tx{tx},
		PrevHash:     GenesisPrevHash,
		Nonce:        0,
	}
	b.Hash = b.ComputeHash()

	return b
}

// ComputeHash returns the content hash for the block. Everything except the
// stored hash is part of the content, including transaction signatures.
func (b Block) ComputeHash() string {
	content := struct {
		Index        uint64 `json:"index"`
		TimeStamp    uint64 `json:"timestamp"`
		Transactions []Tx   `json:"transactions"`
		PrevHash     string `json:"previous_hash"`
		Nonce        uint64 `json:"nonce"`
	}{
		Index:        b.Index,
		TimeStamp:    b.TimeStamp,
		Transactions: b.Transactions,
		PrevHash:     b.PrevHash,
		Nonce:        b.Nonce,
	}

	return signature.Hash(content)
}

// Mine does the work of finding a nonce that produces a hash with the
// specified number of leading zeros. The search starts at the current nonce.
// Pointer semantics are being used since a nonce is being discovered.
func (b *Block) Mine(ctx context.Context, difficulty uint16, ev func(v string, args ...any)) (string, error) {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("database: Mine: MINING: started: blk[%d]: txs[%d]", b.Index, len(b.Transactions))
	defer ev("database: Mine: MINING: completed: blk[%d]", b.Index)

	start := time.Now()

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: Mine: MINING: attempts[%d]", attempts)
		}

		// Did we get cancelled trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: Mine: MINING: CANCELLED")
			return "", ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.ComputeHash()
		if !IsHashSolved(difficulty, hash) {
			b.Nonce++
			continue
		}

		b.Hash = hash

		ev("database: Mine: MINING: SOLVED: blk[%d]: nonce[%d]: hash[%s]: duration[%v]", b.Index, b.Nonce, hash, time.Since(start).Round(time.Millisecond))

		return hash, nil
	}
}

// TransactionsValid reports whether every transaction in the block verifies
// and carries an amount a balance can hold.
func (b Block) TransactionsValid() bool {
	for _, tx := range b.Transactions {
		if tx.Amount > MaxAmount || !tx.Verify() {
			return false
		}
	}

	return true
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("blk[%d]: txs[%d]: nonce[%d]: hash[%s]", b.Index, len(b.Transactions), b.Nonce, b.Hash)
}

// clone makes a copy of the block that shares no memory with the original.
func (b Block) clone() Block {
	b.Transactions = append([]Tx(nil), b.Transactions...)
	return b
}

// IsHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func IsHashSolved(difficulty uint16, hash string) bool {
	if int(difficulty) > len(hash) {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == int(difficulty)
}

// =============================================================================

// blockData is the wire form of a block. Pointers distinguish a missing
// field from a zero value.
type blockData struct {
	Index        *uint64           `json:"index" validate:"required"`
	TimeStamp    *uint64           `json:"timestamp" validate:"required"`
	Transactions []json.RawMessage `json:"transactions" validate:"required"`
	PrevHash     string            `json:"previous_hash" validate:"required"`
	Nonce        *uint64           `json:"nonce" validate:"required"`
	Hash         string            `json:"hash" validate:"required"`
}

// DecodeBlock constructs a block from its wire form. Every transaction is
// decoded with DecodeTx. Missing fields or fields of the wrong type result
// in an ErrDecode error.
func DecodeBlock(data []byte) (Block, error) {
	var bd blockData
	if err := json.Unmarshal(data, &bd); err != nil {
		return Block{}, fmt.Errorf("%w: block: %w", ErrDecode, err)
	}

	if err := validate.Check(bd); err != nil {
		return Block{}, fmt.Errorf("%w: block: %w", ErrDecode, err)
	}

	trans := make([]Tx, len(bd.Transactions))
	for i, raw := range bd.Transactions {
		tx, err := DecodeTx(raw)
		if err != nil {
			return Block{}, fmt.Errorf("block[%d]: tx[%d]: %w", *bd.Index, i, err)
		}
		trans[i] = tx
	}

	b := Block{
		Index:        *bd.Index,
		TimeStamp:    *bd.TimeStamp,
		Transactions: trans,
		PrevHash:     bd.PrevHash,
		Nonce:        *bd.Nonce,
		Hash:         bd.Hash,
	}

	return b, nil
}

// DecodeChain constructs a chain from its wire form, a JSON array of blocks.
func DecodeChain(data []byte) ([]Block, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: chain: %w", ErrDecode, err)
	}

	chain := make([]Block, len(raws))
	for i, raw := range raws {
		block, err := DecodeBlock(raw)
		if err != nil {
			return nil, fmt.Errorf("chain[%d]: %w", i, err)
		}
		chain[i] = block
	}

	return chain, nil
}
