// Package storagetest provides a set of checks every database.Storage
// implementation must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/genesis"
)

// Chain constructs a valid chain of the specified length mined at the
// lowest difficulty.
func Chain(t *testing.T, length int) []database.Block {
	t.Helper()

	chain := []database.Block{database.Genesis(genesis.Default())}
	for i := 1; i < length; i++ {
		prev := chain[i-1]
		block := database.NewBlock(uint64(i), []database.Tx{database.NewRewardTx("miner", 50)}, prev.Hash)
		if _, err := block.Mine(context.Background(), 1, nil); err != nil {
			t.Fatalf("Should be able to mine block %d: %s", i, err)
		}
		chain = append(chain, block)
	}

	return chain
}

// Run writes a chain to the storage, reads it back, and resets it.
func Run(t *testing.T, s database.Storage) {
	t.Helper()

	chain := Chain(t, 3)

	for _, block := range chain {
		if err := s.Write(block); err != nil {
			t.Fatalf("Should be able to write block %d: %s", block.Index, err)
		}
	}

	block, err := s.GetBlock(1)
	if err != nil {
		t.Fatalf("Should be able to get block 1: %s", err)
	}

	if block.Hash != chain[1].Hash {
		t.Logf("got: %s", block.Hash)
		t.Logf("exp: %s", chain[1].Hash)
		t.Fatalf("Should get the same block back.")
	}

	if _, err := s.GetBlock(10); err == nil {
		t.Fatalf("Should not be able to get a block that was never written.")
	}

	var got []database.Block
	iter := s.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			t.Fatalf("Should be able to iterate: %s", err)
		}
		got = append(got, block)
	}

	if len(got) != len(chain) {
		t.Logf("got: %d", len(got))
		t.Logf("exp: %d", len(chain))
		t.Fatalf("Should iterate over every block.")
	}

	for i := range chain {
		if got[i].Hash != chain[i].Hash || got[i].Index != chain[i].Index {
			t.Fatalf("Should iterate in chain order, block %d is out of place.", i)
		}
	}

	if !database.IsValid(got) {
		t.Fatalf("Should read back a valid chain.")
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Should be able to reset the storage: %s", err)
	}

	iter = s.ForEach()
	if _, err := iter.Next(); !iter.Done() {
		t.Fatalf("Should have an empty storage after reset: %v", err)
	}

	if err := s.Write(chain[0]); err != nil {
		t.Fatalf("Should be able to write after reset: %s", err)
	}
}
