package bolt_test

import (
	"path/filepath"
	"testing"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database/storage/bolt"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database/storage/storagetest"
)

func Test_Bolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corundum.db")

	s, err := bolt.New(path)
	if err != nil {
		t.Fatalf("Should be able to open the database: %s", err)
	}

	storagetest.Run(t, s)

	if err := s.Close(); err != nil {
		t.Fatalf("Should be able to close the database: %s", err)
	}

	// Reopen to make sure the data was persisted.
	s, err = bolt.New(path)
	if err != nil {
		t.Fatalf("Should be able to reopen the database: %s", err)
	}
	defer s.Close()

	if _, err := s.GetBlock(0); err != nil {
		t.Fatalf("Should be able to read the genesis block after reopening: %s", err)
	}
}
