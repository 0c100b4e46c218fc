package disk_test

import (
	"path/filepath"
	"testing"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database/storage/disk"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database/storage/storagetest"
)

func Test_Disk(t *testing.T) {
	s, err := disk.New(filepath.Join(t.TempDir(), "blocks"))
	if err != nil {
		t.Fatalf("Should be able to construct the storage: %s", err)
	}
	defer s.Close()

	storagetest.Run(t, s)
}
