package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/signature"
	"github.com/RyanLatimer/Corundum/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

func Test_NameService(t *testing.T) {
	root := t.TempDir()

	pk, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}

	if err := crypto.SaveECDSA(filepath.Join(root, "alice.ecdsa"), pk); err != nil {
		t.Fatalf("Should be able to save the key: %s", err)
	}

	ns, err := nameservice.New(root)
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	address := signature.Address(pk.PublicKey)

	if got := ns.Lookup(address); got != "alice" {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", "alice")
		t.Fatalf("Should find the name for the address.")
	}

	if got, ok := ns.Address("alice"); !ok || got != address {
		t.Fatalf("Should find the address for the name.")
	}

	if got := ns.Lookup("unknown"); got != "unknown" {
		t.Fatalf("Should return an unknown address as is.")
	}

	if len(ns.Copy()) != 1 {
		t.Fatalf("Should have one name.")
	}
}
