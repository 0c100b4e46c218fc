package signature_test

import (
	"testing"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey    = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	otherHexKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

// =============================================================================

func Test_Signing(t *testing.T) {
	data := []byte("Bill")

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sig, err := signature.Sign(pk, data)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	address := signature.Address(pk.PublicKey)
	if !signature.Verify(address, sig, data) {
		t.Fatalf("Should be able to verify the signature.")
	}

	if signature.Verify(address, sig, []byte("Jill")) {
		t.Fatalf("Should not verify the signature against different data.")
	}

	other, err := crypto.HexToECDSA(otherHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	if signature.Verify(signature.Address(other.PublicKey), sig, data) {
		t.Fatalf("Should not verify the signature against a different address.")
	}
}

func Test_VerifyGarbage(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	address := signature.Address(pk.PublicKey)

	type table struct {
		name    string
		address string
		sig     string
	}

	tt := []table{
		{name: "emptysig", address: address, sig: ""},
		{name: "nothex", address: address, sig: "0xzz"},
		{name: "short", address: address, sig: "0x0102030405"},
		{name: "zeros", address: address, sig: "0x" + signature.ZeroHash + signature.ZeroHash + "00"},
		{name: "badaddress", address: "alice", sig: "0x0102"},
		{name: "emptyaddress", address: "", sig: "0x0102"},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			if signature.Verify(tst.address, tst.sig, []byte("Bill")) {
				t.Fatalf("Test %s:\tShould not verify a malformed signature.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Address(t *testing.T) {
	pk, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}

	address := signature.Address(pk.PublicKey)

	publicKey, err := signature.PublicKey(address)
	if err != nil {
		t.Fatalf("Should be able to convert the address back to a public key: %s", err)
	}

	if !publicKey.Equal(&pk.PublicKey) {
		t.Fatalf("Should get back the same public key.")
	}
}

func Test_Hash(t *testing.T) {
	value := struct {
		Name string
	}{
		Name: "Bill",
	}
	hash := "0f6887ac85101d6d6425a617edf35bd721b5f619fb92c36c3d2224e3bdb0ee5a"

	h := signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h[:6])
	}

	h = signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash twice.")
	}
}
