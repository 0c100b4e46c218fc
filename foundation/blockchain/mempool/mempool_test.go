package mempool_test

import (
	"errors"
	"testing"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/mempool"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	aliceHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	bobHexKey   = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

func signedTx(t *testing.T, hexKey string, receiver string, amount uint64) database.Tx {
	t.Helper()

	pk, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}

	tx, err := database.NewTx(signature.Address(pk.PublicKey), receiver, amount).Sign(pk)
	if err != nil {
		t.Fatalf("Should be able to sign the transaction: %s", err)
	}

	return tx
}

// balances returns a balance function over a fixed set of balances.
func balances(m map[string]int64) mempool.BalanceFunc {
	return func(address string) int64 {
		return m[address]
	}
}

// =============================================================================

func Test_Admit(t *testing.T) {
	bobPK, err := crypto.HexToECDSA(bobHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the private key: %s", err)
	}
	bob := signature.Address(bobPK.PublicKey)

	tx := signedTx(t, aliceHexKey, bob, 10)
	alice := tx.Sender

	// A transaction claiming to be from alice carrying bob's signature.
	forged := database.NewTx(alice, bob, 10)
	sig, err := signature.Sign(bobPK, []byte(forged.Hash()))
	if err != nil {
		t.Fatalf("Should be able to sign the data: %s", err)
	}
	forged.Signature = sig

	unsigned := database.NewTx(alice, bob, 10)

	type table struct {
		name     string
		tx       database.Tx
		balances map[string]int64
		err      error
	}

	tt := []table{
		{name: "funded", tx: tx, balances: map[string]int64{alice: 10}},
		{name: "system", tx: database.NewRewardTx(bob, 1000)},
		{name: "forged", tx: forged, balances: map[string]int64{alice: 100}, err: mempool.ErrInvalidSignature},
		{name: "unsigned", tx: unsigned, balances: map[string]int64{alice: 100}, err: mempool.ErrInvalidSignature},
		{name: "underfunded", tx: tx, balances: map[string]int64{alice: 9}, err: mempool.ErrInsufficientBalance},
		{name: "negative", tx: tx, balances: map[string]int64{alice: -5}, err: mempool.ErrInsufficientBalance},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			mp, err := mempool.New()
			if err != nil {
				t.Fatalf("Should be able to construct the mempool: %s", err)
			}

			added, err := mp.Admit(tst.tx, balances(tst.balances))
			if !errors.Is(err, tst.err) {
				t.Logf("got: %v", err)
				t.Logf("exp: %v", tst.err)
				t.Fatalf("Should get the expected admission result.")
			}

			exp := 1
			if tst.err != nil {
				exp = 0
			}

			if added != (exp == 1) || mp.Count() != exp {
				t.Logf("got: %d", mp.Count())
				t.Logf("exp: %d", exp)
				t.Fatalf("Should have the expected number of transactions.")
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_AdmitDuplicate(t *testing.T) {
	mp, err := mempool.New()
	if err != nil {
		t.Fatalf("Should be able to construct the mempool: %s", err)
	}

	tx := signedTx(t, aliceHexKey, "bob", 10)
	bal := balances(map[string]int64{tx.Sender: 10})

	if added, err := mp.Admit(tx, bal); err != nil || !added {
		t.Fatalf("Should be able to admit the transaction: %v", err)
	}

	if added, err := mp.Admit(tx, bal); err != nil || added {
		t.Fatalf("Should ignore a transaction already in the pool: %v", err)
	}

	if mp.Count() != 1 || !mp.Contains(tx.Hash()) {
		t.Fatalf("Should hold the transaction once.")
	}
}

func Test_Order(t *testing.T) {
	mp, err := mempool.New()
	if err != nil {
		t.Fatalf("Should be able to construct the mempool: %s", err)
	}

	var trans []database.Tx
	for _, receiver := range []string{"c", "a", "d", "b"} {
		tx := database.NewRewardTx(receiver, 1)
		trans = append(trans, tx)
		if _, err := mp.Admit(tx, nil); err != nil {
			t.Fatalf("Should be able to admit the transaction: %s", err)
		}
	}

	mp.Delete([]database.Tx{trans[2], database.NewRewardTx("z", 99)})

	exp := []database.Tx{trans[0], trans[1], trans[3]}

	got := mp.Copy()
	if len(got) != len(exp) {
		t.Fatalf("Should have %d transactions, got %d.", len(exp), len(got))
	}

	for i := range exp {
		if got[i].Hash() != exp[i].Hash() {
			t.Logf("got: %s", got[i])
			t.Logf("exp: %s", exp[i])
			t.Fatalf("Should keep the admission order at %d.", i)
		}
	}

	drained := mp.Drain()
	if len(drained) != len(exp) || drained[0].Hash() != exp[0].Hash() {
		t.Fatalf("Should drain the transactions in admission order.")
	}

	if mp.Count() != 0 || len(mp.Drain()) != 0 {
		t.Fatalf("Should have an empty pool after draining.")
	}
}

func Test_MaxSize(t *testing.T) {
	mp, err := mempool.NewWithMaxSize(2)
	if err != nil {
		t.Fatalf("Should be able to construct the mempool: %s", err)
	}

	for _, receiver := range []string{"a", "b"} {
		if _, err := mp.Admit(database.NewRewardTx(receiver, 1), nil); err != nil {
			t.Fatalf("Should be able to admit the transaction: %s", err)
		}
	}

	if _, err := mp.Admit(database.NewRewardTx("c", 1), nil); !errors.Is(err, mempool.ErrPoolFull) {
		t.Fatalf("Should not admit past the capacity: %v", err)
	}

	mp.Truncate()

	if _, err := mp.Admit(database.NewRewardTx("c", 1), nil); err != nil {
		t.Fatalf("Should admit after truncating: %s", err)
	}
}
