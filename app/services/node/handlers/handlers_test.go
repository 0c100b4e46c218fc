package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RyanLatimer/Corundum/app/services/node/handlers"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/genesis"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/signature"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/state"
	"github.com/RyanLatimer/Corundum/foundation/events"
	"github.com/RyanLatimer/Corundum/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

func Test_PublicAPI(t *testing.T) {
	folder := t.TempDir()

	alice, err := signature.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}
	if err := crypto.SaveECDSA(filepath.Join(folder, "alice"+nameservice.KeyExt), alice); err != nil {
		t.Fatalf("Should be able to save the key: %s", err)
	}
	aliceAddress := signature.Address(alice.PublicKey)

	ns, err := nameservice.New(folder)
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	st, err := state.New(state.Config{
		MinerAddress: "miner",
		Genesis: genesis.Genesis{
			Date:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			Difficulty:   1,
			MiningReward: 50,
		},
	})
	if err != nil {
		t.Fatalf("Should be able to construct the node: %s", err)
	}
	defer st.Shutdown()

	mux, err := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	})
	if err != nil {
		t.Fatalf("Should be able to construct the mux: %s", err)
	}

	call := func(method string, path string, body any, v any) int {
		t.Helper()

		var buf bytes.Buffer
		if body != nil {
			json.NewEncoder(&buf).Encode(body)
		}

		r := httptest.NewRequest(method, path, &buf)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)

		if v != nil {
			if err := json.NewDecoder(w.Body).Decode(v); err != nil {
				t.Fatalf("Should be able to decode the %s response: %s", path, err)
			}
		}

		return w.Code
	}

	var errResp struct {
		Error string `json:"error"`
	}

	if code := call(http.MethodPost, "/v1/mine", nil, &errResp); code != http.StatusBadRequest {
		t.Logf("got: %d", code)
		t.Logf("exp: %d", http.StatusBadRequest)
		t.Fatalf("Should not mine with an empty mempool.")
	}

	unfunded, err := database.NewTx(aliceAddress, "bob", 10).Sign(alice)
	if err != nil {
		t.Fatalf("Should be able to sign: %s", err)
	}

	if code := call(http.MethodPost, "/v1/tx/submit", unfunded, &errResp); code != http.StatusBadRequest {
		t.Logf("got: %d %s", code, errResp.Error)
		t.Logf("exp: %d", http.StatusBadRequest)
		t.Fatalf("Should reject a transaction from an unfunded account.")
	}

	if code := call(http.MethodPost, "/v1/tx/submit", database.NewRewardTx(aliceAddress, 100), &errResp); code != http.StatusBadRequest {
		t.Logf("got: %d", code)
		t.Logf("exp: %d", http.StatusBadRequest)
		t.Fatalf("Should reject a system transaction from a wallet.")
	}

	// Fund alice directly through the node.
	if err := st.SubmitTransaction(database.NewRewardTx(aliceAddress, 100)); err != nil {
		t.Fatalf("Should be able to fund the account: %s", err)
	}

	var blk struct {
		Index uint64 `json:"index"`
	}
	if code := call(http.MethodPost, "/v1/mine", map[string]string{"miner": "alice"}, &blk); code != http.StatusOK {
		t.Logf("got: %d", code)
		t.Logf("exp: %d", http.StatusOK)
		t.Fatalf("Should be able to mine the pending transaction.")
	}

	if blk.Index != 1 {
		t.Logf("got: %d", blk.Index)
		t.Logf("exp: %d", 1)
		t.Fatalf("Should mine the block after genesis.")
	}

	var bal struct {
		Account string `json:"account"`
		Name    string `json:"name"`
		Balance int64  `json:"balance"`
	}
	call(http.MethodGet, "/v1/balance/alice", nil, &bal)

	if bal.Account != aliceAddress || bal.Name != "alice" || bal.Balance != 150 {
		t.Logf("got: %+v", bal)
		t.Logf("exp: %d", 150)
		t.Fatalf("Should receive the funds and the mining reward.")
	}

	funded, err := database.NewTx(aliceAddress, "bob", 10).Sign(alice)
	if err != nil {
		t.Fatalf("Should be able to sign: %s", err)
	}

	if code := call(http.MethodPost, "/v1/tx/submit", funded, nil); code != http.StatusOK {
		t.Logf("got: %d", code)
		t.Logf("exp: %d", http.StatusOK)
		t.Fatalf("Should accept a transaction from a funded account.")
	}

	var pending []struct {
		Hash       string `json:"hash"`
		SenderName string `json:"sender_name"`
	}
	call(http.MethodGet, "/v1/tx/pending", nil, &pending)

	if len(pending) != 1 || pending[0].Hash != funded.Hash() || pending[0].SenderName != "alice" {
		t.Logf("got: %+v", pending)
		t.Fatalf("Should list the pending transaction.")
	}

	var chain []struct {
		Hash string `json:"hash"`
	}
	call(http.MethodGet, "/v1/chain", nil, &chain)

	if len(chain) != 2 {
		t.Logf("got: %d", len(chain))
		t.Logf("exp: %d", 2)
		t.Fatalf("Should return every block.")
	}

	var valid struct {
		Valid  bool `json:"valid"`
		Length int  `json:"length"`
	}
	call(http.MethodGet, "/v1/chain/validate", nil, &valid)

	if !valid.Valid || valid.Length != 2 {
		t.Logf("got: %+v", valid)
		t.Fatalf("Should report a valid chain.")
	}

	var fieldsResp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if code := call(http.MethodPost, "/v1/peers/connect", map[string]any{"host": "localhost"}, &fieldsResp); code != http.StatusBadRequest {
		t.Logf("got: %d", code)
		t.Logf("exp: %d", http.StatusBadRequest)
		t.Fatalf("Should reject a connect request without a port.")
	}

	if _, exists := fieldsResp.Fields["port"]; !exists {
		t.Logf("got: %+v", fieldsResp)
		t.Fatalf("Should report the missing field.")
	}
}
