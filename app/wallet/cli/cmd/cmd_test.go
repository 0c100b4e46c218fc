package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RyanLatimer/Corundum/business/web/errs"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
)

func Test_Send(t *testing.T) {
	accountPath = t.TempDir()
	accountName = "kennedy"

	address, err := generate()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}

	if _, err := generate(); err == nil {
		t.Fatalf("Should not overwrite an existing key file.")
	}

	privateKey, loaded, err := loadAccount()
	if err != nil {
		t.Fatalf("Should be able to load the key: %s", err)
	}

	if loaded != address {
		t.Logf("got: %s", loaded)
		t.Logf("exp: %s", address)
		t.Fatalf("Should load the key that was generated.")
	}

	var got database.Tx
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tx/submit" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(status{Status: "transaction added to mempool", Hash: got.Hash()})
	}))
	defer srv.Close()
	url = srv.URL

	resp, err := send(privateKey, "0xF01", 25)
	if err != nil {
		t.Fatalf("Should be able to send the transaction: %s", err)
	}

	if got.Sender != address || got.Receiver != "0xF01" || got.Amount != 25 {
		t.Logf("got: %s", got)
		t.Fatalf("Should submit the transaction details.")
	}

	if !got.Verify() {
		t.Fatalf("Should submit a transaction signed by the account.")
	}

	if resp.Hash != got.Hash() {
		t.Logf("got: %s", resp.Hash)
		t.Logf("exp: %s", got.Hash())
		t.Fatalf("Should receive the transaction hash.")
	}
}

func Test_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errs.Response{Error: "insufficient balance"})
	}))
	defer srv.Close()
	url = srv.URL

	err := post("/v1/tx/submit", struct{}{}, nil)
	if err == nil {
		t.Fatalf("Should receive an error for a failed request.")
	}

	if !strings.Contains(err.Error(), "insufficient balance") {
		t.Logf("got: %s", err)
		t.Logf("exp: %s", "insufficient balance")
		t.Fatalf("Should carry the error message from the node.")
	}
}

func Test_PrintChain(t *testing.T) {
	blocks := []block{
		{
			Index: 1,
			Hash:  "00ab",
			Transactions: []tx{
				{Hash: "ff01", Sender: "SYSTEM", SenderName: "SYSTEM", Receiver: "0xF01", ReceiverName: "kennedy", Amount: 50},
			},
		},
	}

	var buf strings.Builder
	printChain(&buf, blocks)

	exp := "SYSTEM -> kennedy(0xF01): 50"
	if !strings.Contains(buf.String(), exp) {
		t.Logf("got: %s", buf.String())
		t.Logf("exp: %s", exp)
		t.Fatalf("Should print the transactions with their names.")
	}
}
