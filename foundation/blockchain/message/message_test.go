package message_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/genesis"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/message"
)

func testChain(t *testing.T) []database.Block {
	t.Helper()

	gb := database.Genesis(genesis.Default())

	block := database.NewBlock(1, []database.Tx{database.NewRewardTx("miner", 50)}, gb.Hash)
	if _, err := block.Mine(context.Background(), 1, nil); err != nil {
		t.Fatalf("Should be able to mine the block: %s", err)
	}

	return []database.Block{gb, block}
}

func Test_Codec(t *testing.T) {
	chain := testChain(t)

	type table struct {
		name string
		msg  message.Message
	}

	tt := []table{
		{name: "getchain", msg: message.GetChain{}},
		{name: "chain", msg: message.Chain{Blocks: chain}},
		{name: "newblock", msg: message.NewBlock{Block: chain[1]}},
		{name: "newtx", msg: message.NewTransaction{Tx: chain[1].Transactions[0]}},
		{name: "getpeers", msg: message.GetPeers{}},
		{name: "peers", msg: message.Peers{Addresses: []string{"localhost:9000", "localhost:9001"}}},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			line, err := message.Encode(tst.msg)
			if err != nil {
				t.Fatalf("Test %s:\tShould be able to encode the message: %s", tst.name, err)
			}

			if n := strings.Count(string(line), "\n"); n != 1 || line[len(line)-1] != '\n' {
				t.Fatalf("Test %s:\tShould encode to a single line: %q", tst.name, line)
			}

			msg, err := message.Decode(line)
			if err != nil {
				t.Fatalf("Test %s:\tShould be able to decode the message: %s", tst.name, err)
			}

			if msg.Type() != tst.msg.Type() {
				t.Logf("Test %s:\tgot: %s", tst.name, msg.Type())
				t.Logf("Test %s:\texp: %s", tst.name, tst.msg.Type())
				t.Fatalf("Test %s:\tShould decode the same type.", tst.name)
			}

			switch m := msg.(type) {
			case message.Chain:
				if !database.IsValid(m.Blocks) || m.Blocks[1].Hash != chain[1].Hash {
					t.Fatalf("Test %s:\tShould decode a valid chain.", tst.name)
				}
			case message.NewBlock:
				if m.Block.ComputeHash() != chain[1].Hash {
					t.Fatalf("Test %s:\tShould preserve the block hash.", tst.name)
				}
			case message.NewTransaction:
				if m.Tx.Hash() != chain[1].Transactions[0].Hash() {
					t.Fatalf("Test %s:\tShould preserve the transaction hash.", tst.name)
				}
			case message.Peers:
				if len(m.Addresses) != 2 {
					t.Fatalf("Test %s:\tShould decode the addresses.", tst.name)
				}
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_DecodeFailures(t *testing.T) {
	type table struct {
		name string
		line string
		err  error
	}

	tt := []table{
		{name: "unknown", line: `{"type":"PING"}`, err: message.ErrUnknownType},
		{name: "notjson", line: `GET_CHAIN`, err: database.ErrDecode},
		{name: "notype", line: `{"data":[]}`, err: database.ErrDecode},
		{name: "nodata", line: `{"type":"NEW_BLOCK"}`, err: database.ErrDecode},
		{name: "badblock", line: `{"type":"NEW_BLOCK","data":{"index":1}}`, err: database.ErrDecode},
		{name: "badtx", line: `{"type":"NEW_TRANSACTION","data":{"sender":"a","receiver":"b","amount":-1,"timestamp":1}}`, err: database.ErrDecode},
		{name: "badchain", line: `{"type":"CHAIN","data":{}}`, err: database.ErrDecode},
		{name: "badpeers", line: `{"type":"PEERS","data":[1,2]}`, err: database.ErrDecode},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			_, err := message.Decode([]byte(tst.line))
			if !errors.Is(err, tst.err) {
				t.Logf("Test %s:\tgot: %v", tst.name, err)
				t.Logf("Test %s:\texp: %v", tst.name, tst.err)
				t.Fatalf("Test %s:\tShould fail to decode the line.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_Scanner(t *testing.T) {
	var sb strings.Builder
	for _, msg := range []message.Message{message.GetChain{}, message.GetPeers{}} {
		if err := message.Write(&sb, msg); err != nil {
			t.Fatalf("Should be able to write the message: %s", err)
		}
	}

	var types []message.Type
	scanner := message.NewScanner(strings.NewReader(sb.String()), 0)
	for scanner.Scan() {
		msg, err := message.Decode(scanner.Bytes())
		if err != nil {
			t.Fatalf("Should be able to decode the line: %s", err)
		}
		types = append(types, msg.Type())
	}

	if len(types) != 2 || types[0] != message.TypeGetChain || types[1] != message.TypeGetPeers {
		t.Fatalf("Should read the messages in order: %v", types)
	}

	scanner = message.NewScanner(strings.NewReader(strings.Repeat("x", 100)+"\n"), 10)
	if scanner.Scan() {
		t.Fatalf("Should not read a line longer than the limit.")
	}

	if scanner.Err() == nil {
		t.Fatalf("Should report the oversized line.")
	}
}
