package public

import (
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/nameservice"
)

type tx struct {
	Hash         string `json:"hash"`
	Sender       string `json:"sender"`
	SenderName   string `json:"sender_name"`
	Receiver     string `json:"receiver"`
	ReceiverName string `json:"receiver_name"`
	Amount       uint64 `json:"amount"`
	TimeStamp    uint64 `json:"timestamp"`
	Signature    string `json:"signature"`
}

type block struct {
	Index        uint64 `json:"index"`
	TimeStamp    uint64 `json:"timestamp"`
	PrevHash     string `json:"previous_hash"`
	Nonce        uint64 `json:"nonce"`
	Hash         string `json:"hash"`
	Transactions []tx   `json:"transactions"`
}

type balance struct {
	Account string `json:"account"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

type validation struct {
	Valid  bool   `json:"valid"`
	Length int    `json:"length"`
	Index  uint64 `json:"index,omitempty"`
	Error  string `json:"error,omitempty"`
}

type peerInfo struct {
	Host string `json:"host"`
}

// submitTx is the signed transaction a wallet submits.
type submitTx struct {
	Sender    string `json:"sender" validate:"required"`
	Receiver  string `json:"receiver" validate:"required"`
	Amount    uint64 `json:"amount"`
	TimeStamp uint64 `json:"timestamp" validate:"required"`
	Signature string `json:"signature"`
}

type mineRequest struct {
	Miner string `json:"miner"`
}

type connectRequest struct {
	Host string `json:"host" validate:"required"`
	Port int    `json:"port" validate:"required,min=1,max=65535"`
}

// =============================================================================

func toTx(ns *nameservice.NameService, t database.Tx) tx {
	return tx{
		Hash:         t.Hash(),
		Sender:       t.Sender,
		SenderName:   ns.Lookup(t.Sender),
		Receiver:     t.Receiver,
		ReceiverName: ns.Lookup(t.Receiver),
		Amount:       t.Amount,
		TimeStamp:    t.TimeStamp,
		Signature:    t.Signature,
	}
}

func toTxs(ns *nameservice.NameService, trans []database.Tx) []tx {
	txs := make([]tx, len(trans))
	for i, t := range trans {
		txs[i] = toTx(ns, t)
	}
	return txs
}

func toBlock(ns *nameservice.NameService, b database.Block) block {
	return block{
		Index:        b.Index,
		TimeStamp:    b.TimeStamp,
		PrevHash:     b.PrevHash,
		Nonce:        b.Nonce,
		Hash:         b.Hash,
		Transactions: toTxs(ns, b.Transactions),
	}
}
