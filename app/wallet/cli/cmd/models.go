package cmd

type tx struct {
	Hash         string `json:"hash"`
	Sender       string `json:"sender"`
	SenderName   string `json:"sender_name"`
	Receiver     string `json:"receiver"`
	ReceiverName string `json:"receiver_name"`
	Amount       uint64 `json:"amount"`
	TimeStamp    uint64 `json:"timestamp"`
}

type block struct {
	Index        uint64 `json:"index"`
	TimeStamp    uint64 `json:"timestamp"`
	PrevHash     string `json:"previous_hash"`
	Nonce        uint64 `json:"nonce"`
	Hash         string `json:"hash"`
	Transactions []tx   `json:"transactions"`
}

type status struct {
	Status string `json:"status"`
	Hash   string `json:"hash,omitempty"`
}
