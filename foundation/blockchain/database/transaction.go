package database

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/signature"
	"github.com/RyanLatimer/Corundum/foundation/validate"
)

// SystemAddress is the reserved sender for value issued by the ledger itself,
// such as the genesis allocation and mining rewards. Transactions from this
// address are valid without a signature.
const SystemAddress = "SYSTEM"

// GenesisAddress is the receiver of the genesis transaction.
const GenesisAddress = "GENESIS"

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	Sender    string `json:"sender"`    // Address of the account sending the value. The address is the public key.
	Receiver  string `json:"receiver"`  // Address of the account receiving the value.
	Amount    uint64 `json:"amount"`    // Number of coins transferred.
	TimeStamp uint64 `json:"timestamp"` // Unix milliseconds when the transaction was created.
	Signature string `json:"signature"` // Hex encoded signature over the content hash.
}

// NewTx constructs a new unsigned transaction.
func NewTx(sender string, receiver string, amount uint64) Tx {
	return Tx{
		Sender:    sender,
		Receiver:  receiver,
		Amount:    amount,
		TimeStamp: uint64(time.Now().UTC().UnixMilli()),
	}
}

// NewRewardTx constructs a system issued transaction paying the receiver.
func NewRewardTx(receiver string, amount uint64) Tx {
	return NewTx(SystemAddress, receiver, amount)
}

// IsSystem reports whether the transaction was issued by the ledger.
func (tx Tx) IsSystem() bool {
	return tx.Sender == SystemAddress
}

// Hash returns the content hash of the transaction. The signature is not part
// of the hash, so the hash identifies the transaction before and after signing.
func (tx Tx) Hash() string {
	content := struct {
		Sender    string `json:"sender"`
		Receiver  string `json:"receiver"`
		Amount    uint64 `json:"amount"`
		TimeStamp uint64 `json:"timestamp"`
	}{
		Sender:    tx.Sender,
		Receiver:  tx.Receiver,
		Amount:    tx.Amount,
		TimeStamp: tx.TimeStamp,
	}

	return signature.Hash(content)
}

// Sign uses the specified private key to sign the transaction. System issued
// transactions are returned unchanged.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (Tx, error) {
	if tx.IsSystem() {
		return tx, nil
	}

	if privateKey == nil {
		return Tx{}, errors.New("private key is required")
	}

	if signature.Address(privateKey.PublicKey) != tx.Sender {
		return Tx{}, errors.New("private key does not belong to the sender")
	}

	sig, err := signature.Sign(privateKey, []byte(tx.Hash()))
	if err != nil {
		return Tx{}, err
	}

	tx.Signature = sig

	return tx, nil
}

// Verify reports whether the transaction carries a valid signature from the
// sender. System issued transactions are always valid.
func (tx Tx) Verify() bool {
	if tx.IsSystem() {
		return true
	}

	if tx.Signature == "" {
		return false
	}

	return signature.Verify(tx.Sender, tx.Signature, []byte(tx.Hash()))
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s -> %s: %d coins", ShortAddress(tx.Sender), ShortAddress(tx.Receiver), tx.Amount)
}

// =============================================================================

// txData is the wire form of a transaction. Pointers distinguish a missing
// field from a zero value.
type txData struct {
	Sender    string  `json:"sender" validate:"required"`
	Receiver  string  `json:"receiver" validate:"required"`
	Amount    *uint64 `json:"amount" validate:"required"`
	TimeStamp *uint64 `json:"timestamp" validate:"required"`
	Signature string  `json:"signature"`
}

// MaxAmount is the largest amount a transaction can carry. Balances are signed
// so larger amounts can't be folded into a balance.
const MaxAmount = math.MaxInt64

// DecodeTx constructs a transaction from its wire form. Missing fields,
// fields of the wrong type, or an amount above MaxAmount result in an
// ErrDecode error.
func DecodeTx(data []byte) (Tx, error) {
	var td txData
	if err := json.Unmarshal(data, &td); err != nil {
		return Tx{}, fmt.Errorf("%w: transaction: %w", ErrDecode, err)
	}

	if err := validate.Check(td); err != nil {
		return Tx{}, fmt.Errorf("%w: transaction: %w", ErrDecode, err)
	}

	if *td.Amount > MaxAmount {
		return Tx{}, fmt.Errorf("%w: transaction: amount %d exceeds %d", ErrDecode, *td.Amount, uint64(MaxAmount))
	}

	tx := Tx{
		Sender:    td.Sender,
		Receiver:  td.Receiver,
		Amount:    *td.Amount,
		TimeStamp: *td.TimeStamp,
		Signature: td.Signature,
	}

	return tx, nil
}
