// Package message defines the messages nodes exchange over a peer connection
// and the line codec that puts them on the wire. Every message is one JSON
// envelope followed by a newline.
package message

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
)

// ErrUnknownType is returned when a decoded envelope names a message type
// this node doesn't know.
var ErrUnknownType = errors.New("unknown message type")

// DefaultMaxSize is the default limit for a single encoded message.
const DefaultMaxSize = 16 * 1024 * 1024

// Type identifies the kind of message in the envelope.
type Type string

// Set of message types.
const (
	TypeGetChain       Type = "GET_CHAIN"
	TypeChain          Type = "CHAIN"
	TypeNewBlock       Type = "NEW_BLOCK"
	TypeNewTransaction Type = "NEW_TRANSACTION"
	TypeGetPeers       Type = "GET_PEERS"
	TypePeers          Type = "PEERS"
)

// Message is implemented by every message in this package and by nothing
// else.
type Message interface {
	Type() Type
	sealed()
}

// GetChain asks the receiver to reply with its full chain.
type GetChain struct{}

// Chain carries a full chain, genesis first.
type Chain struct {
	Blocks []database.Block
}

// NewBlock announces a freshly mined block.
type NewBlock struct {
	Block database.Block
}

// NewTransaction announces a pending transaction.
type NewTransaction struct {
	Tx database.Tx
}

// GetPeers asks the receiver to reply with its known peers.
type GetPeers struct{}

// Peers carries a list of host:port peer addresses.
type Peers struct {
	Addresses []string
}

func (GetChain) Type() Type       { return TypeGetChain }
func (Chain) Type() Type          { return TypeChain }
func (NewBlock) Type() Type       { return TypeNewBlock }
func (NewTransaction) Type() Type { return TypeNewTransaction }
func (GetPeers) Type() Type       { return TypeGetPeers }
func (Peers) Type() Type          { return TypePeers }

func (GetChain) sealed()       {}
func (Chain) sealed()          {}
func (NewBlock) sealed()       {}
func (NewTransaction) sealed() {}
func (GetPeers) sealed()       {}
func (Peers) sealed()          {}

// =============================================================================

// envelope is the wire form of every message.
type envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode returns the wire form of the message terminated by a newline.
func Encode(msg Message) ([]byte, error) {
	var data any
	switch m := msg.(type) {
	case GetChain, GetPeers:
	case Chain:
		blocks := m.Blocks
		if blocks == nil {
			blocks = []database.Block{}
		}
		data = blocks
	case NewBlock:
		data = m.Block
	case NewTransaction:
		data = m.Tx
	case Peers:
		addrs := m.Addresses
		if addrs == nil {
			addrs = []string{}
		}
		data = addrs
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, msg)
	}

	env := envelope{Type: msg.Type()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", msg.Type(), err)
		}
		env.Data = raw
	}

	line, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", msg.Type(), err)
	}

	return append(line, '\n'), nil
}

// Decode constructs a message from one line of the wire protocol. A line
// that isn't an envelope or whose data doesn't decode returns an error
// wrapping database.ErrDecode. An envelope with a type this node doesn't
// know returns an error wrapping ErrUnknownType.
func Decode(line []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(bytes.TrimSpace(line), &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %w", database.ErrDecode, err)
	}

	switch env.Type {
	case TypeGetChain:
		return GetChain{}, nil

	case TypeGetPeers:
		return GetPeers{}, nil

	case TypeChain:
		blocks, err := database.DecodeChain(env.Data)
		if err != nil {
			return nil, err
		}
		return Chain{Blocks: blocks}, nil

	case TypeNewBlock:
		block, err := database.DecodeBlock(env.Data)
		if err != nil {
			return nil, err
		}
		return NewBlock{Block: block}, nil

	case TypeNewTransaction:
		tx, err := database.DecodeTx(env.Data)
		if err != nil {
			return nil, err
		}
		return NewTransaction{Tx: tx}, nil

	case TypePeers:
		var addrs []string
		if err := json.Unmarshal(env.Data, &addrs); err != nil {
			return nil, fmt.Errorf("%w: peers: %w", database.ErrDecode, err)
		}
		return Peers{Addresses: addrs}, nil

	case "":
		return nil, fmt.Errorf("%w: envelope: missing type", database.ErrDecode)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
}

// =============================================================================

// NewScanner constructs a scanner that splits the reader into message lines
// no larger than maxSize bytes.
func NewScanner(r io.Reader, maxSize int) *bufio.Scanner {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxSize)), maxSize)

	return scanner
}

// Write encodes the message and writes it to the writer.
func Write(w io.Writer, msg Message) error {
	line, err := Encode(msg)
	if err != nil {
		return err
	}

	if _, err := w.Write(line); err != nil {
		return fmt.Errorf("writing %s: %w", msg.Type(), err)
	}

	return nil
}
