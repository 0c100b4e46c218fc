// Package state is the core API for the blockchain node. It owns the ledger,
// the mempool and the set of known peers, and implements the peer protocol
// used to keep the chain in sync with the rest of the network.
package state

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/genesis"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/mempool"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/message"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/peer"
)

// ErrShutdown is returned when an operation is requested after the node
// started shutting down.
var ErrShutdown = errors.New("node is shutting down")

// Set of default values for the peer network.
const (
	defaultDialTimeout  = 5 * time.Second
	defaultReplyTimeout = 10 * time.Second
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the node.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and transaction sharing.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalShareTx(tx database.Tx)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	MinerAddress   string
	Host           string
	Genesis        genesis.Genesis
	Storage        database.Storage
	PoolMaxSize    int
	KnownPeers     *peer.PeerSet
	MaxConnections int
	MaxMessageSize int
	DialTimeout    time.Duration
	ReplyTimeout   time.Duration
	EvHandler      EventHandler
}

// State manages the blockchain node.
type State struct {
	mu sync.Mutex

	minerAddress   string
	advertiseHost  string
	evHandler      EventHandler
	maxMessageSize int
	dialTimeout    time.Duration
	replyTimeout   time.Duration

	genesis    genesis.Genesis
	ledger     *database.Ledger
	mempool    *mempool.Mempool
	knownPeers *peer.PeerSet

	netMu    sync.Mutex
	host     string
	listener net.Listener
	conns    map[net.Conn]struct{}
	connSem  chan struct{}
	wg       sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	Worker Worker
}

// New constructs a new blockchain node for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Load the chain from storage, or start from genesis.
	ledger, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	// Construct a mempool with the specified capacity.
	mempool, err := mempool.NewWithMaxSize(cfg.PoolMaxSize)
	if err != nil {
		return nil, err
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet(0)
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	replyTimeout := cfg.ReplyTimeout
	if replyTimeout <= 0 {
		replyTimeout = defaultReplyTimeout
	}

	maxMessageSize := cfg.MaxMessageSize
	if maxMessageSize <= 0 {
		maxMessageSize = message.DefaultMaxSize
	}

	var connSem chan struct{}
	if cfg.MaxConnections > 0 {
		connSem = make(chan struct{}, cfg.MaxConnections)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Create the State to provide support for managing the blockchain.
	state := State{
		minerAddress:   cfg.MinerAddress,
		advertiseHost:  host,
		evHandler:      ev,
		maxMessageSize: maxMessageSize,
		dialTimeout:    dialTimeout,
		replyTimeout:   replyTimeout,

		genesis:    cfg.Genesis,
		ledger:     ledger,
		mempool:    mempool,
		knownPeers: knownPeers,

		conns:   make(map[net.Conn]struct{}),
		connSem: connSem,

		ctx:    ctx,
		cancel: cancel,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down. The worker is stopped, the listener
// and every open connection are closed, and the call waits for every
// connection loop to finish before the storage is closed.
func (s *State) Shutdown() error {
	s.evHandler("state: Shutdown: started")
	defer s.evHandler("state: Shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	// Cancel mining started outside the worker, such as an API request.
	s.cancel()

	s.netMu.Lock()
	if s.listener != nil {
		s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.netMu.Unlock()

	s.wg.Wait()

	// Make sure the storage is properly closed.
	return s.ledger.Close()
}

// isShutdown is used to test if a shutdown has been signaled.
func (s *State) isShutdown() bool {
	return s.ctx.Err() != nil
}
