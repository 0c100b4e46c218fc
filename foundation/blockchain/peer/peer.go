// Package peer maintains the peer related information such as the set
// of known peers.
package peer

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
)

// ErrPeerSetFull is returned when a peer is added to a set that is at
// capacity.
var ErrPeerSetFull = errors.New("peer set is full")

// Peer represents information about a Node in the network. The host is the
// host:port endpoint the node listens on for peer messages.
type Peer struct {
	Host string
}

// New contructs a new peer for the specified host and port.
func New(host string, port int) Peer {
	return Peer{
		Host: net.JoinHostPort(host, strconv.Itoa(port)),
	}
}

// Parse constructs a peer from a host:port address.
func Parse(address string) (Peer, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return Peer{}, fmt.Errorf("parsing peer address %q: %w", address, err)
	}

	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 || p > 65535 {
		return Peer{}, fmt.Errorf("parsing peer address %q: invalid port", address)
	}

	if host == "" {
		return Peer{}, fmt.Errorf("parsing peer address %q: missing host", address)
	}

	return New(host, p), nil
}

// HostPort splits the peer into its host and port.
func (p Peer) HostPort() (string, int, error) {
	host, port, err := net.SplitHostPort(p.Host)
	if err != nil {
		return "", 0, err
	}

	n, err := strconv.Atoi(port)
	if err != nil {
		return "", 0, fmt.Errorf("parsing port %q: %w", port, err)
	}

	return host, n, nil
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// String implements the fmt.Stringer interface.
func (p Peer) String() string {
	return p.Host
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu       sync.RWMutex
	set      map[Peer]struct{}
	maxPeers int
}

// NewPeerSet constructs a new info set to manage node peer information.
// A maxPeers of 0 means the set is unbounded.
func NewPeerSet(maxPeers int) *PeerSet {
	return &PeerSet{
		set:      make(map[Peer]struct{}),
		maxPeers: maxPeers,
	}
}

// Add adds a new node to the set. It returns false when the peer is
// already known.
func (ps *PeerSet) Add(peer Peer) (bool, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; exists {
		return false, nil
	}

	if ps.maxPeers > 0 && len(ps.set) >= ps.maxPeers {
		return false, fmt.Errorf("%w: max %d", ErrPeerSetFull, ps.maxPeers)
	}

	ps.set[peer] = struct{}{}

	return true, nil
}

// Remove removes a node from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, peer)
}

// Contains reports whether the peer is in the set.
func (ps *PeerSet) Contains(peer Peer) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	_, exists := ps.set[peer]
	return exists
}

// Len returns the number of known peers.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns a sorted list of the known peers excluding the specified host.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var peers []Peer
	for peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Host < peers[j].Host
	})

	return peers
}
