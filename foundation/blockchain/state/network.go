package state

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/message"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/peer"
)

// StartListening binds the peer endpoint on the specified port and starts
// accepting connections. Every accepted connection runs its own message loop.
// A port of 0 binds an ephemeral port, use RetrieveHost to learn it.
func (s *State) StartListening(port int) error {
	if s.isShutdown() {
		return ErrShutdown
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", port, err)
	}

	s.netMu.Lock()
	switch {
	case s.isShutdown():
		s.netMu.Unlock()
		ln.Close()
		return ErrShutdown
	case s.listener != nil:
		s.netMu.Unlock()
		ln.Close()
		return errors.New("node is already listening")
	}
	s.listener = ln
	s.host = net.JoinHostPort(s.advertiseHost, strconv.Itoa(ln.Addr().(*net.TCPAddr).Port))
	s.wg.Add(1)
	s.netMu.Unlock()

	s.evHandler("state: StartListening: listening: host[%s]", s.RetrieveHost())

	go func() {
		defer s.wg.Done()
		s.acceptLoop(ln)
	}()

	return nil
}

// acceptLoop accepts connections until the listener is closed.
func (s *State) acceptLoop(ln net.Listener) {
	s.evHandler("state: acceptLoop: G started")
	defer s.evHandler("state: acceptLoop: G completed")

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isShutdown() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.evHandler("state: acceptLoop: ERROR: %s", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if !s.acquireConn() {
			s.evHandler("state: acceptLoop: connection limit reached: closing: remote[%s]", conn.RemoteAddr())
			conn.Close()
			continue
		}

		if !s.trackConn(conn) {
			s.releaseConn()
			conn.Close()
			return
		}

		go func() {
			defer s.releaseConn()
			s.messageLoop(conn)
		}()
	}
}

// ConnectToPeer opens a connection to the specified peer, registers it as a
// known peer, and asks it for its chain. The reply is processed by a message
// loop attached to the connection. Connecting to a known peer is a no-op.
func (s *State) ConnectToPeer(host string, port int) error {
	return s.connectToPeer(peer.New(host, port))
}

func (s *State) connectToPeer(p peer.Peer) error {
	if p.Match(s.RetrieveHost()) {
		return nil
	}

	if s.knownPeers.Contains(p) {
		return nil
	}

	if s.isShutdown() {
		return ErrShutdown
	}

	conn, err := net.DialTimeout("tcp", p.Host, s.dialTimeout)
	if err != nil {
		return fmt.Errorf("connecting to peer %s: %w", p, err)
	}

	added, err := s.knownPeers.Add(p)
	if err != nil {
		conn.Close()
		return fmt.Errorf("connecting to peer %s: %w", p, err)
	}

	// Lost the race with another connect to the same peer.
	if !added {
		conn.Close()
		return nil
	}

	if !s.trackConn(conn) {
		conn.Close()
		return ErrShutdown
	}

	s.evHandler("state: connectToPeer: connected: peer[%s]", p)

	if err := message.Write(conn, message.GetChain{}); err != nil {
		s.untrackConn(conn)
		conn.Close()
		s.knownPeers.Remove(p)
		return fmt.Errorf("connecting to peer %s: %w", p, err)
	}

	go s.messageLoop(conn)

	return nil
}

// Broadcast sends the message to every known peer over a short-lived
// connection. The message is encoded once. A peer that can't be reached or
// doesn't accept the message is removed from the known peers. Any reply the
// peer sends before closing is processed like any other message.
func (s *State) Broadcast(msg message.Message) {
	line, err := message.Encode(msg)
	if err != nil {
		s.evHandler("state: Broadcast: ERROR: %s", err)
		return
	}

	peers := s.RetrieveKnownPeers()

	s.evHandler("state: Broadcast: %s: peers[%d]", msg.Type(), len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for _, p := range peers {
		go func(p peer.Peer) {
			defer wg.Done()

			if err := s.exchange(p, line); err != nil {
				s.evHandler("state: Broadcast: %s: peer[%s]: removing: %s", msg.Type(), p, err)
				s.knownPeers.Remove(p)
			}
		}(p)
	}

	wg.Wait()
}

// RequestPeers asks the specified peer for its known peers and connects to
// every peer this node doesn't know yet.
func (s *State) RequestPeers(p peer.Peer) error {
	line, err := message.Encode(message.GetPeers{})
	if err != nil {
		return err
	}

	return s.exchange(p, line)
}

// exchange opens a short-lived connection to the peer, writes the encoded
// message, and closes the write side. The replies are processed until the
// peer closes the connection or the reply timeout is reached. Only a failure
// to deliver the message is returned.
func (s *State) exchange(p peer.Peer, line []byte) error {
	if s.isShutdown() {
		return ErrShutdown
	}

	conn, err := net.DialTimeout("tcp", p.Host, s.dialTimeout)
	if err != nil {
		return err
	}

	if !s.trackConn(conn) {
		conn.Close()
		return ErrShutdown
	}
	defer func() {
		s.untrackConn(conn)
		conn.Close()
	}()

	conn.SetWriteDeadline(time.Now().Add(s.dialTimeout))
	if _, err := conn.Write(line); err != nil {
		return err
	}

	// Let the peer know nothing else is coming so it closes its side once
	// it has processed the message.
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.CloseWrite()
	}

	conn.SetReadDeadline(time.Now().Add(s.replyTimeout))
	s.readMessages(conn)

	return nil
}

// =============================================================================

// messageLoop reads and processes messages until the connection fails or
// is closed by either side. The connection is always closed on return.
func (s *State) messageLoop(conn net.Conn) {
	remote := conn.RemoteAddr().String()

	s.evHandler("state: messageLoop: started: remote[%s]", remote)
	defer s.evHandler("state: messageLoop: completed: remote[%s]", remote)

	defer func() {
		s.untrackConn(conn)
		conn.Close()
	}()

	s.readMessages(conn)
}

// readMessages processes one message per line. An unknown message type is
// ignored. A line that can't be decoded ends the processing.
func (s *State) readMessages(conn net.Conn) {
	remote := conn.RemoteAddr().String()

	scanner := message.NewScanner(conn, s.maxMessageSize)
	for scanner.Scan() {
		msg, err := message.Decode(scanner.Bytes())
		if err != nil {
			if errors.Is(err, message.ErrUnknownType) {
				s.evHandler("state: readMessages: remote[%s]: ignoring: %s", remote, err)
				continue
			}

			s.evHandler("state: readMessages: remote[%s]: ERROR: %s", remote, err)
			return
		}

		if err := s.processMessage(conn, msg); err != nil {
			s.evHandler("state: readMessages: remote[%s]: ERROR: %s", remote, err)
			return
		}
	}

	if err := scanner.Err(); err != nil && !s.isShutdown() && !errors.Is(err, net.ErrClosed) {
		s.evHandler("state: readMessages: remote[%s]: ERROR: %s", remote, err)
	}
}

// =============================================================================

// trackConn records the connection so it can be closed at shutdown, and
// Shutdown waits until it is untracked. It returns false when the node is
// already shutting down.
func (s *State) trackConn(conn net.Conn) bool {
	s.netMu.Lock()
	defer s.netMu.Unlock()

	if s.isShutdown() {
		return false
	}

	s.conns[conn] = struct{}{}
	s.wg.Add(1)

	return true
}

// untrackConn removes the connection from the set of open connections.
func (s *State) untrackConn(conn net.Conn) {
	s.netMu.Lock()
	defer s.netMu.Unlock()

	if _, exists := s.conns[conn]; exists {
		delete(s.conns, conn)
		s.wg.Done()
	}
}

// acquireConn takes a slot for an inbound connection. It returns false when
// the configured number of connections is already open.
func (s *State) acquireConn() bool {
	if s.connSem == nil {
		return true
	}

	select {
	case s.connSem <- struct{}{}:
		return true
	default:
		return false
	}
}

// releaseConn gives back the slot taken by acquireConn.
func (s *State) releaseConn() {
	if s.connSem == nil {
		return
	}

	<-s.connSem
}
