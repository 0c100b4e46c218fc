package worker

import (
	"time"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/peer"
	"github.com/cenkalti/backoff"
)

// peerOperations handles finding new peers.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// runPeersOperation asks every known peer for its peers. The node connects
// to the peers it doesn't know yet while processing the replies. A peer that
// can't be reached is removed.
func (w *Worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	for _, p := range w.state.RetrieveKnownPeers() {
		if w.isShutdown() {
			return
		}

		if err := w.state.RequestPeers(p); err != nil {
			w.evHandler("worker: runPeersOperation: requestPeers: %s: ERROR: %s", p, err)
			w.state.RemoveKnownPeer(p)
		}
	}
}

// =============================================================================

// bootstrapOperations connects to the configured known peers. Every peer is
// retried with an exponential backoff until it answers or the retries
// run out.
func (w *Worker) bootstrapOperations() {
	w.evHandler("worker: bootstrapOperations: G started")
	defer w.evHandler("worker: bootstrapOperations: G completed")

	ctx, cancel := w.shutdownContext()
	defer cancel()

	for _, address := range w.cfg.KnownPeers {
		if w.isShutdown() {
			return
		}

		p, err := peer.Parse(address)
		if err != nil {
			w.evHandler("worker: bootstrapOperations: %s", err)
			continue
		}

		connect := func() error {
			return w.connect(p)
		}

		notify := func(err error, next time.Duration) {
			w.evHandler("worker: bootstrapOperations: peer[%s]: retry in %v: %s", p, next.Round(time.Millisecond), err)
		}

		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 500 * time.Millisecond
		b.MaxInterval = 10 * time.Second

		policy := backoff.WithContext(backoff.WithMaxRetries(b, w.cfg.BootstrapRetries), ctx)

		if err := backoff.RetryNotify(connect, policy, notify); err != nil {
			w.evHandler("worker: bootstrapOperations: peer[%s]: giving up: %s", p, err)
			continue
		}

		w.evHandler("worker: bootstrapOperations: peer[%s]: connected", p)
	}
}

// connect connects the node to the specified peer.
func (w *Worker) connect(p peer.Peer) error {
	host, port, err := p.HostPort()
	if err != nil {
		return err
	}

	return w.state.ConnectToPeer(host, port)
}
