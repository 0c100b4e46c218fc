// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/RyanLatimer/Corundum/business/web/errs"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/database"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/mempool"
	"github.com/RyanLatimer/Corundum/foundation/blockchain/state"
	"github.com/RyanLatimer/Corundum/foundation/events"
	"github.com/RyanLatimer/Corundum/foundation/nameservice"
	"github.com/RyanLatimer/Corundum/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer func() {
		if dropped, err := h.Evts.Release(v.TraceID); err == nil && dropped > 0 {
			h.Log.Infow("events released", "traceid", v.TraceID, "dropped", dropped)
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Chain returns every block in the chain starting with the genesis block.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks := h.State.RetrieveChain()

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = toBlock(h.NS, blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// ValidateChain checks the integrity of the node's chain.
func (h Handlers) ValidateChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := validation{
		Valid:  true,
		Length: h.State.QueryChainLength(),
	}

	if err := h.State.ValidateChain(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()

		var ve *database.ValidationError
		if errors.As(err, &ve) {
			resp.Index = ve.Index
		}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// LatestBlock returns the last block in the chain.
func (h Handlers) LatestBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk := h.State.RetrieveLatestBlock()
	return web.Respond(ctx, w, toBlock(h.NS, blk), http.StatusOK)
}

// Balance returns the balance for the specified account. The account can be
// an address or the name of a key file known to the node.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	account := web.Param(r, "account")
	if address, exists := h.NS.Address(account); exists {
		account = address
	}

	resp := balance{
		Account: account,
		Name:    h.NS.Lookup(account),
		Balance: h.State.QueryBalance(account),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	trans := h.State.RetrieveMempool()
	return web.Respond(ctx, w, toTxs(h.NS, trans), http.StatusOK)
}

// SubmitTransaction adds a new signed wallet transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req submitTx
	if err := web.Decode(r, &req); err != nil {
		return errs.BadRequest(err)
	}

	tx := database.Tx{
		Sender:    req.Sender,
		Receiver:  req.Receiver,
		Amount:    req.Amount,
		TimeStamp: req.TimeStamp,
		Signature: req.Signature,
	}

	h.Log.Infow("submit tx", "traceid", v.TraceID, "sender", tx.Sender, "receiver", tx.Receiver, "amount", tx.Amount)

	if tx.IsSystem() {
		return errs.BadRequest(errors.New("system transactions can't be submitted"))
	}

	if err := h.State.SubmitTransaction(tx); err != nil {
		switch {
		case errors.Is(err, mempool.ErrInvalidSignature),
			errors.Is(err, mempool.ErrInsufficientBalance),
			errors.Is(err, mempool.ErrPoolFull):
			return errs.BadRequest(err)
		}
		return fmt.Errorf("submit: %w", err)
	}

	resp := struct {
		Status string `json:"status"`
		Hash   string `json:"hash"`
	}{
		Status: "transaction added to mempool",
		Hash:   tx.Hash(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine mines a block from the pending transactions. The reward goes to the
// miner in the request or to the node's miner when none is provided.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req mineRequest
	if r.ContentLength != 0 {
		if err := web.Decode(r, &req); err != nil {
			return errs.BadRequest(err)
		}
	}

	if address, exists := h.NS.Address(req.Miner); exists {
		req.Miner = address
	}

	blk, err := h.State.Mine(ctx, req.Miner)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNothingToMine):
			return errs.BadRequest(err)
		case errors.Is(err, context.Canceled):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return fmt.Errorf("mine: %w", err)
	}

	return web.Respond(ctx, w, toBlock(h.NS, blk), http.StatusOK)
}

// Peers returns the set of peers known to the node.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	known := h.State.RetrieveKnownPeers()

	peers := make([]peerInfo, len(known))
	for i, p := range known {
		peers[i] = peerInfo{Host: p.Host}
	}

	return web.Respond(ctx, w, peers, http.StatusOK)
}

// ConnectPeer connects the node to the specified peer and requests its chain.
func (h Handlers) ConnectPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req connectRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.BadRequest(err)
	}

	if err := h.State.ConnectToPeer(req.Host, req.Port); err != nil {
		return errs.NewTrusted(err, http.StatusBadGateway)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: fmt.Sprintf("connected to %s:%d", req.Host, req.Port),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
