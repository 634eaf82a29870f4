// Package simgrp maintains the group of handlers for the chain simulation
// sessions.
package simgrp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MXmingxuan/blockchain-lab/business/core/sim"
	"github.com/MXmingxuan/blockchain-lab/business/web/errs"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/difficulty"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/fork"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/mine"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/state"
	"github.com/MXmingxuan/blockchain-lab/foundation/events"
	"github.com/MXmingxuan/blockchain-lab/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of simulation endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	Core *sim.Core
	WS   websocket.Upgrader
	Evts *events.Events
}

// Create opens a new simulation session with its own chain.
func (h Handlers) Create(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var ns newSession
	if r.ContentLength > 0 {
		if err := web.Decode(r, &ns); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	id, err := h.Core.Create(ns.Strategy)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("session created", "traceid", web.GetTraceID(ctx), "session", id)

	resp := struct {
		SessionID string `json:"session_id"`
	}{
		SessionID: id,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Status reports the shape of the session's active chain.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.session(r)
	if err != nil {
		return err
	}

	resp := struct {
		Length     int    `json:"length"`
		Difficulty uint   `json:"difficulty"`
		Candidates int    `json:"candidates"`
		Pending    int    `json:"pending_txs"`
		TipHash    string `json:"tip_hash,omitempty"`
	}{
		Length:     st.Length(),
		Difficulty: st.Difficulty(),
		Candidates: st.Candidates(),
		Pending:    st.MempoolLength(),
	}
	if tip, ok := st.Tip(); ok {
		resp.TipHash = tip.Hash().String()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Blocks returns the sealed blocks on the active chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.session(r)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, toBlockModels(st.Blocks()), http.StatusOK)
}

// AddTransactions adds new transactions to the session's pending pool.
func (h Handlers) AddTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.session(r)
	if err != nil {
		return err
	}

	var req addTxRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	var pool int
	for _, tx := range req.Txs {
		pool = st.SubmitTransaction(tx.toTx())
	}

	resp := struct {
		Status  string `json:"status"`
		Pending int    `json:"pending_txs"`
	}{
		Status:  "transactions added to pending pool",
		Pending: pool,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Pending returns the pending transactions in selection order.
func (h Handlers) Pending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.session(r)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, st.Mempool(), http.StatusOK)
}

// Mine performs the proof-of-work search for the next block and appends
// it to the active chain.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.session(r)
	if err != nil {
		return err
	}

	var mr mineRequest
	if r.ContentLength > 0 {
		if err := web.Decode(r, &mr); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	block, stats, err := st.MineNextBlock(ctx, mr.Budget)
	switch {
	case errors.Is(err, state.ErrNoTransactions):
		return errs.NewTrusted(err, http.StatusConflict)
	case errors.Is(err, mine.ErrBudgetExceeded):
		return errs.NewTrusted(err, http.StatusRequestTimeout)
	case err != nil:
		return err
	}

	resp := struct {
		Block blockModel `json:"block"`
		Stats mine.Stats `json:"stats"`
	}{
		Block: toBlockModel(block),
		Stats: stats,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Validate walks the active chain and reports the first invariant
// violation, if any.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.session(r)
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, st.Validate(), http.StatusOK)
}

// Tamper mutates a sealed block out of band so Validate has something to
// detect. This is the demonstration bypass, not a normal chain operation.
func (h Handlers) Tamper(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.session(r)
	if err != nil {
		return err
	}

	var tr tamperRequest
	if err := web.Decode(r, &tr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if tr.Tx != nil {
		blk, err := st.BlockAt(tr.Index)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		if err := checkTamperTx(tr, blk); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	err = st.Tamper(tr.Index, func(b *chain.Block) {
		if tr.Timestamp != nil {
			b.Header.TimeStamp = *tr.Timestamp
		}
		if tr.Nonce != nil {
			b.Header.Nonce = *tr.Nonce
		}
		if tr.Tx != nil && tr.Tx.Index >= 0 && tr.Tx.Index < len(b.Trans.Leafs) {
			leaf := b.Trans.Leafs[tr.Tx.Index]
			if tr.Tx.Value != nil {
				leaf.Value.Value = *tr.Tx.Value
			}
			if tr.Tx.Memo != nil {
				leaf.Value.Memo = *tr.Tx.Memo
			}
		}
	})
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "block mutated out of band, run validate to see the detection",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ForkCandidate registers a competing tip that shares a prefix with the
// active chain.
func (h Handlers) ForkCandidate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.session(r)
	if err != nil {
		return err
	}

	var fr forkCandidateRequest
	if err := web.Decode(r, &fr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	id, err := st.ForkCandidate(fr.SharedIndex)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Candidate int `json:"candidate"`
	}{
		Candidate: id,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// MineCandidate mines one block onto a registered fork candidate.
func (h Handlers) MineCandidate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.session(r)
	if err != nil {
		return err
	}

	var mr mineCandidateRequest
	if err := web.Decode(r, &mr); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	txs := make([]chain.Tx, len(mr.Txs))
	for i, tx := range mr.Txs {
		txs[i] = tx.toTx()
	}

	block, stats, err := st.MineCandidateBlock(ctx, mr.Candidate, txs, 0)
	switch {
	case errors.Is(err, mine.ErrBudgetExceeded):
		return errs.NewTrusted(err, http.StatusRequestTimeout)
	case err != nil:
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Block blockModel `json:"block"`
		Stats mine.Stats `json:"stats"`
	}{
		Block: toBlockModel(block),
		Stats: stats,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ResolveFork selects the canonical chain among the competing tips.
func (h Handlers) ResolveFork(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.session(r)
	if err != nil {
		return err
	}

	res, err := st.ResolveFork()
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, res, http.StatusOK)
}

// Confirmations reports the confirmation depth and safety level for the
// block at the specified index.
func (h Handlers) Confirmations(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.session(r)
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(web.Param(r, "index"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	conf, err := st.Confirmations(index)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Index         int        `json:"index"`
		Confirmations int        `json:"confirmations"`
		Safe          bool       `json:"safe"`
		Safety        fork.Level `json:"safety"`
	}{
		Index:         index,
		Confirmations: conf,
		Safe:          st.Safe(conf),
		Safety:        fork.Safety(conf),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Retarget predicts the next difficulty from the chain's timestamps.
func (h Handlers) Retarget(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st, err := h.session(r)
	if err != nil {
		return err
	}

	pred, bits, err := st.Retarget()
	if err != nil {
		return errs.NewTrusted(err, http.StatusConflict)
	}

	resp := struct {
		Prediction difficulty.Prediction `json:"prediction"`
		NextBits   uint                  `json:"next_bits"`
	}{
		Prediction: pred,
		NextBits:   bits,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide engine events to a client.
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

	h.Log.Infow("events feed open", "traceid", v.TraceID)
	defer h.Log.Infow("events feed closed", "traceid", v.TraceID)

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// session resolves the :id route parameter to a session state.
func (h Handlers) session(r *http.Request) (*state.State, error) {
	st, err := h.Core.Session(web.Param(r, "id"))
	if err != nil {
		return nil, errs.NewTrusted(err, http.StatusNotFound)
	}

	return st, nil
}
