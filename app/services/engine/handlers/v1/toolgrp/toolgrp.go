// Package toolgrp maintains the group of handlers for the stateless
// calculator endpoints. Nothing here touches a session, every handler is a
// pure function over the request body.
package toolgrp

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/MXmingxuan/blockchain-lab/business/web/errs"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/difficulty"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/digest"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/fork"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/merkle"
	"github.com/MXmingxuan/blockchain-lab/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of calculator endpoints.
type Handlers struct {
	Log *zap.SugaredLogger
}

var (
	errNoLeaf   = errors.New("provide leaf_hash or tx to identify the leaf")
	errBadCount = errors.New("confirmation count must be a non-negative integer")
)

// MerkleRoot builds a merkle tree over the posted transactions and returns
// the root with every level of the tree for visualization.
func (h Handlers) MerkleRoot(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req txSet
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tree, err := merkle.NewTree(req.Txs)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Root   string            `json:"root"`
		Leaves int               `json:"leaves"`
		Levels [][]digest.Digest `json:"levels"`
	}{
		Root:   tree.RootHex(),
		Leaves: len(req.Txs),
		Levels: tree.Levels(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// MerkleProof returns the inclusion proof for the transaction at the
// requested index.
func (h Handlers) MerkleProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req proofRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tree, err := merkle.NewTree(req.Txs)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	proof, err := tree.ProofByIndex(req.Index)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	leafHash, err := req.Txs[req.Index].Hash()
	if err != nil {
		return err
	}

	resp := struct {
		Root     string              `json:"root"`
		Index    int                 `json:"index"`
		LeafHash digest.Digest       `json:"leaf_hash"`
		Proof    []merkle.ProofEntry `json:"proof"`
	}{
		Root:     tree.RootHex(),
		Index:    req.Index,
		LeafHash: leafHash,
		Proof:    proof,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// MerkleVerify replays an inclusion proof against the expected root without
// rebuilding the tree.
func (h Handlers) MerkleVerify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req verifyRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	root, err := digest.Parse(req.Root)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	var leaf digest.Digest
	switch {
	case req.LeafHash != "":
		if leaf, err = digest.Parse(req.LeafHash); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	case req.Tx != nil:
		if leaf, err = req.Tx.Hash(); err != nil {
			return err
		}
	default:
		return errs.NewTrusted(errNoLeaf, http.StatusBadRequest)
	}

	resp := struct {
		Valid bool `json:"valid"`
	}{
		Valid: merkle.VerifyProof(leaf, req.Proof, root),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// NextDifficulty predicts the next difficulty from a set of observed block
// timestamps. Missing parameters fall back to the reference values.
func (h Handlers) NextDifficulty(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req retargetRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	cfg := difficulty.DefaultConfig()
	if req.ExpectedSeconds > 0 {
		cfg.ExpectedInterval = time.Duration(req.ExpectedSeconds) * time.Second
	}
	if req.MinAdjust > 0 {
		cfg.MinAdjust = req.MinAdjust
	}
	if req.MaxAdjust > 0 {
		cfg.MaxAdjust = req.MaxAdjust
	}

	pred, err := difficulty.Retarget(req.Timestamps, req.CurrentDifficulty, cfg)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	currentBits := uint(math.Round(math.Log2(req.CurrentDifficulty)))

	resp := struct {
		Prediction difficulty.Prediction `json:"prediction"`
		NextBits   uint                  `json:"next_bits"`
	}{
		Prediction: pred,
		NextBits:   difficulty.NextBits(currentBits, pred.Ratio),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Safety maps a confirmation count to the reference safety level.
func (h Handlers) Safety(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	count, err := strconv.Atoi(web.Param(r, "count"))
	if err != nil || count < 0 {
		return errs.NewTrusted(errBadCount, http.StatusBadRequest)
	}

	resp := struct {
		Confirmations int        `json:"confirmations"`
		Safe          bool       `json:"safe"`
		Safety        fork.Level `json:"safety"`
	}{
		Confirmations: count,
		Safe:          fork.Safe(count, fork.DefaultSafeDepth),
		Safety:        fork.Safety(count),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
