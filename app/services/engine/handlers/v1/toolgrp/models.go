package toolgrp

import (
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/merkle"
)

// txSet is an ordered set of transactions to build a merkle tree over.
type txSet struct {
	Txs []chain.Tx `json:"txs" validate:"required,min=1"`
}

// proofRequest asks for the inclusion proof of one transaction by index.
type proofRequest struct {
	Txs   []chain.Tx `json:"txs" validate:"required,min=1"`
	Index int        `json:"index" validate:"gte=0"`
}

// verifyRequest replays an inclusion proof against an expected root. The
// leaf digest can be given directly or recomputed from the transaction.
type verifyRequest struct {
	LeafHash string              `json:"leaf_hash"`
	Tx       *chain.Tx           `json:"tx"`
	Proof    []merkle.ProofEntry `json:"proof"`
	Root     string              `json:"root" validate:"required"`
}

// retargetRequest predicts the next difficulty from observed timestamps.
type retargetRequest struct {
	Timestamps        []uint64 `json:"timestamps" validate:"required,min=2"`
	CurrentDifficulty float64  `json:"current_difficulty" validate:"required,gt=0"`
	ExpectedSeconds   uint64   `json:"expected_seconds"`
	MinAdjust         float64  `json:"min_adjust"`
	MaxAdjust         float64  `json:"max_adjust"`
}
