package simgrp

import (
	"fmt"

	"github.com/MXmingxuan/blockchain-lab/foundation/blockchain/chain"
)

// newSession is what is required to open a simulation session.
type newSession struct {
	Strategy string `json:"strategy"`
}

// newTx is what is required to submit a transaction to the pending pool.
type newTx struct {
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required"`
	Value uint64 `json:"value" validate:"required"`
	Tip   uint64 `json:"tip"`
	Nonce uint64 `json:"nonce"`
	Memo  string `json:"memo"`
}

func (app newTx) toTx() chain.Tx {
	return chain.Tx{
		Nonce:  app.Nonce,
		FromID: app.From,
		ToID:   app.To,
		Value:  app.Value,
		Tip:    app.Tip,
		Memo:   app.Memo,
	}
}

// addTxRequest submits a batch of transactions to the pending pool.
type addTxRequest struct {
	Txs []newTx `json:"txs" validate:"required,min=1,dive"`
}

// mineRequest carries the optional attempt budget override for one run.
type mineRequest struct {
	Budget uint64 `json:"budget"`
}

// tamperTx names a transaction inside a block and the fields to overwrite.
type tamperTx struct {
	Index int     `json:"index"`
	Value *uint64 `json:"value"`
	Memo  *string `json:"memo"`
}

// tamperRequest mutates a sealed block out of band for the detection demo.
type tamperRequest struct {
	Index     int       `json:"index"`
	Timestamp *uint64   `json:"timestamp"`
	Nonce     *uint64   `json:"nonce"`
	Tx        *tamperTx `json:"tx"`
}

// checkTamperTx confirms the transaction slot a tamper request names
// exists in the target block. Checked before any mutation so a bad index
// never reports a mutation that did not happen.
func checkTamperTx(tr tamperRequest, blk chain.Block) error {
	if tr.Tx == nil {
		return nil
	}

	if tr.Tx.Index < 0 || tr.Tx.Index >= len(blk.Trans.Leafs) {
		return fmt.Errorf("block %d has no transaction at index %d", tr.Index, tr.Tx.Index)
	}

	return nil
}

// forkCandidateRequest registers a competing tip sharing blocks 0..shared.
type forkCandidateRequest struct {
	SharedIndex int `json:"shared_index"`
}

// mineCandidateRequest mines one block onto a registered fork candidate.
type mineCandidateRequest struct {
	Candidate int     `json:"candidate"`
	Txs       []newTx `json:"txs" validate:"required,min=1,dive"`
}

// blockModel is the client view of a sealed block.
type blockModel struct {
	Number        uint64     `json:"number"`
	Hash          string     `json:"hash"`
	PrevBlockHash string     `json:"prev_block_hash"`
	TransRoot     string     `json:"trans_root"`
	Timestamp     uint64     `json:"timestamp"`
	Nonce         uint64     `json:"nonce"`
	Difficulty    uint       `json:"difficulty"`
	Trans         []chain.Tx `json:"trans"`
}

func toBlockModel(b chain.Block) blockModel {
	return blockModel{
		Number:        b.Header.Number,
		Hash:          b.Hash().String(),
		PrevBlockHash: b.Header.PrevBlockHash.String(),
		TransRoot:     b.Header.TransRoot.String(),
		Timestamp:     b.Header.TimeStamp,
		Nonce:         b.Header.Nonce,
		Difficulty:    b.Header.Difficulty,
		Trans:         b.Trans.Values(),
	}
}

func toBlockModels(blocks []chain.Block) []blockModel {
	models := make([]blockModel, len(blocks))
	for i, b := range blocks {
		models[i] = toBlockModel(b)
	}

	return models
}
