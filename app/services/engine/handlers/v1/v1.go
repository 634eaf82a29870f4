// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/MXmingxuan/blockchain-lab/app/services/engine/handlers/v1/simgrp"
	"github.com/MXmingxuan/blockchain-lab/app/services/engine/handlers/v1/toolgrp"
	"github.com/MXmingxuan/blockchain-lab/business/core/sim"
	"github.com/MXmingxuan/blockchain-lab/foundation/events"
	"github.com/MXmingxuan/blockchain-lab/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log  *zap.SugaredLogger
	Core *sim.Core
	Evts *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	sgh := simgrp.Handlers{
		Log:  cfg.Log,
		Core: cfg.Core,
		WS:   websocket.Upgrader{},
		Evts: cfg.Evts,
	}

	app.Handle(http.MethodPost, version, "/sim", sgh.Create)
	app.Handle(http.MethodGet, version, "/sim/:id/status", sgh.Status)
	app.Handle(http.MethodGet, version, "/sim/:id/block/list", sgh.Blocks)
	app.Handle(http.MethodPost, version, "/sim/:id/tx/add", sgh.AddTransactions)
	app.Handle(http.MethodGet, version, "/sim/:id/tx/pending", sgh.Pending)
	app.Handle(http.MethodPost, version, "/sim/:id/mine", sgh.Mine)
	app.Handle(http.MethodGet, version, "/sim/:id/validate", sgh.Validate)
	app.Handle(http.MethodPost, version, "/sim/:id/tamper", sgh.Tamper)
	app.Handle(http.MethodPost, version, "/sim/:id/fork/candidate", sgh.ForkCandidate)
	app.Handle(http.MethodPost, version, "/sim/:id/fork/mine", sgh.MineCandidate)
	app.Handle(http.MethodPost, version, "/sim/:id/fork/resolve", sgh.ResolveFork)
	app.Handle(http.MethodGet, version, "/sim/:id/confirmations/:index", sgh.Confirmations)
	app.Handle(http.MethodGet, version, "/sim/:id/retarget", sgh.Retarget)
	app.Handle(http.MethodGet, version, "/events", sgh.Events)

	tgh := toolgrp.Handlers{
		Log: cfg.Log,
	}

	app.Handle(http.MethodPost, version, "/merkle/root", tgh.MerkleRoot)
	app.Handle(http.MethodPost, version, "/merkle/proof", tgh.MerkleProof)
	app.Handle(http.MethodPost, version, "/merkle/verify", tgh.MerkleVerify)
	app.Handle(http.MethodPost, version, "/difficulty/next", tgh.NextDifficulty)
	app.Handle(http.MethodGet, version, "/confirmations/:count/safety", tgh.Safety)
}
