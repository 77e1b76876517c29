// Package bots simulates market activity against a MatchingEngine: small
// agents that submit randomized orders so a running engine has resting
// liquidity and a trade tape to observe, grounded on the teacher's own
// bots package. Order cancellation by id is out of scope (the engine never
// hands a client a cancelable id in the first place), so every bot here is
// built around submit-only strategies rather than place-then-cancel.
package bots

import (
	"context"

	"matchcore/engine"
)

// Bot represents a trading agent that can be run under a Supervisor.
type Bot interface {
	Start(ctx context.Context, client EngineClient)
}

// EngineClient abstracts the minimal surface bots need from the matching
// engine, so bots can be tested against a fake without a real engine.
type EngineClient interface {
	SubmitOrder(ctx context.Context, req engine.OrderRequest) (engine.SubmissionResult, error)
	BBO(ctx context.Context) (engine.BBO, error)
	Trades() <-chan engine.Trade
	Symbol() string
	PriceStep() int64
	OwnsOrder(id int64) bool
}
