package bots

import (
	"context"
	"sync"
	"time"

	"matchcore/engine"
)

// ThrottledClient wraps a MatchingEngine with rate limiting and bookkeeping
// of which engine-assigned order ids this client itself produced.
type ThrottledClient struct {
	eng       *engine.MatchingEngine
	symbol    string
	priceStep int64
	throttle  <-chan time.Time
	trades    <-chan engine.Trade
	mu        sync.Mutex
	owned     map[int64]struct{}
}

// NewThrottledClient wraps eng with basic rate limiting for a single symbol.
func NewThrottledClient(eng *engine.MatchingEngine, symbol string, priceStep int64, throttle <-chan time.Time) *ThrottledClient {
	return &ThrottledClient{
		eng:       eng,
		symbol:    symbol,
		priceStep: priceStep,
		throttle:  throttle,
		trades:    eng.PubSub().SubscribeTrades(symbol),
		owned:     make(map[int64]struct{}),
	}
}

func (c *ThrottledClient) waitThrottle(ctx context.Context) error {
	if c.throttle == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.throttle:
		return nil
	}
}

func (c *ThrottledClient) SubmitOrder(ctx context.Context, req engine.OrderRequest) (engine.SubmissionResult, error) {
	if err := c.waitThrottle(ctx); err != nil {
		return engine.SubmissionResult{}, err
	}
	if req.Symbol == "" {
		req.Symbol = c.symbol
	}
	if req.Price > 0 && req.Price%c.priceStep != 0 {
		req.Price = (req.Price / c.priceStep) * c.priceStep
	}

	result, err := c.eng.Submit(req)
	if err != nil {
		return result, err
	}

	c.mu.Lock()
	c.owned[result.OrderID] = struct{}{}
	c.mu.Unlock()
	return result, nil
}

func (c *ThrottledClient) BBO(ctx context.Context) (engine.BBO, error) {
	type result struct{ bbo engine.BBO }
	done := make(chan result, 1)
	go func() {
		done <- result{bbo: c.eng.BBO(c.symbol)}
	}()

	select {
	case <-ctx.Done():
		return engine.BBO{}, ctx.Err()
	case res := <-done:
		return res.bbo, nil
	}
}

func (c *ThrottledClient) Trades() <-chan engine.Trade {
	return c.trades
}

func (c *ThrottledClient) Symbol() string {
	return c.symbol
}

func (c *ThrottledClient) PriceStep() int64 {
	return c.priceStep
}

func (c *ThrottledClient) OwnsOrder(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.owned[id]
	return ok
}
