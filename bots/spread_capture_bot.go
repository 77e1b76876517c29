package bots

import (
	"context"
	"time"

	"matchcore/engine"
)

// SpreadCaptureBot watches the spread and takes liquidity with an IOC order
// whenever it narrows below a threshold, on whichever side looks cheaper
// relative to the last seen mid. Unlike the teacher's version this never
// rests an order waiting to be repriced or canceled — it only ever crosses,
// since the engine has no cancel-by-id operation to unwind a stale quote.
type SpreadCaptureBot struct {
	Interval       time.Duration
	ThresholdSteps int64
	Quantity       int64

	lastMid int64
}

func NewSpreadCaptureBot() *SpreadCaptureBot {
	return &SpreadCaptureBot{
		Interval:       300 * time.Millisecond,
		ThresholdSteps: 3,
		Quantity:       1,
	}
}

func (b *SpreadCaptureBot) Start(ctx context.Context, client EngineClient) {
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.tryCapture(ctx, client)
		}
	}
}

func (b *SpreadCaptureBot) tryCapture(ctx context.Context, client EngineClient) {
	bbo, err := client.BBO(ctx)
	if err != nil || bbo.BestBid == nil || bbo.BestAsk == nil {
		return
	}

	spread := bbo.BestAsk.Price - bbo.BestBid.Price
	threshold := b.ThresholdSteps * client.PriceStep()
	if spread > threshold {
		return
	}

	mid := (bbo.BestBid.Price + bbo.BestAsk.Price) / 2
	side := engine.Buy
	price := bbo.BestAsk.Price
	if b.lastMid != 0 && mid > b.lastMid {
		side = engine.Sell
		price = bbo.BestBid.Price
	}
	b.lastMid = mid

	req := engine.OrderRequest{
		Symbol:   client.Symbol(),
		Side:     side,
		Type:     engine.IOC,
		Price:    price,
		Quantity: b.Quantity,
	}
	_, _ = client.SubmitOrder(ctx, req)
}
