package bots

import (
	"context"
	"math/rand"
	"time"

	"matchcore/engine"
)

// RandomBidBot periodically rests a small limit bid near the mid price,
// simulating a passive liquidity provider on the buy side.
type RandomBidBot struct {
	Interval     time.Duration
	Quantity     int64
	RangeInSteps int64
	rand         *rand.Rand
}

func NewRandomBidBot() *RandomBidBot {
	return &RandomBidBot{
		Interval:     200 * time.Millisecond,
		Quantity:     1,
		RangeInSteps: 5,
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *RandomBidBot) Start(ctx context.Context, client EngineClient) {
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.placeBid(ctx, client)
		}
	}
}

func (b *RandomBidBot) placeBid(ctx context.Context, client EngineClient) {
	bbo, err := client.BBO(ctx)
	if err != nil {
		return
	}
	mid := midPrice(bbo)
	if mid <= 0 {
		return
	}

	delta := b.rand.Int63n(b.RangeInSteps+1) * client.PriceStep()
	price := mid - delta
	if price <= 0 {
		price = client.PriceStep()
	}

	req := engine.OrderRequest{Symbol: client.Symbol(), Side: engine.Buy, Type: engine.Limit, Price: price, Quantity: b.Quantity}
	_, _ = client.SubmitOrder(ctx, req)
}
