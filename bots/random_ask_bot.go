package bots

import (
	"context"
	"math/rand"
	"time"

	"matchcore/engine"
)

// RandomAskBot periodically rests a small limit ask near the mid price,
// simulating a passive liquidity provider on the sell side.
type RandomAskBot struct {
	Interval     time.Duration
	Quantity     int64
	RangeInSteps int64
	rand         *rand.Rand
}

func NewRandomAskBot() *RandomAskBot {
	return &RandomAskBot{
		Interval:     200 * time.Millisecond,
		Quantity:     1,
		RangeInSteps: 5,
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *RandomAskBot) Start(ctx context.Context, client EngineClient) {
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.placeAsk(ctx, client)
		}
	}
}

func (b *RandomAskBot) placeAsk(ctx context.Context, client EngineClient) {
	bbo, err := client.BBO(ctx)
	if err != nil {
		return
	}
	mid := midPrice(bbo)
	if mid <= 0 {
		return
	}

	delta := b.rand.Int63n(b.RangeInSteps+1) * client.PriceStep()
	price := mid + delta

	req := engine.OrderRequest{Symbol: client.Symbol(), Side: engine.Sell, Type: engine.Limit, Price: price, Quantity: b.Quantity}
	_, _ = client.SubmitOrder(ctx, req)
}
