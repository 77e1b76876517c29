package bots

import (
	"context"
	"log"
	"sync"
	"time"

	"matchcore/engine"
)

// Supervisor orchestrates multiple bots against a shared throttled client
// and tracks their aggregate PnL.
type Supervisor struct {
	bots     []Bot
	client   *ThrottledClient
	pnl      *pnlTracker
	throttle *time.Ticker
}

// NewSupervisor builds a default swarm of bots and a throttled client for
// eng/symbol/priceStep.
func NewSupervisor(eng *engine.MatchingEngine, symbol string, priceStep int64, orderInterval time.Duration) *Supervisor {
	throttle := time.NewTicker(orderInterval)
	client := NewThrottledClient(eng, symbol, priceStep, throttle.C)
	bots := []Bot{
		NewRandomBidBot(),
		NewRandomAskBot(),
		NewRandomBidBot(),
		NewRandomAskBot(),
		NewSpreadCaptureBot(),
	}
	return &Supervisor{
		bots:     bots,
		client:   client,
		pnl:      &pnlTracker{},
		throttle: throttle,
	}
}

// Start launches all bots and PnL monitoring until the context is canceled.
func (s *Supervisor) Start(ctx context.Context) {
	logTicker := time.NewTicker(2 * time.Second)
	defer logTicker.Stop()
	defer s.throttle.Stop()

	for _, bot := range s.bots {
		b := bot
		go b.Start(ctx, s.client)
	}

	go s.consumeTrades(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-logTicker.C:
			pos, cash := s.pnl.Snapshot()
			log.Printf("pnl position=%d cash=%d", pos, cash)
		}
	}
}

func (s *Supervisor) consumeTrades(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case trade, ok := <-s.client.Trades():
			if !ok {
				return
			}
			s.pnl.Record(trade, s.client)
		}
	}
}

type pnlTracker struct {
	mu       sync.Mutex
	position int64
	cash     int64
}

func (p *pnlTracker) Record(trade engine.Trade, client EngineClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if client.OwnsOrder(trade.TakerOrderID) {
		if trade.AggressorSide == engine.Buy {
			p.position += trade.Quantity
			p.cash -= trade.Price * trade.Quantity
		} else {
			p.position -= trade.Quantity
			p.cash += trade.Price * trade.Quantity
		}
	}
	if client.OwnsOrder(trade.MakerOrderID) {
		if trade.AggressorSide == engine.Buy {
			p.position -= trade.Quantity
			p.cash += trade.Price * trade.Quantity
		} else {
			p.position += trade.Quantity
			p.cash -= trade.Price * trade.Quantity
		}
	}
}

func (p *pnlTracker) Snapshot() (int64, int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position, p.cash
}
