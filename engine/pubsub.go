package engine

import (
	"log/slog"
	"sync"
)

// subscription is a bounded per-subscriber mailbox. A slow consumer never
// blocks the publisher (§4.5): Publish drops the value instead of waiting
// when the buffer is full.
type subscription[T any] struct {
	ch chan T
}

// topic fans a single symbol's events out to every current subscriber.
// Guarded by its own lock, independent of any OrderBook lock — §5 requires
// that a book lock never be held while blocking on publish, and topic
// locks are never held across a publish to a full channel (Publish uses a
// non-blocking send).
type topic[T any] struct {
	mu   sync.RWMutex
	subs map[*subscription[T]]struct{}
}

func newTopic[T any]() *topic[T] {
	return &topic[T]{subs: make(map[*subscription[T]]struct{})}
}

func (t *topic[T]) subscribe(buffer int) *subscription[T] {
	sub := &subscription[T]{ch: make(chan T, buffer)}
	t.mu.Lock()
	t.subs[sub] = struct{}{}
	t.mu.Unlock()
	return sub
}

func (t *topic[T]) unsubscribe(sub *subscription[T]) {
	t.mu.Lock()
	_, ok := t.subs[sub]
	delete(t.subs, sub)
	t.mu.Unlock()
	if ok {
		close(sub.ch)
	}
}

// publish fans value out to every subscriber, dropping (never blocking)
// on a full subscriber buffer. onDrop, if set, is called for every drop so
// the engine can log it (§7: publish errors are swallowed and logged, and
// never affect the matching result already returned to the caller).
func (t *topic[T]) publish(value T, onDrop func()) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for sub := range t.subs {
		select {
		case sub.ch <- value:
		default:
			if onDrop != nil {
				onDrop()
			}
		}
	}
}

// PubSub fans out trade executions and market-data snapshots per symbol
// (§4.5, §6). Delivery is best-effort and single-process: there is no
// durable buffer and no replay.
type PubSub struct {
	subscriberBuffer int
	logger           *slog.Logger

	mu     sync.Mutex
	trades map[string]*topic[Trade]
	mds    map[string]*topic[MarketDataSnapshot]
}

// NewPubSub builds a PubSub with the given per-subscriber buffer depth.
// logger may be nil, in which case dropped-publish events are discarded
// rather than logged.
func NewPubSub(subscriberBuffer int, logger *slog.Logger) *PubSub {
	if subscriberBuffer <= 0 {
		subscriberBuffer = 1
	}
	return &PubSub{
		subscriberBuffer: subscriberBuffer,
		logger:           logger,
		trades:           make(map[string]*topic[Trade]),
		mds:              make(map[string]*topic[MarketDataSnapshot]),
	}
}

func (p *PubSub) tradeTopic(symbol string) *topic[Trade] {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.trades[symbol]
	if !ok {
		t = newTopic[Trade]()
		p.trades[symbol] = t
	}
	return t
}

func (p *PubSub) mdTopic(symbol string) *topic[MarketDataSnapshot] {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.mds[symbol]
	if !ok {
		t = newTopic[MarketDataSnapshot]()
		p.mds[symbol] = t
	}
	return t
}

// SubscribeTrades returns a channel of Trade events for symbol (§6
// subscribe_trades). Call UnsubscribeTrades with the same symbol and
// channel when done to release the subscription.
func (p *PubSub) SubscribeTrades(symbol string) <-chan Trade {
	sub := p.tradeTopic(symbol).subscribe(p.subscriberBuffer)
	return sub.ch
}

// UnsubscribeTrades releases a subscription created by SubscribeTrades.
func (p *PubSub) UnsubscribeTrades(symbol string, ch <-chan Trade) {
	p.tradeTopic(symbol).unsubscribeByChan(ch)
}

// SubscribeMarketData returns a channel of MarketDataSnapshot for symbol
// (§6 subscribe_marketdata).
func (p *PubSub) SubscribeMarketData(symbol string) <-chan MarketDataSnapshot {
	sub := p.mdTopic(symbol).subscribe(p.subscriberBuffer)
	return sub.ch
}

// UnsubscribeMarketData releases a subscription created by SubscribeMarketData.
func (p *PubSub) UnsubscribeMarketData(symbol string, ch <-chan MarketDataSnapshot) {
	p.mdTopic(symbol).unsubscribeByChan(ch)
}

// PublishTrade fans a trade out to symbol's trades topic.
func (p *PubSub) PublishTrade(symbol string, trade Trade) {
	p.tradeTopic(symbol).publish(trade, func() {
		p.logDrop("trades", symbol)
	})
}

// PublishMarketData fans a snapshot out to symbol's marketdata topic.
func (p *PubSub) PublishMarketData(symbol string, snap MarketDataSnapshot) {
	p.mdTopic(symbol).publish(snap, func() {
		p.logDrop("marketdata", symbol)
	})
}

func (p *PubSub) logDrop(topicName, symbol string) {
	if p.logger == nil {
		return
	}
	p.logger.Warn("dropped publish to slow or gone subscriber",
		slog.String("topic", topicName),
		slog.String("symbol", symbol))
}

// unsubscribeByChan is a small helper since callers only hold the
// receive-only channel, not the *subscription itself.
func (t *topic[T]) unsubscribeByChan(ch <-chan T) {
	t.mu.Lock()
	var target *subscription[T]
	for sub := range t.subs {
		if (<-chan T)(sub.ch) == ch {
			target = sub
			break
		}
	}
	if target != nil {
		delete(t.subs, target)
	}
	t.mu.Unlock()
	if target != nil {
		close(target.ch)
	}
}
