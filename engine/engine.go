package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// MatchingEngineConfig controls engine-wide parameters.
type MatchingEngineConfig struct {
	// Workers is the size of the matching worker pool (§5).
	Workers int
	// SubscriberBuffer is the bounded per-subscriber queue depth for PubSub (§4.5).
	SubscriberBuffer int
	// DepthForSnapshots is how many levels per side go into the market-data
	// snapshot published after every submission.
	DepthForSnapshots int
	// Logger receives invariant-violation and publish-drop diagnostics, and
	// a debug line per trade when LogTrades is set. With LogTrades off it is
	// never on the hot path for a successful submission. May be nil.
	Logger *slog.Logger
	// Now, if set, replaces time.Now for timestamps; tests use this to pin
	// deterministic trade/order timestamps, matching the teacher's ob.now hook.
	Now func() time.Time
	// LogTrades emits a debug-level slog line per trade when true. Off by
	// default: the prototype this module was supplemented from logs a
	// dict per fill unconditionally, but that allocates on the hot path.
	LogTrades bool
}

// MatchingEngine is the registry of symbol -> OrderBook, the per-symbol
// mutual-exclusion gates, the global id counters, and the worker pool
// that executes matching steps (§4.4).
type MatchingEngine struct {
	cfg  MatchingEngineConfig
	pool *workerPool
	pub  *PubSub

	orderSeq int64 // atomic
	tradeSeq int64 // atomic
	arrival  int64 // atomic; arrival sequence recorded on each resting order (FIFO itself is the level's queue order)

	registryMu sync.Mutex
	books      map[string]*OrderBook
	locks      map[string]*sync.Mutex
}

// NewMatchingEngine builds an engine with the given config, creating a
// default worker pool and PubSub instance.
func NewMatchingEngine(cfg MatchingEngineConfig) *MatchingEngine {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = 32
	}
	if cfg.DepthForSnapshots <= 0 {
		cfg.DepthForSnapshots = 10
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &MatchingEngine{
		cfg:   cfg,
		pool:  newWorkerPool(cfg.Workers),
		pub:   NewPubSub(cfg.SubscriberBuffer, cfg.Logger),
		books: make(map[string]*OrderBook),
		locks: make(map[string]*sync.Mutex),
	}
}

// PubSub exposes the engine's publisher so transports can subscribe.
func (e *MatchingEngine) PubSub() *PubSub { return e.pub }

// Stop shuts down the matching worker pool. Safe to call once, after
// which Submit must not be called again.
func (e *MatchingEngine) Stop() { e.pool.stop() }

// bookAndLock lazily creates a symbol's book and lock on first use
// (§C.4 of SPEC_FULL) and returns both. The registry lock itself is only
// ever held for this brief lookup/creation, never for the duration of a
// matching step.
func (e *MatchingEngine) bookAndLock(symbol string) (*OrderBook, *sync.Mutex) {
	e.registryMu.Lock()
	defer e.registryMu.Unlock()
	book, ok := e.books[symbol]
	if !ok {
		book = NewOrderBook(symbol)
		e.books[symbol] = book
		e.locks[symbol] = &sync.Mutex{}
	}
	return book, e.locks[symbol]
}

// existingBookAndLock looks up a symbol's book without creating one; used
// by read paths so an unknown symbol reports an empty snapshot instead of
// materializing state for it (§7).
func (e *MatchingEngine) existingBookAndLock(symbol string) (*OrderBook, *sync.Mutex, bool) {
	e.registryMu.Lock()
	defer e.registryMu.Unlock()
	book, ok := e.books[symbol]
	if !ok {
		return nil, nil, false
	}
	return book, e.locks[symbol], true
}

// Submit assigns an order id, dispatches the matching step to the worker
// pool under the symbol's lock, then synchronously publishes any trades
// and a fresh market-data snapshot before returning the result to the
// caller (§4.4).
//
// Order ids are allocated before the book lock is taken; trade ids are
// allocated inside the matching step in trade-emission order (§4.4).
func (e *MatchingEngine) Submit(req OrderRequest) (SubmissionResult, error) {
	orderID := atomic.AddInt64(&e.orderSeq, 1)

	book, lock := e.bookAndLock(req.Symbol)

	var result SubmissionResult
	var matchErr error
	var snap MarketDataSnapshot

	e.pool.run(func() {
		lock.Lock()
		defer lock.Unlock()

		ctx := matchContext{
			orderID:    orderID,
			arrivalSeq: atomic.AddInt64(&e.arrival, 1),
			now:        e.cfg.Now(),
			nextTradeID: func() int64 {
				return atomic.AddInt64(&e.tradeSeq, 1)
			},
		}
		result, matchErr = Match(book, req, ctx)
		e.checkInvariants(book)
		if matchErr == nil {
			snap = e.snapshotLocked(book)
		}
	})
	// The symbol lock is released here, before publish — matching steps
	// for this symbol are only serialized against each other, never
	// against subscriber fan-out (§5).

	if matchErr != nil {
		return result, matchErr
	}

	e.publishAfterMatch(book.Symbol, result.Trades, snap)
	return result, nil
}

// publishAfterMatch fans out trades in emission order, then a fresh
// market-data snapshot, after the symbol lock has already been released
// (§4.4: "on return, synchronously publishes ... returns the result to
// the caller"). topic locks are independent of the book lock and Publish
// never blocks (§4.5, §5), so this never stalls another symbol's matching
// step, nor does the book lock stay held across it.
func (e *MatchingEngine) publishAfterMatch(symbol string, trades []Trade, snap MarketDataSnapshot) {
	for _, t := range trades {
		if e.cfg.LogTrades && e.cfg.Logger != nil {
			e.cfg.Logger.Debug("trade",
				slog.String("symbol", t.Symbol),
				slog.Int64("trade_id", t.TradeID),
				slog.Int64("price", t.Price),
				slog.Int64("quantity", t.Quantity),
				slog.Int64("maker_order_id", t.MakerOrderID),
				slog.Int64("taker_order_id", t.TakerOrderID))
		}
		e.pub.PublishTrade(symbol, t)
	}
	e.pub.PublishMarketData(symbol, snap)
}

func (e *MatchingEngine) snapshotLocked(book *OrderBook) MarketDataSnapshot {
	depth := book.Depth(e.cfg.DepthForSnapshots)
	return MarketDataSnapshot{
		Timestamp: e.cfg.Now(),
		Symbol:    book.Symbol,
		BBO:       book.BBO(),
		Bids:      depth.Bids,
		Asks:      depth.Asks,
	}
}

// checkInvariants guards §7's "internal invariant violation" taxonomy: a
// crossed book after a completed submission is a fatal bug, never a valid
// outcome, and is logged rather than silently tolerated. It does not
// panic — the caller already has a result to return — but it marks the
// violation loudly so an operator notices.
func (e *MatchingEngine) checkInvariants(book *OrderBook) {
	if !book.crossed() {
		return
	}
	err := &ErrInvariantViolation{Symbol: book.Symbol, Detail: "best bid >= best ask after submission"}
	if e.cfg.Logger != nil {
		e.cfg.Logger.Error(err.Error())
	}
}

// BBO returns the current best bid/offer for symbol. An unknown symbol
// returns a zero-value BBO (both sides nil) rather than an error (§7).
func (e *MatchingEngine) BBO(symbol string) BBO {
	book, lock, ok := e.existingBookAndLock(symbol)
	if !ok {
		return BBO{}
	}
	lock.Lock()
	defer lock.Unlock()
	return book.BBO()
}

// Depth returns up to n levels per side for symbol. An unknown symbol
// returns an empty DepthView rather than an error (§7). n is clamped to
// [1, 1000] per §6.
func (e *MatchingEngine) Depth(symbol string, n int) DepthView {
	if n < 1 {
		n = 1
	}
	if n > 1000 {
		n = 1000
	}
	book, lock, ok := e.existingBookAndLock(symbol)
	if !ok {
		return DepthView{Symbol: symbol}
	}
	lock.Lock()
	defer lock.Unlock()
	return book.Depth(n)
}
