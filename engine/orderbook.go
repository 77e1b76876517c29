package engine

// OrderBook holds both sides of a single symbol under price-time priority.
// It carries no locking of its own: the MatchingEngine is the sole owner of
// mutual exclusion for a book (§4.4), so every method here assumes the
// caller already holds that symbol's lock.
type OrderBook struct {
	Symbol string
	bids   *bookSide
	asks   *bookSide
}

// NewOrderBook constructs an empty book for symbol.
func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		Symbol: symbol,
		bids:   newBookSide(true),
		asks:   newBookSide(false),
	}
}

func (b *OrderBook) sideFor(side Side) *bookSide {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

// oppositeSide returns the side an aggressor of side consumes against.
func (b *OrderBook) oppositeSide(side Side) *bookSide {
	if side == Buy {
		return b.asks
	}
	return b.bids
}

// BestBid returns the best live bid level, or nil.
func (b *OrderBook) BestBid() *PriceLevel { return b.bids.best() }

// BestAsk returns the best live ask level, or nil.
func (b *OrderBook) BestAsk() *PriceLevel { return b.asks.best() }

// BBO returns a snapshot-safe view of the best bid/offer.
func (b *OrderBook) BBO() BBO {
	var out BBO
	if lvl := b.BestBid(); lvl != nil {
		out.BestBid = &PriceLevelView{Price: lvl.Price, Quantity: lvl.totalQuantity()}
	}
	if lvl := b.BestAsk(); lvl != nil {
		out.BestAsk = &PriceLevelView{Price: lvl.Price, Quantity: lvl.totalQuantity()}
	}
	return out
}

// Depth returns up to n aggregated levels per side: bids descending,
// asks ascending (§4.2).
func (b *OrderBook) Depth(n int) DepthView {
	return DepthView{
		Symbol: b.Symbol,
		Bids:   b.bids.depth(n),
		Asks:   b.asks.depth(n),
	}
}

// addResting appends order to the book side matching its Side. Only Limit
// orders with remaining quantity reach this path (§4.1).
func (b *OrderBook) addResting(order *RestingOrder) {
	b.sideFor(order.Side).addResting(order)
}

// consumeBestFront consumes min(requested, front's remaining) off the
// front order of the side's best level, dropping the level from the map
// if it drains. Returns the maker order's id, the quantity actually
// consumed, and whether a level existed to consume from at all.
func (s *bookSide) consumeBestFront(requested int64) (makerID int64, qty int64, ok bool) {
	lvl := s.best()
	if lvl == nil {
		return 0, 0, false
	}
	front := lvl.peekFront()
	if front == nil {
		return 0, 0, false
	}
	qty = requested
	if front.Remaining < qty {
		qty = front.Remaining
	}
	makerID = front.ID
	lvl.consumeFront(qty)
	if lvl.isEmpty() {
		s.dropIfEmpty(lvl.Price)
	}
	return makerID, qty, true
}

// crossed reports whether the book is in an invalid crossed state
// (best_bid >= best_ask with both sides non-empty). Used by invariant
// checks and tests (§8 invariant 1); never observed mid-match.
func (b *OrderBook) crossed() bool {
	bid := b.BestBid()
	ask := b.BestAsk()
	if bid == nil || ask == nil {
		return false
	}
	return bid.Price >= ask.Price
}
