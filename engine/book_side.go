package engine

import (
	"container/heap"
	"sort"
)

// priceHeap is a min-heap over raw price. For the bid side, the book
// pushes negated prices so the same min-heap implements a max-heap;
// see bookSide.heapKey.
type priceHeap []int64

func (h priceHeap) Len() int            { return len(h) }
func (h priceHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h priceHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *priceHeap) Push(x interface{}) { *h = append(*h, x.(int64)) }
func (h *priceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// bookSide holds one side (bids or asks) of an OrderBook: a map from price
// to its FIFO PriceLevel, and a heap of prices used for best-price discovery.
//
// Levels are removed from the map as soon as they empty, but their entry in
// the heap is left in place (§4.2 "lazy deletion"); every read of the heap
// top checks the map and pops-and-discards stale entries until it finds one
// that is still live, or the heap is empty.
type bookSide struct {
	isBid  bool
	levels map[int64]*PriceLevel
	heap   priceHeap
}

func newBookSide(isBid bool) *bookSide {
	s := &bookSide{isBid: isBid, levels: make(map[int64]*PriceLevel)}
	heap.Init(&s.heap)
	return s
}

func (s *bookSide) heapKey(price int64) int64 {
	if s.isBid {
		return -price
	}
	return price
}

// addResting inserts order into its price level, creating the level (and
// pushing it to the heap) only if one did not already exist — the heap
// grows once per level creation rather than once per order, which is what
// keeps lazy pruning cheap. A price whose level drained and is later
// re-created gets a second heap entry; depth() skips the duplicate.
func (s *bookSide) addResting(order *RestingOrder) {
	lvl, ok := s.levels[order.Price]
	if !ok {
		lvl = newPriceLevel(order.Price)
		s.levels[order.Price] = lvl
		heap.Push(&s.heap, s.heapKey(order.Price))
	}
	lvl.append(order)
}

// best prunes stale heap tops and returns the best live level, or nil.
func (s *bookSide) best() *PriceLevel {
	for s.heap.Len() > 0 {
		top := s.heap[0]
		price := top
		if s.isBid {
			price = -top
		}
		lvl, ok := s.levels[price]
		if ok && !lvl.isEmpty() {
			return lvl
		}
		heap.Pop(&s.heap)
	}
	return nil
}

// dropIfEmpty removes price's level from the map once its queue has drained.
// The heap entry is left for best()/depth() to prune lazily.
func (s *bookSide) dropIfEmpty(price int64) {
	if lvl, ok := s.levels[price]; ok && lvl.isEmpty() {
		delete(s.levels, price)
	}
}

// depth returns up to n live levels, best-first, skipping stale heap
// entries as it goes. It walks a copy of the heap and mutates nothing.
func (s *bookSide) depth(n int) []PriceLevelView {
	if n <= 0 {
		return nil
	}
	// Walk a scratch copy of the heap so repeated calls don't disturb the
	// real structure beyond the stale-entry pruning best() already does.
	scratch := make(priceHeap, len(s.heap))
	copy(scratch, s.heap)
	heap.Init(&scratch)

	out := make([]PriceLevelView, 0, n)
	seen := make(map[int64]struct{}, n)
	for scratch.Len() > 0 && len(out) < n {
		top := heap.Pop(&scratch).(int64)
		price := top
		if s.isBid {
			price = -top
		}
		if _, dup := seen[price]; dup {
			continue
		}
		seen[price] = struct{}{}
		lvl, ok := s.levels[price]
		if !ok || lvl.isEmpty() {
			continue
		}
		out = append(out, PriceLevelView{Price: price, Quantity: lvl.totalQuantity()})
	}
	return out
}

// liveLevelCount reports live (non-empty, mapped) levels; used by tests
// asserting the heap-vs-map invariant (§8 invariant 3).
func (s *bookSide) liveLevelCount() int {
	return len(s.levels)
}

// liveBestFirstPrices returns every live price in best-first order. It is
// only used by the FOK pre-check, which needs to walk the whole boundary
// before deciding to commit; every other read path goes through best()/
// depth() and only materializes as much of the book as it needs.
func (s *bookSide) liveBestFirstPrices() []int64 {
	prices := make([]int64, 0, len(s.levels))
	for price, lvl := range s.levels {
		if !lvl.isEmpty() {
			prices = append(prices, price)
		}
	}
	sort.Slice(prices, func(i, j int) bool {
		if s.isBid {
			return prices[i] > prices[j]
		}
		return prices[i] < prices[j]
	})
	return prices
}
