package engine

import (
	"math/rand"
	"testing"
)

// TestRandomSubmissionsNeverCrossAndNeverOvertrade runs a long random
// sequence of valid submissions against a single book and checks, after
// every single one, invariants 1, 2 and 4 from §8: the book is never
// crossed, every level's cached total matches its queue, and no
// submission ever trades more than it asked for.
func TestRandomSubmissionsNeverCrossAndNeverOvertrade(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	book := NewOrderBook("X")
	var tradeSeq int64
	var nextID int64

	types := []OrderType{Limit, Limit, Limit, Market, IOC, FOK}

	for i := 0; i < 5000; i++ {
		nextID++
		side := Side(rng.Intn(2))
		typ := types[rng.Intn(len(types))]
		qty := int64(rng.Intn(10) + 1)
		price := int64(95 + rng.Intn(11)) // 95..105

		req := OrderRequest{Symbol: "X", Type: typ, Side: side, Quantity: qty}
		if typ != Market {
			req.Price = price
		}

		res, _ := Match(book, req, fixedCtx(nextID, &tradeSeq))

		var traded int64
		for _, tr := range res.Trades {
			traded += tr.Quantity
		}
		if traded > qty {
			t.Fatalf("iteration %d: traded %d exceeds requested %d", i, traded, qty)
		}

		if book.crossed() {
			t.Fatalf("iteration %d: book crossed after %+v -> %+v", i, req, res)
		}

		checkLevelTotals(t, book.bids, i)
		checkLevelTotals(t, book.asks, i)
	}
}

func checkLevelTotals(t *testing.T, side *bookSide, iteration int) {
	t.Helper()
	for price, lvl := range side.levels {
		var sum int64
		for _, o := range lvl.orders() {
			sum += o.Remaining
		}
		if sum != lvl.totalQuantity() {
			t.Fatalf("iteration %d: level %d cached total %d disagrees with queue sum %d",
				iteration, price, lvl.totalQuantity(), sum)
		}
		if lvl.isEmpty() {
			t.Fatalf("iteration %d: level %d is mapped but empty", iteration, price)
		}
	}
}

// TestFOKIsAtomic asserts §8 invariant 6: a rejected FOK leaves the book
// bit-identical (here: aggregate-quantity identical, since that's what
// the public API exposes) to its pre-submission state.
func TestFOKIsAtomic(t *testing.T) {
	book := NewOrderBook("X")
	var tradeSeq int64
	var nextID int64

	for i := int64(0); i < 20; i++ {
		nextID++
		restOn(book, nextID, Sell, 100+i%5, 1)
	}

	before := book.Depth(100)

	nextID++
	_, err := Match(book, OrderRequest{Symbol: "X", Type: FOK, Side: Buy, Quantity: 1000, Price: 102}, fixedCtx(nextID, &tradeSeq))
	if err == nil {
		t.Fatalf("expected this FOK to be rejected for insufficient liquidity")
	}

	after := book.Depth(100)
	if len(before.Asks) != len(after.Asks) {
		t.Fatalf("rejected FOK mutated the book: before=%+v after=%+v", before.Asks, after.Asks)
	}
	for i := range before.Asks {
		if before.Asks[i] != after.Asks[i] {
			t.Fatalf("rejected FOK mutated level %+v -> %+v", before.Asks[i], after.Asks[i])
		}
	}
}
