package engine

import "testing"

func TestBestBidAskPrunesStaleHeapTops(t *testing.T) {
	book := NewOrderBook("X")
	restOn(book, 1, Buy, 100, 1)
	restOn(book, 2, Buy, 101, 1)

	var seq int64
	// Fully consume the best bid (101) with a market sell; its level
	// empties and is dropped from the map, leaving a stale heap entry.
	_, err := Match(book, OrderRequest{Symbol: "X", Type: Market, Side: Sell, Quantity: 1}, fixedCtx(3, &seq))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lvl := book.BestBid()
	if lvl == nil || lvl.Price != 100 {
		t.Fatalf("expected best bid to skip the stale 101 entry and land on 100, got %+v", lvl)
	}
}

func TestDepthOrdering(t *testing.T) {
	book := NewOrderBook("X")
	restOn(book, 1, Buy, 100, 1)
	restOn(book, 2, Buy, 102, 3)
	restOn(book, 3, Buy, 101, 2)
	restOn(book, 4, Sell, 110, 1)
	restOn(book, 5, Sell, 108, 4)

	d := book.Depth(10)
	wantBids := []int64{102, 101, 100}
	for i, p := range wantBids {
		if d.Bids[i].Price != p {
			t.Fatalf("bids not descending: %+v", d.Bids)
		}
	}
	wantAsks := []int64{108, 110}
	for i, p := range wantAsks {
		if d.Asks[i].Price != p {
			t.Fatalf("asks not ascending: %+v", d.Asks)
		}
	}
}

func TestDepthRespectsLimit(t *testing.T) {
	book := NewOrderBook("X")
	for i := int64(0); i < 5; i++ {
		restOn(book, i+1, Buy, 100+i, 1)
	}
	d := book.Depth(2)
	if len(d.Bids) != 2 {
		t.Fatalf("expected exactly 2 levels, got %d", len(d.Bids))
	}
	if d.Bids[0].Price != 104 || d.Bids[1].Price != 103 {
		t.Fatalf("expected the two best bids first, got %+v", d.Bids)
	}
}

func TestNeverCrossedAfterSubmission(t *testing.T) {
	book := NewOrderBook("X")
	restOn(book, 1, Sell, 100, 5)

	var seq int64
	_, err := Match(book, OrderRequest{Symbol: "X", Type: Limit, Side: Buy, Quantity: 2, Price: 105}, fixedCtx(2, &seq))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if book.crossed() {
		t.Fatalf("book must never be crossed after a submission completes")
	}
}

func TestPriceLevelTotalMatchesQueueSum(t *testing.T) {
	lvl := newPriceLevel(100)
	lvl.append(&RestingOrder{ID: 1, Remaining: 3})
	lvl.append(&RestingOrder{ID: 2, Remaining: 4})
	if lvl.totalQuantity() != 7 {
		t.Fatalf("expected total 7, got %d", lvl.totalQuantity())
	}
	lvl.consumeFront(3)
	if lvl.totalQuantity() != 4 {
		t.Fatalf("expected total 4 after partial consume, got %d", lvl.totalQuantity())
	}
	if front := lvl.peekFront(); front == nil || front.ID != 2 {
		t.Fatalf("expected order 1 fully consumed and popped, got %+v", front)
	}
}
