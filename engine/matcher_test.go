package engine

import "testing"

func fixedCtx(orderID int64, tradeSeq *int64) matchContext {
	return matchContext{
		orderID:    orderID,
		arrivalSeq: orderID,
		nextTradeID: func() int64 {
			*tradeSeq++
			return *tradeSeq
		},
	}
}

func restOn(book *OrderBook, id int64, side Side, price, qty int64) {
	book.addResting(&RestingOrder{ID: id, Symbol: book.Symbol, Side: side, Price: price, Remaining: qty})
}

// Scenario 1: FIFO within price.
func TestFIFOWithinPrice(t *testing.T) {
	book := NewOrderBook("BTC-USDT")
	restOn(book, 1, Sell, 100, 1) // S1
	restOn(book, 2, Sell, 100, 1) // S2

	var seq int64
	res, err := Match(book, OrderRequest{Symbol: "BTC-USDT", Type: Market, Side: Buy, Quantity: 1}, fixedCtx(3, &seq))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("expected exactly one trade, got %d", len(res.Trades))
	}
	tr := res.Trades[0]
	if tr.Price != 100 || tr.Quantity != 1 || tr.MakerOrderID != 1 {
		t.Fatalf("unexpected trade: %+v", tr)
	}

	lvl := book.BestAsk()
	if lvl == nil || lvl.totalQuantity() != 1 {
		t.Fatalf("expected S2 still resting with qty 1, got %+v", lvl)
	}
	if front := lvl.peekFront(); front == nil || front.ID != 2 {
		t.Fatalf("expected S2 at the front, got %+v", front)
	}
}

// Scenario 2: IOC partial.
func TestIOCPartialDoesNotRest(t *testing.T) {
	book := NewOrderBook("BTC-USDT")
	restOn(book, 1, Sell, 101, 2)

	var seq int64
	res, err := Match(book, OrderRequest{Symbol: "BTC-USDT", Type: IOC, Side: Buy, Quantity: 5, Price: 101}, fixedCtx(2, &seq))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != Canceled {
		t.Fatalf("expected canceled, got %v", res.Status)
	}
	if res.FilledQuantity != 2 || len(res.Trades) != 1 || res.Trades[0].Price != 101 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if book.BestBid() != nil {
		t.Fatalf("IOC residual must never rest, found a resting bid")
	}
}

// Scenario 3: FOK rejected leaves the book untouched.
func TestFOKRejectedNoSideEffects(t *testing.T) {
	book := NewOrderBook("BTC-USDT")
	restOn(book, 1, Sell, 100, 1)
	restOn(book, 2, Sell, 102, 1)

	var seq int64
	res, err := Match(book, OrderRequest{Symbol: "BTC-USDT", Type: FOK, Side: Buy, Quantity: 3, Price: 101}, fixedCtx(3, &seq))
	if err == nil {
		t.Fatalf("expected rejection error")
	}
	if res.Status != Rejected || len(res.Trades) != 0 {
		t.Fatalf("expected rejected with no trades, got %+v", res)
	}
	if book.asks.liveLevelCount() != 2 {
		t.Fatalf("expected both asks still resting, got %d levels", book.asks.liveLevelCount())
	}
}

// Scenario 4: FOK accepted executes in full.
func TestFOKAcceptedFillsEntirely(t *testing.T) {
	book := NewOrderBook("BTC-USDT")
	restOn(book, 1, Sell, 100, 1)
	restOn(book, 2, Sell, 101, 2)

	var seq int64
	res, err := Match(book, OrderRequest{Symbol: "BTC-USDT", Type: FOK, Side: Buy, Quantity: 3, Price: 101}, fixedCtx(3, &seq))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != Filled || len(res.Trades) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Trades[0].Price != 100 || res.Trades[0].Quantity != 1 {
		t.Fatalf("unexpected first trade: %+v", res.Trades[0])
	}
	if res.Trades[1].Price != 101 || res.Trades[1].Quantity != 2 {
		t.Fatalf("unexpected second trade: %+v", res.Trades[1])
	}
	if book.BestAsk() != nil {
		t.Fatalf("expected ask side empty after full fill")
	}
}

// Scenario 5: market exhaustion.
func TestMarketExhaustion(t *testing.T) {
	book := NewOrderBook("BTC-USDT")
	restOn(book, 1, Sell, 100, 1)

	var seq int64
	res, err := Match(book, OrderRequest{Symbol: "BTC-USDT", Type: Market, Side: Buy, Quantity: 3}, fixedCtx(2, &seq))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != Canceled || res.FilledQuantity != 1 || res.RemainingQuantity != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if book.BestAsk() != nil {
		t.Fatalf("expected ask side empty after exhaustion")
	}
}

// Scenario 6: LIMIT rests after a partial cross.
func TestLimitRestsAfterPartialCross(t *testing.T) {
	book := NewOrderBook("BTC-USDT")
	restOn(book, 1, Sell, 100, 1)

	var seq int64
	res, err := Match(book, OrderRequest{Symbol: "BTC-USDT", Type: Limit, Side: Buy, Quantity: 3, Price: 100}, fixedCtx(2, &seq))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != Accepted || res.FilledQuantity != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	lvl := book.BestBid()
	if lvl == nil || lvl.Price != 100 || lvl.totalQuantity() != 2 {
		t.Fatalf("expected bid resting at 100 qty 2, got %+v", lvl)
	}
}

func TestValidationRejectsBadInput(t *testing.T) {
	cases := []OrderRequest{
		{Symbol: "X", Type: Limit, Side: Buy, Quantity: 0, Price: 10},
		{Symbol: "X", Type: Limit, Side: Buy, Quantity: 1, Price: 0},
		{Symbol: "X", Type: OrderType(99), Side: Buy, Quantity: 1, Price: 10},
		{Symbol: "X", Type: Limit, Side: Side(99), Quantity: 1, Price: 10},
	}
	for i, req := range cases {
		book := NewOrderBook("X")
		var seq int64
		res, err := Match(book, req, fixedCtx(1, &seq))
		if err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
		if res.Status != Rejected {
			t.Fatalf("case %d: expected rejected status, got %v", i, res.Status)
		}
	}
}

func TestTradePriceIsAlwaysMakerPrice(t *testing.T) {
	book := NewOrderBook("X")
	restOn(book, 1, Buy, 100, 5)

	var seq int64
	res, err := Match(book, OrderRequest{Symbol: "X", Type: Limit, Side: Sell, Quantity: 2, Price: 90}, fixedCtx(2, &seq))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Trades) != 1 || res.Trades[0].Price != 100 {
		t.Fatalf("trade price must be the resting price, got %+v", res.Trades)
	}
}
