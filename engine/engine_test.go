package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *MatchingEngine {
	t.Helper()
	eng := NewMatchingEngine(MatchingEngineConfig{
		Workers:          2,
		SubscriberBuffer: 8,
		Now:              func() time.Time { return time.Unix(0, 0) },
	})
	t.Cleanup(eng.Stop)
	return eng
}

func TestSubmitAssignsMonotonicOrderIDs(t *testing.T) {
	eng := newTestEngine(t)
	r1, err := eng.Submit(OrderRequest{Symbol: "X", Type: Limit, Side: Buy, Quantity: 1, Price: 10})
	require.NoError(t, err)
	r2, err := eng.Submit(OrderRequest{Symbol: "X", Type: Limit, Side: Buy, Quantity: 1, Price: 10})
	require.NoError(t, err)
	require.Greater(t, r2.OrderID, r1.OrderID)
}

func TestSubmitPublishesTradesAndSnapshot(t *testing.T) {
	eng := newTestEngine(t)

	trades := eng.PubSub().SubscribeTrades("X")
	mds := eng.PubSub().SubscribeMarketData("X")

	_, err := eng.Submit(OrderRequest{Symbol: "X", Type: Limit, Side: Sell, Quantity: 1, Price: 100})
	require.NoError(t, err)

	select {
	case <-mds:
	case <-time.After(time.Second):
		t.Fatal("expected a market-data snapshot after resting a new order")
	}

	_, err = eng.Submit(OrderRequest{Symbol: "X", Type: Market, Side: Buy, Quantity: 1})
	require.NoError(t, err)

	select {
	case tr := <-trades:
		require.Equal(t, int64(100), tr.Price)
	case <-time.After(time.Second):
		t.Fatal("expected a trade event")
	}
}

func TestBBOAndDepthOnUnknownSymbolAreEmptyNotError(t *testing.T) {
	eng := newTestEngine(t)
	bbo := eng.BBO("NOPE")
	require.Nil(t, bbo.BestBid)
	require.Nil(t, bbo.BestAsk)

	depth := eng.Depth("NOPE", 10)
	require.Empty(t, depth.Bids)
	require.Empty(t, depth.Asks)
}

func TestDepthClampsRequestedLevels(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Submit(OrderRequest{Symbol: "X", Type: Limit, Side: Buy, Quantity: 1, Price: 1})
	require.NoError(t, err)

	d := eng.Depth("X", 5000)
	require.LessOrEqual(t, len(d.Bids), 1000)
}

func TestConcurrentSymbolsMatchInParallel(t *testing.T) {
	eng := newTestEngine(t)
	symbols := []string{"A", "B", "C", "D"}

	done := make(chan struct{}, len(symbols))
	for _, sym := range symbols {
		sym := sym
		go func() {
			for i := 0; i < 50; i++ {
				_, _ = eng.Submit(OrderRequest{Symbol: sym, Type: Limit, Side: Buy, Quantity: 1, Price: int64(10 + i)})
			}
			done <- struct{}{}
		}()
	}
	for range symbols {
		<-done
	}

	for _, sym := range symbols {
		d := eng.Depth(sym, 1000)
		var total int64
		for _, lvl := range d.Bids {
			total += lvl.Quantity
		}
		if total != 50 {
			t.Fatalf("symbol %s: expected 50 resting units, got %d", sym, total)
		}
	}
}

func TestSubmissionOrderWithinSymbolDeterminesFIFO(t *testing.T) {
	eng := newTestEngine(t)
	ra, err := eng.Submit(OrderRequest{Symbol: "X", Type: Limit, Side: Sell, Quantity: 1, Price: 50})
	require.NoError(t, err)
	rb, err := eng.Submit(OrderRequest{Symbol: "X", Type: Limit, Side: Sell, Quantity: 1, Price: 50})
	require.NoError(t, err)

	res, err := eng.Submit(OrderRequest{Symbol: "X", Type: Market, Side: Buy, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	require.Equal(t, ra.OrderID, res.Trades[0].MakerOrderID)

	d := eng.Depth("X", 10)
	require.Len(t, d.Asks, 1)
	require.Equal(t, int64(1), d.Asks[0].Quantity)
	_ = rb
}
