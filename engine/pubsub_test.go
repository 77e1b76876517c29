package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPubSubFansOutToAllSubscribers(t *testing.T) {
	ps := NewPubSub(4, nil)
	a := ps.SubscribeTrades("X")
	b := ps.SubscribeTrades("X")

	ps.PublishTrade("X", Trade{TradeID: 1})

	for _, ch := range []<-chan Trade{a, b} {
		select {
		case tr := <-ch:
			require.Equal(t, int64(1), tr.TradeID)
		case <-time.After(time.Second):
			t.Fatal("expected both subscribers to receive the trade")
		}
	}
}

func TestPubSubDropsOnFullBufferWithoutBlocking(t *testing.T) {
	ps := NewPubSub(1, nil)
	sub := ps.SubscribeTrades("X")

	done := make(chan struct{})
	go func() {
		ps.PublishTrade("X", Trade{TradeID: 1})
		ps.PublishTrade("X", Trade{TradeID: 2}) // buffer full: must drop, not block
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish must never block on a slow subscriber")
	}

	first := <-sub
	require.Equal(t, int64(1), first.TradeID)
}

func TestPubSubIsolatesSymbols(t *testing.T) {
	ps := NewPubSub(4, nil)
	subX := ps.SubscribeTrades("X")
	subY := ps.SubscribeTrades("Y")

	ps.PublishTrade("X", Trade{TradeID: 1})

	select {
	case <-subY:
		t.Fatal("symbol Y must not receive X's trades")
	case <-time.After(50 * time.Millisecond):
	}

	select {
	case tr := <-subX:
		require.Equal(t, int64(1), tr.TradeID)
	default:
		t.Fatal("symbol X should have received its own trade")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	ps := NewPubSub(4, nil)
	sub := ps.SubscribeTrades("X")
	ps.UnsubscribeTrades("X", sub)

	_, ok := <-sub
	require.False(t, ok, "channel should be closed after unsubscribe")
}
