package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime/pprof"
	"sync/atomic"
	"time"

	"matchcore/engine"
)

func main() {
	totalOrders := flag.Int("orders", 500000, "number of orders to submit")
	priceLevels := flag.Int64("price-levels", 200, "unique price levels around the mid")
	tick := flag.Int64("tick", 1, "tick size for limit prices")
	basePrice := flag.Int64("base-price", 10000, "mid price used for randomization")
	symbol := flag.String("symbol", "SIM", "symbol to trade")
	workers := flag.Int("workers", 4, "matching worker pool size")
	seed := flag.Int64("seed", time.Now().UnixNano(), "seed for deterministic random streams")
	cpuProfile := flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile := flag.String("memprofile", "", "write heap profile to file")
	marketRatio := flag.Int("market-ratio", 5, "1 in N orders will be market instead of limit")
	iocRatio := flag.Int("ioc-ratio", 20, "1 in N non-market orders will be IOC instead of limit")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer pprof.StopCPUProfile()
	}

	eng := engine.NewMatchingEngine(engine.MatchingEngineConfig{Workers: *workers})
	defer eng.Stop()

	var matches int64
	tradeCh := eng.PubSub().SubscribeTrades(*symbol)
	done := make(chan struct{})
	go func() {
		for range tradeCh {
			atomic.AddInt64(&matches, 1)
		}
		close(done)
	}()

	start := time.Now()
	var rejected int64
	for i := 0; i < *totalOrders; i++ {
		req := nextRandomRequest(rng, *symbol, *basePrice, *priceLevels, *tick, *marketRatio, *iocRatio)
		if _, err := eng.Submit(req); err != nil {
			rejected++
		}
	}
	elapsed := time.Since(start)

	eng.PubSub().UnsubscribeTrades(*symbol, tradeCh)
	<-done

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err == nil {
			defer f.Close()
			_ = pprof.WriteHeapProfile(f)
		}
	}

	ordersPerSec := float64(*totalOrders) / elapsed.Seconds()
	tradesPerSec := float64(matches) / elapsed.Seconds()

	fmt.Printf("submitted %d orders in %s (%.0f orders/s)\n", *totalOrders, elapsed.Truncate(time.Millisecond), ordersPerSec)
	fmt.Printf("matched %d trades (%.0f trades/s), %d rejected\n", matches, tradesPerSec, rejected)
	fmt.Printf("config: workers=%d market-ratio=1/%d ioc-ratio=1/%d\n", *workers, *marketRatio, *iocRatio)
}

func nextRandomRequest(rng *rand.Rand, symbol string, mid, width, tick int64, marketRatio, iocRatio int) engine.OrderRequest {
	side := engine.Side(rng.Intn(2))
	var price int64
	if side == engine.Buy {
		price = mid + rng.Int63n(width)*tick
	} else {
		offset := rng.Int63n(width) * tick
		if mid > offset {
			price = mid - offset
		} else {
			price = tick
		}
	}

	otype := engine.Limit
	switch {
	case marketRatio > 0 && rng.Intn(marketRatio) == 0:
		otype = engine.Market
	case iocRatio > 0 && rng.Intn(iocRatio) == 0:
		otype = engine.IOC
	}

	qty := rng.Int63n(5) + 1

	return engine.OrderRequest{
		Symbol:   symbol,
		Side:     side,
		Type:     otype,
		Price:    price,
		Quantity: qty,
	}
}
