// Command marketbots runs a standalone MatchingEngine with a swarm of bots
// (bots.Supervisor) trading against it, useful for eyeballing the engine's
// behavior under continuous synthetic order flow without a transport layer
// in front of it at all.
package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"matchcore/bots"
	"matchcore/engine"
)

func main() {
	symbol := flag.String("symbol", "SIM", "symbol to trade")
	priceStep := flag.Int64("price-step", 1, "price granularity bots round to")
	orderInterval := flag.Duration("order-interval", 50*time.Millisecond, "throttle between bot submissions")
	duration := flag.Duration("duration", 10*time.Second, "how long to run before exiting")
	flag.Parse()

	eng := engine.NewMatchingEngine(engine.MatchingEngineConfig{})
	defer eng.Stop()

	seed := engine.OrderRequest{Symbol: *symbol, Side: engine.Buy, Type: engine.Limit, Price: 10000, Quantity: 1}
	_, _ = eng.Submit(seed)

	sup := bots.NewSupervisor(eng, *symbol, *priceStep, *orderInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	sup.Start(ctx)

	bbo := eng.BBO(*symbol)
	fmt.Printf("final bbo for %s: %+v\n", *symbol, bbo)
}
