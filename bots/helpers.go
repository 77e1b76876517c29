package bots

import "matchcore/engine"

func midPrice(bbo engine.BBO) int64 {
	bid := int64(0)
	ask := int64(0)
	if bbo.BestBid != nil {
		bid = bbo.BestBid.Price
	}
	if bbo.BestAsk != nil {
		ask = bbo.BestAsk.Price
	}

	switch {
	case bid > 0 && ask > 0:
		return (bid + ask) / 2
	case bid > 0:
		return bid
	case ask > 0:
		return ask
	default:
		return 0
	}
}
