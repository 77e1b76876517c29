package transport

import (
	"fmt"
	"time"

	"matchcore/engine"
	"matchcore/money"
)

// orderRequestDTO is the wire shape for POST /orders (§6).
type orderRequestDTO struct {
	Symbol   string `json:"symbol"`
	Type     string `json:"type"`
	Side     string `json:"side"`
	Quantity string `json:"quantity"`
	Price    string `json:"price,omitempty"`
}

type submissionResultDTO struct {
	Status            string     `json:"status"`
	OrderID           int64      `json:"order_id"`
	FilledQuantity    string     `json:"filled_quantity"`
	RemainingQuantity string     `json:"remaining_quantity"`
	Trades            []tradeDTO `json:"trades"`
}

type tradeDTO struct {
	Timestamp     time.Time `json:"timestamp"`
	Symbol        string    `json:"symbol"`
	TradeID       int64     `json:"trade_id"`
	Price         string    `json:"price"`
	Quantity      string    `json:"quantity"`
	AggressorSide string    `json:"aggressor_side"`
	MakerOrderID  int64     `json:"maker_order_id"`
	TakerOrderID  int64     `json:"taker_order_id"`
}

type priceLevelDTO [2]string // [price, quantity]

type bboDTO struct {
	Bid *priceLevelDTO `json:"bid"`
	Ask *priceLevelDTO `json:"ask"`
}

type depthResponseDTO struct {
	Symbol string          `json:"symbol"`
	Bids   []priceLevelDTO `json:"bids"`
	Asks   []priceLevelDTO `json:"asks"`
}

type marketDataDTO struct {
	Timestamp time.Time       `json:"timestamp"`
	Symbol    string          `json:"symbol"`
	BBO       bboDTO          `json:"bbo"`
	Bids      []priceLevelDTO `json:"bids"`
	Asks      []priceLevelDTO `json:"asks"`
}

// symbolScales is a lookup from symbol to its decimal scales, built once
// from config at startup.
type symbolScales struct {
	byName map[string]scalePair
}

type scalePair struct {
	price    money.Scale
	quantity money.Scale
}

func newSymbolScales(symbols []SymbolConfig) *symbolScales {
	s := &symbolScales{byName: make(map[string]scalePair, len(symbols))}
	for _, sc := range symbols {
		s.byName[sc.Symbol] = scalePair{
			price:    money.NewScale(sc.PriceScale),
			quantity: money.NewScale(sc.QuantityScale),
		}
	}
	return s
}

func (s *symbolScales) lookup(symbol string) (scalePair, bool) {
	p, ok := s.byName[symbol]
	return p, ok
}

// lookupOrZero is for read paths that must render an empty snapshot for a
// symbol the engine has never seen (§7): such a snapshot has no price or
// quantity to format, so any configured scale works and scale 0 is as
// good as any.
func (s *symbolScales) lookupOrZero(symbol string) scalePair {
	if p, ok := s.byName[symbol]; ok {
		return p
	}
	return scalePair{price: money.NewScale(0), quantity: money.NewScale(0)}
}

func (s *scalePair) toOrderRequest(dto orderRequestDTO) (engine.OrderRequest, error) {
	side, ok := engine.ParseSide(dto.Side)
	if !ok {
		return engine.OrderRequest{}, fmt.Errorf("unknown side %q", dto.Side)
	}
	typ, ok := engine.ParseOrderType(dto.Type)
	if !ok {
		return engine.OrderRequest{}, fmt.Errorf("unknown order type %q", dto.Type)
	}
	qty, err := s.quantity.ParseExact(dto.Quantity)
	if err != nil {
		return engine.OrderRequest{}, fmt.Errorf("quantity: %w", err)
	}

	req := engine.OrderRequest{Symbol: dto.Symbol, Type: typ, Side: side, Quantity: qty}
	if typ != engine.Market {
		if dto.Price == "" {
			return engine.OrderRequest{}, fmt.Errorf("price is required for %s orders", dto.Type)
		}
		price, err := s.price.ParseExact(dto.Price)
		if err != nil {
			return engine.OrderRequest{}, fmt.Errorf("price: %w", err)
		}
		req.Price = price
	}
	return req, nil
}

func (s *scalePair) fromResult(res engine.SubmissionResult) submissionResultDTO {
	trades := make([]tradeDTO, 0, len(res.Trades))
	for _, t := range res.Trades {
		trades = append(trades, s.fromTrade(t))
	}
	return submissionResultDTO{
		Status:            res.Status.String(),
		OrderID:           res.OrderID,
		FilledQuantity:    s.quantity.FromMinorUnits(res.FilledQuantity).String(),
		RemainingQuantity: s.quantity.FromMinorUnits(res.RemainingQuantity).String(),
		Trades:            trades,
	}
}

func (s *scalePair) fromTrade(t engine.Trade) tradeDTO {
	return tradeDTO{
		Timestamp:     t.Timestamp,
		Symbol:        t.Symbol,
		TradeID:       t.TradeID,
		Price:         s.price.FromMinorUnits(t.Price).String(),
		Quantity:      s.quantity.FromMinorUnits(t.Quantity).String(),
		AggressorSide: t.AggressorSide.String(),
		MakerOrderID:  t.MakerOrderID,
		TakerOrderID:  t.TakerOrderID,
	}
}

func (s *scalePair) fromLevels(levels []engine.PriceLevelView) []priceLevelDTO {
	out := make([]priceLevelDTO, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, priceLevelDTO{
			s.price.FromMinorUnits(lvl.Price).String(),
			s.quantity.FromMinorUnits(lvl.Quantity).String(),
		})
	}
	return out
}

func (s *scalePair) fromBBO(bbo engine.BBO) bboDTO {
	var out bboDTO
	if bbo.BestBid != nil {
		lvl := s.fromLevels([]engine.PriceLevelView{*bbo.BestBid})[0]
		out.Bid = &lvl
	}
	if bbo.BestAsk != nil {
		lvl := s.fromLevels([]engine.PriceLevelView{*bbo.BestAsk})[0]
		out.Ask = &lvl
	}
	return out
}

func (s *scalePair) fromDepth(d engine.DepthView) depthResponseDTO {
	return depthResponseDTO{
		Symbol: d.Symbol,
		Bids:   s.fromLevels(d.Bids),
		Asks:   s.fromLevels(d.Asks),
	}
}

func (s *scalePair) fromMarketData(snap engine.MarketDataSnapshot) marketDataDTO {
	return marketDataDTO{
		Timestamp: snap.Timestamp,
		Symbol:    snap.Symbol,
		BBO:       s.fromBBO(snap.BBO),
		Bids:      s.fromLevels(snap.Bids),
		Asks:      s.fromLevels(snap.Asks),
	}
}
