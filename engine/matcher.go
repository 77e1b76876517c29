package engine

import "time"

// matchContext carries the per-submission identity and id allocators the
// matcher needs but that belong to the MatchingEngine, not the book.
type matchContext struct {
	orderID     int64
	arrivalSeq  int64
	now         time.Time
	nextTradeID func() int64
}

// validate applies §4.3.4. It never touches the book.
func validate(req OrderRequest) error {
	if req.Quantity <= 0 {
		return &ValidationError{Reason: "quantity must be positive"}
	}
	switch req.Type {
	case Limit, IOC, FOK:
		if req.Price <= 0 {
			return &ValidationError{Reason: "price must be positive for limit/ioc/fok"}
		}
	case Market:
		// price is ignored for market orders
	default:
		return &ValidationError{Reason: "unknown order type"}
	}
	if req.Side != Buy && req.Side != Sell {
		return &ValidationError{Reason: "unknown side"}
	}
	return nil
}

// crosses reports whether the opposite side's best level at lvlPrice may
// trade against an incoming order of side at limit (§4.3.2). Market
// orders have no boundary and should not call this.
func crosses(side Side, limit int64, lvlPrice int64) bool {
	if side == Buy {
		return lvlPrice <= limit
	}
	return lvlPrice >= limit
}

// Match runs the matching algorithm for req against book and returns the
// submission result plus any trades produced. book must already be locked
// by the caller (§4.4); Match performs no locking and no I/O.
func Match(book *OrderBook, req OrderRequest, ctx matchContext) (SubmissionResult, error) {
	if err := validate(req); err != nil {
		return SubmissionResult{Status: Rejected, OrderID: ctx.orderID, RemainingQuantity: req.Quantity}, err
	}

	switch req.Type {
	case FOK:
		return matchFOK(book, req, ctx)
	case Market:
		return matchMarket(book, req, ctx)
	case IOC:
		return matchRestable(book, req, ctx, false)
	default: // Limit
		return matchRestable(book, req, ctx, true)
	}
}

// matchRestable implements LIMIT (mayRest=true) and IOC (mayRest=false):
// walk the opposite side while the price boundary holds, then either rest
// the residual (LIMIT) or drop it (IOC) (§4.3.3).
func matchRestable(book *OrderBook, req OrderRequest, ctx matchContext, mayRest bool) (SubmissionResult, error) {
	opposite := book.oppositeSide(req.Side)
	remaining := req.Quantity
	var trades []Trade

	for remaining > 0 {
		lvl := opposite.best()
		if lvl == nil {
			break
		}
		if !crosses(req.Side, req.Price, lvl.Price) {
			break
		}
		trade, consumed := executeAgainstFront(opposite, req, ctx, remaining, lvl.Price)
		trades = append(trades, trade)
		remaining -= consumed
	}

	filled := req.Quantity - remaining

	if remaining > 0 && mayRest {
		book.addResting(&RestingOrder{
			ID:              ctx.orderID,
			Symbol:          req.Symbol,
			Side:            req.Side,
			Price:           req.Price,
			Remaining:       remaining,
			ArrivalSequence: ctx.arrivalSeq,
			Timestamp:       ctx.now,
		})
	}

	status := Accepted
	switch {
	case remaining == 0:
		status = Filled
	case !mayRest:
		status = Canceled
	}

	return SubmissionResult{
		Status:            status,
		OrderID:           ctx.orderID,
		FilledQuantity:    filled,
		RemainingQuantity: remaining,
		Trades:            trades,
	}, nil
}

// matchMarket implements MARKET (§4.3.3): no price boundary, never rests,
// residual quantity is simply dropped.
func matchMarket(book *OrderBook, req OrderRequest, ctx matchContext) (SubmissionResult, error) {
	opposite := book.oppositeSide(req.Side)
	remaining := req.Quantity
	var trades []Trade

	for remaining > 0 {
		lvl := opposite.best()
		if lvl == nil {
			break
		}
		trade, consumed := executeAgainstFront(opposite, req, ctx, remaining, lvl.Price)
		trades = append(trades, trade)
		remaining -= consumed
	}

	filled := req.Quantity - remaining
	status := Filled
	if remaining > 0 {
		status = Canceled
	}

	return SubmissionResult{
		Status:            status,
		OrderID:           ctx.orderID,
		FilledQuantity:    filled,
		RemainingQuantity: remaining,
		Trades:            trades,
	}, nil
}

// matchFOK implements FOK (§4.3.3): pre-check full fillability under the
// price boundary before mutating anything; if the pre-check fails the
// submission is rejected with no side effects whatsoever.
func matchFOK(book *OrderBook, req OrderRequest, ctx matchContext) (SubmissionResult, error) {
	if !fokFillable(book, req) {
		err := &RejectedError{Reason: "insufficient liquidity for fill-or-kill"}
		return SubmissionResult{Status: Rejected, OrderID: ctx.orderID, RemainingQuantity: req.Quantity}, err
	}

	opposite := book.oppositeSide(req.Side)
	remaining := req.Quantity
	var trades []Trade

	for remaining > 0 {
		lvl := opposite.best()
		if lvl == nil {
			break // unreachable given a correct pre-check; loop simply stops
		}
		if !crosses(req.Side, req.Price, lvl.Price) {
			break
		}
		trade, consumed := executeAgainstFront(opposite, req, ctx, remaining, lvl.Price)
		trades = append(trades, trade)
		remaining -= consumed
	}

	return SubmissionResult{
		Status:            Filled,
		OrderID:           ctx.orderID,
		FilledQuantity:    req.Quantity - remaining,
		RemainingQuantity: remaining,
		Trades:            trades,
	}, nil
}

// fokFillable walks opposite levels best-first, accumulating available
// quantity within the price boundary, stopping as soon as it has enough.
// It performs no mutation.
func fokFillable(book *OrderBook, req OrderRequest) bool {
	opposite := book.oppositeSide(req.Side)
	need := req.Quantity

	for _, price := range opposite.liveBestFirstPrices() {
		if !crosses(req.Side, req.Price, price) {
			break
		}
		lvl := opposite.levels[price]
		need -= lvl.totalQuantity()
		if need <= 0 {
			return true
		}
	}
	return need <= 0
}

// executeAgainstFront matches min(remaining, front's remaining) at the
// resting (maker) price, updates the book, and allocates a trade id in
// emission order (§4.4). qty is the quantity traded by this call.
func executeAgainstFront(opposite *bookSide, req OrderRequest, ctx matchContext, remaining int64, price int64) (Trade, int64) {
	makerID, qty, _ := opposite.consumeBestFront(remaining)

	trade := Trade{
		TradeID:       ctx.nextTradeID(),
		Symbol:        req.Symbol,
		Price:         price,
		Quantity:      qty,
		AggressorSide: req.Side,
		MakerOrderID:  makerID,
		TakerOrderID:  ctx.orderID,
		Timestamp:     ctx.now,
	}
	return trade, qty
}
