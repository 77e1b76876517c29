package engine

import "time"

// Side is the direction of an order.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// ParseSide maps the wire vocabulary (§6) to a Side.
func ParseSide(value string) (Side, bool) {
	switch value {
	case "buy":
		return Buy, true
	case "sell":
		return Sell, true
	default:
		return 0, false
	}
}

// OrderType is the execution style requested for an order.
type OrderType int

const (
	Limit OrderType = iota
	Market
	IOC
	FOK
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "limit"
	case Market:
		return "market"
	case IOC:
		return "ioc"
	case FOK:
		return "fok"
	default:
		return "unknown"
	}
}

// ParseOrderType maps the wire vocabulary (§6) to an OrderType.
func ParseOrderType(value string) (OrderType, bool) {
	switch value {
	case "limit":
		return Limit, true
	case "market":
		return Market, true
	case "ioc":
		return IOC, true
	case "fok":
		return FOK, true
	default:
		return 0, false
	}
}

// Status is the outcome of a submission.
type Status int

const (
	Accepted Status = iota
	Filled
	Canceled
	Rejected
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Filled:
		return "filled"
	case Canceled:
		return "canceled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// OrderRequest is the input to Submit. Price is ignored for Market orders
// and required (and must be positive) for Limit/IOC/FOK.
//
// Price and Quantity are integers in the instrument's minor units (§9);
// the transport layer is responsible for converting decimal wire values
// into this representation before calling into the engine.
type OrderRequest struct {
	Symbol   string
	Type     OrderType
	Side     Side
	Quantity int64
	Price    int64
}

// RestingOrder lives inside a PriceLevel while it has quantity left on the book.
type RestingOrder struct {
	ID              int64
	Symbol          string
	Side            Side
	Price           int64
	Remaining       int64
	ArrivalSequence int64
	Timestamp       time.Time
}

// Trade is an immutable execution record.
type Trade struct {
	TradeID       int64
	Symbol        string
	Price         int64
	Quantity      int64
	AggressorSide Side
	MakerOrderID  int64
	TakerOrderID  int64
	Timestamp     time.Time
}

// SubmissionResult is returned from Submit.
type SubmissionResult struct {
	Status            Status
	OrderID           int64
	FilledQuantity    int64
	RemainingQuantity int64
	Trades            []Trade
}

// PriceLevelView is an aggregated (price, quantity) pair for depth output.
type PriceLevelView struct {
	Price    int64
	Quantity int64
}

// BBO is the best bid/offer for a symbol. A nil pointer means that side is empty.
type BBO struct {
	BestBid *PriceLevelView
	BestAsk *PriceLevelView
}

// DepthView is the aggregated top-N view of both sides of a book.
type DepthView struct {
	Symbol string
	Bids   []PriceLevelView // descending by price
	Asks   []PriceLevelView // ascending by price
}

// MarketDataSnapshot is the payload fanned out on the marketdata/<symbol> topic (§6).
type MarketDataSnapshot struct {
	Timestamp time.Time
	Symbol    string
	BBO       BBO
	Bids      []PriceLevelView
	Asks      []PriceLevelView
}
