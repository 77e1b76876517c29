package transport

import "net/http"

// outboundMessage envelopes every WebSocket push so a client can dispatch
// on Type without inspecting Data's shape.
type outboundMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	scales, ok := s.scales.lookup(symbol)
	if !ok {
		http.Error(w, "unknown symbol", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.eng.PubSub().SubscribeTrades(symbol)
	defer s.eng.PubSub().UnsubscribeTrades(symbol, ch)

	for trade := range ch {
		msg := outboundMessage{Type: "trade", Data: scales.fromTrade(trade)}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (s *Server) handleMarketDataStream(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	scales, ok := s.scales.lookup(symbol)
	if !ok {
		http.Error(w, "unknown symbol", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.eng.PubSub().SubscribeMarketData(symbol)
	defer s.eng.PubSub().UnsubscribeMarketData(symbol, ch)

	for snap := range ch {
		msg := outboundMessage{Type: "marketdata", Data: scales.fromMarketData(snap)}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
