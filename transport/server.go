// Package transport is the HTTP/WebSocket façade over a matching engine
// (§6): it decodes wire requests, converts decimal quantities through the
// money package, calls into engine.MatchingEngine, and re-encodes results.
// None of the matching logic lives here.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"matchcore/engine"
)

type requestIDKey struct{}

// requestIDFrom returns the correlation id withRequestID attached to ctx,
// or "" if none is present (e.g. in tests that call handlers directly).
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Server wires HTTP and WebSocket handlers onto a MatchingEngine.
type Server struct {
	eng        *engine.MatchingEngine
	scales     *symbolScales
	upgrader   websocket.Upgrader
	authToken  string
	corsOrigin string
	logger     *slog.Logger
}

// NewServer builds a Server for eng, configured with cfg's symbols, auth
// token, and CORS origin.
func NewServer(eng *engine.MatchingEngine, cfg Config, logger *slog.Logger) *Server {
	return &Server{
		eng:        eng,
		scales:     newSymbolScales(cfg.Symbols),
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		authToken:  cfg.AuthToken,
		corsOrigin: cfg.CORSOrigin,
		logger:     logger,
	}
}

// Routes returns the server's http.Handler (§6's external interface).
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/orders", s.withRequestID(s.withCORS(s.withAuth(http.HandlerFunc(s.handleSubmitOrder)))))
	mux.Handle("/bbo", s.withRequestID(s.withCORS(s.withAuth(http.HandlerFunc(s.handleBBO)))))
	mux.Handle("/depth", s.withRequestID(s.withCORS(s.withAuth(http.HandlerFunc(s.handleDepth)))))
	mux.Handle("/ws/trades", s.withCORS(s.withAuth(http.HandlerFunc(s.handleTradeStream))))
	mux.Handle("/ws/marketdata", s.withCORS(s.withAuth(http.HandlerFunc(s.handleMarketDataStream))))
	return mux
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRequestID stamps every request with a correlation id used only for
// log correlation — it never touches order or trade ids, which stay
// monotonic per §4.4.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token != s.authToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("missing or invalid token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var dto orderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	scales, ok := s.scales.lookup(dto.Symbol)
	if !ok {
		writeError(w, http.StatusBadRequest, errors.New("unknown symbol"))
		return
	}

	req, err := scales.toOrderRequest(dto)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.eng.Submit(req)
	if err != nil {
		var validationErr *engine.ValidationError
		var rejectedErr *engine.RejectedError
		switch {
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, err)
		case errors.As(err, &rejectedErr):
			writeJSON(w, http.StatusOK, scales.fromResult(result))
		default:
			s.logError(r.Context(), "submit failed", err)
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, scales.fromResult(result))
}

func (s *Server) handleBBO(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	symbol := r.URL.Query().Get("symbol")
	scales := s.scales.lookupOrZero(symbol)
	writeJSON(w, http.StatusOK, scales.fromBBO(s.eng.BBO(symbol)))
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	symbol := r.URL.Query().Get("symbol")
	scales := s.scales.lookupOrZero(symbol)
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			n = parsed
		}
	}
	writeJSON(w, http.StatusOK, scales.fromDepth(s.eng.Depth(symbol, n)))
}

func (s *Server) logError(ctx context.Context, msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Error(msg,
		slog.String("error", err.Error()),
		slog.String("request_id", requestIDFrom(ctx)))
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
