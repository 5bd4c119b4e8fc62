// Package api serves the rendered timeline over HTTP and pushes every new
// timeline to websocket clients.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/penwyp/go-ha-logbook/internal/core/card"
	"github.com/penwyp/go-ha-logbook/internal/core/constants"
	"github.com/penwyp/go-ha-logbook/internal/util"
)

// Websocket timing and message limits
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12
)

// TimelineState is the part of the runtime the API reads
type TimelineState interface {
	Current() (*card.Result, bool)
	Subscribe() (<-chan card.Result, func())
	LastError() error
}

// envelope wraps every websocket message
type envelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Rendered  bool   `json:"rendered"`
	LastError string `json:"last_error,omitempty"`
}

// Server is the HTTP surface of serve mode
type Server struct {
	state      TimelineState
	cards      []card.Info
	router     *mux.Router
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
}

// Option customizes a Server
type Option func(*Server)

// WithPingPeriod overrides the websocket keep-alive period
func WithPingPeriod(d time.Duration) Option {
	return func(s *Server) { s.pingPeriod = d }
}

// NewServer creates the server and registers its routes
func NewServer(state TimelineState, cards []card.Info, opts ...Option) *Server {
	s := &Server{
		state:      state,
		cards:      cards,
		router:     mux.NewRouter(),
		pingPeriod: pingPeriod,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(logRequests)
	s.router.HandleFunc("/api/timeline", s.handleTimeline).Methods(http.MethodGet)
	s.router.HandleFunc("/api/cards", s.handleCards).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		util.LogInfo("HTTP server listening", util.F("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	util.LogInfo("HTTP server stopped")
	return nil
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	result, ok := s.state.Current()
	if !ok {
		msg := "timeline not rendered yet"
		if err := s.state.LastError(); err != nil {
			msg = err.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cards)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, rendered := s.state.Current()
	resp := healthResponse{Status: "ok", Rendered: rendered}
	if err := s.state.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		util.LogError("Websocket upgrade failed", util.F("error", err.Error()))
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// drain control frames and detect disconnects
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	updates, unsubscribe := s.state.Subscribe()
	defer unsubscribe()

	if current, ok := s.state.Current(); ok {
		if err := writeMessage(conn, envelope{Type: "timeline", Data: current}); err != nil {
			util.LogDebug("Websocket write failed", util.F("error", err.Error()))
			return
		}
	}

	ping := time.NewTicker(s.pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				util.LogDebug("Websocket ping failed", util.F("error", err.Error()))
				return
			}
		case result, ok := <-updates:
			if !ok {
				return
			}
			if err := writeMessage(conn, envelope{Type: "timeline", Data: result}); err != nil {
				util.LogDebug("Websocket write failed", util.F("error", err.Error()))
				return
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, msg envelope) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		util.LogError("Failed to encode response", util.F("error", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// logRequests logs every request at debug level
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		util.LogDebug("HTTP request",
			util.F("method", r.Method),
			util.F("path", r.URL.Path),
			util.F("duration_ms", time.Since(start).Milliseconds()))
	})
}
