// Package httpapi exposes the chat engine over REST and websocket.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wan-ilhami/ChatBot-AI-backend/internal/dialogue"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/observability"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/outlets"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/policy"
	"github.com/wan-ilhami/ChatBot-AI-backend/internal/products"
)

// Options carries everything the server needs. Controller, Store and
// Catalog must be non-nil.
type Options struct {
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	Controller     *dialogue.Controller
	Store          outlets.Store
	Catalog        *products.Catalog
	MaxMessageLen  int
	MaxQueryLen    int
	AllowAnyOrigin bool
}

type Server struct {
	log      *zap.Logger
	metrics  *observability.Metrics
	ctrl     *dialogue.Controller
	store    outlets.Store
	catalog  *products.Catalog
	router   chi.Router
	upgrader websocket.Upgrader

	maxMessageLen int
	maxQueryLen   int
}

func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxMessageLen <= 0 {
		opts.MaxMessageLen = 1000
	}
	if opts.MaxQueryLen <= 0 {
		opts.MaxQueryLen = 200
	}

	s := &Server{
		log:           log,
		metrics:       opts.Metrics,
		ctrl:          opts.Controller,
		store:         opts.Store,
		catalog:       opts.Catalog,
		maxMessageLen: opts.MaxMessageLen,
		maxQueryLen:   opts.MaxQueryLen,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(opts.AllowAnyOrigin),
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Handle("/metrics", observability.MetricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/chat/ws", s.handleChatWS)
		r.Get("/products", s.handleProducts)
		r.Get("/outlets", s.handleOutlets)
		r.Get("/perf/latency", s.handlePerfLatency)
		r.Get("/sessions/{key}", s.handleSessionGet)
		r.Post("/sessions/{key}/reset", s.handleSessionReset)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func originChecker(allowAny bool) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if allowAny {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return strings.EqualFold(origin, "http://"+r.Host) ||
			strings.EqualFold(origin, "https://"+r.Host)
	}
}

// OutletSearcher adapts the directory store to the controller's outlet
// search capability.
func OutletSearcher(store outlets.Store) dialogue.OutletSearchFunc {
	return func(ctx context.Context, query string) ([]dialogue.OutletInfo, error) {
		rows, err := store.Search(ctx, outlets.ParseQuery(query))
		if err != nil {
			return nil, err
		}
		out := make([]dialogue.OutletInfo, 0, len(rows))
		for _, o := range rows {
			out = append(out, dialogue.OutletInfo{
				Name:       o.Name,
				Location:   o.Location,
				City:       o.City,
				HoursOpen:  o.HoursOpen,
				HoursClose: o.HoursClose,
				Address:    o.Address,
				Services:   o.Services,
			})
		}
		return out, nil
	}
}

// ProductSearcher adapts the catalog to the controller's product search
// capability.
func ProductSearcher(catalog *products.Catalog) dialogue.ProductSearchFunc {
	return func(ctx context.Context, query string) (string, int, error) {
		results := catalog.Search(query, 5)
		return catalog.Summary(results, query), len(results), nil
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string          `json:"session_id"`
	Response  string          `json:"response"`
	Intent    dialogue.Intent `json:"intent"`
	Action    string          `json:"action"`
	ToolsUsed []string        `json:"tools_used,omitempty"`
	Timestamp string          `json:"timestamp"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if err := s.validateMessage(req.Message); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.ctrl.ProcessTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.log.Error("chat turn failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}
	respondJSON(w, http.StatusOK, chatResponse{
		SessionID: req.SessionID,
		Response:  res.Response,
		Intent:    res.Intent,
		Action:    res.Action,
		ToolsUsed: res.ToolsUsed,
		Timestamp: res.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func (s *Server) validateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message must not be empty")
	}
	if len(message) > s.maxMessageLen {
		return fmt.Errorf("message exceeds %d characters", s.maxMessageLen)
	}
	if err := policy.ScreenMessage(message); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		query = "all products"
	}
	if len(query) > s.maxQueryLen {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("query exceeds %d characters", s.maxQueryLen))
		return
	}
	topK := 5
	if v := r.URL.Query().Get("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 20 {
			respondError(w, http.StatusBadRequest, "top_k must be an integer between 1 and 20")
			return
		}
		topK = n
	}

	results := s.catalog.Search(query, topK)
	respondJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
		"summary": s.catalog.Summary(results, query),
		"count":   len(results),
	})
}

func (s *Server) handleOutlets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(query) > s.maxQueryLen {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("query exceeds %d characters", s.maxQueryLen))
		return
	}
	if err := policy.ScreenQuery(query); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := s.store.Search(r.Context(), outlets.ParseQuery(query))
	if err != nil {
		s.log.Error("outlet search failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "outlet search failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	snap, ok := s.ctrl.Snapshot(key)
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !s.ctrl.Reset(key) {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.SnapshotTurnStages())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	// Readiness is gated on the outlet directory answering.
	if _, err := s.store.Search(r.Context(), outlets.Filter{Limit: 1}); err != nil {
		respondError(w, http.StatusServiceUnavailable, "outlet store unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already out; an encode failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"error": detail})
}
