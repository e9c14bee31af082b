package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/metrics"
	"github.com/echolens/echolens/internal/models"
	"github.com/echolens/echolens/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Counter exposes corpus counts for the stats endpoint.
type Counter interface {
	CountFeedback(ctx context.Context, collection string) ([]models.PlatformCount, error)
	TotalCount(ctx context.Context, collection string) (int, error)
}

// HTTPServer serves the insight API and the streaming chat socket.
type HTTPServer struct {
	insights  *service.InsightService
	streamer  service.Streamer
	counter   Counter
	catalog   *config.Catalog
	collector *metrics.Collector
	logger    *slog.Logger
	upgrader  websocket.Upgrader
}

// NewHTTPServer creates the HTTP server. streamer and counter may be nil;
// the chat socket falls back to non-streaming answers and stats omit corpus
// counts.
func NewHTTPServer(insights *service.InsightService, streamer service.Streamer, counter Counter, catalog *config.Catalog, collector *metrics.Collector, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPServer{
		insights:  insights,
		streamer:  streamer,
		counter:   counter,
		catalog:   catalog,
		collector: collector,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Handler returns the route table.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ask", s.handleAsk)
	mux.HandleFunc("POST /api/report", s.handleReport)
	mux.HandleFunc("POST /api/answer", s.handleAnswer)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /chat/ws", s.handleChatSocket)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type questionRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) decodeQuestion(w http.ResponseWriter, r *http.Request) (questionRequest, bool) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return questionRequest{}, false
	}
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return questionRequest{}, false
	}
	return req, true
}

func (s *HTTPServer) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuestion(w, r)
	if !ok {
		return
	}

	answer, err := s.insights.AnswerQuestion(r.Context(), req.Question)
	if err != nil {
		s.logger.Error("ask failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Answer: answer})
}

func (s *HTTPServer) handleReport(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuestion(w, r)
	if !ok {
		return
	}

	run, err := s.insights.GenerateReport(r.Context(), req.Question, nil)
	if err != nil {
		s.logger.Error("report failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *HTTPServer) handleAnswer(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeQuestion(w, r)
	if !ok {
		return
	}

	// DirectAnswer reports failures inside the answer text, never as an
	// HTTP error.
	answer := s.insights.DirectAnswer(r.Context(), req.Question, req.TopK)
	writeJSON(w, http.StatusOK, answerResponse{Answer: answer})
}

type brandStats struct {
	Brand     string                 `json:"brand"`
	Total     int                    `json:"total"`
	Platforms []models.PlatformCount `json:"platforms"`
}

type statsResponse struct {
	Metrics metrics.Snapshot `json:"metrics"`
	Brands  []brandStats     `json:"brands,omitempty"`
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{}
	if s.collector != nil {
		resp.Metrics = s.collector.Snapshot()
	}

	if s.counter != nil {
		for _, brand := range s.catalog.Brands {
			total, err := s.counter.TotalCount(r.Context(), brand.Collection)
			if err != nil {
				s.logger.Warn("stats count failed", "brand", brand.Key, "error", err)
				continue
			}
			counts, err := s.counter.CountFeedback(r.Context(), brand.Collection)
			if err != nil {
				s.logger.Warn("stats platform count failed", "brand", brand.Key, "error", err)
				continue
			}
			resp.Brands = append(resp.Brands, brandStats{
				Brand:     brand.Key,
				Total:     total,
				Platforms: counts,
			})
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Chat socket message shapes. The client sends questions, the server streams
// answer chunks followed by a done frame carrying the full text. The server
// keeps the transcript for the lifetime of the connection.
type chatRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type chatFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (s *HTTPServer) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	s.logger.Info("chat session started", "session_id", sessionID)

	var history []models.ChatMessage
	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("chat session read failed", "session_id", sessionID, "error", err)
			}
			return
		}
		if req.Question == "" {
			if err := conn.WriteJSON(chatFrame{Type: "error", Content: "question is required"}); err != nil {
				return
			}
			continue
		}

		answer := s.answerOverSocket(r.Context(), conn, history, req)
		history = append(history,
			models.ChatMessage{Role: models.RoleUser, Content: req.Question},
			models.ChatMessage{Role: models.RoleAssistant, Content: answer},
		)
		if err := conn.WriteJSON(chatFrame{Type: "done", Content: answer}); err != nil {
			s.logger.Warn("chat session write failed", "session_id", sessionID, "error", err)
			return
		}
	}
}

func (s *HTTPServer) answerOverSocket(ctx context.Context, conn *websocket.Conn, history []models.ChatMessage, req chatRequest) string {
	if s.streamer == nil {
		return s.insights.ChatTurn(ctx, history, req.Question, req.TopK)
	}
	return s.insights.ChatTurnStream(ctx, history, req.Question, req.TopK, s.streamer, func(chunk []byte) error {
		return conn.WriteJSON(chatFrame{Type: "chunk", Content: string(chunk)})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
