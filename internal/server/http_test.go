package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/llm"
	"github.com/echolens/echolens/internal/models"
	"github.com/echolens/echolens/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type stubCompleter struct {
	response string
}

func (s *stubCompleter) Complete(_ context.Context, _, _ string, _ ...llm.GenOption) (string, error) {
	return s.response, nil
}

func (s *stubCompleter) CompleteWithHistory(_ context.Context, _ []llms.MessageContent, _ []llms.Tool, _ ...llm.GenOption) (*llms.ContentChoice, error) {
	return &llms.ContentChoice{Content: s.response}, nil
}

type stubRetriever struct {
	topKs []int
}

func (s *stubRetriever) Query(_ context.Context, _, _, _ string, topK int) ([]models.Hit, error) {
	s.topKs = append(s.topKs, topK)
	return []models.Hit{}, nil
}

func (s *stubRetriever) QuerySafe(_ context.Context, _, _, _ string, _ int) []models.Hit {
	return []models.Hit{}
}

type stubCounter struct {
	totals map[string]int
}

func (c *stubCounter) CountFeedback(_ context.Context, collection string) ([]models.PlatformCount, error) {
	return []models.PlatformCount{{Platform: "reddit", Count: c.totals[collection]}}, nil
}

func (c *stubCounter) TotalCount(_ context.Context, collection string) (int, error) {
	return c.totals[collection], nil
}

func newTestServer(t *testing.T, completer llm.Completer, counter Counter) *HTTPServer {
	t.Helper()
	s, _ := newTestServerWithRetriever(t, completer, counter)
	return s
}

func newTestServerWithRetriever(t *testing.T, completer llm.Completer, counter Counter) (*HTTPServer, *stubRetriever) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	retriever := &stubRetriever{}
	insights := service.NewInsightService(nil, nil, retriever, completer, config.DefaultCatalog(), logger)
	return NewHTTPServer(insights, nil, counter, config.DefaultCatalog(), nil, logger), retriever
}

func TestHandleAnswer(t *testing.T) {
	s := newTestServer(t, &stubCompleter{response: "the synthesized answer"}, nil)

	req := httptest.NewRequest("POST", "/api/answer", strings.NewReader(`{"question":"how is coverage?"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	var resp answerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "the synthesized answer", resp.Answer)
}

func TestHandleAnswerTopK(t *testing.T) {
	s, retriever := newTestServerWithRetriever(t, &stubCompleter{response: "ok"}, nil)

	req := httptest.NewRequest("POST", "/api/answer", strings.NewReader(`{"question":"q","top_k":9}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.NotEmpty(t, retriever.topKs)
	for _, k := range retriever.topKs {
		assert.Equal(t, 9, k)
	}
}

func TestHandleAnswerValidation(t *testing.T) {
	s := newTestServer(t, &stubCompleter{}, nil)

	t.Run("missing question", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/answer", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, 400, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/answer", strings.NewReader(`{broken`))
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, 400, rec.Code)
	})
}

func TestHandleStats(t *testing.T) {
	counter := &stubCounter{totals: map[string]int{
		"feedback_tmobile": 120,
		"feedback_verizon": 80,
		"feedback_att":     40,
	}}
	s := newTestServer(t, &stubCompleter{}, counter)

	req := httptest.NewRequest("GET", "/api/stats", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Brands, 3)
	assert.Equal(t, "tmobile", resp.Brands[0].Brand)
	assert.Equal(t, 120, resp.Brands[0].Total)
}
