package server_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckforge/deckforge/deck"
	"github.com/deckforge/deckforge/llm"
	"github.com/deckforge/deckforge/llm/testutil"
	"github.com/deckforge/deckforge/ratelimit"
	"github.com/deckforge/deckforge/server"
	"github.com/deckforge/deckforge/stats"
	"github.com/deckforge/deckforge/workflow"
)

const slideJSON = `{
	"bullets": [
		"Accelerate digital care delivery",
		"Reduce administrative overhead significantly",
		"Improve patient outcome tracking",
		"Enable data driven decisions"
	],
	"key_message": "Technology transforms care delivery"
}`

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T, completer llm.Completer, capacity int) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	limiter, err := ratelimit.NewManager(ratelimit.Config{Capacity: capacity, Window: time.Minute})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics := stats.NewMetrics(reg)

	coord := workflow.NewCoordinator(completer, limiter,
		workflow.WithLogger(quiet),
		workflow.WithMetrics(metrics))

	srv := server.New(coord, server.WithLogger(quiet), server.WithGatherer(reg))
	return srv.Router(), reg
}

func postPresentation(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/presentations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router, _ := newTestServer(t, &testutil.MockCompleter{}, 10)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGeneratePresentation(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []*llm.Response{{Content: slideJSON, Model: "test-model"}},
	}
	router, _ := newTestServer(t, mock, 100)

	rec := postPresentation(t, router, `{
		"document_text": "Digital transformation in healthcare with AI and data analytics.",
		"target_slides": 5
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var result deck.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Slides, 5)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, deck.KindTitle, result.Slides[0].Kind)
	assert.Equal(t, 5, result.Stats.TotalAttempts)
	assert.Equal(t, 5, result.Stats.Successful)
}

func TestGeneratePresentation_HTMLFormat(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []*llm.Response{{Content: slideJSON, Model: "test-model"}},
	}
	router, _ := newTestServer(t, mock, 100)

	rec := postPresentation(t, router, `{
		"document_text": "Quarterly finance review with revenue and cost analysis.",
		"format": "html"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<section class=\"slide title\">")
}

func TestGeneratePresentation_MissingText(t *testing.T) {
	router, _ := newTestServer(t, &testutil.MockCompleter{}, 10)

	rec := postPresentation(t, router, `{"target_slides": 5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePresentation_InvalidSlideCount(t *testing.T) {
	router, _ := newTestServer(t, &testutil.MockCompleter{}, 10)

	rec := postPresentation(t, router, `{"document_text": "Some document.", "target_slides": 2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid input")
}

func TestGeneratePresentation_UnknownFormat(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []*llm.Response{{Content: slideJSON, Model: "test-model"}},
	}
	router, _ := newTestServer(t, mock, 100)

	rec := postPresentation(t, router, `{"document_text": "Some document.", "format": "pptx"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePresentation_DegradedStillComplete(t *testing.T) {
	mock := &testutil.MockCompleter{Err: llm.NewTransientError(errors.New("down"))}
	router, _ := newTestServer(t, mock, 100)

	rec := postPresentation(t, router, `{"document_text": "Operations efficiency review.", "target_slides": 4}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result deck.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Slides, 4)
	for _, slide := range result.Slides {
		assert.Equal(t, deck.ProvenanceFallback, slide.Provenance)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []*llm.Response{{Content: slideJSON, Model: "test-model"}},
	}
	router, _ := newTestServer(t, mock, 100)

	postPresentation(t, router, `{"document_text": "A short strategy note.", "target_slides": 3}`)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deckforge_generation_outcomes_total")
}
