package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/scribe/internal/index"
	"github.com/MikeSquared-Agency/scribe/internal/search"
)

type stubEmbedder struct {
	vec []float64
	err error
}

func (s stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return s.vec, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCorpus() *Corpus {
	return &Corpus{
		Documents: []search.Document{
			{ID: "msg_1", Title: "Deploy checklist", Body: "run the deploy script"},
			{ID: "msg_2", Title: "Lunch plans", Body: "where should we eat"},
		},
		Vectors: map[string][]float64{
			"msg_1": {1, 0},
			"msg_2": {0, 1},
		},
		Summaries: []index.ConversationSummary{
			{ConversationID: "conv_a", Title: "Deploy checklist", MessageCount: 2},
		},
	}
}

func testServer(embedder search.Embedder) *Server {
	ranker := search.NewHybridRanker(embedder, discardLogger())
	return NewServer(0, testCorpus(), ranker, discardLogger())
}

func TestHealth(t *testing.T) {
	srv := testServer(stubEmbedder{vec: []float64{1, 0}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestStatus(t *testing.T) {
	srv := testServer(stubEmbedder{vec: []float64{1, 0}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body StatusResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Agent != "scribe" {
		t.Errorf("agent = %q", body.Agent)
	}
	if body.Documents != 2 || body.Vectors != 2 || body.Conversations != 1 {
		t.Errorf("counts = %+v", body)
	}
}

func TestConversations(t *testing.T) {
	srv := testServer(stubEmbedder{vec: []float64{1, 0}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body ConversationsResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if len(body.Conversations) != 1 || body.Conversations[0].ConversationID != "conv_a" {
		t.Errorf("conversations = %+v", body.Conversations)
	}
}

func TestSearch_Hybrid(t *testing.T) {
	srv := testServer(stubEmbedder{vec: []float64{1, 0}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search",
		strings.NewReader(`{"query":"deploy","k":5}`))
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body SearchResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Mode != "hybrid" {
		t.Errorf("mode = %q", body.Mode)
	}
	if len(body.Results) == 0 || body.Results[0].ID != "msg_1" {
		t.Errorf("results = %+v", body.Results)
	}
}

func TestSearch_LexicalFallbackWhenEmbedderFails(t *testing.T) {
	srv := testServer(stubEmbedder{err: errors.New("provider down")})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search",
		strings.NewReader(`{"query":"deploy"}`))
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on fallback, got %d", rec.Code)
	}
	var body SearchResponse
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Mode != "lexical" {
		t.Errorf("mode = %q, want lexical", body.Mode)
	}
	if len(body.Results) != 1 || body.Results[0].ID != "msg_1" {
		t.Errorf("results = %+v", body.Results)
	}
}

func TestSearch_FilterNarrowsCandidates(t *testing.T) {
	srv := testServer(stubEmbedder{vec: []float64{1, 0}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search",
		strings.NewReader(`{"query":"deploy lunch","filter":"lunch"}`))
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body SearchResponse
	json.NewDecoder(rec.Body).Decode(&body)
	for _, res := range body.Results {
		if res.ID == "msg_1" {
			t.Errorf("filter should have excluded msg_1: %+v", body.Results)
		}
	}
}

func TestSearch_ValidationErrors(t *testing.T) {
	srv := testServer(stubEmbedder{vec: []float64{1, 0}})

	cases := []struct {
		name string
		body string
	}{
		{"empty query", `{"query":""}`},
		{"k too large", `{"query":"x","k":500}`},
		{"invalid json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(tc.body))
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	srv := testServer(stubEmbedder{vec: []float64{1, 0}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
