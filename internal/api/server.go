// Package api exposes the in-memory corpus over HTTP: health, status,
// conversation summaries and hybrid search.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/scribe/internal/index"
	"github.com/MikeSquared-Agency/scribe/internal/search"
)

// Corpus is the ingested, in-memory search surface the server answers
// from. It is read-only after construction.
type Corpus struct {
	Documents []search.Document
	Vectors   map[string][]float64
	Summaries []index.ConversationSummary
}

type Server struct {
	router  *chi.Mux
	port    int
	corpus  *Corpus
	ranker  *search.HybridRanker
	lexical *search.LexicalScorer
	logger  *slog.Logger
}

func NewServer(port int, corpus *Corpus, ranker *search.HybridRanker, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		corpus:  corpus,
		ranker:  ranker,
		lexical: search.NewLexicalScorer(),
		logger:  logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/status", s.status)
	router.Get("/api/v1/conversations", s.conversations)
	router.Post("/api/v1/search", s.search)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Agent:         "scribe",
		Documents:     len(s.corpus.Documents),
		Vectors:       len(s.corpus.Vectors),
		Conversations: len(s.corpus.Summaries),
	})
}

func (s *Server) conversations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ConversationsResponse{Conversations: s.corpus.Summaries})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	docs := s.corpus.Documents
	if req.Filter != "" {
		docs = filterDocs(docs, req.Filter, req.Regex)
	}

	mode := "hybrid"
	results, err := s.ranker.Rank(r.Context(), req.Query, docs, s.corpus.Vectors, req.Alpha, req.Beta, req.K)
	if err != nil {
		// Embedding provider down is not a client error; degrade to
		// lexical-only ranking.
		s.logger.Warn("hybrid ranking unavailable, falling back to lexical", "error", err)
		mode = "lexical"
		results = s.lexical.Rank(req.Query, docs, req.K)
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   req.Query,
		Mode:    mode,
		Results: results,
	})
}

func filterDocs(docs []search.Document, filter string, isRegex bool) []search.Document {
	kept := make([]search.Document, 0, len(docs))
	for _, d := range docs {
		body := d.Body
		if body == "" {
			if d.System != "" {
				body = d.System
			} else {
				body = d.ToolJSON
			}
		}
		if search.Matches(d.Title, body, filter, isRegex) {
			kept = append(kept, d)
		}
	}
	return kept
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
