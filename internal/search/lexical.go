// Package search ranks indexed conversation documents by fusing
// field-weighted lexical scores with vector-similarity scores.
package search

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/scribe/internal/ingest"
)

// Document is the indexable unit.
type Document struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	System   string `json:"system,omitempty"`
	ToolJSON string `json:"tool_json,omitempty"`
	Body     string `json:"body,omitempty"`
	Date     int64  `json:"date,omitempty"` // epoch ms, 0 when unknown
}

// Result is one ranked hit.
type Result struct {
	ID    string   `json:"id"`
	Score float64  `json:"score"`
	Doc   Document `json:"doc"`
}

// Field weights for term-overlap scoring, approximating BM25 without full
// corpus statistics.
const (
	weightTitle  = 3.0
	weightSystem = 2.0
	weightTool   = 1.25
	weightBody   = 1.0
)

// Recency: up to a 25% boost inside the 180-day horizon, decaying
// linearly to none.
const (
	recencyBoost       = 0.25
	recencyHorizonDays = 180.0
	msPerDay           = 86_400_000.0
)

// LexicalScorer computes weighted whole-word hit counts with a recency
// multiplier. Scores are unbounded non-negative reals.
type LexicalScorer struct {
	now func() time.Time // injectable for tests
}

func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{now: time.Now}
}

// Score computes the raw lexical score of a document for a query. Tokens
// are whitespace-split; empty queries score zero.
func (s *LexicalScorer) Score(query string, doc Document) float64 {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return 0
	}

	score := 0.0
	for _, tok := range tokens {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(tok) + `\b`)
		if err != nil {
			continue
		}
		score += weightTitle * float64(len(re.FindAllStringIndex(doc.Title, -1)))
		score += weightSystem * float64(len(re.FindAllStringIndex(doc.System, -1)))
		score += weightTool * float64(len(re.FindAllStringIndex(doc.ToolJSON, -1)))
		score += weightBody * float64(len(re.FindAllStringIndex(doc.Body, -1)))
	}

	ageDays := float64(s.now().UnixMilli()-doc.Date) / msPerDay
	if ageDays < 0 {
		ageDays = 0
	}
	decay := 1 - ageDays/recencyHorizonDays
	if decay < 0 {
		decay = 0
	}
	return score * (1 + recencyBoost*decay)
}

// Rank scores all documents and returns positive scorers, descending,
// truncated to k. This is the lexical-only path callers fall back to when
// the embedding provider is unavailable.
func (s *LexicalScorer) Rank(query string, docs []Document, k int) []Result {
	results := make([]Result, 0, len(docs))
	for _, d := range docs {
		if score := s.Score(query, d); score > 0 {
			results = append(results, Result{ID: d.ID, Score: score, Doc: d})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// DocumentFromMessage projects a canonical message onto the indexable
// document shape: tool output lands in the structured payload field,
// system text in the system field, everything else in the body.
func DocumentFromMessage(m ingest.ParsedMessage) Document {
	d := Document{
		ID:    m.ID,
		Title: m.ConversationTitle,
		Date:  m.TimestampMs,
	}
	switch m.Role {
	case ingest.RoleTool:
		d.ToolJSON = m.Text
	case ingest.RoleSystem:
		d.System = m.Text
	default:
		d.Body = m.Text
	}
	return d
}
