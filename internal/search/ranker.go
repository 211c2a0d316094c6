package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// Embedder produces one vector for a piece of text. Implemented by the
// embedding client; injected explicitly so ranking never reaches for a
// process-wide singleton.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Cosine returns the cosine similarity of two vectors. Unequal dimensions
// indicate a caller defect and are rejected as an error rather than
// silently scored.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// HybridRanker fuses normalized lexical scores with cosine
// vector-similarity scores into one ranked list.
type HybridRanker struct {
	embedder Embedder
	lexical  *LexicalScorer
	logger   *slog.Logger
}

func NewHybridRanker(embedder Embedder, logger *slog.Logger) *HybridRanker {
	return &HybridRanker{
		embedder: embedder,
		lexical:  NewLexicalScorer(),
		logger:   logger,
	}
}

// Rank produces the top-k documents by fused score. Alpha weights the
// lexical component, beta the vector component; they are normalized to
// sum to one (both zero falls back to 0.5/0.5). Lexical scores are
// normalized by the maximum observed raw score; cosine similarity is
// remapped from [-1,1] to [0,1]. A document without an embedding keeps a
// zero vector component and can still rank on its lexical score. Only
// strictly positive fused scores are kept.
func (r *HybridRanker) Rank(ctx context.Context, query string, docs []Document, vectors map[string][]float64, alpha, beta float64, k int) ([]Result, error) {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if alpha < 0 {
		alpha = 0
	}
	if beta < 0 {
		beta = 0
	}
	if alpha == 0 && beta == 0 {
		alpha, beta = 0.5, 0.5
	}
	sum := alpha + beta
	alpha, beta = alpha/sum, beta/sum

	raw := make([]float64, len(docs))
	maxRaw := 0.0
	for i, d := range docs {
		raw[i] = r.lexical.Score(query, d)
		if raw[i] > maxRaw {
			maxRaw = raw[i]
		}
	}
	if maxRaw == 0 {
		maxRaw = 1 // all-zero lexical scores, avoid divide-by-zero
	}

	results := make([]Result, 0, len(docs))
	for i, d := range docs {
		vecScore := 0.0
		if vec, ok := vectors[d.ID]; ok {
			sim, err := Cosine(queryVec, vec)
			if err != nil {
				return nil, fmt.Errorf("doc %s: %w", d.ID, err)
			}
			vecScore = (sim + 1) / 2
		}
		fused := alpha*(raw[i]/maxRaw) + beta*vecScore
		if fused > 0 {
			results = append(results, Result{ID: d.ID, Score: fused, Doc: d})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	r.logger.Debug("hybrid rank complete", "candidates", len(docs), "kept", len(results))
	return results, nil
}

// VectorSearch is the plain similarity path: cosine against every
// document that has an embedding, remapped to [0,1], sorted descending
// and truncated to k. No score fusion.
func VectorSearch(queryVec []float64, docs []Document, vectors map[string][]float64, k int) ([]Result, error) {
	results := make([]Result, 0, len(docs))
	for _, d := range docs {
		vec, ok := vectors[d.ID]
		if !ok {
			continue
		}
		sim, err := Cosine(queryVec, vec)
		if err != nil {
			return nil, fmt.Errorf("doc %s: %w", d.ID, err)
		}
		results = append(results, Result{ID: d.ID, Score: (sim + 1) / 2, Doc: d})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}
