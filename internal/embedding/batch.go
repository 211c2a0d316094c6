package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize is how many texts are embedded concurrently per chunk.
const DefaultChunkSize = 10

// EmbedBatch embeds texts in fixed-size chunks, issuing each chunk's
// requests concurrently and awaiting the whole chunk before moving on. A
// failure anywhere in a chunk aborts that chunk's contribution; vectors
// from earlier completed chunks are returned alongside the error, indexed
// like the input.
func (c *Client) EmbedBatch(ctx context.Context, texts []string, chunkSize int) ([][]float64, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	out := make([][]float64, len(texts))
	for start := 0; start < len(texts); start += chunkSize {
		end := min(start+chunkSize, len(texts))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				vec, err := c.Embed(gctx, texts[i])
				if err != nil {
					return fmt.Errorf("text %d: %w", i, err)
				}
				out[i] = vec
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			c.logger.Warn("embedding chunk failed", "start", start, "end", end, "error", err)
			return out[:start], err
		}
	}
	return out, nil
}
