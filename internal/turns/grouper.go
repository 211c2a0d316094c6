// Package turns coalesces a message stream into turns: maximal runs of
// consecutive same-role messages within a bounded time gap.
package turns

import (
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/scribe/internal/ingest"
)

// DefaultGap is the maximum silence between two messages that still
// belong to the same turn.
const DefaultGap = 7 * time.Minute

// Turn groups consecutive same-role messages. TsStart and TsEnd span
// exactly the enclosed items.
type Turn struct {
	ID      string                 `json:"id"`
	Role    ingest.Role            `json:"role"`
	Vendor  string                 `json:"vendor"`
	TsStart int64                  `json:"ts_start"`
	TsEnd   int64                  `json:"ts_end"`
	Items   []ingest.ParsedMessage `json:"items"`
}

// Group folds a message list into turns. The input is first stably
// re-sorted ascending by timestamp; a new turn starts on a role change or
// when the gap to the previous item exceeds the threshold. A non-positive
// gap selects DefaultGap.
func Group(msgs []ingest.ParsedMessage, gap time.Duration) []Turn {
	if gap <= 0 {
		gap = DefaultGap
	}
	gapMs := gap.Milliseconds()

	sorted := append([]ingest.ParsedMessage(nil), msgs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimestampMs < sorted[j].TimestampMs
	})

	var out []Turn
	for _, m := range sorted {
		if len(out) == 0 {
			out = append(out, newTurn(m))
			continue
		}
		cur := &out[len(out)-1]
		if m.Role != cur.Role || m.TimestampMs-cur.TsEnd > gapMs {
			out = append(out, newTurn(m))
			continue
		}
		cur.Items = append(cur.Items, m)
		cur.TsEnd = m.TimestampMs
	}
	return out
}

func newTurn(m ingest.ParsedMessage) Turn {
	return Turn{
		ID:      turnID(m.ID),
		Role:    m.Role,
		Vendor:  m.Vendor,
		TsStart: m.TimestampMs,
		TsEnd:   m.TimestampMs,
		Items:   []ingest.ParsedMessage{m},
	}
}

// turnID derives a turn's id from its first message's id.
func turnID(msgID string) string {
	return "turn_" + strings.TrimPrefix(msgID, "msg_")
}
