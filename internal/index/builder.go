// Package index aggregates a canonical message stream into one summary
// record per conversation.
package index

import (
	"sort"

	"github.com/MikeSquared-Agency/scribe/internal/ingest"
)

// PlaceholderTitle is used when an export carries no conversation title.
const PlaceholderTitle = "Untitled conversation"

// ConversationSummary is the per-conversation fold of a message stream.
// First/last timestamps are running min/max, not input order.
type ConversationSummary struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
	Vendor         string `json:"vendor"`
	MessageCount   int    `json:"message_count"`
	FirstTimestamp int64  `json:"first_timestamp"`
	LastTimestamp  int64  `json:"last_timestamp"`
}

// Build folds the stream into summaries, sorted descending by last
// activity (most recently active conversation first).
func Build(msgs []ingest.ParsedMessage) []ConversationSummary {
	byConv := make(map[string]*ConversationSummary)
	for _, m := range msgs {
		s, ok := byConv[m.ConversationID]
		if !ok {
			title := m.ConversationTitle
			if title == "" {
				title = PlaceholderTitle
			}
			byConv[m.ConversationID] = &ConversationSummary{
				ConversationID: m.ConversationID,
				Title:          title,
				Vendor:         m.Vendor,
				MessageCount:   1,
				FirstTimestamp: m.TimestampMs,
				LastTimestamp:  m.TimestampMs,
			}
			continue
		}
		s.MessageCount++
		if m.TimestampMs < s.FirstTimestamp {
			s.FirstTimestamp = m.TimestampMs
		}
		if m.TimestampMs > s.LastTimestamp {
			s.LastTimestamp = m.TimestampMs
		}
	}

	out := make([]ConversationSummary, 0, len(byConv))
	for _, s := range byConv {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastTimestamp != out[j].LastTimestamp {
			return out[i].LastTimestamp > out[j].LastTimestamp
		}
		return out[i].ConversationID < out[j].ConversationID
	})
	return out
}
