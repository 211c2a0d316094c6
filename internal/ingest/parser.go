package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/MikeSquared-Agency/scribe/internal/identity"
	"github.com/google/uuid"
)

// export is the top-level shape of one exported conversation. Vendors in
// the mapping family carry an id-keyed node graph plus an optional
// current_node pointer; the flat family carries a messages array.
type export struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	CreateTime  any             `json:"create_time"`
	CurrentNode string          `json:"current_node"`
	Mapping     map[string]Node `json:"mapping"`
	Messages    []flatMessage   `json:"messages"`
}

type flatMessage struct {
	Author     any `json:"author"`
	Role       any `json:"role"`
	Content    any `json:"content"`
	CreateTime any `json:"create_time"`
	Timestamp  any `json:"timestamp"`
}

// Report summarizes one ingestion run. Anomalies degrade gracefully and
// are counted here rather than aborting the import.
type Report struct {
	RunID         uuid.UUID         `json:"run_id"`
	SourceID      string            `json:"source_id,omitempty"`
	Conversations int               `json:"conversations"`
	Messages      int               `json:"messages"`
	Dropped       int               `json:"dropped"`
	Fingerprints  map[string]string `json:"fingerprints"` // conversation id → fp_ id
}

// Parser converts vendor export documents into the canonical message
// stream.
type Parser struct {
	vendor string
	logger *slog.Logger
}

func NewParser(vendor string, logger *slog.Logger) *Parser {
	return &Parser{vendor: vendor, logger: logger}
}

// ParseFile reads and parses one export file. The report's source id is
// derived from the containing folder and the file's modification time.
func (p *Parser) ParseFile(path string) ([]ParsedMessage, *Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read export: %w", err)
	}

	msgs, report, err := p.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	if info, err := os.Stat(path); err == nil {
		report.SourceID = identity.Source(p.vendor, filepath.Dir(path), info.ModTime().UnixMilli())
	}
	return msgs, report, nil
}

// Parse parses an export document: either a single conversation object
// or an array of them.
func (p *Parser) Parse(data []byte) ([]ParsedMessage, *Report, error) {
	var exports []export
	if err := json.Unmarshal(data, &exports); err != nil {
		var single export
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, nil, fmt.Errorf("parse export: %w", err)
		}
		exports = []export{single}
	}

	report := &Report{
		RunID:        uuid.New(),
		Fingerprints: make(map[string]string),
	}

	var out []ParsedMessage
	for _, exp := range exports {
		msgs, dropped := p.convert(exp)
		report.Dropped += dropped
		if len(msgs) == 0 {
			continue
		}
		report.Conversations++
		report.Messages += len(msgs)
		report.Fingerprints[msgs[0].ConversationID] = fingerprint(p.vendor, msgs)
		out = append(out, msgs...)
	}

	p.logger.Info("export parsed",
		"vendor", p.vendor,
		"conversations", report.Conversations,
		"messages", report.Messages,
		"dropped", report.Dropped)
	return out, report, nil
}

// convert produces the canonical stream for one conversation instance.
func (p *Parser) convert(exp export) ([]ParsedMessage, int) {
	var raw []rawMessage
	var dropped int

	switch {
	case len(exp.Mapping) > 0:
		path := WalkPath(exp.Mapping, exp.CurrentNode)
		raw, dropped = pathMessages(exp.Mapping, path)
	case len(exp.Messages) > 0:
		raw, dropped = flatMessages(exp.Messages)
		// The flat family carries no authoritative ordering; sort like
		// the graph path would read. Stable, so equal timestamps keep
		// their input order.
		sort.SliceStable(raw, func(i, j int) bool { return raw[i].tsMs < raw[j].tsMs })
	}
	if len(raw) == 0 {
		return nil, dropped
	}

	createdMs := nodeTimestampMs(exp.CreateTime, nil)
	if createdMs == 0 {
		createdMs = raw[0].tsMs
	}

	convID := identity.Conversation(
		p.vendor,
		exp.Title,
		distinctRoles(raw),
		createdMs,
		raw[0].text,
		map[string]any{"export_id": exp.ID},
	)

	msgs := make([]ParsedMessage, len(raw))
	for i, m := range raw {
		msgs[i] = ParsedMessage{
			ID:                identity.Message(p.vendor, convID, string(m.role), m.tsMs, m.text, "", nil),
			ConversationID:    convID,
			ConversationTitle: exp.Title,
			Role:              m.role,
			TimestampMs:       m.tsMs,
			Text:              m.text,
			Vendor:            p.vendor,
		}
	}
	return msgs, dropped
}

func flatMessages(flat []flatMessage) (msgs []rawMessage, dropped int) {
	for _, fm := range flat {
		author := fm.Author
		if author == nil {
			author = fm.Role
		}
		role := NormalizeRole(author)
		text := Flatten(fm.Content)
		if role == RoleAssistant && text == "" {
			dropped++
			continue
		}
		msgs = append(msgs, rawMessage{
			role: role,
			text: text,
			tsMs: nodeTimestampMs(fm.CreateTime, fm.Timestamp),
		})
	}
	return msgs, dropped
}

func distinctRoles(msgs []rawMessage) []string {
	seen := make(map[string]bool, 4)
	var roles []string
	for _, m := range msgs {
		if !seen[string(m.role)] {
			seen[string(m.role)] = true
			roles = append(roles, string(m.role))
		}
	}
	return roles
}

func fingerprint(vendor string, msgs []ParsedMessage) string {
	participants := make([]string, 0, 4)
	seen := make(map[string]bool, 4)
	texts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if !seen[string(m.Role)] {
			seen[string(m.Role)] = true
			participants = append(participants, string(m.Role))
		}
		texts = append(texts, m.Text)
	}
	return identity.Fingerprint(vendor, participants, texts)
}
