package ingest

import (
	"math"
	"sort"
	"time"
)

// Node is one entry in an exported conversation graph. The graph is a
// flat id-keyed arena: parent and children are id references resolved by
// lookup, never owning pointers, so the walk to root is bounded and
// cycle-free by construction.
type Node struct {
	ID       string       `json:"id"`
	Message  *NodeMessage `json:"message"`
	Parent   string       `json:"parent"`
	Children []string     `json:"children"`
}

// NodeMessage is the loosely-typed message payload a node may carry.
// Author, content, and timestamps vary by vendor, so they stay untyped
// until the flattener and role normalizer interpret them.
type NodeMessage struct {
	Author     any `json:"author"`
	Content    any `json:"content"`
	CreateTime any `json:"create_time"`
	UpdateTime any `json:"update_time"`
}

// WalkPath selects the single linear path of node ids representing "the
// conversation as the user saw it".
//
// When currentNode resolves in the mapping, the path the user was last
// viewing is authoritative: walk parent links from it to the root and
// reverse. Otherwise fall back to the message-bearing leaf with the
// greatest create_time (ties broken by first-found in sorted id order,
// keeping the choice stable across runs). An empty mapping, or one with
// no resolvable start, yields an empty path — not an error.
//
// The fallback and the current-node walk are not guaranteed to agree when
// an export is internally inconsistent (current_node pointing into an
// abandoned branch while a later leaf exists elsewhere). That ambiguity
// is preserved as-is rather than reconciled.
func WalkPath(nodes map[string]Node, currentNode string) []string {
	start := ""
	if currentNode != "" {
		if _, ok := nodes[currentNode]; ok {
			start = currentNode
		}
	}
	if start == "" {
		start = latestLeaf(nodes)
	}
	if start == "" {
		return nil
	}

	var path []string
	seen := make(map[string]bool, len(nodes))
	for id := start; id != "" && !seen[id]; {
		n, ok := nodes[id]
		if !ok {
			break
		}
		seen[id] = true
		path = append(path, id)
		id = n.Parent
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// latestLeaf returns the message-bearing node without children that has
// the greatest create_time.
func latestLeaf(nodes map[string]Node) string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best := ""
	bestTime := math.Inf(-1)
	for _, id := range ids {
		n := nodes[id]
		if n.Message == nil || len(n.Children) > 0 {
			continue
		}
		ct := 0.0
		if sec, ok := n.Message.CreateTime.(float64); ok {
			ct = sec
		}
		if best == "" || ct > bestTime {
			best = id
			bestTime = ct
		}
	}
	return best
}

// nodeTimestampMs resolves a node message's timestamp: create_time taken
// as epoch seconds when numeric, otherwise update_time or create_time
// parsed as a date string, otherwise 0.
func nodeTimestampMs(createTime, updateTime any) int64 {
	if sec, ok := createTime.(float64); ok && sec != 0 {
		return int64(sec * 1000)
	}
	for _, v := range []any{updateTime, createTime} {
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UnixMilli()
			}
		}
	}
	return 0
}

// pathMessages emits the message-bearing nodes along a path as role, text
// and timestamp triples. Nodes without a message are skipped. An
// assistant message whose flattened text is empty is dropped (an aborted
// generation is a non-event); empty text from any other role is kept.
type rawMessage struct {
	role Role
	text string
	tsMs int64
}

func pathMessages(nodes map[string]Node, path []string) (msgs []rawMessage, dropped int) {
	for _, id := range path {
		n, ok := nodes[id]
		if !ok || n.Message == nil {
			continue
		}
		role := NormalizeRole(n.Message.Author)
		text := Flatten(n.Message.Content)
		if role == RoleAssistant && text == "" {
			dropped++
			continue
		}
		msgs = append(msgs, rawMessage{
			role: role,
			text: text,
			tsMs: nodeTimestampMs(n.Message.CreateTime, n.Message.UpdateTime),
		})
	}
	return msgs, dropped
}
