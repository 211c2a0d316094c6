package ingest

import "strings"

// NormalizeRole maps any author representation to a canonical role. The
// author may be a plain string or an object carrying a "role" field,
// case-insensitive. Unknown or empty authors map to system, never an
// error.
func NormalizeRole(author any) Role {
	raw := ""
	switch a := author.(type) {
	case string:
		raw = a
	case map[string]any:
		if r, ok := a["role"].(string); ok {
			raw = r
		}
	}

	switch r := strings.ToLower(strings.TrimSpace(raw)); {
	case r == "user":
		return RoleUser
	case r == "assistant" || r == "gpt":
		return RoleAssistant
	case strings.Contains(r, "tool"):
		return RoleTool
	default:
		return RoleSystem
	}
}
