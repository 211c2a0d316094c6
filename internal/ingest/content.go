package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// unparsedMarker replaces a content block that cannot be serialized at
// all. Flattening must never abort the whole message.
const unparsedMarker = "[unparsed block]"

// blockKind is the tagged variant a raw content block is classified into.
// The unknown arm keeps the fallback behavior as a named variant instead
// of a catch clause.
type blockKind int

const (
	blockText blockKind = iota
	blockToolResult
	blockImage
	blockUnknown
)

type contentBlock struct {
	kind   blockKind
	text   string // blockText
	result any    // blockToolResult payload
	ref    string // blockImage id or name
	raw    any    // blockUnknown original value
}

// Flatten converts an arbitrary message content value into one flat text
// string. It never fails: malformed pieces degrade to markers or fenced
// JSON dumps rather than aborting the message.
//
// Priority order: array of blocks, legacy {parts:[...]} object, plain
// string, object with a text field, then empty string.
func Flatten(content any) string {
	switch c := content.(type) {
	case []any:
		parts := make([]string, 0, len(c))
		for _, item := range c {
			if s := flattenBlock(classifyBlock(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n\n"))
	case map[string]any:
		if parts, ok := c["parts"].([]any); ok {
			joined := make([]string, 0, len(parts))
			for _, p := range parts {
				joined = append(joined, stringify(p))
			}
			return strings.TrimSpace(strings.Join(joined, "\n\n"))
		}
		if text, ok := c["text"]; ok {
			return stringify(text)
		}
		return ""
	case string:
		return c
	default:
		return ""
	}
}

func classifyBlock(v any) contentBlock {
	switch b := v.(type) {
	case string:
		return contentBlock{kind: blockText, text: b}
	case map[string]any:
		switch t, _ := b["type"].(string); t {
		case "text", "output_text", "input_text":
			return contentBlock{kind: blockText, text: stringify(b["text"])}
		case "tool_result":
			return contentBlock{kind: blockToolResult, result: b["content"]}
		case "image", "input_image", "image_url":
			return contentBlock{kind: blockImage, ref: imageRef(b)}
		default:
			return contentBlock{kind: blockUnknown, raw: b}
		}
	default:
		return contentBlock{kind: blockUnknown, raw: v}
	}
}

// flattenBlock renders one classified block; the switch is exhaustive
// over blockKind.
func flattenBlock(b contentBlock) string {
	switch b.kind {
	case blockText:
		return b.text
	case blockToolResult:
		return flattenToolResult(b.result)
	case blockImage:
		// Emit a placeholder reference rather than dropping the message.
		return fmt.Sprintf("![image:%s]", b.ref)
	case blockUnknown:
		return fencedJSON(b.raw)
	default:
		return unparsedMarker
	}
}

// flattenToolResult emits a tool_result payload: string content as-is,
// arrays with text/string entries mapped and remaining structured entries
// serialized as fenced JSON.
func flattenToolResult(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case string:
		return r
	case []any:
		parts := make([]string, 0, len(r))
		for _, entry := range r {
			switch e := entry.(type) {
			case string:
				parts = append(parts, e)
			case map[string]any:
				if text, ok := e["text"].(string); ok {
					parts = append(parts, text)
				} else {
					parts = append(parts, fencedJSON(e))
				}
			default:
				parts = append(parts, fencedJSON(entry))
			}
		}
		return strings.Join(parts, "\n\n")
	default:
		return fencedJSON(v)
	}
}

func imageRef(b map[string]any) string {
	if id, ok := b["id"].(string); ok && id != "" {
		return id
	}
	if name, ok := b["name"].(string); ok && name != "" {
		return name
	}
	if src, ok := b["source"].(map[string]any); ok {
		if id, ok := src["file_id"].(string); ok && id != "" {
			return id
		}
	}
	return "unknown"
}

func fencedJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return unparsedMarker
	}
	return "```json\n" + string(raw) + "\n```"
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
