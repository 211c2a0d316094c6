// Package identity derives deterministic, content-addressed identifiers
// for conversations, messages, sources, and similarity fingerprints.
// Identical normalized input always yields the identical id across runs
// and machines: no randomness, no clock dependence.
package identity

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Id prefixes tag the entity type so ids are self-describing.
const (
	PrefixConversation = "conv_"
	PrefixMessage      = "msg_"
	PrefixSource       = "src_"
	PrefixFingerprint  = "fp_"
)

// minIDLen is the shortest length a well-formed id can have.
const minIDLen = 8

// fingerprintDepth is how many leading non-empty message texts seed a
// conversation fingerprint.
const fingerprintDepth = 5

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
	fnvOffset32 = 2166136261
	fnvPrime32  = 16777619
)

// fnv1a64 hashes a string with 64-bit FNV-1a over its UTF-16 code units.
// Hashing code units rather than bytes keeps ids stable regardless of the
// encoding the export file arrived in.
func fnv1a64(s string) uint64 {
	h := uint64(fnvOffset64)
	for _, cu := range utf16.Encode([]rune(s)) {
		h ^= uint64(cu)
		h *= fnvPrime64
	}
	return h
}

// fnv1a32 is the short-label variant used where full collision
// resistance is unnecessary (graph-node labels, debug handles).
func fnv1a32(s string) uint32 {
	h := uint32(fnvOffset32)
	for _, cu := range utf16.Encode([]rune(s)) {
		h ^= uint32(cu)
		h *= fnvPrime32
	}
	return h
}

// ShortHash returns the base-36 32-bit hash of a short label.
func ShortHash(s string) string {
	return strconv.FormatUint(uint64(fnv1a32(s)), 36)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeText canonicalizes text before hashing: CRLF to LF, whitespace
// runs to one space, trimmed, lowercased. This absorbs formatting noise so
// re-ingesting an unchanged conversation reproduces its ids even when the
// export's whitespace differs.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// CanonicalJSON serializes a value with object keys sorted, for stable
// hashing of structured payloads (tool calls, attachment lists). Returns
// an empty string for unserializable values.
func CanonicalJSON(v any) string {
	if v == nil {
		return ""
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return ""
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return ""
	}
	return string(out)
}

// Conversation derives the stable id for a conversation.
func Conversation(vendor, title string, roles []string, createdMs int64, firstText string, meta any) string {
	sorted := append([]string(nil), roles...)
	sort.Strings(sorted)
	seed := strings.Join([]string{
		"conv",
		vendor,
		NormalizeText(title),
		strings.Join(sorted, ","),
		strconv.FormatInt(createdMs, 10),
		NormalizeText(firstText),
		CanonicalJSON(meta),
	}, "|")
	return PrefixConversation + strconv.FormatUint(fnv1a64(seed), 36)
}

// Message derives the stable id for one message within a conversation.
func Message(vendor, conversationID, role string, timestampMs int64, text, toolName string, attachments any) string {
	seed := strings.Join([]string{
		"msg",
		vendor,
		conversationID,
		role,
		strconv.FormatInt(timestampMs, 10),
		NormalizeText(text),
		toolName,
		CanonicalJSON(attachments),
	}, "|")
	return PrefixMessage + strconv.FormatUint(fnv1a64(seed), 36)
}

// Source derives the stable id for an import source (a watched folder or
// export location).
func Source(vendor, folder string, addedMs int64) string {
	seed := strings.Join([]string{
		"src",
		vendor,
		NormalizeText(folder),
		strconv.FormatInt(addedMs, 10),
	}, "|")
	return PrefixSource + strconv.FormatUint(fnv1a64(seed), 36)
}

// Fingerprint derives a coarse identity from a conversation's leading
// messages, used to detect re-exports of the same logical conversation
// across files. The first fingerprintDepth non-empty normalized texts
// participate.
func Fingerprint(vendor string, participants []string, texts []string) string {
	sorted := append([]string(nil), participants...)
	sort.Strings(sorted)

	var leading []string
	for _, t := range texts {
		if len(leading) >= fingerprintDepth {
			break
		}
		if n := NormalizeText(t); n != "" {
			leading = append(leading, n)
		}
	}

	seed := strings.Join([]string{
		"fp",
		vendor,
		strings.Join(sorted, ","),
		strings.Join(leading, "|"),
	}, "|")
	return PrefixFingerprint + strconv.FormatUint(fnv1a64(seed), 36)
}

var knownPrefixes = []string{PrefixConversation, PrefixMessage, PrefixSource, PrefixFingerprint}

// Valid reports whether an id is well-formed: a known prefix followed by
// enough hash material. Malformed ids are rejected, never an error.
func Valid(id string) bool {
	if len(id) <= minIDLen {
		return false
	}
	for _, p := range knownPrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}
