package identity

import (
	"strings"
	"testing"
)

func TestConversation_Deterministic(t *testing.T) {
	roles := []string{"user", "assistant"}
	a := Conversation("openai", "Deploy plan", roles, 1700000000000, "Hello world", map[string]any{"export_id": "e1"})
	b := Conversation("openai", "Deploy plan", roles, 1700000000000, "Hello world", map[string]any{"export_id": "e1"})

	if a != b {
		t.Errorf("same input produced different ids: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "conv_") {
		t.Errorf("expected conv_ prefix, got %q", a)
	}
}

func TestConversation_RoleOrderIrrelevant(t *testing.T) {
	a := Conversation("openai", "T", []string{"user", "assistant"}, 0, "hi", nil)
	b := Conversation("openai", "T", []string{"assistant", "user"}, 0, "hi", nil)

	if a != b {
		t.Errorf("participant order changed the id: %q vs %q", a, b)
	}
}

func TestMessage_WhitespaceAndCaseInvariant(t *testing.T) {
	a := Message("openai", "conv_x", "user", 1000, "Hello  World\n", "", nil)
	b := Message("openai", "conv_x", "user", 1000, "hello world", "", nil)

	if a != b {
		t.Errorf("whitespace/case noise changed the id: %q vs %q", a, b)
	}
}

func TestMessage_DistinctInputsDistinctIds(t *testing.T) {
	base := Message("openai", "conv_x", "user", 1000, "hello", "", nil)

	variants := []string{
		Message("openai", "conv_x", "assistant", 1000, "hello", "", nil),
		Message("openai", "conv_x", "user", 2000, "hello", "", nil),
		Message("openai", "conv_x", "user", 1000, "goodbye", "", nil),
		Message("openai", "conv_y", "user", 1000, "hello", "", nil),
		Message("claude", "conv_x", "user", 1000, "hello", "", nil),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base id %q", i, base)
		}
	}
}

func TestCanonicalJSON_SortsKeys(t *testing.T) {
	a := CanonicalJSON(map[string]any{"b": 2, "a": 1})
	if a != `{"a":1,"b":2}` {
		t.Errorf("expected sorted keys, got %q", a)
	}
}

func TestMessage_AttachmentKeyOrderIrrelevant(t *testing.T) {
	a := Message("openai", "conv_x", "user", 0, "hi", "bash", map[string]any{"name": "f.txt", "size": 12})
	b := Message("openai", "conv_x", "user", 0, "hi", "bash", map[string]any{"size": 12, "name": "f.txt"})

	if a != b {
		t.Errorf("attachment key order changed the id: %q vs %q", a, b)
	}
}

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello  World\n", "hello world"},
		{"A\r\nB", "a b"},
		{"  trimmed  ", "trimmed"},
		{"MiXeD\tCase", "mixed case"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeText(c.in); got != c.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFingerprint_UsesFirstFiveNonEmpty(t *testing.T) {
	texts := []string{"", "one", "two", "three", "four", "five", "six"}
	a := Fingerprint("openai", []string{"user", "assistant"}, texts)

	// Changing a text beyond the first five non-empty ones must not matter.
	texts[6] = "SEVEN"
	b := Fingerprint("openai", []string{"user", "assistant"}, texts)
	if a != b {
		t.Errorf("sixth non-empty text changed the fingerprint")
	}

	// Changing one of the first five must matter.
	texts[1] = "changed"
	c := Fingerprint("openai", []string{"user", "assistant"}, texts)
	if a == c {
		t.Errorf("leading text change did not alter the fingerprint")
	}
}

func TestValid(t *testing.T) {
	valid := []string{
		Conversation("openai", "t", nil, 0, "x", nil),
		Message("openai", "c", "user", 0, "x", "", nil),
		Source("openai", "/exports", 0),
		Fingerprint("openai", nil, []string{"x"}),
	}
	for _, id := range valid {
		if !Valid(id) {
			t.Errorf("expected %q to be valid", id)
		}
	}

	invalid := []string{"", "conv_", "msg_1", "bogus_abcdefgh", "conversation"}
	for _, id := range invalid {
		if Valid(id) {
			t.Errorf("expected %q to be invalid", id)
		}
	}
}

func TestShortHash_Deterministic(t *testing.T) {
	if ShortHash("node-42") != ShortHash("node-42") {
		t.Error("short hash not deterministic")
	}
	if ShortHash("node-42") == ShortHash("node-43") {
		t.Error("distinct labels collided (suspicious for FNV-32 on short inputs)")
	}
}
