// Package tags owns the stored representation of note tags. Tags arrive from
// clients and from older stored rows in several shapes: a JSON array, a
// JSON-encoded array inside a string, a comma-separated string, or a single
// scalar. Everything outside this package works with plain []string.
package tags

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Normalize coerces any tag representation into a clean slice of tags.
// Strings are tried as a JSON array first, then split on commas. Elements
// are trimmed and empties dropped. A value of any other type becomes a
// single-element slice of its string form.
func Normalize(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return clean(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, stringify(e))
		}
		return clean(out)
	case string:
		return normalizeString(v)
	case *string:
		if v == nil {
			return nil
		}
		return normalizeString(*v)
	case json.RawMessage:
		if len(v) == 0 {
			return nil
		}
		var decoded any
		if err := json.Unmarshal(v, &decoded); err == nil {
			return Normalize(decoded)
		}
		return normalizeString(string(v))
	default:
		return clean([]string{stringify(v)})
	}
}

func normalizeString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var parsed []any
	if err := json.Unmarshal([]byte(s), &parsed); err == nil {
		out := make([]string, 0, len(parsed))
		for _, e := range parsed {
			out = append(out, stringify(e))
		}
		return clean(out)
	}

	// Not a JSON array: treat as comma-separated.
	parts := strings.Split(s, ",")
	return clean(parts)
}

// Serialize returns the canonical stored form: nil when there are no tags,
// otherwise a JSON-encoded array. Round-tripping through Normalize is
// idempotent.
func Serialize(list []string) *string {
	list = clean(list)
	if len(list) == 0 {
		return nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

// Flatten joins the normalized tags with single spaces, for feeding tag text
// into language detection alongside title and content.
func Flatten(raw any) string {
	return strings.Join(Normalize(raw), " ")
}

func clean(list []string) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func stringify(v any) string {
	switch e := v.(type) {
	case string:
		return e
	case float64:
		// JSON numbers decode as float64; render integers without a decimal.
		if e == float64(int64(e)) {
			return fmt.Sprintf("%d", int64(e))
		}
		return fmt.Sprintf("%v", e)
	default:
		return fmt.Sprintf("%v", e)
	}
}
