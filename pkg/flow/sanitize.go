package flow

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/flowlens/flowlens/pkg/json"
)

const (
	// MaxPropertyLength caps the cleaned length of a property value before
	// the truncation marker is appended.
	MaxPropertyLength = 1000

	// TruncationMarker is appended to property values cut at MaxPropertyLength.
	TruncationMarker = "..."

	// RedactedMarker replaces the value of any sensitively-named property.
	RedactedMarker = "[REDACTED]"

	// NotSetMarker replaces an empty value of a sensitively-named property.
	NotSetMarker = "[NOT SET]"
)

// sensitiveNameParts flags a property as sensitive when its name contains
// any of these, case-insensitively. Matching is on the name alone: a benign
// value under a sensitive name is still redacted.
var sensitiveNameParts = []string{
	"password",
	"secret",
	"key",
	"credential",
	"token",
}

// Clean stringifies value and makes it safe for single-line output: C0
// control characters are dropped, every run of whitespace collapses to one
// space, and the result is trimmed. Clean never fails; nil becomes "".
func Clean(value interface{}) string {
	s := valueToString(value)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case r < 0x20 || r == 0x7f:
			// control character, drop it
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanProperty cleans value for tabular export: Clean, truncate to
// maxLength characters with a marker, then double embedded quotes. Quote
// doubling lives here rather than in the CSV writer so that redaction
// decisions always see the value before escaping.
func CleanProperty(value interface{}, maxLength int) string {
	s := Clean(value)
	if maxLength > 0 {
		if runes := []rune(s); len(runes) > maxLength {
			s = string(runes[:maxLength]) + TruncationMarker
		}
	}
	return strings.ReplaceAll(s, `"`, `""`)
}

// IsSensitiveName reports whether a property name matches the sensitive
// denylist.
func IsSensitiveName(name string) bool {
	lower := strings.ToLower(name)
	for _, part := range sensitiveNameParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// CleanSensitive sanitizes a property value, redacting it when the property
// name is sensitive. The raw value never leaks: a set value becomes
// RedactedMarker, an unset one NotSetMarker. Non-sensitive names delegate
// to CleanProperty.
func CleanSensitive(name string, value interface{}) string {
	if IsSensitiveName(name) {
		if isSet(value) {
			return RedactedMarker
		}
		return NotSetMarker
	}
	return CleanProperty(value, MaxPropertyLength)
}

// isSet reports whether value carries any payload worth redacting.
func isSet(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	default:
		return true
	}
}

// valueToString converts decoded JSON scalars (and whatever else reaches a
// property slot) to a string. Fast paths avoid fmt for the common types.
func valueToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []byte:
		return string(v)
	case *json.Object:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, elem := range v {
			parts = append(parts, valueToString(elem))
		}
		return strings.Join(parts, ", ")
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
