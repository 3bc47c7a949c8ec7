package content

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// htmlFields are the map keys whose string values always route through the
// HTML cleaner; every other string field keeps its raw value (URLs, slugs,
// enum values and the like are validated structurally, not cleaned).
var htmlFields = map[string]bool{
	"html":    true,
	"text":    true,
	"content": true,
}

// Sanitizer strips unsafe markup from teacher-supplied content. It runs after
// JSON parsing and before structural validation, so validation always sees
// already-cleaned values; a field emptied by stripping still fails its
// non-empty rule.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br",
		"b", "strong", "i", "em", "u", "s", "strike", "del", "mark", "span",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"a", "blockquote", "code", "pre",
	)
	p.AllowAttrs("href", "target", "rel", "class", "style").Globally()
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)

	return &Sanitizer{policy: p}
}

// SanitizeHTML cleans one string through the allow-list policy. Idempotent
// and best-effort on malformed markup; it never fails.
func (s *Sanitizer) SanitizeHTML(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// SanitizeValue walks an arbitrary parsed value. Bare strings and strings
// inside arrays go through the cleaner; inside maps only the designated
// text-bearing fields are cleaned, while nested maps and arrays are walked
// recursively. Scalar non-strings pass through unchanged.
func (s *Sanitizer) SanitizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return s.SanitizeHTML(val)
	case []interface{}:
		for i := range val {
			val[i] = s.SanitizeValue(val[i])
		}
		return val
	case map[string]interface{}:
		for k, member := range val {
			switch m := member.(type) {
			case string:
				if htmlFields[k] {
					val[k] = s.SanitizeHTML(m)
				}
			case []interface{}, map[string]interface{}:
				val[k] = s.SanitizeValue(m)
			}
		}
		return val
	default:
		return v
	}
}

// SanitizePayload cleans a parsed content payload in place and returns it.
func (s *Sanitizer) SanitizePayload(payload map[string]interface{}) map[string]interface{} {
	cleaned, _ := s.SanitizeValue(payload).(map[string]interface{})
	return cleaned
}
