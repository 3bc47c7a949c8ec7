package content

import (
	"strings"
	"testing"
)

func TestSanitizeHTMLStripsScripts(t *testing.T) {
	s := NewSanitizer()

	got := s.SanitizeHTML(`<p>hello</p><script>alert(1)</script>`)
	if strings.Contains(got, "script") || strings.Contains(got, "alert") {
		t.Fatalf("script content survived: %q", got)
	}
	if !strings.Contains(got, "<p>hello</p>") {
		t.Fatalf("allowed markup was lost: %q", got)
	}

	got = s.SanitizeHTML(`<b onclick="steal()">bold</b>`)
	if strings.Contains(got, "onclick") {
		t.Fatalf("event handler survived: %q", got)
	}
	if !strings.Contains(got, "<b>bold</b>") {
		t.Fatalf("allowed element was lost: %q", got)
	}

	got = s.SanitizeHTML(`<a href="javascript:alert(1)">x</a>`)
	if strings.Contains(got, "javascript:") {
		t.Fatalf("javascript url survived: %q", got)
	}
}

func TestSanitizeHTMLIdempotentAndTrimmed(t *testing.T) {
	s := NewSanitizer()

	once := s.SanitizeHTML("  <em>lead</em>  ")
	if once != "<em>lead</em>" {
		t.Fatalf("expected trimmed output, got %q", once)
	}
	if twice := s.SanitizeHTML(once); twice != once {
		t.Fatalf("sanitize is not idempotent: %q vs %q", once, twice)
	}
}

func TestSanitizeValueWalksCollections(t *testing.T) {
	s := NewSanitizer()

	payload := map[string]interface{}{
		"text":     `<script>x</script>safe`,
		"imageUrl": `<b>not-cleaned</b>`,
		"items": []interface{}{
			`<script>y</script>first`,
			map[string]interface{}{"html": `<img src=x onerror=steal()>second`},
		},
		"count": float64(3),
	}
	cleaned := s.SanitizePayload(payload)

	if cleaned["text"] != "safe" {
		t.Fatalf("text field not cleaned: %q", cleaned["text"])
	}
	if cleaned["imageUrl"] != `<b>not-cleaned</b>` {
		t.Fatalf("non-text field should pass through raw: %q", cleaned["imageUrl"])
	}
	items := cleaned["items"].([]interface{})
	if items[0] != "first" {
		t.Fatalf("array string not cleaned: %q", items[0])
	}
	nested := items[1].(map[string]interface{})
	if got := nested["html"].(string); strings.Contains(got, "onerror") {
		t.Fatalf("nested html not cleaned: %q", got)
	}
	if cleaned["count"] != float64(3) {
		t.Fatalf("scalar changed: %v", cleaned["count"])
	}
}

func TestSanitizeThenValidateRejectsEmptiedText(t *testing.T) {
	s := NewSanitizer()
	r := NewRegistry()

	payload, err := r.ParsePayload([]byte(`{"html":"<script>alert(1)</script>"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cleaned := s.SanitizePayload(payload)

	_, errs := r.Decode(BlockText, cleaned)
	if len(errs) != 1 || errs[0].Field != "html" {
		t.Fatalf("script-only html should fail the non-empty rule, got %v", errs)
	}
}
