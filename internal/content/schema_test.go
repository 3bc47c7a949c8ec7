package content

import (
	"strings"
	"testing"
)

func decodePayload(t *testing.T, r *Registry, bt BlockType, raw string) (BlockContent, []string) {
	t.Helper()
	payload, err := r.ParsePayload([]byte(raw))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	decoded, errs := r.Decode(bt, payload)
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field)
	}
	return decoded, fields
}

func TestParsePayloadRejectsMalformedJSON(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ParsePayload([]byte(`{"text":`)); err == nil {
		t.Fatal("malformed JSON should fail")
	}
	if _, err := r.ParsePayload(nil); err == nil {
		t.Fatal("empty payload should fail")
	}
}

func TestDecodeHeading(t *testing.T) {
	r := NewRegistry()

	decoded, fields := decodePayload(t, r, BlockHeading, `{"text":"Intro","level":2}`)
	if len(fields) != 0 {
		t.Fatalf("valid heading rejected: %v", fields)
	}
	h, ok := decoded.(HeadingContent)
	if !ok || h.Text != "Intro" {
		t.Fatalf("unexpected variant: %#v", decoded)
	}

	_, fields = decodePayload(t, r, BlockHeading, `{"text":"","level":7,"alignment":"middle"}`)
	if len(fields) != 3 {
		t.Fatalf("want 3 aggregated field errors, got %v", fields)
	}

	long := strings.Repeat("a", 201)
	_, fields = decodePayload(t, r, BlockHeading, `{"text":"`+long+`","level":1}`)
	if len(fields) != 1 || fields[0] != "text" {
		t.Fatalf("overlong text should fail on text, got %v", fields)
	}
}

func TestDecodeVocabularyRequiresOneTerm(t *testing.T) {
	r := NewRegistry()

	_, fields := decodePayload(t, r, BlockVocabulary, `{"definition":"a word"}`)
	if len(fields) != 1 || fields[0] != "term_en" {
		t.Fatalf("missing terms should fail, got %v", fields)
	}

	_, fields = decodePayload(t, r, BlockVocabulary, `{"term_fr":"mot","definition":"a word"}`)
	if len(fields) != 0 {
		t.Fatalf("french-only term should pass, got %v", fields)
	}

	_, fields = decodePayload(t, r, BlockVocabulary, `{"term_en":"word","definition":"a word","partOfSpeech":"gerund"}`)
	if len(fields) != 1 || fields[0] != "partOfSpeech" {
		t.Fatalf("unknown part of speech should fail, got %v", fields)
	}
}

func TestDecodeListBoundaries(t *testing.T) {
	r := NewRegistry()

	items := make([]string, 0, 21)
	for i := 0; i < 20; i++ {
		items = append(items, `"x"`)
	}
	twenty := `{"listStyle":"bullet","items":[` + strings.Join(items, ",") + `]}`
	_, fields := decodePayload(t, r, BlockList, twenty)
	if len(fields) != 0 {
		t.Fatalf("20 items should pass, got %v", fields)
	}

	items = append(items, `"x"`)
	twentyOne := `{"listStyle":"bullet","items":[` + strings.Join(items, ",") + `]}`
	_, fields = decodePayload(t, r, BlockList, twentyOne)
	if len(fields) != 1 || fields[0] != "items" {
		t.Fatalf("21 items should fail on items, got %v", fields)
	}

	_, fields = decodePayload(t, r, BlockList, `{"listStyle":"roman","items":["x"]}`)
	if len(fields) != 1 || fields[0] != "listStyle" {
		t.Fatalf("unknown list style should fail, got %v", fields)
	}
}

func TestDecodeVerseTranslation(t *testing.T) {
	r := NewRegistry()

	_, fields := decodePayload(t, r, BlockVerse, `{"text":"In the beginning","verseReference":"Gen 1:1","translation":"LSG"}`)
	if len(fields) != 0 {
		t.Fatalf("valid verse rejected: %v", fields)
	}

	_, fields = decodePayload(t, r, BlockVerse, `{"text":"","verseReference":"","translation":"MSG"}`)
	if len(fields) != 3 {
		t.Fatalf("want 3 field errors, got %v", fields)
	}
}

func TestDecodeImageURL(t *testing.T) {
	r := NewRegistry()

	_, fields := decodePayload(t, r, BlockImage, `{"imageUrl":"https://cdn.example.com/a.png","imageAlt":"a"}`)
	if len(fields) != 0 {
		t.Fatalf("valid image rejected: %v", fields)
	}

	for _, bad := range []string{`"javascript:alert(1)"`, `"notaurl"`, `""`} {
		_, fields = decodePayload(t, r, BlockImage, `{"imageUrl":`+bad+`,"imageAlt":"a"}`)
		if len(fields) != 1 || fields[0] != "imageUrl" {
			t.Fatalf("url %s should fail on imageUrl, got %v", bad, fields)
		}
	}
}

func TestDecodeDividerDefaultsAndColor(t *testing.T) {
	r := NewRegistry()

	decoded, fields := decodePayload(t, r, BlockDivider, `{}`)
	if len(fields) != 0 {
		t.Fatalf("empty divider rejected: %v", fields)
	}
	d := decoded.(DividerContent)
	if d.Style != "solid" || d.Width != "full" {
		t.Fatalf("defaults not applied: %#v", d)
	}

	_, fields = decodePayload(t, r, BlockDivider, `{"color":"#12345"}`)
	if len(fields) != 1 || fields[0] != "color" {
		t.Fatalf("short hex color should fail, got %v", fields)
	}

	_, fields = decodePayload(t, r, BlockDivider, `{"color":"#AABB11","style":"dashed","width":"half"}`)
	if len(fields) != 0 {
		t.Fatalf("valid divider rejected: %v", fields)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	r := NewRegistry()
	_, errs := r.Decode(BlockType("TABLE"), map[string]interface{}{})
	if len(errs) != 1 || errs[0].Field != "block_type" {
		t.Fatalf("unknown type should fail on block_type, got %v", errs)
	}
}

func TestDecodeWrongFieldType(t *testing.T) {
	r := NewRegistry()
	_, fields := decodePayload(t, r, BlockHeading, `{"text":"ok","level":"two"}`)
	if len(fields) != 1 || fields[0] != "level" {
		t.Fatalf("type mismatch should pin the field, got %v", fields)
	}
}

func TestDefaultMetadataIsACopy(t *testing.T) {
	r := NewRegistry()
	first := r.DefaultMetadata(BlockHeading)
	first["level"] = 99
	second := r.DefaultMetadata(BlockHeading)
	if second["level"] != 2 {
		t.Fatalf("defaults must not be shared: %#v", second)
	}
}
