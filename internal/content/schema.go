package content

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"unicode/utf8"

	"github.com/selahstudy/academy-backend/internal/pkg/apperr"
)

const (
	headingTextMax = 200
	textHTMLMax    = 5000
	listItemsMax   = 20
)

var (
	verseTranslations = map[string]bool{
		"KJV": true, "NIV": true, "ESV": true, "NKJV": true,
		"LSG": true, "NBS": true, "BDS": true,
	}
	partsOfSpeech = map[string]bool{
		"noun": true, "verb": true, "adjective": true, "adverb": true,
		"pronoun": true, "preposition": true, "conjunction": true,
		"interjection": true, "phrase": true,
	}
	alignments   = map[string]bool{"left": true, "center": true, "right": true}
	listStyles   = map[string]bool{"bullet": true, "numbered": true}
	calloutKinds = map[string]bool{"info": true, "warning": true, "success": true, "error": true}
	dividerStyle = map[string]bool{"solid": true, "dashed": true, "dotted": true}
	dividerWidth = map[string]bool{"full": true, "half": true, "quarter": true}

	hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// defaultMetadata is a pure lookup table keyed by block type, used only when
// a caller omits style metadata entirely.
var defaultMetadata = map[BlockType]map[string]interface{}{
	BlockHeading:    {"level": 2, "alignment": "left"},
	BlockText:       {},
	BlockImage:      {"alignment": "center"},
	BlockVerse:      {"translation": "NIV"},
	BlockVocabulary: {"showPronunciation": true},
	BlockList:       {"listStyle": "bullet"},
	BlockCallout:    {"calloutType": "info"},
	BlockQuiz:       {},
	BlockDivider:    {"style": "solid", "width": "full"},
}

// Registry is the parse/validate boundary between raw JSON payloads and the
// BlockContent union. It is pure and stateless; validation collects every
// field violation instead of stopping at the first.
type Registry struct{}

func NewRegistry() *Registry { return &Registry{} }

// ParsePayload turns the wire form of a content body into a generic value.
// Malformed JSON is a structural error, never a crash.
func (r *Registry) ParsePayload(raw []byte) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, apperr.Invalid("content payload is empty")
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperr.Invalid("content payload is not valid JSON").Wrap(err)
	}
	return payload, nil
}

// Decode validates an already-sanitized payload against the block type's
// structural rules and produces the typed variant. Field errors aggregate.
func (r *Registry) Decode(t BlockType, payload map[string]interface{}) (BlockContent, []apperr.FieldError) {
	if !t.Valid() {
		return nil, []apperr.FieldError{{Field: "block_type", Message: fmt.Sprintf("unknown block type %q", t)}}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, []apperr.FieldError{{Field: "content", Message: "content payload is not serializable"}}
	}

	switch t {
	case BlockHeading:
		return decodeHeading(raw)
	case BlockText:
		return decodeText(raw)
	case BlockImage:
		return decodeImage(raw)
	case BlockVerse:
		return decodeVerse(raw)
	case BlockVocabulary:
		return decodeVocabulary(raw)
	case BlockList:
		return decodeList(raw)
	case BlockCallout:
		return decodeCallout(raw)
	case BlockQuiz:
		return decodeQuiz(raw)
	default:
		return decodeDivider(raw)
	}
}

// DefaultMetadata returns a copy of the type's default style payload.
func (r *Registry) DefaultMetadata(t BlockType) map[string]interface{} {
	defaults, ok := defaultMetadata[t]
	if !ok {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	return out
}

func unmarshalInto(raw []byte, dst interface{}) []apperr.FieldError {
	if err := json.Unmarshal(raw, dst); err != nil {
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
			return []apperr.FieldError{{Field: typeErr.Field, Message: fmt.Sprintf("expected %s", typeErr.Type)}}
		}
		return []apperr.FieldError{{Field: "content", Message: "content payload does not match the block schema"}}
	}
	return nil
}

func decodeHeading(raw []byte) (BlockContent, []apperr.FieldError) {
	var c HeadingContent
	if errs := unmarshalInto(raw, &c); errs != nil {
		return nil, errs
	}
	var errs []apperr.FieldError
	if n := utf8.RuneCountInString(c.Text); n < 1 || n > headingTextMax {
		errs = append(errs, apperr.FieldError{Field: "text", Message: fmt.Sprintf("must be 1-%d characters", headingTextMax)})
	}
	if c.Level < 1 || c.Level > 3 {
		errs = append(errs, apperr.FieldError{Field: "level", Message: "must be 1, 2 or 3"})
	}
	if c.Alignment != "" && !alignments[c.Alignment] {
		errs = append(errs, apperr.FieldError{Field: "alignment", Message: "must be left, center or right"})
	}
	if errs != nil {
		return nil, errs
	}
	return c, nil
}

func decodeText(raw []byte) (BlockContent, []apperr.FieldError) {
	var c TextContent
	if errs := unmarshalInto(raw, &c); errs != nil {
		return nil, errs
	}
	if n := utf8.RuneCountInString(c.HTML); n < 1 || n > textHTMLMax {
		return nil, []apperr.FieldError{{Field: "html", Message: fmt.Sprintf("must be 1-%d characters", textHTMLMax)}}
	}
	return c, nil
}

func decodeImage(raw []byte) (BlockContent, []apperr.FieldError) {
	var c ImageContent
	if errs := unmarshalInto(raw, &c); errs != nil {
		return nil, errs
	}
	var errs []apperr.FieldError
	if !isWellFormedURL(c.ImageURL) {
		errs = append(errs, apperr.FieldError{Field: "imageUrl", Message: "must be a well-formed URL"})
	}
	if c.ImageAlt == "" {
		errs = append(errs, apperr.FieldError{Field: "imageAlt", Message: "must not be empty"})
	}
	if errs != nil {
		return nil, errs
	}
	return c, nil
}

func decodeVerse(raw []byte) (BlockContent, []apperr.FieldError) {
	var c VerseContent
	if errs := unmarshalInto(raw, &c); errs != nil {
		return nil, errs
	}
	var errs []apperr.FieldError
	if c.Text == "" {
		errs = append(errs, apperr.FieldError{Field: "text", Message: "must not be empty"})
	}
	if c.VerseReference == "" {
		errs = append(errs, apperr.FieldError{Field: "verseReference", Message: "must not be empty"})
	}
	if !verseTranslations[c.Translation] {
		errs = append(errs, apperr.FieldError{Field: "translation", Message: "must be one of KJV, NIV, ESV, NKJV, LSG, NBS, BDS"})
	}
	if errs != nil {
		return nil, errs
	}
	return c, nil
}

func decodeVocabulary(raw []byte) (BlockContent, []apperr.FieldError) {
	var c VocabularyContent
	if errs := unmarshalInto(raw, &c); errs != nil {
		return nil, errs
	}
	var errs []apperr.FieldError
	if c.Definition == "" {
		errs = append(errs, apperr.FieldError{Field: "definition", Message: "must not be empty"})
	}
	if c.TermEn == "" && c.TermFr == "" {
		errs = append(errs, apperr.FieldError{Field: "term_en", Message: "at least one of term_en or term_fr is required"})
	}
	if c.PartOfSpeech != "" && !partsOfSpeech[c.PartOfSpeech] {
		errs = append(errs, apperr.FieldError{Field: "partOfSpeech", Message: "unknown part of speech"})
	}
	if errs != nil {
		return nil, errs
	}
	return c, nil
}

func decodeList(raw []byte) (BlockContent, []apperr.FieldError) {
	var c ListContent
	if errs := unmarshalInto(raw, &c); errs != nil {
		return nil, errs
	}
	var errs []apperr.FieldError
	if !listStyles[c.ListStyle] {
		errs = append(errs, apperr.FieldError{Field: "listStyle", Message: "must be bullet or numbered"})
	}
	if len(c.Items) < 1 || len(c.Items) > listItemsMax {
		errs = append(errs, apperr.FieldError{Field: "items", Message: fmt.Sprintf("must contain 1-%d items", listItemsMax)})
	}
	if errs != nil {
		return nil, errs
	}
	return c, nil
}

func decodeCallout(raw []byte) (BlockContent, []apperr.FieldError) {
	var c CalloutContent
	if errs := unmarshalInto(raw, &c); errs != nil {
		return nil, errs
	}
	var errs []apperr.FieldError
	if c.Text == "" {
		errs = append(errs, apperr.FieldError{Field: "text", Message: "must not be empty"})
	}
	if !calloutKinds[c.CalloutType] {
		errs = append(errs, apperr.FieldError{Field: "calloutType", Message: "must be info, warning, success or error"})
	}
	if errs != nil {
		return nil, errs
	}
	return c, nil
}

// Quiz blocks reference an external quiz entity by id and stay permissive.
func decodeQuiz(raw []byte) (BlockContent, []apperr.FieldError) {
	var c QuizContent
	if errs := unmarshalInto(raw, &c); errs != nil {
		return nil, errs
	}
	return c, nil
}

func decodeDivider(raw []byte) (BlockContent, []apperr.FieldError) {
	var c DividerContent
	if errs := unmarshalInto(raw, &c); errs != nil {
		return nil, errs
	}
	var errs []apperr.FieldError
	if c.Style == "" {
		c.Style = "solid"
	} else if !dividerStyle[c.Style] {
		errs = append(errs, apperr.FieldError{Field: "style", Message: "must be solid, dashed or dotted"})
	}
	if c.Width == "" {
		c.Width = "full"
	} else if !dividerWidth[c.Width] {
		errs = append(errs, apperr.FieldError{Field: "width", Message: "must be full, half or quarter"})
	}
	if c.Color != "" && !hexColorRe.MatchString(c.Color) {
		errs = append(errs, apperr.FieldError{Field: "color", Message: "must match #RRGGBB"})
	}
	if errs != nil {
		return nil, errs
	}
	return c, nil
}

func isWellFormedURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
