package content

// BlockType is the closed set of content block kinds. The type of a block is
// fixed at creation; content payloads are validated against it.
type BlockType string

const (
	BlockHeading    BlockType = "HEADING"
	BlockText       BlockType = "TEXT"
	BlockImage      BlockType = "IMAGE"
	BlockVerse      BlockType = "VERSE"
	BlockVocabulary BlockType = "VOCABULARY"
	BlockList       BlockType = "LIST"
	BlockCallout    BlockType = "CALLOUT"
	BlockQuiz       BlockType = "QUIZ"
	BlockDivider    BlockType = "DIVIDER"
)

var AllBlockTypes = []BlockType{
	BlockHeading, BlockText, BlockImage, BlockVerse, BlockVocabulary,
	BlockList, BlockCallout, BlockQuiz, BlockDivider,
}

func (t BlockType) Valid() bool {
	for _, known := range AllBlockTypes {
		if t == known {
			return true
		}
	}
	return false
}

// BlockContent is the tagged union of block payloads; one variant per block
// type, produced by the registry's decode/validate boundary.
type BlockContent interface {
	Type() BlockType
}

type HeadingContent struct {
	Text      string `json:"text"`
	Level     int    `json:"level"`
	Alignment string `json:"alignment,omitempty"`
}

func (HeadingContent) Type() BlockType { return BlockHeading }

type TextContent struct {
	HTML string `json:"html"`
}

func (TextContent) Type() BlockType { return BlockText }

type ImageContent struct {
	ImageURL string `json:"imageUrl"`
	ImageAlt string `json:"imageAlt"`
	Caption  string `json:"caption,omitempty"`
}

func (ImageContent) Type() BlockType { return BlockImage }

type VerseContent struct {
	Text           string `json:"text"`
	VerseReference string `json:"verseReference"`
	Translation    string `json:"translation"`
}

func (VerseContent) Type() BlockType { return BlockVerse }

type VocabularyContent struct {
	TermEn        string `json:"term_en,omitempty"`
	TermFr        string `json:"term_fr,omitempty"`
	Definition    string `json:"definition"`
	PartOfSpeech  string `json:"partOfSpeech,omitempty"`
	Pronunciation string `json:"pronunciation,omitempty"`
}

func (VocabularyContent) Type() BlockType { return BlockVocabulary }

type ListContent struct {
	ListStyle string   `json:"listStyle"`
	Items     []string `json:"items"`
}

func (ListContent) Type() BlockType { return BlockList }

type CalloutContent struct {
	Text        string `json:"text"`
	CalloutType string `json:"calloutType"`
	Title       string `json:"title,omitempty"`
}

func (CalloutContent) Type() BlockType { return BlockCallout }

type QuizContent struct {
	QuizID       string `json:"quiz_id,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

func (QuizContent) Type() BlockType { return BlockQuiz }

type DividerContent struct {
	Style string `json:"style,omitempty"`
	Width string `json:"width,omitempty"`
	Color string `json:"color,omitempty"`
}

func (DividerContent) Type() BlockType { return BlockDivider }
