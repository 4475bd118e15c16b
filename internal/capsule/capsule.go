package capsule

import "time"

// Level is the difficulty level of a capsule.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Levels lists the accepted levels in display order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Record is a full study unit: metadata, notes, flashcards and quiz.
type Record struct {
	// Meta holds the descriptive fields mirrored into the index
	Meta Meta `json:"meta"`

	// Notes has one entry per logical note line, blanks dropped
	Notes []string `json:"notes"`

	// Flashcards is the ordered deck; progress refers to cards by index
	Flashcards []Flashcard `json:"flashcards" validate:"dive"`

	// Quiz is the ordered list of multiple-choice questions
	Quiz []Question `json:"quiz" validate:"dive"`

	// CreatedAt is set once, at first save (ISO-8601)
	CreatedAt string `json:"createdAt,omitempty"`

	// UpdatedAt is refreshed on every save (ISO-8601)
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Meta describes a capsule.
type Meta struct {
	Title       string `json:"title" validate:"required"`
	Subject     string `json:"subject"`
	Level       Level  `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Description string `json:"description"`
}

// Flashcard is a two-sided card.
type Flashcard struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back"`
}

// ChoiceCount is the number of choices every quiz question carries.
const ChoiceCount = 4

// Question is a multiple-choice quiz question with exactly four choices.
type Question struct {
	Question    string   `json:"question" validate:"required"`
	Choices     []string `json:"choices" validate:"len=4,dive,required"`
	Answer      int      `json:"answer" validate:"min=0,max=3"`
	Explanation string   `json:"explanation"`
}

// HasContent reports whether at least one of notes, flashcards or quiz is non-empty.
func (r *Record) HasContent() bool {
	return len(r.Notes) > 0 || len(r.Flashcards) > 0 || len(r.Quiz) > 0
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r
	if r.Notes != nil {
		c.Notes = append([]string(nil), r.Notes...)
	}
	if r.Flashcards != nil {
		c.Flashcards = append([]Flashcard(nil), r.Flashcards...)
	}
	if r.Quiz != nil {
		c.Quiz = make([]Question, len(r.Quiz))
		for i, q := range r.Quiz {
			q.Choices = append([]string(nil), q.Choices...)
			c.Quiz[i] = q
		}
	}
	return &c
}

// timestampLayout matches JavaScript's Date.prototype.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t as an ISO-8601 UTC timestamp with milliseconds.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp as written by FormatTimestamp
// or any RFC 3339 producer.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
