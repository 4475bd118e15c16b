package ops

import (
	"strings"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/store"
)

// AuthorInput contains the author form fields.
type AuthorInput struct {
	ID          string // optional; set to edit an existing capsule
	Title       string // required
	Subject     string
	Level       capsule.Level // default: Beginner
	Description string

	// NotesText is the notes textarea, one note per line. When empty, Notes is used as is.
	NotesText string
	Notes     []string

	Flashcards []capsule.Flashcard
	Quiz       []capsule.Question

	// KeepDraft leaves the saved author draft in place after a successful save.
	KeepDraft bool
}

// AuthorOutput contains the result of the Author operation.
type AuthorOutput struct {
	ID      string             `json:"id"`
	Created bool               `json:"created"`
	Entry   capsule.IndexEntry `json:"entry"`
	Counts  map[string]int     `json:"counts"`
}

// BuildRecord turns form fields into a record. Blank flashcard and question rows are dropped.
func BuildRecord(input AuthorInput) *capsule.Record {
	level := input.Level
	if level == "" {
		level = capsule.LevelBeginner
	}

	notes := input.Notes
	if input.NotesText != "" {
		notes = capsule.SplitNotes(input.NotesText)
	}
	if notes == nil {
		notes = []string{}
	}

	flashcards := make([]capsule.Flashcard, 0, len(input.Flashcards))
	for _, f := range input.Flashcards {
		if strings.TrimSpace(f.Front) == "" && strings.TrimSpace(f.Back) == "" {
			continue
		}
		flashcards = append(flashcards, f)
	}

	quiz := make([]capsule.Question, 0, len(input.Quiz))
	for _, q := range input.Quiz {
		if isBlankQuestion(q) {
			continue
		}
		quiz = append(quiz, q)
	}

	return &capsule.Record{
		Meta: capsule.Meta{
			Title:       strings.TrimSpace(input.Title),
			Subject:     strings.TrimSpace(input.Subject),
			Level:       level,
			Description: input.Description,
		},
		Notes:      notes,
		Flashcards: flashcards,
		Quiz:       quiz,
	}
}

func isBlankQuestion(q capsule.Question) bool {
	if strings.TrimSpace(q.Question) != "" || strings.TrimSpace(q.Explanation) != "" {
		return false
	}
	for _, c := range q.Choices {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Author validates form fields and saves the capsule. Editing keeps the stored createdAt.
func Author(st *store.Store, input AuthorInput) (*AuthorOutput, error) {
	rec := BuildRecord(input)
	if rec.Meta.Title == "" {
		return nil, errors.NewInvalidRequest("Please enter a title.")
	}

	result := capsule.Lint(rec)
	if !result.Valid {
		err := errors.NewInvalidRequest(result.Summary())
		err.Details = map[string]any{"issues": result.Issues}
		return nil, err
	}

	created := true
	if strings.TrimSpace(input.ID) != "" {
		id, existing, err := requireCapsule(st, input.ID)
		if err != nil {
			return nil, err
		}
		input.ID = id
		rec.CreatedAt = existing.CreatedAt
		created = false
	}

	id, err := st.SaveCapsule(rec, input.ID)
	if err != nil {
		return nil, err
	}
	if !input.KeepDraft {
		if err := st.ClearDraft(); err != nil {
			return nil, err
		}
	}

	saved, _ := st.LoadCapsule(id)
	if saved == nil {
		saved = rec
	}
	return &AuthorOutput{
		ID:      id,
		Created: created,
		Entry:   saved.ToIndexEntry(id),
		Counts:  counts(saved),
	}, nil
}

// SaveDraft stores the form fields as the author draft without validation.
func SaveDraft(st *store.Store, input AuthorInput) error {
	return st.SaveDraft(BuildRecord(input))
}

func counts(r *capsule.Record) map[string]int {
	return map[string]int{
		"notes":      len(r.Notes),
		"flashcards": len(r.Flashcards),
		"quiz":       len(r.Quiz),
	}
}
