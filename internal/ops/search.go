package ops

import (
	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/store"
)

// SearchNotesInput contains parameters for SearchNotes.
type SearchNotesInput struct {
	ID    string
	Query string // empty matches every note
}

// SearchNotesOutput contains the matching notes.
type SearchNotesOutput struct {
	ID    string   `json:"id"`
	Query string   `json:"query"`
	Notes []string `json:"notes"`
	Count int      `json:"count"`
	Total int      `json:"total"`
}

// SearchNotes filters a capsule's notes by case-insensitive substring.
func SearchNotes(st *store.Store, input SearchNotesInput) (*SearchNotesOutput, error) {
	id, rec, err := requireCapsule(st, input.ID)
	if err != nil {
		return nil, err
	}
	notes := capsule.MatchNotes(rec.Notes, input.Query)
	return &SearchNotesOutput{
		ID:    id,
		Query: input.Query,
		Notes: notes,
		Count: len(notes),
		Total: len(rec.Notes),
	}, nil
}
