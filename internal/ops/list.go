package ops

import (
	"strings"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/store"
)

// LibraryInput contains parameters for the Library operation.
type LibraryInput struct {
	Subject string        // optional, case-insensitive exact match
	Level   capsule.Level // optional
	Limit   int           // default: 20, max: 100
	Offset  int           // default: 0
}

// LibraryOutput contains the result of the Library operation.
type LibraryOutput struct {
	Items      []capsule.IndexEntry `json:"items"`
	Pagination Pagination           `json:"pagination"`
}

// Library lists capsule summaries in index order with optional filters.
func Library(st *store.Store, input LibraryInput) (*LibraryOutput, error) {
	if input.Level != "" && !input.Level.Valid() {
		return nil, errors.NewInvalidRequest("level must be one of: Beginner, Intermediate, Advanced")
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	// Ensure offset is non-negative
	offset := max(input.Offset, 0)

	subject := capsule.Normalize(input.Subject)
	matched := make([]capsule.IndexEntry, 0)
	for _, e := range st.ListIndex() {
		if subject != "" && capsule.Normalize(e.Subject) != subject {
			continue
		}
		if input.Level != "" && e.Level != input.Level {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)
	items := []capsule.IndexEntry{}
	if offset < total {
		items = matched[offset:min(offset+limit, total)]
	}

	return &LibraryOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
	}, nil
}

// Subjects returns the distinct subjects in the index, in first-seen order.
func Subjects(st *store.Store) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, e := range st.ListIndex() {
		s := strings.TrimSpace(e.Subject)
		if s == "" || seen[capsule.Normalize(s)] {
			continue
		}
		seen[capsule.Normalize(s)] = true
		out = append(out, s)
	}
	return out
}
