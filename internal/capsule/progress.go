package capsule

import (
	"encoding/json"
	"slices"
)

// Progress is the per-capsule learner state.
type Progress struct {
	// BestScore is the best quiz score so far, in percent (0-100)
	BestScore int `json:"bestScore"`

	// KnownFlashcards holds the indices of flashcards marked known
	KnownFlashcards KnownSet `json:"knownFlashcards"`
}

// DefaultProgress returns the progress of a capsule nobody has studied yet.
func DefaultProgress() Progress {
	return Progress{BestScore: 0, KnownFlashcards: KnownSet{}}
}

// Normalize clamps BestScore into [0,100] and ensures a non-nil known set.
func (p Progress) Normalize() Progress {
	p.BestScore = min(max(p.BestScore, 0), 100)
	if p.KnownFlashcards == nil {
		p.KnownFlashcards = KnownSet{}
	}
	return p
}

// RecordScore keeps score as the best score if it beats the current one.
// Returns true when the best score changed.
func (p *Progress) RecordScore(score int) bool {
	score = min(max(score, 0), 100)
	if score <= p.BestScore {
		return false
	}
	p.BestScore = score
	return true
}

// KnownSet is a set of flashcard indices. Its JSON form is a sorted array.
type KnownSet map[int]struct{}

// NewKnownSet builds a set from indices, dropping negatives.
func NewKnownSet(indices ...int) KnownSet {
	s := make(KnownSet, len(indices))
	for _, i := range indices {
		if i >= 0 {
			s[i] = struct{}{}
		}
	}
	return s
}

// Has reports whether index i is marked known.
func (s KnownSet) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Toggle flips index i and returns whether it is now known.
func (s KnownSet) Toggle(i int) bool {
	if s.Has(i) {
		delete(s, i)
		return false
	}
	s[i] = struct{}{}
	return true
}

// Sorted returns the indices in ascending order, never nil.
func (s KnownSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// CountBelow returns how many known indices fall inside a deck of n cards.
func (s KnownSet) CountBelow(n int) int {
	count := 0
	for i := range s {
		if i < n {
			count++
		}
	}
	return count
}

// MarshalJSON encodes the set as a sorted array ([] when empty).
func (s KnownSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of indices; null decodes to an empty set.
func (s *KnownSet) UnmarshalJSON(data []byte) error {
	var indices []int
	if err := json.Unmarshal(data, &indices); err != nil {
		return err
	}
	*s = NewKnownSet(indices...)
	return nil
}
