package ops

import (
	"fmt"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/store"
)

// KnownInput contains parameters for ToggleKnown and SetKnown.
type KnownInput struct {
	ID    string
	Index int
	Known bool // SetKnown only
}

// KnownOutput reports the flashcard state after a change.
type KnownOutput struct {
	ID         string `json:"id"`
	Index      int    `json:"index"`
	Known      bool   `json:"known"`
	KnownCount int    `json:"known_count"`
	Total      int    `json:"total"`
}

// ToggleKnown flips the known flag of one flashcard.
func ToggleKnown(st *store.Store, input KnownInput) (*KnownOutput, error) {
	return updateKnown(st, input, func(set capsule.KnownSet, i int) bool {
		return set.Toggle(i)
	})
}

// SetKnown marks one flashcard known or not known. Repeating a call changes nothing.
func SetKnown(st *store.Store, input KnownInput) (*KnownOutput, error) {
	return updateKnown(st, input, func(set capsule.KnownSet, i int) bool {
		if input.Known {
			set[i] = struct{}{}
		} else {
			delete(set, i)
		}
		return input.Known
	})
}

func updateKnown(st *store.Store, input KnownInput, apply func(capsule.KnownSet, int) bool) (*KnownOutput, error) {
	id, rec, err := requireCapsule(st, input.ID)
	if err != nil {
		return nil, err
	}
	total := len(rec.Flashcards)
	if input.Index < 0 || input.Index >= total {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("flashcard index %d out of range (capsule has %d)", input.Index, total))
	}

	progress := st.GetProgress(id)
	known := apply(progress.KnownFlashcards, input.Index)
	if err := st.SaveProgress(id, progress); err != nil {
		return nil, err
	}

	return &KnownOutput{
		ID:         id,
		Index:      input.Index,
		Known:      known,
		KnownCount: progress.KnownFlashcards.CountBelow(total),
		Total:      total,
	}, nil
}

// GradeInput contains parameters for GradeQuiz.
type GradeInput struct {
	ID      string
	Answers []int // answers[i] is the chosen choice for question i; -1 or missing = unanswered
}

// GradeOutput contains a graded attempt and the resulting best score.
type GradeOutput struct {
	capsule.GradeResult
	ID        string `json:"id"`
	BestScore int    `json:"best_score"`
	NewBest   bool   `json:"new_best"`
}

// GradeQuiz grades answers and raises the best score when this attempt beats it.
func GradeQuiz(st *store.Store, input GradeInput) (*GradeOutput, error) {
	id, rec, err := requireCapsule(st, input.ID)
	if err != nil {
		return nil, err
	}
	if len(rec.Quiz) == 0 {
		return nil, errors.NewInvalidRequest("capsule has no quiz questions")
	}
	if len(input.Answers) > len(rec.Quiz) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("got %d answers for %d questions", len(input.Answers), len(rec.Quiz)))
	}
	for i, a := range input.Answers {
		if a < capsule.Unanswered || a >= capsule.ChoiceCount {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("answer %d must be between 0 and %d, or -1", i, capsule.ChoiceCount-1))
		}
	}

	result := capsule.Grade(rec.Quiz, input.Answers)

	progress := st.GetProgress(id)
	newBest := progress.RecordScore(result.Score)
	if newBest {
		if err := st.SaveProgress(id, progress); err != nil {
			return nil, err
		}
	}

	return &GradeOutput{
		GradeResult: result,
		ID:          id,
		BestScore:   progress.BestScore,
		NewBest:     newBest,
	}, nil
}

// ProgressOutput is a capsule's progress with flashcard totals.
type ProgressOutput struct {
	ID              string `json:"id"`
	BestScore       int    `json:"best_score"`
	KnownFlashcards []int  `json:"known_flashcards"`
	KnownCount      int    `json:"known_count"`
	Total           int    `json:"total"`
}

// Progress returns the learner state of an existing capsule.
func Progress(st *store.Store, id string) (*ProgressOutput, error) {
	id, rec, err := requireCapsule(st, id)
	if err != nil {
		return nil, err
	}
	p := st.GetProgress(id)
	return &ProgressOutput{
		ID:              id,
		BestScore:       p.BestScore,
		KnownFlashcards: p.KnownFlashcards.Sorted(),
		KnownCount:      p.KnownFlashcards.CountBelow(len(rec.Flashcards)),
		Total:           len(rec.Flashcards),
	}, nil
}

// SaveProgressInput replaces a capsule's progress wholesale.
type SaveProgressInput struct {
	ID              string
	BestScore       int
	KnownFlashcards []int
}

// SaveProgress overwrites the progress of an existing capsule. The score must be a
// percentage and every known index must point at a flashcard.
func SaveProgress(st *store.Store, input SaveProgressInput) (*ProgressOutput, error) {
	id, rec, err := requireCapsule(st, input.ID)
	if err != nil {
		return nil, err
	}
	if input.BestScore < 0 || input.BestScore > 100 {
		return nil, errors.NewInvalidRequest("best_score must be between 0 and 100")
	}
	total := len(rec.Flashcards)
	for _, i := range input.KnownFlashcards {
		if i < 0 || i >= total {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("flashcard index %d out of range (capsule has %d)", i, total))
		}
	}

	if err := st.SaveProgress(id, capsule.Progress{
		BestScore:       input.BestScore,
		KnownFlashcards: capsule.NewKnownSet(input.KnownFlashcards...),
	}); err != nil {
		return nil, err
	}
	return Progress(st, id)
}
