package ops

import (
	"testing"

	"github.com/hpungsan/pocket/internal/errors"
)

func TestToggleKnown(t *testing.T) {
	st := newTestStore(t)
	id := mustAuthor(t, st, "Cells")

	out, err := ToggleKnown(st, KnownInput{ID: id, Index: 1})
	if err != nil {
		t.Fatalf("ToggleKnown failed: %v", err)
	}
	if !out.Known || out.KnownCount != 1 || out.Total != 3 {
		t.Errorf("out = %+v", out)
	}

	out, err = ToggleKnown(st, KnownInput{ID: id, Index: 1})
	if err != nil {
		t.Fatalf("ToggleKnown failed: %v", err)
	}
	if out.Known || out.KnownCount != 0 {
		t.Errorf("second toggle = %+v, want unknown", out)
	}
	if got := st.GetProgress(id).KnownFlashcards.Sorted(); len(got) != 0 {
		t.Errorf("stored known = %v, want empty", got)
	}
}

func TestSetKnown_Idempotent(t *testing.T) {
	st := newTestStore(t)
	id := mustAuthor(t, st, "Cells")

	for i := 0; i < 2; i++ {
		out, err := SetKnown(st, KnownInput{ID: id, Index: 2, Known: true})
		if err != nil {
			t.Fatalf("SetKnown failed: %v", err)
		}
		if !out.Known || out.KnownCount != 1 {
			t.Errorf("round %d: out = %+v", i, out)
		}
	}

	out, err := SetKnown(st, KnownInput{ID: id, Index: 2, Known: false})
	if err != nil {
		t.Fatalf("SetKnown failed: %v", err)
	}
	if out.Known || out.KnownCount != 0 {
		t.Errorf("out = %+v", out)
	}
}

func TestKnown_Bounds(t *testing.T) {
	st := newTestStore(t)
	id := mustAuthor(t, st, "Cells")

	for _, idx := range []int{-1, 3, 99} {
		if _, err := ToggleKnown(st, KnownInput{ID: id, Index: idx}); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("index %d: expected ErrInvalidRequest, got %v", idx, err)
		}
	}
	if _, err := ToggleKnown(st, KnownInput{ID: "missing", Index: 0}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGradeQuiz_KeepsBestScore(t *testing.T) {
	st := newTestStore(t)
	id := mustAuthor(t, st, "Cells")

	out, err := GradeQuiz(st, GradeInput{ID: id, Answers: []int{1, 0, 0}})
	if err != nil {
		t.Fatalf("GradeQuiz failed: %v", err)
	}
	if out.Correct != 2 || out.Total != 3 || out.Score != 67 {
		t.Errorf("result = %+v", out.GradeResult)
	}
	if !out.NewBest || out.BestScore != 67 {
		t.Errorf("best = %d (new %v), want 67", out.BestScore, out.NewBest)
	}

	out, err = GradeQuiz(st, GradeInput{ID: id, Answers: []int{-1}})
	if err != nil {
		t.Fatalf("GradeQuiz failed: %v", err)
	}
	if out.Score != 0 || out.NewBest || out.BestScore != 67 {
		t.Errorf("worse attempt = %+v", out)
	}
	if st.GetProgress(id).BestScore != 67 {
		t.Error("a worse attempt must not lower the stored best score")
	}

	out, _ = GradeQuiz(st, GradeInput{ID: id, Answers: []int{1, 0, 2}})
	if out.Score != 100 || !out.NewBest || st.GetProgress(id).BestScore != 100 {
		t.Errorf("perfect attempt = %+v", out)
	}
	if !out.Questions[2].Correct || out.Questions[2].Chosen != 2 {
		t.Errorf("question 2 = %+v", out.Questions[2])
	}
}

func TestGradeQuiz_Invalid(t *testing.T) {
	st := newTestStore(t)
	id := mustAuthor(t, st, "Cells")

	cases := [][]int{{1, 0, 2, 1}, {4}, {-2}}
	for _, answers := range cases {
		if _, err := GradeQuiz(st, GradeInput{ID: id, Answers: answers}); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("answers %v: expected ErrInvalidRequest, got %v", answers, err)
		}
	}

	in := sampleInput("No quiz")
	in.Quiz = nil
	out, err := Author(st, in)
	if err != nil {
		t.Fatalf("Author failed: %v", err)
	}
	if _, err := GradeQuiz(st, GradeInput{ID: out.ID}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for empty quiz, got %v", err)
	}
}

func TestProgress(t *testing.T) {
	st := newTestStore(t)
	id := mustAuthor(t, st, "Cells")

	if _, err := ToggleKnown(st, KnownInput{ID: id, Index: 0}); err != nil {
		t.Fatalf("ToggleKnown failed: %v", err)
	}
	out, err := Progress(st, id)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if out.KnownCount != 1 || out.Total != 3 || len(out.KnownFlashcards) != 1 || out.KnownFlashcards[0] != 0 {
		t.Errorf("out = %+v", out)
	}

	if _, err := Progress(st, "missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveProgress(t *testing.T) {
	st := newTestStore(t)
	id := mustAuthor(t, st, "Cells")

	out, err := SaveProgress(st, SaveProgressInput{ID: id, BestScore: 40, KnownFlashcards: []int{2, 0, 2}})
	if err != nil {
		t.Fatalf("SaveProgress failed: %v", err)
	}
	if out.BestScore != 40 || out.KnownCount != 2 || out.KnownFlashcards[0] != 0 || out.KnownFlashcards[1] != 2 {
		t.Errorf("out = %+v", out)
	}

	// Wholesale overwrite, lower score included
	out, err = SaveProgress(st, SaveProgressInput{ID: id, BestScore: 10})
	if err != nil {
		t.Fatalf("SaveProgress failed: %v", err)
	}
	if out.BestScore != 10 || out.KnownCount != 0 {
		t.Errorf("out = %+v", out)
	}

	bad := []SaveProgressInput{
		{ID: id, BestScore: 101},
		{ID: id, BestScore: -1},
		{ID: id, KnownFlashcards: []int{3}},
	}
	for _, in := range bad {
		if _, err := SaveProgress(st, in); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("%+v: expected ErrInvalidRequest, got %v", in, err)
		}
	}
	if _, err := SaveProgress(st, SaveProgressInput{ID: "missing"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
