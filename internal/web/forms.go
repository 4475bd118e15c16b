package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/ops"
)

// Blank rows appended to the author form so new cards and questions can be typed in.
const (
	blankCardRows     = 2
	blankQuestionRows = 1
	minCardRows       = 3
	minQuestionRows   = 2
)

var choiceFields = [capsule.ChoiceCount]string{"q_choice_a", "q_choice_b", "q_choice_c", "q_choice_d"}

var choiceLetters = [capsule.ChoiceCount]string{"A", "B", "C", "D"}

// AuthorForm is the author form's field state.
type AuthorForm struct {
	ID          string
	Title       string
	Subject     string
	Level       capsule.Level
	Description string
	NotesText   string
	Cards       []capsule.Flashcard
	Questions   []QuestionRow
}

// QuestionRow is one editable quiz question.
type QuestionRow struct {
	Question    string
	Choices     [capsule.ChoiceCount]ChoiceField
	Answer      int
	Explanation string
}

// ChoiceField is one choice input of a question row.
type ChoiceField struct {
	Name   string
	Letter string
	Index  int
	Value  string
}

func newQuestionRow(q capsule.Question) QuestionRow {
	row := QuestionRow{Question: q.Question, Answer: q.Answer, Explanation: q.Explanation}
	for i := range row.Choices {
		row.Choices[i] = ChoiceField{Name: choiceFields[i], Letter: choiceLetters[i], Index: i}
		if i < len(q.Choices) {
			row.Choices[i].Value = q.Choices[i]
		}
	}
	return row
}

// formFromRecord fills the author form from a stored record or draft.
func formFromRecord(id string, rec *capsule.Record) AuthorForm {
	form := AuthorForm{ID: id, Level: capsule.LevelBeginner}
	if rec != nil {
		form.Title = rec.Meta.Title
		form.Subject = rec.Meta.Subject
		if rec.Meta.Level != "" {
			form.Level = rec.Meta.Level
		}
		form.Description = rec.Meta.Description
		form.NotesText = capsule.JoinNotes(rec.Notes)
		form.Cards = append(form.Cards, rec.Flashcards...)
		for _, q := range rec.Quiz {
			form.Questions = append(form.Questions, newQuestionRow(q))
		}
	}
	return form.padded()
}

// formFromInput re-renders submitted fields after a failed save.
func formFromInput(input ops.AuthorInput) AuthorForm {
	form := AuthorForm{
		ID:          input.ID,
		Title:       input.Title,
		Subject:     input.Subject,
		Level:       input.Level,
		Description: input.Description,
		NotesText:   input.NotesText,
		Cards:       input.Flashcards,
	}
	if form.Level == "" {
		form.Level = capsule.LevelBeginner
	}
	for _, q := range input.Quiz {
		form.Questions = append(form.Questions, newQuestionRow(q))
	}
	return form.padded()
}

func (f AuthorForm) padded() AuthorForm {
	cards := max(len(f.Cards)+blankCardRows, minCardRows)
	for len(f.Cards) < cards {
		f.Cards = append(f.Cards, capsule.Flashcard{})
	}
	questions := max(len(f.Questions)+blankQuestionRows, minQuestionRows)
	for len(f.Questions) < questions {
		f.Questions = append(f.Questions, newQuestionRow(capsule.Question{}))
	}
	return f
}

// parseAuthorForm reads the author form. Card and question fields repeat once
// per row and are matched up by position.
func parseAuthorForm(r *http.Request) (ops.AuthorInput, error) {
	if err := r.ParseForm(); err != nil {
		return ops.AuthorInput{}, err
	}
	form := r.PostForm

	input := ops.AuthorInput{
		Title:       form.Get("title"),
		Subject:     form.Get("subject"),
		Level:       capsule.Level(form.Get("level")),
		Description: strings.TrimSpace(form.Get("description")),
		NotesText:   form.Get("notes"),
	}

	fronts, backs := form["card_front"], form["card_back"]
	for i := range max(len(fronts), len(backs)) {
		input.Flashcards = append(input.Flashcards, capsule.Flashcard{
			Front: strings.TrimSpace(at(fronts, i)),
			Back:  strings.TrimSpace(at(backs, i)),
		})
	}

	texts := form["q_text"]
	answers := form["q_answer"]
	explanations := form["q_explanation"]
	for i := range texts {
		q := capsule.Question{
			Question:    strings.TrimSpace(texts[i]),
			Choices:     make([]string, capsule.ChoiceCount),
			Answer:      parseAnswer(at(answers, i)),
			Explanation: strings.TrimSpace(at(explanations, i)),
		}
		for c, name := range choiceFields {
			q.Choices[c] = strings.TrimSpace(at(form[name], i))
		}
		input.Quiz = append(input.Quiz, q)
	}

	return input, nil
}

func parseAnswer(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return capsule.Unanswered
	}
	return n
}

func at(vals []string, i int) string {
	if i < len(vals) {
		return vals[i]
	}
	return ""
}
