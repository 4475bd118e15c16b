package web

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/config"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/logger"
	"github.com/hpungsan/pocket/internal/ops"
	"github.com/hpungsan/pocket/internal/store"
)

var levels = []capsule.Level{capsule.LevelBeginner, capsule.LevelIntermediate, capsule.LevelAdvanced}

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	st       *store.Store
	cfg      *config.Config
	log      *logger.Logger
	renderer *Renderer
}

// HandleLibrary handles GET /capsules: the capsule library.
func (h *Handlers) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := ops.LibraryInput{
		Subject: q.Get("subject"),
		Level:   capsule.Level(q.Get("level")),
		Limit:   parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:  parseIntParam(r, "offset", 0),
	}

	result, err := ops.Library(h.st, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, "library", LibraryPageData{
		PageData:   h.renderer.page("Library", "library"),
		Items:      result.Items,
		Pagination: result.Pagination,
		Subjects:   ops.Subjects(h.st),
		Subject:    input.Subject,
		Level:      string(input.Level),
		Levels:     levels,
	})
}

// HandleNew handles GET /capsules/new: an empty author form, or the saved draft.
func (h *Handlers) HandleNew(w http.ResponseWriter, r *http.Request) {
	draft, hasDraft := h.st.LoadDraft()

	data := AuthorPageData{
		PageData: h.renderer.page("New capsule", "new"),
		Form:     formFromRecord("", draft),
		Levels:   levels,
		HasDraft: hasDraft,
	}
	if r.URL.Query().Get("draft") == "saved" {
		data.Notice = "Draft saved."
	}
	h.renderer.renderPage(w, "author", data)
}

// HandleEdit handles GET /capsules/{id}/edit: the author form for a stored capsule.
func (h *Handlers) HandleEdit(w http.ResponseWriter, r *http.Request) {
	fetched, err := ops.Fetch(h.st, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "author", AuthorPageData{
		PageData: h.renderer.page("Edit "+fetched.Capsule.Meta.Title, "library"),
		Form:     formFromRecord(fetched.ID, fetched.Capsule),
		Levels:   levels,
	})
}

// HandleCreate handles POST /capsules: save a new capsule from the author form.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	input, err := parseAuthorForm(r)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	h.author(w, r, input)
}

// HandleUpdate handles POST /capsules/{id}: save edits to a stored capsule.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	input, err := parseAuthorForm(r)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	input.ID = r.PathValue("id")
	// The draft belongs to the new-capsule form.
	input.KeepDraft = true
	h.author(w, r, input)
}

func (h *Handlers) author(w http.ResponseWriter, r *http.Request, input ops.AuthorInput) {
	result, err := ops.Author(h.st, input)
	if err != nil {
		if pErr, ok := err.(*errors.PocketError); ok && pErr.Code == errors.ErrInvalidRequest && !wantsJSON(r) {
			h.renderAuthorError(w, input, pErr)
			return
		}
		h.renderer.renderError(w, r, err)
		return
	}

	h.log.Info("capsule saved", "id", result.ID, "created", result.Created)

	if wantsJSON(r) {
		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		renderJSON(w, status, result)
		return
	}
	http.Redirect(w, r, "/capsules/"+result.ID, http.StatusSeeOther)
}

// renderAuthorError shows the form again with the submitted fields and the problem.
func (h *Handlers) renderAuthorError(w http.ResponseWriter, input ops.AuthorInput, pErr *errors.PocketError) {
	title, nav := "New capsule", "new"
	if input.ID != "" {
		title, nav = "Edit capsule", "library"
	}
	data := AuthorPageData{
		PageData: h.renderer.page(title, nav),
		Form:     formFromInput(input),
		Levels:   levels,
		Message:  pErr.Message,
	}
	if issues, ok := pErr.Details["issues"].([]capsule.LintIssue); ok {
		data.Issues = issues
	}
	h.renderer.renderPageStatus(w, pErr.Status, "author", data)
}

// HandleDraft handles POST /capsules/draft: keep the new-capsule form without validating it.
func (h *Handlers) HandleDraft(w http.ResponseWriter, r *http.Request) {
	input, err := parseAuthorForm(r)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	if err := ops.SaveDraft(h.st, input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"saved": true})
		return
	}
	http.Redirect(w, r, "/capsules/new?draft=saved", http.StatusSeeOther)
}

// HandleLearn handles GET /capsules/{id}: notes, flashcards and quiz.
func (h *Handlers) HandleLearn(w http.ResponseWriter, r *http.Request) {
	fetched, err := ops.Fetch(h.st, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, fetched)
		return
	}

	h.renderer.renderPage(w, "learn", h.learnData(fetched, r.URL.Query().Get("q"), nil, nil))
}

// learnData builds the learn view. answers and grade are set after a quiz submission.
func (h *Handlers) learnData(fetched *ops.FetchOutput, query string, answers []int, grade *ops.GradeOutput) LearnPageData {
	rec := fetched.Capsule
	progress := fetched.Progress
	if grade != nil {
		progress.BestScore = grade.BestScore
	}

	data := LearnPageData{
		PageData:   h.renderer.page(rec.ToIndexEntry(fetched.ID).Title, "library"),
		ID:         fetched.ID,
		Meta:       rec.Meta,
		Level:      rec.ToIndexEntry(fetched.ID).DisplayLevel(),
		Query:      query,
		NoteTotal:  len(rec.Notes),
		KnownCount: progress.KnownFlashcards.CountBelow(len(rec.Flashcards)),
		BestScore:  progress.BestScore,
		Grade:      grade,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}

	for _, note := range capsule.MatchNotes(rec.Notes, query) {
		data.Notes = append(data.Notes, renderNote(note))
	}

	for i, card := range rec.Flashcards {
		data.Cards = append(data.Cards, CardView{
			Index: i,
			Front: card.Front,
			Back:  card.Back,
			Known: progress.KnownFlashcards.Has(i),
		})
	}

	for i, q := range rec.Quiz {
		view := QuestionView{Index: i, Question: q.Question}
		chosen := capsule.Unanswered
		if i < len(answers) {
			chosen = answers[i]
		}
		if grade != nil && i < len(grade.Questions) {
			view.Graded = true
			view.Correct = grade.Questions[i].Correct
			view.Explanation = grade.Questions[i].Explanation
		}
		for c, text := range q.Choices {
			view.Choices = append(view.Choices, ChoiceView{
				Index:   c,
				Letter:  choiceLetter(c),
				Text:    text,
				Checked: c == chosen,
				IsRight: view.Graded && c == q.Answer,
			})
		}
		data.Questions = append(data.Questions, view)
	}

	return data
}

func choiceLetter(i int) string {
	if i >= 0 && i < len(choiceLetters) {
		return choiceLetters[i]
	}
	return strconv.Itoa(i + 1)
}

// HandleKnown handles POST /capsules/{id}/known/{index}. Without a "known"
// field the flag toggles; with one it is set.
func (h *Handlers) HandleKnown(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("flashcard index must be an integer"))
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.KnownInput{ID: r.PathValue("id"), Index: index}
	var result *ops.KnownOutput
	if v := r.PostForm.Get("known"); v != "" {
		input.Known = v == "true" || v == "1"
		result, err = ops.SetKnown(h.st, input)
	} else {
		result, err = ops.ToggleKnown(h.st, input)
	}
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/capsules/"+result.ID+"#flashcards", http.StatusSeeOther)
}

// QuizRequest is the JSON body accepted by POST /capsules/{id}/quiz.
type QuizRequest struct {
	Answers []int `json:"answers"`
}

// HandleQuiz handles POST /capsules/{id}/quiz: grade a quiz attempt.
// Form submissions carry one "answer_<n>" radio value per question.
func (h *Handlers) HandleQuiz(w http.ResponseWriter, r *http.Request) {
	fetched, err := ops.Fetch(h.st, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	var answers []int
	if isJSONBody(r) {
		var body QuizRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&body); err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid JSON body"))
			return
		}
		answers = body.Answers
	} else {
		if err := r.ParseForm(); err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
			return
		}
		answers = make([]int, len(fetched.Capsule.Quiz))
		for i := range answers {
			answers[i] = parseAnswer(r.PostForm.Get(fmt.Sprintf("answer_%d", i)))
		}
	}

	result, err := ops.GradeQuiz(h.st, ops.GradeInput{ID: fetched.ID, Answers: answers})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.renderer.renderPage(w, "learn", h.learnData(fetched, "", answers, result))
}

// HandleExport handles GET /capsules/{id}/export: download the export JSON.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	fetched, err := ops.Fetch(h.st, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	payload, err := store.ExportCapsuleJSON(fetched.Capsule)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	filename := ops.SanitizeForFilename(fetched.Capsule.Meta.Title) + ops.FileExt
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, payload)
}

// HandleDelete handles DELETE /capsules/{id} and POST /capsules/{id}/delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Delete(h.st, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if result.Deleted {
		h.log.Info("capsule deleted", "id", result.ID)
	}

	if wantsJSON(r) || r.Method == http.MethodDelete {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/capsules", http.StatusSeeOther)
}

// HandleImport handles POST /capsules/import. The payload is the request body
// when it is JSON, otherwise an uploaded "file" or a pasted "payload" field.
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	limit := ops.MaxImportBytes(h.cfg)

	data, err := h.importPayload(w, r, limit)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.ImportData(h.st, h.cfg, data)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.log.Info("capsule imported", "id", result.ID)

	if wantsJSON(r) {
		renderJSON(w, http.StatusCreated, result)
		return
	}
	http.Redirect(w, r, "/capsules/"+result.ID, http.StatusSeeOther)
}

// formOverhead is the room allowed on top of the import limit for multipart
// boundaries, part headers and other form fields.
const formOverhead = 64 << 10

func (h *Handlers) importPayload(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if isJSONBody(r) {
		return ops.ReadLimited(r.Body, limit)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	// A pasted payload is percent-encoded, so it may take up to three bytes per byte.
	bodyLimit := limit + formOverhead
	if mediaType != "multipart/form-data" {
		bodyLimit = 3*limit + formOverhead
	}
	if r.ContentLength > bodyLimit {
		return nil, errors.NewPayloadTooLarge(limit, r.ContentLength)
	}
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(limit); err != nil {
			return nil, formError(err, limit, "invalid upload")
		}
		if file, _, err := r.FormFile("file"); err == nil {
			defer file.Close()
			return ops.ReadLimited(file, limit)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, formError(err, limit, "invalid form data")
	}

	payload := r.PostFormValue("payload")
	if strings.TrimSpace(payload) == "" {
		return nil, errors.NewInvalidRequest("paste export JSON or choose a file to import")
	}
	return []byte(payload), nil
}

// formError maps a form parsing failure to a 413 when the body hit its cap.
func formError(err error, limit int64, msg string) error {
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return errors.NewPayloadTooLarge(limit, maxErr.Limit+1)
	}
	return errors.NewInvalidRequest(msg)
}

func isJSONBody(r *http.Request) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mediaType == "application/json"
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
