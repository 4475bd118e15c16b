package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/pocket/internal/capsule"
	"github.com/hpungsan/pocket/internal/errors"
	"github.com/hpungsan/pocket/internal/logger"
	"github.com/hpungsan/pocket/internal/ops"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "library", "new"
}

// LibraryPageData is the template data for the library page.
type LibraryPageData struct {
	PageData
	Items      []capsule.IndexEntry
	Pagination ops.Pagination
	Subjects   []string
	Subject    string
	Level      string
	Levels     []capsule.Level
}

// AuthorPageData is the template data for the author form (new and edit).
type AuthorPageData struct {
	PageData
	Form     AuthorForm
	Levels   []capsule.Level
	HasDraft bool
	Notice   string
	Message  string
	Issues   []capsule.LintIssue
}

// LearnPageData is the template data for the learn view.
type LearnPageData struct {
	PageData
	ID         string
	Meta       capsule.Meta
	Level      string
	Query      string
	Notes      []template.HTML
	NoteTotal  int
	Cards      []CardView
	KnownCount int
	BestScore  int
	Questions  []QuestionView
	Grade      *ops.GradeOutput
	CreatedAt  string
	UpdatedAt  string
}

// CardView is one flashcard on the learn view.
type CardView struct {
	Index int
	Front string
	Back  string
	Known bool
}

// QuestionView is one quiz question on the learn view, with grading when present.
type QuestionView struct {
	Index       int
	Question    string
	Choices     []ChoiceView
	Graded      bool
	Correct     bool
	Explanation string
}

// ChoiceView is one choice of a quiz question.
type ChoiceView struct {
	Index   int
	Letter  string
	Text    string
	Checked bool
	IsRight bool
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	log       *logger.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, log *logger.Logger) (*Renderer, error) {
	if log == nil {
		log = logger.Nop()
	}
	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"formatTime": formatTime,
	}

	layoutTmpl, err := template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := map[string]string{
		"library": "library.html",
		"author":  "author.html",
		"learn":   "learn.html",
		"error":   "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t, err := layoutTmpl.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		log:       log,
	}, nil
}

// page fills the common page fields.
func (r *Renderer) page(title, nav string) PageData {
	return PageData{Title: title, Version: r.version, Nav: nav}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.log.Error("template not found", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.log.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var pErr *errors.PocketError
	if !stderrors.As(err, &pErr) {
		pErr = errors.NewInternal(err)
	}
	if pErr.Code == errors.ErrInternal || pErr.Code == errors.ErrWriteFailed {
		r.log.Error("request failed", "path", req.URL.Path, "code", pErr.Code, "error", err)
	}

	status := pErr.Status
	message := pErr.Message

	if wantsJSON(req) {
		errorObj := map[string]any{
			"code":    string(pErr.Code),
			"message": message,
			"status":  status,
		}
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		renderJSON(w, status, map[string]any{"error": errorObj})
		return
	}

	r.renderPageStatus(w, status, "error", ErrorPageData{
		PageData:   r.page(fmt.Sprintf("Error %d", status), ""),
		StatusCode: status,
		Message:    message,
	})
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderNote converts one note line to HTML. goldmark omits raw HTML unless told otherwise.
func renderNote(note string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(note), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(note))
	}
	return template.HTML(buf.String())
}

// formatTime formats a stored ISO timestamp as "2006-01-02 15:04" UTC.
// Unparseable values are shown as stored.
func formatTime(ts string) string {
	t, err := capsule.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format("2006-01-02 15:04")
}
