package capsule

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata per type.
var validate = validator.New(validator.WithRequiredStructEnabled())

// LintIssue describes one authoring problem in a record.
type LintIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// LintResult contains the results of linting a record.
type LintResult struct {
	Valid  bool        `json:"valid"`
	Issues []LintIssue `json:"issues,omitempty"`
}

// Lint checks a record against the authoring rules: a title, a known level
// (or none), flashcards with a front, and quiz questions with text, exactly
// four non-empty choices and an answer index in range.
//
// Lint is for the author path only. Direct saves and imports do not call it.
func Lint(r *Record) *LintResult {
	result := &LintResult{Valid: true}
	if r == nil {
		result.Valid = false
		result.Issues = []LintIssue{{Field: "capsule", Message: "capsule is required"}}
		return result
	}

	err := validate.Struct(r)
	if err == nil {
		return result
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		result.Valid = false
		result.Issues = []LintIssue{{Field: "capsule", Message: err.Error()}}
		return result
	}

	result.Valid = false
	for _, fe := range verrs {
		result.Issues = append(result.Issues, LintIssue{
			Field:   fieldPath(fe.Namespace()),
			Message: issueMessage(fe),
		})
	}
	return result
}

// fieldPath converts "Record.Quiz[0].Choices" to "quiz[0].choices".
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Record.")
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToLower(p[:1]) + p[1:]
	}
	return strings.Join(parts, ".")
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "len":
		return fmt.Sprintf("must have exactly %s entries", fe.Param())
	case "min", "max":
		return fmt.Sprintf("must be between 0 and %d", ChoiceCount-1)
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}

// Summary joins issues into a single line for error messages.
func (l *LintResult) Summary() string {
	msgs := make([]string, 0, len(l.Issues))
	for _, is := range l.Issues {
		msgs = append(msgs, is.Field+" "+is.Message)
	}
	return strings.Join(msgs, "; ")
}
