package capsule

import (
	"regexp"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize trims, lowercases and collapses internal whitespace.
// Used for case-insensitive matching of subjects and note searches.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// SplitNotes turns a notes textarea into one note per line.
// Lines that are blank after trimming are dropped; kept lines are left as written
// apart from a trailing carriage return.
func SplitNotes(text string) []string {
	lines := strings.Split(text, "\n")
	notes := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		notes = append(notes, line)
	}
	return notes
}

// JoinNotes is the inverse of SplitNotes for editing.
func JoinNotes(notes []string) string {
	return strings.Join(notes, "\n")
}

// MatchNotes returns the notes containing query, compared after Normalize.
// An empty query matches every note.
func MatchNotes(notes []string, query string) []string {
	q := Normalize(query)
	matched := make([]string, 0, len(notes))
	for _, n := range notes {
		if q == "" || strings.Contains(Normalize(n), q) {
			matched = append(matched, n)
		}
	}
	return matched
}
