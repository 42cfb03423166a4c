// Package commitmsg parses the conventional commit grammar used in change titles:
//
//	type(scope)!: subject
//
// The scope and the breaking marker are optional. Titles that do not follow the
// grammar are not an error; callers fall back to the raw title.
package commitmsg

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// headerPattern captures type, optional scope, optional bang and subject.
var headerPattern = regexp.MustCompile(`^([A-Za-z][\w-]*)(?:\(([^()]*)\))?(!)?:\s*(.*)$`)

// Header is a parsed conventional commit title.
type Header struct {
	Type     string
	Scope    string
	Breaking bool
	Subject  string
}

// Parse parses title against the commit grammar.
// Returns false when the title does not match or the subject is empty.
func Parse(title string) (Header, bool) {
	m := headerPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return Header{}, false
	}

	subject := strings.TrimSpace(m[4])
	if subject == "" {
		return Header{}, false
	}

	return Header{
		Type:     m[1],
		Scope:    strings.TrimSpace(m[2]),
		Breaking: m[3] == "!",
		Subject:  subject,
	}, true
}

// DisplayText returns the human-readable part of a title.
// A title following the grammar yields its subject with the first letter
// upper-cased; any other title is returned trimmed but otherwise verbatim.
func DisplayText(title string) string {
	h, ok := Parse(title)
	if !ok {
		return strings.TrimSpace(title)
	}
	return capitalizeFirst(h.Subject)
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
