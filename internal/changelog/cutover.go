package changelog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateFormat is the layout of release dates in version section titles.
const DateFormat = "2006-01-02"

// ErrEmptyVersion is returned when a cutover is requested without a version.
var ErrEmptyVersion = errors.New("version label is empty")

// VersionExistsError is returned when a cutover targets a version that already
// has a section in the document.
type VersionExistsError struct {
	Version string
}

func (e *VersionExistsError) Error() string {
	return fmt.Sprintf("version %q already has a changelog section", e.Version)
}

// VersionTitle formats the title of a version section: "[<label>] – <date>".
func VersionTitle(label string, date time.Time) string {
	return fmt.Sprintf("[%s] – %s", label, date.Format(DateFormat))
}

// Cutover moves the staged content into a new version section.
//
// The staging body is trimmed and, when non-empty, becomes the body of a new
// "[<label>] – <date>" section placed immediately after the staging section;
// the staging section itself keeps its heading and is emptied. The extracted
// body is returned verbatim for release notes.
//
// The work happens on a normalized copy. The receiver takes the result only on
// success; when nothing is staged or an error is returned it is left untouched
// and ok is false. Callers must not publish anything in that case.
func (d *Document) Cutover(label string, date time.Time) (extracted string, ok bool, err error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false, ErrEmptyVersion
	}

	next := d.clone()
	next.Normalize()
	idx := next.stagingIndex()

	extracted = strings.TrimSpace(next.Sections[idx].Body)
	if extracted == "" {
		return "", false, nil
	}

	if _, err := next.findVersion(label); err == nil {
		return "", false, &VersionExistsError{Version: label}
	}

	release := Section{Title: VersionTitle(label, date), Body: extracted}

	sections := make([]Section, 0, len(next.Sections)+1)
	sections = append(sections, next.Sections[:idx+1]...)
	sections = append(sections, release)
	sections = append(sections, next.Sections[idx+1:]...)
	sections[idx].Body = ""
	next.Sections = sections

	*d = next
	return extracted, true, nil
}

// clone copies the document so normalizing the copy leaves d as it was.
func (d *Document) clone() Document {
	return Document{
		Header:   d.Header,
		Sections: append([]Section(nil), d.Sections...),
	}
}
