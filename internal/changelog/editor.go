package changelog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCategory is returned when a category name cannot be written as a
// "### " block heading.
var ErrInvalidCategory = errors.New("invalid category name")

// ValidateCategory checks that name can be used as a block heading.
func ValidateCategory(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: empty", ErrInvalidCategory)
	}
	if strings.ContainsAny(trimmed, "\r\n") || strings.HasPrefix(trimmed, "#") {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, name)
	}
	return nil
}

// Insert adds an entry under the named category of the staging section.
// The document is normalized first, so a missing staging section is created.
//
// The entry goes directly below the category heading (after any blank lines
// that follow it), ahead of older entries. A category that does not exist yet
// is appended after the existing blocks. Category matching ignores case.
//
// Returns false without modifying the staging body when an entry with the
// same reference is already staged.
func (d *Document) Insert(category string, e Entry) (bool, error) {
	if err := ValidateCategory(category); err != nil {
		return false, err
	}
	if strings.TrimSpace(e.Text) == "" {
		return false, fmt.Errorf("entry text is empty")
	}

	d.Normalize()
	staging := &d.Sections[d.stagingIndex()]

	sb := ParseStagingBody(staging.Body)
	if e.Reference > 0 && sb.HasReference(e.Reference) {
		return false, nil
	}

	sb.Insert(strings.TrimSpace(category), e.String())
	staging.Body = trimBlankLines(sb.String())
	return true, nil
}

// HasReference reports whether a staged entry already ends with "(#ref)".
func (sb StagingBody) HasReference(ref int) bool {
	suffix := strings.TrimSpace(referenceSuffix(ref))
	has := func(lines []string) bool {
		for _, line := range lines {
			if isEntryLine(line) && strings.HasSuffix(strings.TrimSpace(line), suffix) {
				return true
			}
		}
		return false
	}

	if has(sb.Preamble) {
		return true
	}
	for _, b := range sb.Blocks {
		if has(b.Lines) {
			return true
		}
	}
	return false
}

// Find returns the index of the block whose name matches category, ignoring
// case, or -1.
func (sb StagingBody) Find(category string) int {
	for i, b := range sb.Blocks {
		if strings.EqualFold(b.Name(), strings.TrimSpace(category)) {
			return i
		}
	}
	return -1
}

// Insert places line at the top of the category block, creating the block at
// the end of the body when it does not exist.
func (sb *StagingBody) Insert(category, line string) {
	if i := sb.Find(category); i >= 0 {
		b := &sb.Blocks[i]
		at := firstContentLine(b.Lines)
		b.Lines = append(b.Lines[:at], append([]string{line}, b.Lines[at:]...)...)
		return
	}

	if sb.hasContent() {
		sb.ensureTrailingBlank()
	}
	sb.Blocks = append(sb.Blocks, Block{
		Heading: blockPrefix + category,
		Lines:   []string{line},
	})
}

// firstContentLine skips leading blank lines. A block holding only blank lines
// receives its first entry right below the heading.
func firstContentLine(lines []string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			return i
		}
	}
	return 0
}

func (sb StagingBody) hasContent() bool {
	return strings.TrimSpace(sb.String()) != ""
}

// ensureTrailingBlank makes the body end with an empty line so an appended
// block is separated from the previous content.
func (sb *StagingBody) ensureTrailingBlank() {
	trim := func(lines []string) []string {
		for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
			lines = lines[:len(lines)-1]
		}
		return append(lines, "")
	}

	if n := len(sb.Blocks); n > 0 {
		sb.Blocks[n-1].Lines = trim(sb.Blocks[n-1].Lines)
		return
	}
	sb.Preamble = trim(sb.Preamble)
}
