package changelog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ariel-frischer/changekeeper/internal/commitmsg"
)

// StagingTitle is the title given to a staging section created from scratch.
const StagingTitle = "[Unreleased]"

const (
	sectionPrefix = "## "
	blockPrefix   = "### "
	titlePrefix   = "# "
	fenceMarker   = "```"
)

// stagingPattern matches "Unreleased" and "[Unreleased]" in any case.
var stagingPattern = regexp.MustCompile(`(?i)^\[?\s*unreleased\s*\]?$`)

// Document is a parsed changelog: free-text header followed by ordered sections.
type Document struct {
	Header   string
	Sections []Section
}

// Section is a "## <title>" heading and the raw text below it up to the next
// section heading. Bodies of the staging section may contain "### " blocks.
type Section struct {
	Title string
	Body  string
}

// IsStaging returns true if this is the staging ("Unreleased") section.
func (s Section) IsStaging() bool {
	return IsStagingTitle(s.Title)
}

// IsStagingTitle reports whether a section title marks the staging section.
func IsStagingTitle(title string) bool {
	return stagingPattern.MatchString(strings.TrimSpace(title))
}

// Entry is a single changelog line.
type Entry struct {
	Text      string
	Reference int
	Scope     string
}

// NewEntry builds an entry from a change title. A leading "type(scope)!: "
// prefix is removed from the display text; other titles are used verbatim.
// Line breaks and runs of whitespace in the title and scope collapse to single
// spaces, so an entry always renders as one line.
func NewEntry(title string, reference int, scope string) Entry {
	return Entry{
		Text:      singleLine(commitmsg.DisplayText(singleLine(title))),
		Reference: reference,
		Scope:     cleanScope(scope),
	}
}

// String renders the entry as "- [scope] text (#ref)". The scope bracket is
// omitted without a scope and the reference suffix without a positive reference.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString("- ")
	if scope := cleanScope(e.Scope); scope != "" {
		b.WriteString("[" + scope + "] ")
	}
	b.WriteString(singleLine(e.Text))
	if e.Reference > 0 {
		b.WriteString(referenceSuffix(e.Reference))
	}
	return b.String()
}

// singleLine collapses every whitespace run, line breaks included, to one space.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanScope drops the brackets that would end the "[scope]" prefix early.
func cleanScope(scope string) string {
	return singleLine(strings.NewReplacer("[", " ", "]", " ").Replace(scope))
}

func referenceSuffix(ref int) string {
	return fmt.Sprintf(" (#%d)", ref)
}

// Block is a "### <name>" category block inside the staging section.
type Block struct {
	Heading string
	Lines   []string
}

// Name returns the category name of the block as written in its heading.
func (b Block) Name() string {
	return strings.TrimSpace(strings.TrimPrefix(b.Heading, strings.TrimSpace(blockPrefix)))
}

// Entries returns the list-item lines of the block.
func (b Block) Entries() []string {
	var entries []string
	for _, line := range b.Lines {
		if isEntryLine(line) {
			entries = append(entries, line)
		}
	}
	return entries
}

// StagingBody is the staging section body split into category blocks.
// Preamble holds any lines before the first block heading.
type StagingBody struct {
	Preamble []string
	Blocks   []Block
}

// Count returns the number of entry lines across all blocks and the preamble.
func (sb StagingBody) Count() int {
	count := 0
	for _, line := range sb.Preamble {
		if isEntryLine(line) {
			count++
		}
	}
	for _, b := range sb.Blocks {
		count += len(b.Entries())
	}
	return count
}

func isEntryLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ")
}
