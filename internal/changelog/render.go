package changelog

import (
	"fmt"
	"io"
	"strings"
)

// Normalize parses text and renders it in canonical form. It is idempotent:
// Normalize(Normalize(x)) == Normalize(x) for every input.
func Normalize(text string) string {
	doc := Parse(text)
	doc.Normalize()
	return doc.String()
}

// Normalize brings the document into canonical shape in place:
//   - a "# " title header exists (the default header is prepended otherwise)
//   - exactly one staging section exists; a missing one is created first and
//     duplicates are merged into the first occurrence
//   - section bodies carry no leading or trailing blank lines
func (d *Document) Normalize() {
	d.Header = normalizeHeader(d.Header)

	for i := range d.Sections {
		d.Sections[i].Title = strings.TrimSpace(d.Sections[i].Title)
		d.Sections[i].Body = trimBlankLines(d.Sections[i].Body)
	}

	d.ensureStaging()
}

// String renders the document. Sections are separated by one blank line, each
// non-empty body ends with a single newline and the output ends with a newline.
func (d *Document) String() string {
	var b strings.Builder
	_ = d.Render(&b)
	return b.String()
}

// Render writes the document to w.
func (d *Document) Render(w io.Writer) error {
	header := strings.TrimSpace(d.Header)
	first := true

	if header != "" {
		if _, err := io.WriteString(w, header+"\n"); err != nil {
			return fmt.Errorf("rendering header: %w", err)
		}
		first = false
	}

	for _, s := range d.Sections {
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		first = false

		if err := renderSection(s, w); err != nil {
			return fmt.Errorf("rendering section %s: %w", s.Title, err)
		}
	}

	return nil
}

// renderSection writes a single "## " heading and its trimmed body.
func renderSection(s Section, w io.Writer) error {
	if _, err := io.WriteString(w, sectionPrefix+strings.TrimSpace(s.Title)+"\n"); err != nil {
		return err
	}

	body := trimBlankLines(s.Body)
	if body == "" {
		return nil
	}
	_, err := io.WriteString(w, body+"\n")
	return err
}

// String renders the staging body back to text, preserving every line.
func (sb StagingBody) String() string {
	lines := make([]string, 0, len(sb.Preamble)+len(sb.Blocks)*4)
	lines = append(lines, sb.Preamble...)
	for _, b := range sb.Blocks {
		lines = append(lines, b.Heading)
		lines = append(lines, b.Lines...)
	}
	return strings.Join(lines, "\n")
}

// normalizeHeader trims the header and prepends the default title when the
// header has no "# " title line.
func normalizeHeader(header string) string {
	header = strings.TrimSpace(header)
	if hasTitleLine(header) {
		return header
	}
	if header == "" {
		return DefaultHeader()
	}
	return DefaultHeader() + "\n\n" + header
}

func hasTitleLine(header string) bool {
	for _, line := range splitLines(header) {
		if strings.HasPrefix(line, titlePrefix) {
			return true
		}
	}
	return false
}

// ensureStaging guarantees exactly one staging section. Later duplicates are
// merged into the first one block by block, so category names stay unique.
func (d *Document) ensureStaging() {
	first := -1
	kept := d.Sections[:0]
	var duplicates []string

	for _, s := range d.Sections {
		if !s.IsStaging() {
			kept = append(kept, s)
			continue
		}
		if first < 0 {
			first = len(kept)
			kept = append(kept, s)
			continue
		}
		if s.Body != "" {
			duplicates = append(duplicates, s.Body)
		}
	}
	d.Sections = kept

	if first < 0 {
		d.Sections = append([]Section{{Title: StagingTitle}}, d.Sections...)
		return
	}
	if len(duplicates) == 0 {
		return
	}

	sb := ParseStagingBody(d.Sections[first].Body)
	for _, body := range duplicates {
		sb.merge(ParseStagingBody(body))
	}
	d.Sections[first].Body = trimBlankLines(sb.String())
}

// merge appends the content of other. Loose lines join the preamble and
// blocks join the block of the same name, ignoring case, or are appended.
func (sb *StagingBody) merge(other StagingBody) {
	if loose := trimBlank(other.Preamble); len(loose) > 0 {
		preamble := trimBlank(sb.Preamble)
		if len(preamble) > 0 {
			preamble = append(preamble, "")
		}
		preamble = append(preamble, loose...)
		if len(sb.Blocks) > 0 {
			preamble = append(preamble, "")
		}
		sb.Preamble = preamble
	}

	for _, b := range other.Blocks {
		lines := trimBlank(b.Lines)
		i := sb.Find(b.Name())
		if i < 0 {
			if sb.hasContent() {
				sb.ensureTrailingBlank()
			}
			sb.Blocks = append(sb.Blocks, Block{Heading: b.Heading, Lines: lines})
			continue
		}

		merged := append(trimBlank(sb.Blocks[i].Lines), lines...)
		if i < len(sb.Blocks)-1 {
			merged = append(merged, "")
		}
		sb.Blocks[i].Lines = merged
	}
}

// trimBlank returns a copy of lines without leading and trailing blank lines.
func trimBlank(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return append([]string(nil), lines[start:end]...)
}

// stagingIndex returns the index of the staging section or -1.
func (d *Document) stagingIndex() int {
	for i := range d.Sections {
		if d.Sections[i].IsStaging() {
			return i
		}
	}
	return -1
}

// trimBlankLines removes leading and trailing whitespace-only lines while
// keeping the indentation of the first and last non-blank lines.
func trimBlankLines(text string) string {
	lines := splitLines(text)
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if start == end {
		return ""
	}
	return strings.Join(lines[start:end], "\n")
}
