package changelog

import (
	"strings"
)

// Parse splits changelog text into a header and "## " sections.
// A line starting with "## " begins a new section unless it sits inside a
// closed fenced code block. Parsing never fails: text without sections is all
// header, and empty text is an empty document.
func Parse(text string) *Document {
	lines := splitLines(text)
	fenced := fencedLines(lines)

	doc := &Document{}
	var header []string
	var current *Section
	var body []string

	flush := func() {
		if current != nil {
			current.Body = strings.Join(body, "\n")
			doc.Sections = append(doc.Sections, *current)
		}
	}

	for i, line := range lines {
		if !fenced[i] && isSectionHeading(line) {
			flush()
			current = &Section{Title: strings.TrimSpace(line[len(sectionPrefix):])}
			body = nil
			continue
		}
		if current == nil {
			header = append(header, line)
		} else {
			body = append(body, line)
		}
	}
	flush()

	doc.Header = strings.Join(header, "\n")
	return doc
}

// ParseStagingBody splits a staging section body into "### " category blocks.
func ParseStagingBody(body string) StagingBody {
	var sb StagingBody
	if strings.TrimSpace(body) == "" {
		return sb
	}

	lines := splitLines(body)
	fenced := fencedLines(lines)
	var current *Block

	for i, line := range lines {
		if !fenced[i] && isBlockHeading(line) {
			if current != nil {
				sb.Blocks = append(sb.Blocks, *current)
			}
			current = &Block{Heading: line}
			continue
		}
		if current == nil {
			sb.Preamble = append(sb.Preamble, line)
		} else {
			current.Lines = append(current.Lines, line)
		}
	}
	if current != nil {
		sb.Blocks = append(sb.Blocks, *current)
	}

	return sb
}

// splitLines normalizes line endings and splits text into lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// fencedLines marks the lines enclosed by a pair of ``` fences, the fences
// included. An unclosed trailing fence protects nothing.
func fencedLines(lines []string) []bool {
	fenced := make([]bool, len(lines))
	open := -1
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), fenceMarker) {
			continue
		}
		if open < 0 {
			open = i
			continue
		}
		for j := open; j <= i; j++ {
			fenced[j] = true
		}
		open = -1
	}
	return fenced
}

func isSectionHeading(line string) bool {
	return strings.HasPrefix(line, sectionPrefix)
}

func isBlockHeading(line string) bool {
	return strings.HasPrefix(line, blockPrefix)
}
