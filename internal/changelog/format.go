package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// CategoryStyle defines the color and icon for a category block.
type CategoryStyle struct {
	Color *color.Color
	Icon  string
}

// categoryStyles maps category keywords to their terminal styling. A block
// uses the first style whose keyword appears in its lower-cased name.
var categoryStyles = []struct {
	keyword string
	style   CategoryStyle
}{
	{"break", CategoryStyle{Color: color.New(color.FgRed, color.Bold), Icon: "!"}},
	{"feat", CategoryStyle{Color: color.New(color.FgGreen), Icon: "✓"}},
	{"add", CategoryStyle{Color: color.New(color.FgGreen), Icon: "✓"}},
	{"fix", CategoryStyle{Color: color.New(color.FgYellow), Icon: "⚡"}},
	{"perf", CategoryStyle{Color: color.New(color.FgCyan), Icon: "»"}},
	{"doc", CategoryStyle{Color: color.New(color.FgBlue), Icon: "~"}},
	{"secur", CategoryStyle{Color: color.New(color.FgMagenta), Icon: "🔒"}},
	{"remov", CategoryStyle{Color: color.New(color.FgRed), Icon: "✗"}},
}

var defaultStyle = CategoryStyle{Color: color.New(color.FgWhite), Icon: "•"}

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatSection writes a section with its category blocks to w.
func FormatSection(s *Section, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	if err := writeSectionHeader(s, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if strings.TrimSpace(s.Body) == "" {
		_, err := fmt.Fprintln(w, "  (no entries)")
		return err
	}

	sb := ParseStagingBody(s.Body)

	for _, line := range sb.Preamble {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := writeEntry(line, defaultStyle, w, opts, width); err != nil {
			return err
		}
	}

	for _, b := range sb.Blocks {
		if err := writeBlock(b, w, opts, width); err != nil {
			return fmt.Errorf("formatting %s: %w", b.Name(), err)
		}
	}

	return nil
}

// FormatSummary writes one line per section: its title and entry count.
func FormatSummary(d *Document, w io.Writer, opts FormatOptions) error {
	for _, s := range d.Sections {
		count := ParseStagingBody(s.Body).Count()
		title := s.Title
		if !opts.Plain {
			title = color.New(color.Bold).Sprint(title)
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n", title, pluralize(count, "entry", "entries")); err != nil {
			return err
		}
	}
	return nil
}

// StyleFor returns the terminal style of a category.
func StyleFor(category string) CategoryStyle {
	name := strings.ToLower(category)
	for _, cs := range categoryStyles {
		if strings.Contains(name, cs.keyword) {
			return cs.style
		}
	}
	return defaultStyle
}

// writeSectionHeader writes the section title line.
func writeSectionHeader(s *Section, w io.Writer, opts FormatOptions) error {
	header := s.Title
	if s.IsStaging() {
		header = "Unreleased"
	} else if label, date, ok := ParseVersionTitle(s.Title); ok {
		header = "v" + label
		if date != "" {
			header = fmt.Sprintf("v%s (%s)", label, date)
		}
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

// writeBlock writes a category header and its entries.
func writeBlock(b Block, w io.Writer, opts FormatOptions, width int) error {
	style := StyleFor(b.Name())

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", b.Name()); err != nil {
			return err
		}
	} else {
		colored := style.Color.SprintFunc()
		if _, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.Icon), colored(b.Name())); err != nil {
			return err
		}
	}

	for _, line := range b.Lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := writeEntry(line, style, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// writeEntry writes a single changelog line with optional wrapping.
func writeEntry(line string, style CategoryStyle, w io.Writer, opts FormatOptions, width int) error {
	prefix := "  - "
	text := strings.TrimSpace(line)
	if isEntryLine(text) {
		text = strings.TrimSpace(text[2:])
	} else {
		prefix = "    "
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, text)
		return err
	}

	wrapped := wrapText(text, width-len(prefix), "    ")
	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped))
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		// Find the last space within maxWidth
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
