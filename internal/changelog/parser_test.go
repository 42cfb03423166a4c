package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		text         string
		wantHeader   string
		wantSections []Section
	}{
		"empty input": {
			text: "",
		},
		"header only": {
			text:       "# Changelog\n\nSome intro.\n",
			wantHeader: "# Changelog\n\nSome intro.\n",
		},
		"bracketed staging and version": {
			text:       "# Changelog\n\n## [Unreleased]\n### Fixes\n- A (#1)\n\n## [0.1.0] – 2024-01-01\n- B\n",
			wantHeader: "# Changelog\n",
			wantSections: []Section{
				{Title: "[Unreleased]", Body: "### Fixes\n- A (#1)\n"},
				{Title: "[0.1.0] – 2024-01-01", Body: "- B\n"},
			},
		},
		"heading inside fenced code is not a section": {
			text: "## Unreleased\n```md\n## not a section\n```\n## [1.0.0]\n",
			wantSections: []Section{
				{Title: "Unreleased", Body: "```md\n## not a section\n```"},
				{Title: "[1.0.0]", Body: ""},
			},
		},
		"unclosed fence protects nothing": {
			text: "## A\n```\n## B\nbody",
			wantSections: []Section{
				{Title: "A", Body: "```"},
				{Title: "B", Body: "body"},
			},
		},
		"crlf line endings": {
			text:       "# T\r\n## Unreleased\r\n- x\r\n",
			wantHeader: "# T",
			wantSections: []Section{
				{Title: "Unreleased", Body: "- x\n"},
			},
		},
		"category marker is not a section": {
			text: "## Unreleased\n### Features\n- y\n",
			wantSections: []Section{
				{Title: "Unreleased", Body: "### Features\n- y\n"},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			doc := Parse(tt.text)
			assert.Equal(t, tt.wantHeader, doc.Header)
			assert.Equal(t, tt.wantSections, doc.Sections)
		})
	}
}

func TestIsStagingTitle(t *testing.T) {
	tests := map[string]struct {
		title string
		want  bool
	}{
		"bracketed":         {title: "[Unreleased]", want: true},
		"unbracketed":       {title: "Unreleased", want: true},
		"lower case":        {title: "unreleased", want: true},
		"upper case":        {title: "[UNRELEASED]", want: true},
		"inner whitespace":  {title: "[ Unreleased ]", want: true},
		"version":           {title: "[0.1.0] – 2024-01-01", want: false},
		"unreleased suffix": {title: "Unreleased changes", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStagingTitle(tt.title))
		})
	}
}

func TestParseStagingBody(t *testing.T) {
	body := "Intro line\n\n### Features\n- F1 (#3)\n\n### fixes\n\n- X (#2)\n- Y (#1)"

	sb := ParseStagingBody(body)
	require.Len(t, sb.Blocks, 2)

	assert.Equal(t, []string{"Intro line", ""}, sb.Preamble)
	assert.Equal(t, "Features", sb.Blocks[0].Name())
	assert.Equal(t, "fixes", sb.Blocks[1].Name())
	assert.Equal(t, []string{"- X (#2)", "- Y (#1)"}, sb.Blocks[1].Entries())
	assert.Equal(t, 3, sb.Count())
	assert.Equal(t, body, sb.String(), "rendering must preserve every line")
}

func TestParseStagingBody_Empty(t *testing.T) {
	sb := ParseStagingBody("  \n")
	assert.Empty(t, sb.Blocks)
	assert.Empty(t, sb.Preamble)
	assert.Equal(t, 0, sb.Count())
}
