package changelog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalDocument = `# Changelog

All notable changes to this project will be documented in this file.

## [Unreleased]
`

func TestNormalize(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
	}{
		"empty input becomes minimal document": {
			input: "",
			want:  minimalDocument,
		},
		"whitespace only": {
			input: "\n\n   \n",
			want:  minimalDocument,
		},
		"header without sections": {
			input: "# My Project Changelog\n\nNotes.\n",
			want:  "# My Project Changelog\n\nNotes.\n\n## [Unreleased]\n",
		},
		"text without title gets default header": {
			input: "Some notes\n",
			want: "# Changelog\n\nAll notable changes to this project will be documented in this file.\n\n" +
				"Some notes\n\n## [Unreleased]\n",
		},
		"staging inserted before versions": {
			input: "# Changelog\n\n## [0.1.0] – 2024-01-01\n- A\n",
			want:  "# Changelog\n\n## [Unreleased]\n\n## [0.1.0] – 2024-01-01\n- A\n",
		},
		"unbracketed staging kept as written": {
			input: "# Changelog\n## Unreleased\n\n\n- x\n\n\n## [1.0.0] - 2023-05-01\n\n- y\n\n",
			want:  "# Changelog\n\n## Unreleased\n- x\n\n## [1.0.0] - 2023-05-01\n- y\n",
		},
		"duplicate staging sections merged": {
			input: "# C\n## [Unreleased]\n- a\n## [1.0.0]\n- v\n## unreleased\n- b\n",
			want:  "# C\n\n## [Unreleased]\n- a\n\n- b\n\n## [1.0.0]\n- v\n",
		},
		"duplicate staging blocks merged by category": {
			input: "# C\n## Unreleased\n### Fixes\n- a (#1)\n## [Unreleased]\n### fixes\n- b (#2)\n",
			want:  "# C\n\n## Unreleased\n### Fixes\n- a (#1)\n- b (#2)\n",
		},
		"duplicate staging adds new categories after existing ones": {
			input: "# C\n## [Unreleased]\n### Fixes\n- a (#1)\n\n### Features\n- c (#3)\n" +
				"## [Unreleased]\n- loose\n### Docs\n- d (#4)\n### FIXES\n\n- b (#2)\n",
			want: "# C\n\n## [Unreleased]\n- loose\n\n### Fixes\n- a (#1)\n- b (#2)\n\n" +
				"### Features\n- c (#3)\n\n### Docs\n- d (#4)\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := map[string]string{
		"empty":                "",
		"no sections":          "just some text",
		"title only":           "# Changelog",
		"bracketed staging":    "# Changelog\n\n## [Unreleased]\n### Fixes\n- a (#1)\n",
		"unbracketed staging":  "## unreleased\n\n### Features\n\n- b (#2)\n\n\n",
		"versions only":        "# Changelog\n## [1.0.0] – 2024-01-01\n- c\n## [0.9.0] – 2023-12-01\n",
		"fenced code":          "# C\n## Unreleased\n```\n## inside\n```\n",
		"unclosed fence":       "```\n# C\n## Unreleased\n- x\n",
		"crlf":                 "# C\r\n\r\n## [Unreleased]\r\n- x\r\n",
		"duplicate staging":    "## Unreleased\n- a\n## [Unreleased]\n- b\n",
		"duplicate blocks":     "## Unreleased\n### Fixes\n- a (#1)\n## [Unreleased]\n### fixes\n- b (#2)\n",
		"trailing spaces":      "# C   \n\n## [Unreleased]   \n- x   \n   \n",
		"empty titled section": "## \n## Unreleased\n",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			once := Normalize(input)
			twice := Normalize(once)
			assert.Equal(t, once, twice)

			doc := Parse(once)
			staging := 0
			for _, s := range doc.Sections {
				if s.IsStaging() {
					staging++
				}
			}
			assert.Equal(t, 1, staging, "exactly one staging section")
			assert.True(t, strings.HasSuffix(once, "\n"))
			assert.False(t, strings.HasSuffix(once, "\n\n"))
		})
	}
}

func TestDocument_StringRoundTrip(t *testing.T) {
	text := "# Changelog\n\nIntro.\n\n## [Unreleased]\n### Fixes\n- a (#1)\n\n## [0.1.0] – 2024-01-01\n### Features\n- b (#2)\n"

	doc := Parse(text)
	doc.Normalize()
	assert.Equal(t, text, doc.String())
}

func TestDefaultHeader(t *testing.T) {
	header := DefaultHeader()
	require.NotEmpty(t, header)
	lines := strings.Split(header, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "# "))
	assert.Greater(t, len(lines), 1, "header needs an explanatory line")
}

func TestNormalize_DuplicateStagingKeepsCategoriesUnique(t *testing.T) {
	doc := Parse("## Unreleased\n### Fixes\n- a (#1)\n## [Unreleased]\n### fixes\n- b (#2)")
	doc.Normalize()

	sb := ParseStagingBody(doc.Staging().Body)
	require.Len(t, sb.Blocks, 1)
	assert.Equal(t, []string{"- a (#1)", "- b (#2)"}, sb.Blocks[0].Entries())
	assert.Equal(t, 2, sb.Count())
}
