package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasedDocument = `# Changelog

## [Unreleased]
### Fixes
- Pending fix (#9)

## [1.1.0] – 2024-03-01
### Features
- Search (#8)

## v1.0.0 - 2024-01-15
- First stable (#5)

## Notes
Free text.

## [0.9.0]
- Beta (#1)
`

func TestParseVersionTitle(t *testing.T) {
	tests := map[string]struct {
		title     string
		wantLabel string
		wantDate  string
		wantOK    bool
	}{
		"bracketed with en dash": {title: "[0.1.0] – 2024-01-01", wantLabel: "0.1.0", wantDate: "2024-01-01", wantOK: true},
		"bracketed with hyphen":  {title: "[1.0.0] - 2023-05-01", wantLabel: "1.0.0", wantDate: "2023-05-01", wantOK: true},
		"v prefix":               {title: "v2.0.0 - 2024-02-02", wantLabel: "2.0.0", wantDate: "2024-02-02", wantOK: true},
		"no date":                {title: "[0.9.0]", wantLabel: "0.9.0", wantOK: true},
		"prerelease":             {title: "[1.0.0-rc.1] – 2024-01-01", wantLabel: "1.0.0-rc.1", wantDate: "2024-01-01", wantOK: true},
		"not a version":          {title: "Notes"},
		"staging":                {title: "[Unreleased]"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			label, date, ok := ParseVersionTitle(tt.title)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLabel, label)
			assert.Equal(t, tt.wantDate, date)
		})
	}
}

func TestDocument_Versions(t *testing.T) {
	doc := Parse(releasedDocument)

	assert.Equal(t, []string{"1.1.0", "1.0.0", "0.9.0"}, doc.ListVersions())

	latest := doc.LatestRelease()
	require.NotNil(t, latest)
	assert.Equal(t, "1.1.0", latest.Label)
	assert.Equal(t, "2024-03-01", latest.Date)
}

func TestDocument_LatestRelease_None(t *testing.T) {
	assert.Nil(t, Parse(minimalDocument).LatestRelease())
}

func TestDocument_GetVersion(t *testing.T) {
	doc := Parse(releasedDocument)

	tests := map[string]struct {
		version  string
		wantBody string
	}{
		"plain label":    {version: "1.1.0", wantBody: "### Features\n- Search (#8)\n"},
		"v prefix input": {version: "v1.0.0", wantBody: "- First stable (#5)\n"},
		"unreleased":     {version: "unreleased", wantBody: "### Fixes\n- Pending fix (#9)\n"},
		"no date":        {version: "0.9.0", wantBody: "- Beta (#1)\n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := doc.GetVersion(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, s.Body)
		})
	}
}

func TestDocument_GetVersion_NotFound(t *testing.T) {
	doc := Parse(releasedDocument)

	_, err := doc.GetVersion("9.9.9")
	require.Error(t, err)

	var notFound *VersionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{"1.1.0", "1.0.0", "0.9.0"}, notFound.AvailableVersions)
	assert.Contains(t, err.Error(), "9.9.9")
}

func TestNormalizeVersion(t *testing.T) {
	assert.Equal(t, "0.6.0", NormalizeVersion("v0.6.0"))
	assert.Equal(t, "0.6.0", NormalizeVersion(" 0.6.0 "))
	assert.Equal(t, "1.0.0", NormalizeVersion("V1.0.0"))
}
