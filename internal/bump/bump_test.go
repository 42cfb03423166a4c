package bump

import (
	"testing"

	"github.com/ariel-frischer/changekeeper/internal/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest(t *testing.T) {
	tests := map[string]struct {
		classification classify.Classification
		want           Level
	}{
		"breaking fix is major": {
			classification: classify.Classification{Category: "Fixes", Breaking: true},
			want:           Major,
		},
		"breaking unknown category is major": {
			classification: classify.Classification{Category: "Other", Breaking: true},
			want:           Major,
		},
		"features exact": {
			classification: classify.Classification{Category: "Features"},
			want:           Minor,
		},
		"added exact": {
			classification: classify.Classification{Category: "Added"},
			want:           Minor,
		},
		"new features fuzzy": {
			classification: classify.Classification{Category: "New Features"},
			want:           Minor,
		},
		"fixes exact": {
			classification: classify.Classification{Category: "Fixes"},
			want:           Patch,
		},
		"bug fixes fuzzy": {
			classification: classify.Classification{Category: "Bug Fixes"},
			want:           Patch,
		},
		"documentation": {
			classification: classify.Classification{Category: "Documentation"},
			want:           Patch,
		},
		"performance fuzzy": {
			classification: classify.Classification{Category: "Performance Improvements"},
			want:           Patch,
		},
		"chores": {
			classification: classify.Classification{Category: "Chores"},
			want:           Patch,
		},
		"unmatched": {
			classification: classify.Classification{Category: "Other"},
			want:           None,
		},
		"empty": {
			classification: classify.Classification{},
			want:           None,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.classification))
		})
	}
}

func TestCombine(t *testing.T) {
	tests := map[string]struct {
		levels []Level
		want   Level
	}{
		"empty":             {want: None},
		"single patch":      {levels: []Level{Patch}, want: Patch},
		"minor beats patch": {levels: []Level{Patch, Minor, None}, want: Minor},
		"major beats all":   {levels: []Level{Minor, Major, Patch}, want: Major},
		"all none":          {levels: []Level{None, None}, want: None},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Combine(tt.levels...))
		})
	}
}

func TestSuggestAll(t *testing.T) {
	cs := []classify.Classification{
		{Category: "Fixes"},
		{Category: "Features"},
		{Category: "Documentation"},
	}
	assert.Equal(t, Minor, SuggestAll(cs))
	assert.Equal(t, None, SuggestAll(nil))
}

func TestLevelStringRoundTrip(t *testing.T) {
	for _, l := range []Level{None, Patch, Minor, Major} {
		parsed, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}

	_, err := ParseLevel("huge")
	require.Error(t, err)
}

func TestVersionLabel(t *testing.T) {
	tests := map[string]struct {
		tag  string
		want string
	}{
		"v prefix":         {tag: "v0.1.0", want: "0.1.0"},
		"bare":             {tag: "1.2.3", want: "1.2.3"},
		"prerelease":       {tag: "v2.0.0-rc.1", want: "2.0.0-rc.1"},
		"not semver":       {tag: "v2024.01", want: "2024.01"},
		"free-form":        {tag: "release-7", want: "release-7"},
		"whitespace":       {tag: " v1.0.0 ", want: "1.0.0"},
		"upper v not semv": {tag: "V3", want: "3"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, VersionLabel(tt.tag))
		})
	}
}

func TestNext(t *testing.T) {
	tests := map[string]struct {
		current string
		level   Level
		want    string
		wantErr bool
	}{
		"patch":              {current: "v1.2.3", level: Patch, want: "v1.2.4"},
		"minor":              {current: "v1.2.3", level: Minor, want: "v1.3.0"},
		"major":              {current: "v1.2.3", level: Major, want: "v2.0.0"},
		"none":               {current: "v1.2.3", level: None, want: "v1.2.3"},
		"bare version":       {current: "0.9.1", level: Minor, want: "0.10.0"},
		"prerelease dropped": {current: "v1.0.0-rc.2", level: Patch, want: "v1.0.1"},
		"short form":         {current: "v1.2", level: Patch, want: "v1.2.1"},
		"invalid":            {current: "banana", level: Patch, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Next(tt.current, tt.level)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
