// Package bump suggests semantic-version increments from change classifications.
package bump

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/changekeeper/internal/classify"
)

// Level is a semantic-version increment. Levels are ordered by severity:
// None < Patch < Minor < Major.
type Level int

const (
	None Level = iota
	Patch
	Minor
	Major
)

// String returns the lower-case name used in outputs ("major", "minor", ...).
func (l Level) String() string {
	switch l {
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Patch:
		return "patch"
	default:
		return "none"
	}
}

// ParseLevel parses a level name. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return Major, nil
	case "minor":
		return Minor, nil
	case "patch":
		return Patch, nil
	case "none", "":
		return None, nil
	default:
		return None, fmt.Errorf("invalid bump level %q (expected: major, minor, patch, none)", s)
	}
}

// minorKeywords are feature-like category names.
var minorKeywords = []string{"feat", "feature", "features", "added", "enhancement", "new"}

// patchKeywords are fix/docs/refactor/test/chore/performance-like category names.
var patchKeywords = []string{
	"fix", "fixes", "fixed", "bug",
	"docs", "documentation",
	"refactor", "refactoring",
	"test", "tests",
	"chore", "chores",
	"perf", "performance",
	"security", "changed", "deps",
}

// Suggest maps a classification to a bump level.
// Breaking changes are always Major; otherwise the category name is matched
// exactly, then by substring, against the minor and patch keyword sets.
func Suggest(c classify.Classification) Level {
	if c.Breaking {
		return Major
	}

	name := strings.ToLower(strings.TrimSpace(c.Category))
	if name == "" {
		return None
	}

	if contains(minorKeywords, name) {
		return Minor
	}
	if contains(patchKeywords, name) {
		return Patch
	}
	if containsSubstring(minorKeywords, name) {
		return Minor
	}
	if containsSubstring(patchKeywords, name) {
		return Patch
	}
	return None
}

// SuggestAll returns the combined bump for a list of classifications.
func SuggestAll(cs []classify.Classification) Level {
	levels := make([]Level, len(cs))
	for i, c := range cs {
		levels[i] = Suggest(c)
	}
	return Combine(levels...)
}

// Combine reduces levels to the highest severity. An empty list yields None.
func Combine(levels ...Level) Level {
	result := None
	for _, l := range levels {
		if l > result {
			result = l
		}
	}
	return result
}

func contains(keywords []string, name string) bool {
	for _, kw := range keywords {
		if name == kw {
			return true
		}
	}
	return false
}

func containsSubstring(keywords []string, name string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
