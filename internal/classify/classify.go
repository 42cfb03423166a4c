// Package classify maps a change title and its labels to a changelog category,
// a breaking-change flag and an optional scope.
//
// Category resolution order (first match wins):
//  1. labels, checked against each configured category in configured order
//  2. the conventional commit type of the title
//  3. a deterministic fallback category
//
// Breaking detection is independent of category resolution.
package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ariel-frischer/changekeeper/internal/commitmsg"
)

// DefaultCategory is used when no configured category can serve as fallback.
const DefaultCategory = "Other"

// fallbackPriority lists category names tried, in order, when neither labels
// nor the title grammar resolve a category.
var fallbackPriority = []string{"Other", "Miscellaneous", "Changed", "Chores"}

// breakingPhrases are searched for in the lower-cased title.
var breakingPhrases = []string{"breaking change", "breaking-change", "[breaking]"}

// ErrMalformedClassification is returned when a resolved category cannot be
// written into the changelog without corrupting it.
var ErrMalformedClassification = errors.New("malformed classification")

// Category is a configured changelog category and the labels/types that select it.
type Category struct {
	Name    string
	Aliases []string
}

// Rules is the classifier configuration.
type Rules struct {
	Categories     []Category
	BreakingLabels []string
}

// Classification is the resolved (category, breaking, scope) triple for one change.
type Classification struct {
	Category string
	Breaking bool
	Scope    string
}

// Validate reports whether the category can be rendered as a block heading.
func (c Classification) Validate() error {
	name := strings.TrimSpace(c.Category)
	if name == "" {
		return fmt.Errorf("%w: empty category", ErrMalformedClassification)
	}
	if strings.ContainsAny(name, "\r\n") || strings.HasPrefix(name, "#") {
		return fmt.Errorf("%w: category %q is not a valid heading", ErrMalformedClassification, c.Category)
	}
	return nil
}

// WithScope returns c with fallback used as scope when no explicit scope was
// captured from the title.
func (c Classification) WithScope(fallback string) Classification {
	if c.Scope == "" {
		c.Scope = strings.TrimSpace(fallback)
	}
	return c
}

// Categorize classifies a change.
func Categorize(title string, labels []string, rules Rules) Classification {
	header, parsed := commitmsg.Parse(title)

	result := Classification{
		Breaking: isBreaking(title, labels, header.Breaking, rules.BreakingLabels),
	}
	if parsed {
		result.Scope = header.Scope
	}

	if name, ok := matchLabels(labels, rules.Categories); ok {
		result.Category = name
		return result
	}

	if parsed {
		if name, ok := matchToken(header.Type, rules.Categories); ok {
			result.Category = name
			return result
		}
	}

	result.Category = Fallback(rules.Categories)
	return result
}

// Fallback returns the first category from the fixed fallback priority list that
// is configured, or DefaultCategory.
func Fallback(categories []Category) string {
	for _, candidate := range fallbackPriority {
		for _, c := range categories {
			if strings.EqualFold(strings.TrimSpace(c.Name), candidate) {
				return c.Name
			}
		}
	}
	return DefaultCategory
}

// matchLabels returns the first configured category any label selects.
func matchLabels(labels []string, categories []Category) (string, bool) {
	if len(labels) == 0 {
		return "", false
	}
	for _, c := range categories {
		for _, label := range labels {
			if selects(c, label) {
				return c.Name, true
			}
		}
	}
	return "", false
}

// matchToken returns the category whose aliases register the commit type.
func matchToken(commitType string, categories []Category) (string, bool) {
	for _, c := range categories {
		if selects(c, commitType) {
			return c.Name, true
		}
	}
	return "", false
}

// selects reports whether a label (or commit type) matches the category name or
// one of its aliases, either in its raw lower-cased form or after alias folding.
func selects(c Category, label string) bool {
	raw := lowerToken(label)
	if raw == "" {
		return false
	}
	canonical := NormalizeLabel(label)

	candidates := make([]string, 0, len(c.Aliases)+1)
	candidates = append(candidates, c.Name)
	candidates = append(candidates, c.Aliases...)

	for _, candidate := range candidates {
		want := lowerToken(candidate)
		if want == "" {
			continue
		}
		if raw == want || canonical == want || canonical == NormalizeLabel(candidate) {
			return true
		}
	}
	return false
}

// isBreaking combines the three independent breaking signals.
func isBreaking(title string, labels []string, bang bool, breakingLabels []string) bool {
	if bang {
		return true
	}
	if hasBreakingLabel(labels, breakingLabels) {
		return true
	}
	return hasBreakingPhrase(title)
}

func hasBreakingLabel(labels, breakingLabels []string) bool {
	for _, label := range labels {
		normalized := NormalizeLabel(label)
		if normalized == "" {
			continue
		}
		for _, alias := range breakingLabels {
			if normalized == NormalizeLabel(alias) {
				return true
			}
		}
	}
	return false
}

func hasBreakingPhrase(title string) bool {
	lower := strings.ToLower(title)
	for _, phrase := range breakingPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
