package classify

import "strings"

// builtinAliases collapses common spellings of change kinds onto a canonical token.
var builtinAliases = map[string]string{
	"enhancement":     "feat",
	"feature":         "feat",
	"features":        "feat",
	"bugfix":          "fix",
	"hotfix":          "fix",
	"bug":             "fix",
	"documentation":   "docs",
	"doc":             "docs",
	"performance":     "perf",
	"refactoring":     "refactor",
	"tests":           "test",
	"testing":         "test",
	"chores":          "chore",
	"maintenance":     "chore",
	"breaking-change": "breaking",
	"breaking change": "breaking",
}

// labelPrefixes are stripped from labels such as "type: bug" or "kind:feature".
var labelPrefixes = []string{"type:", "kind:"}

// lowerToken lower-cases and trims s, and strips a type:/kind: prefix.
func lowerToken(s string) string {
	token := strings.ToLower(strings.TrimSpace(s))
	for _, prefix := range labelPrefixes {
		if strings.HasPrefix(token, prefix) {
			token = strings.TrimSpace(strings.TrimPrefix(token, prefix))
			break
		}
	}
	return token
}

// NormalizeLabel converts a label or commit type into its canonical token.
// Examples: "Type: Enhancement" -> "feat", "kind:hotfix" -> "fix", "Docs" -> "docs".
func NormalizeLabel(s string) string {
	token := lowerToken(s)
	if canonical, ok := builtinAliases[token]; ok {
		return canonical
	}
	return token
}
