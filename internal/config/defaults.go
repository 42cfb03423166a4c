package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# changekeeper configuration
# See 'changekeeper config -h' for commands, 'changekeeper config keys' for all options

changelog_path: CHANGELOG.md          # Changelog document, relative to the repository root

# Categories in priority order. A label or commit type selects a category
# when it matches the name or one of its aliases.
categories:
  - name: Features
    aliases: [feat, feature, enhancement]
  - name: Fixes
    aliases: [fix, bugfix, hotfix, bug]
  - name: Performance
    aliases: [perf]
  - name: Documentation
    aliases: [docs]
  - name: Refactoring
    aliases: [refactor]
  - name: Tests
    aliases: [test]
  - name: Chores
    aliases: [chore, ci, build, deps]
  - name: Other
    aliases: []

breaking_labels:                      # Labels that mark a change as breaking
  - breaking
  - breaking-change
  - major

# Scope inference for multi-package repositories
monorepo:
  enabled: false                      # Infer scope from changed files
  packages: []                        # Workspace globs (empty = read pnpm/npm/lerna workspaces)

# Where the changelog is read from and written to
store:
  backend: git                        # git | github
  branch: ""                          # Override the branch named by the event
  remote: origin                      # Remote pushed to after a commit (git backend)
  push: false                         # Push after committing (git backend)
  author_name: changekeeper
  author_email: changekeeper@users.noreply.github.com

github:
  repository: ""                      # owner/name (default: $GITHUB_REPOSITORY)
  api_url: https://api.github.com
  timeout: 30s                        # HTTP timeout per request
`
}

// GetDefaults returns the default configuration values.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"changelog_path": "CHANGELOG.md",
		// categories: order matters; the first label match wins and the
		// fallback is picked from Other/Miscellaneous/Changed/Chores.
		"categories": []interface{}{
			category("Features", "feat", "feature", "enhancement"),
			category("Fixes", "fix", "bugfix", "hotfix", "bug"),
			category("Performance", "perf"),
			category("Documentation", "docs"),
			category("Refactoring", "refactor"),
			category("Tests", "test"),
			category("Chores", "chore", "ci", "build", "deps"),
			category("Other"),
		},
		"breaking_labels": []string{"breaking", "breaking-change", "major"},
		"monorepo": map[string]interface{}{
			"enabled":  false,
			"packages": []string{},
		},
		"store": map[string]interface{}{
			"backend":      BackendGit,
			"branch":       "",
			"remote":       "origin",
			"push":         false,
			"author_name":  "changekeeper",
			"author_email": "changekeeper@users.noreply.github.com",
		},
		"github": map[string]interface{}{
			"repository": "",
			"api_url":    "https://api.github.com",
			"timeout":    "30s",
		},
	}
}

func category(name string, aliases ...string) map[string]interface{} {
	if aliases == nil {
		aliases = []string{}
	}
	return map[string]interface{}{"name": name, "aliases": aliases}
}
