// Package scope maps changed file paths to the single workspace package they
// belong to, so entries of a monorepo changelog can be tagged with it.
package scope

import (
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Resolver matches the directories of changed files against workspace globs
// such as "packages/*" or "apps/**". Patterns starting with "!" exclude.
type Resolver struct {
	include []string
	exclude []string
}

// NewResolver builds a resolver from workspace patterns. Invalid patterns are
// dropped.
func NewResolver(patterns []string) *Resolver {
	r := &Resolver{}
	for _, p := range patterns {
		negated := strings.HasPrefix(strings.TrimSpace(p), "!")
		p = cleanPattern(strings.TrimPrefix(strings.TrimSpace(p), "!"))
		if p == "" || !doublestar.ValidatePattern(p) {
			continue
		}
		if negated {
			r.exclude = append(r.exclude, p)
		} else {
			r.include = append(r.include, p)
		}
	}
	return r
}

// Empty reports whether the resolver has no include patterns.
func (r *Resolver) Empty() bool {
	return len(r.include) == 0
}

// PackageDir returns the shallowest ancestor directory of file that is a
// workspace package.
func (r *Resolver) PackageDir(file string) (string, bool) {
	parts := strings.Split(path.Dir(cleanPattern(file)), "/")
	for i := range parts {
		dir := strings.Join(parts[:i+1], "/")
		if dir == "." || dir == "" {
			return "", false
		}
		if r.matches(dir) {
			return dir, true
		}
	}
	return "", false
}

// Packages returns the distinct package directories touched by files, sorted.
func (r *Resolver) Packages(files []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		dir, ok := r.PackageDir(f)
		if !ok || seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// Resolve returns the name of the one package touched by files. Files outside
// every package are ignored. When no package or several packages are touched
// the result is empty.
func (r *Resolver) Resolve(files []string) string {
	dirs := r.Packages(files)
	if len(dirs) != 1 {
		return ""
	}
	return path.Base(dirs[0])
}

func (r *Resolver) matches(dir string) bool {
	for _, p := range r.exclude {
		if matchDir(p, dir) {
			return false
		}
	}
	for _, p := range r.include {
		if matchDir(p, dir) {
			return true
		}
	}
	return false
}

// matchDir matches dir against p. A trailing "/**" does not match the
// directory it is anchored at.
func matchDir(p, dir string) bool {
	if base, ok := strings.CutSuffix(p, "/**"); ok && base == dir {
		return false
	}
	ok, _ := doublestar.Match(p, dir)
	return ok
}

// cleanPattern strips "./" prefixes and trailing slashes.
func cleanPattern(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return strings.TrimRight(p, "/")
}
