package bump

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// VersionLabel converts a release tag into the label used in changelog section
// titles: a valid semver tag loses its "v" prefix ("v0.1.0" -> "0.1.0"), any
// other tag is only trimmed of a leading "v"/"V".
func VersionLabel(tag string) string {
	tag = strings.TrimSpace(tag)
	if semver.IsValid(ensureV(tag)) {
		return strings.TrimPrefix(ensureV(tag), "v")
	}
	return strings.TrimPrefix(strings.TrimPrefix(tag, "v"), "V")
}

// IsValid reports whether tag is a semantic version, with or without "v".
func IsValid(tag string) bool {
	return semver.IsValid(ensureV(strings.TrimSpace(tag)))
}

// Next returns the version that follows current after applying level.
// Pre-release and build metadata are dropped. The "v" prefix of current is
// preserved. None returns current unchanged.
func Next(current string, level Level) (string, error) {
	current = strings.TrimSpace(current)
	v := ensureV(current)
	if !semver.IsValid(v) {
		return "", fmt.Errorf("invalid semantic version %q", current)
	}
	if level == None {
		return current, nil
	}

	core := strings.TrimPrefix(semver.Canonical(v), "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	parts := strings.Split(core, ".")
	nums := make([]int, 3)
	for i := range nums {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return "", fmt.Errorf("parsing version component %q: %w", parts[i], err)
		}
		nums[i] = n
	}

	switch level {
	case Major:
		nums[0], nums[1], nums[2] = nums[0]+1, 0, 0
	case Minor:
		nums[1], nums[2] = nums[1]+1, 0
	case Patch:
		nums[2]++
	}

	next := fmt.Sprintf("%d.%d.%d", nums[0], nums[1], nums[2])
	if strings.HasPrefix(current, "v") {
		next = "v" + next
	}
	return next, nil
}

func ensureV(tag string) string {
	if strings.HasPrefix(tag, "v") {
		return tag
	}
	return "v" + tag
}
