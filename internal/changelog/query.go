package changelog

import (
	"fmt"
	"regexp"
	"strings"
)

// versionTitlePattern matches "[1.2.0] – 2024-01-01", "v1.2.0 - 2024-01-01",
// "[1.2.0]" and similar version headings. Labels start with a digit.
var versionTitlePattern = regexp.MustCompile(`^\[?\s*[vV]?(\d[^\]\s]*?)\s*\]?(?:\s*[-–—]\s*(\d{4}-\d{2}-\d{2}))?(?:\s.*)?$`)

// VersionNotFoundError is returned when a requested version doesn't exist.
type VersionNotFoundError struct {
	Version           string
	AvailableVersions []string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version %q not found (available: %s)",
		e.Version, strings.Join(e.AvailableVersions, ", "))
}

// Version is a released section of the changelog.
type Version struct {
	Label   string
	Date    string
	Section Section
}

// ParseVersionTitle extracts the version label and date from a section title.
func ParseVersionTitle(title string) (label, date string, ok bool) {
	m := versionTitlePattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// NormalizeVersion normalizes a version string by removing the "v" prefix.
// This allows accepting both "v0.6.0" and "0.6.0" as input.
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(version)), "v")
}

// Staging returns the staging section, or nil if the document has none.
func (d *Document) Staging() *Section {
	if i := d.stagingIndex(); i >= 0 {
		return &d.Sections[i]
	}
	return nil
}

// Versions returns the released sections in document order (newest first).
func (d *Document) Versions() []Version {
	var versions []Version
	for _, s := range d.Sections {
		if s.IsStaging() {
			continue
		}
		label, date, ok := ParseVersionTitle(s.Title)
		if !ok {
			continue
		}
		versions = append(versions, Version{Label: label, Date: date, Section: s})
	}
	return versions
}

// ListVersions returns the labels of all released versions, newest first.
func (d *Document) ListVersions() []string {
	versions := d.Versions()
	labels := make([]string, len(versions))
	for i, v := range versions {
		labels[i] = v.Label
	}
	return labels
}

// GetVersion retrieves the section for a version. "unreleased" addresses the
// staging section; "v0.6.0" and "0.6.0" are equivalent.
func (d *Document) GetVersion(version string) (*Section, error) {
	if strings.EqualFold(strings.TrimSpace(version), "unreleased") {
		if s := d.Staging(); s != nil {
			return s, nil
		}
	}
	return d.findVersion(version)
}

func (d *Document) findVersion(version string) (*Section, error) {
	normalized := NormalizeVersion(version)
	for i := range d.Sections {
		if d.Sections[i].IsStaging() {
			continue
		}
		label, _, ok := ParseVersionTitle(d.Sections[i].Title)
		if ok && NormalizeVersion(label) == normalized {
			return &d.Sections[i], nil
		}
	}

	return nil, &VersionNotFoundError{
		Version:           version,
		AvailableVersions: d.ListVersions(),
	}
}

// LatestRelease returns the most recent released version, or nil.
func (d *Document) LatestRelease() *Version {
	versions := d.Versions()
	if len(versions) == 0 {
		return nil
	}
	return &versions[0]
}
