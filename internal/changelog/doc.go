// Package changelog parses, normalizes and edits Markdown changelogs laid out as
// a header followed by "## " sections, one of which is the staging section
// ("## [Unreleased]") that accumulates entries until a release.
//
// This package implements:
//   - A line-oriented parser producing Document/Section/Block values
//   - Idempotent normalization (header, exactly one staging section, whitespace)
//   - Category-scoped entry insertion into the staging section
//   - Release cutover from the staging section into a dated version section
//   - Version queries and terminal display for the CLI
//
// Documents are plain values: they are parsed from text on every operation and
// rendered back with String; nothing is cached between operations.
package changelog
