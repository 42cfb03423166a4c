package errors

import "fmt"

// Common error messages for the changekeeper CLI.
// These templates ensure consistent, actionable error messages.

// MissingToken creates an error for a store that needs a credential nobody provided.
func MissingToken(backend string) *CLIError {
	return NewAuthenticationError(
		fmt.Sprintf("no API token available for the %s store", backend),
		"Set GITHUB_TOKEN (or GH_TOKEN) in the environment",
		"In GitHub Actions: env: { GITHUB_TOKEN: ${{ secrets.GITHUB_TOKEN }} }",
		"Or switch to the git backend: changekeeper config set store.backend git",
	)
}

// WriteConflict creates an error for a write rejected because the document
// changed after it was read.
func WriteConflict(path, ref string, err error) *CLIError {
	return WrapWithMessage(err, Conflict,
		fmt.Sprintf("%s on %s changed while it was being updated", path, ref),
		"Re-run the command; the change is re-applied on top of the latest document",
		"Entries already present are skipped, so re-running is safe",
	)
}

// InvalidEvent creates an error for an event payload that cannot be processed.
func InvalidEvent(name string, err error) *CLIError {
	cliErr := WrapWithMessage(err, Argument,
		fmt.Sprintf("invalid %q event", name),
		"Check GITHUB_EVENT_NAME and GITHUB_EVENT_PATH",
		"Supported events: pull_request (closed and merged), release (published)",
	)
	cliErr.Usage = "changekeeper handle --event-name <name> --event-path <payload.json>"
	return cliErr
}

// InvalidVersionTag creates an error for a tag that is not a semantic version.
func InvalidVersionTag(tag string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid version tag: %q", tag),
		"changekeeper release <tag>",
		"Tags must be semantic versions such as v1.2.3 or 1.2.3-rc.1",
	)
}

// MalformedClassification creates an error for a change whose resolved
// category cannot be written into the changelog.
func MalformedClassification(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"the change resolved to a category that cannot be used as a changelog heading",
		"Category names must be a single line and must not start with '#'",
		"Check the categories list: changekeeper config show",
	)
}

// InvalidConfig creates a warning-grade error for a configuration source that
// was replaced by defaults.
func InvalidConfig(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"configuration could not be loaded",
		"Validate the file: changekeeper config show",
		"Regenerate a commented template: changekeeper config init --force",
	)
}

// VersionNotFound creates an error for a version missing from the changelog.
func VersionNotFound(version string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("version %s not found in changelog", version),
		"List released versions with: changekeeper show",
	)
}

// DocumentNotFound creates an error for a changelog missing from the store.
func DocumentNotFound(path, ref string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("%s not found on %s", path, ref),
		"Check changelog_path in the configuration",
		"Create an empty file: changekeeper normalize",
	)
}
