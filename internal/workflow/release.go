package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/ariel-frischer/changekeeper/internal/bump"
	"github.com/ariel-frischer/changekeeper/internal/changelog"
	"github.com/ariel-frischer/changekeeper/internal/event"
)

// ReleaseResult describes the outcome of a release cutover.
type ReleaseResult struct {
	// Version is the section label, the tag without its "v" prefix.
	Version string
	// Title is the heading of the new version section.
	Title  string
	Branch string
	// Notes is the body moved out of the staging section.
	Notes string
	// Skipped is true when nothing was staged; nothing was written or published.
	Skipped bool
	// Published is true when the notes were handed to the notes sink.
	Published bool
}

// HandleRelease moves the staged entries into a section for the published
// version and mirrors them to the notes sink when one is configured.
func (w *Workflow) HandleRelease(ctx context.Context, release event.ReleasePublished) (*ReleaseResult, error) {
	label := bump.VersionLabel(release.VersionTag)
	if label == "" {
		return nil, fmt.Errorf("release %q: %w", release.VersionTag, changelog.ErrEmptyVersion)
	}

	branch, err := w.targetBranch(release.TargetBranch)
	if err != nil {
		return nil, err
	}

	content, token, err := w.readDocument(ctx, branch)
	if err != nil {
		return nil, err
	}

	date := w.now()
	doc := changelog.Parse(content)
	notes, ok, err := doc.Cutover(label, date)
	if err != nil {
		return nil, err
	}

	result := &ReleaseResult{
		Version: label,
		Title:   changelog.VersionTitle(label, date),
		Branch:  branch,
		Notes:   notes,
	}
	if !ok {
		logDebug("nothing staged for %s, skipping", label)
		result.Skipped = true
		return result, nil
	}

	if err := w.writeDocument(ctx, branch, doc.String(), releaseMessage(release.VersionTag), token); err != nil {
		return nil, err
	}

	if w.Notes != nil {
		if err := w.Notes.PublishNotes(ctx, release, notes); err != nil {
			return result, fmt.Errorf("publishing notes for %s: %w", release.VersionTag, err)
		}
		result.Published = true
	}
	return result, nil
}

func releaseMessage(tag string) string {
	return fmt.Sprintf("docs(changelog): release %s", strings.TrimSpace(tag))
}
