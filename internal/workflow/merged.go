package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ariel-frischer/changekeeper/internal/bump"
	"github.com/ariel-frischer/changekeeper/internal/changelog"
	"github.com/ariel-frischer/changekeeper/internal/classify"
	"github.com/ariel-frischer/changekeeper/internal/event"
	"github.com/ariel-frischer/changekeeper/internal/scope"
	"github.com/ariel-frischer/changekeeper/internal/store"
	"golang.org/x/sync/errgroup"
)

// MergeResult describes the outcome of recording a merged change.
type MergeResult struct {
	Classification classify.Classification
	Bump           bump.Level
	// Entry is the rendered changelog line.
	Entry string
	// Branch is the branch the document was read from and written to.
	Branch string
	// Skipped is true when the change was already recorded and nothing was
	// written.
	Skipped bool
}

// Classify resolves the classification and bump of a change without touching
// the store. The scope is taken from the title only.
func Classify(change event.ChangeMerged, rules classify.Rules) (classify.Classification, bump.Level, error) {
	c := classify.Categorize(change.Title, change.Labels, rules)
	if err := c.Validate(); err != nil {
		return c, bump.None, err
	}
	return c, bump.Suggest(c), nil
}

// HandleMerged records a merged change in the staging section.
//
// The document read and, when the title carries no scope and monorepo
// detection is on, the changed-file listing and workspace discovery run
// concurrently. All of them finish before the single write. Scope inference
// is best effort: its failures leave the entry unscoped.
func (w *Workflow) HandleMerged(ctx context.Context, change event.ChangeMerged) (*MergeResult, error) {
	cfg := w.config()

	c, level, err := Classify(change, cfg.Rules())
	if err != nil {
		return nil, err
	}
	logDebug("#%d classified as %q (breaking=%t, scope=%q)", change.ReferenceID, c.Category, c.Breaking, c.Scope)

	branch, err := w.targetBranch(change.BaseBranch)
	if err != nil {
		return nil, err
	}
	c = c.WithScope(w.Scope)

	var (
		content, token string
		files          []string
		patterns       = cfg.Monorepo.Packages
	)
	inferScope := c.Scope == "" && cfg.Monorepo.Enabled && w.Lister != nil

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		content, token, err = w.readDocument(gctx, branch)
		return err
	})
	if inferScope {
		g.Go(func() error {
			listed, err := w.Lister.ChangedFiles(gctx, change)
			if err != nil {
				logDebug("listing files of #%d: %v", change.ReferenceID, err)
				return nil
			}
			files = listed
			return nil
		})
		if len(patterns) == 0 {
			g.Go(func() error {
				found, err := scope.Discover(gctx, w.readFunc(branch))
				if err != nil {
					logDebug("discovering workspaces on %s: %v", branch, err)
					return nil
				}
				patterns = found
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if inferScope {
		inferred := scope.NewResolver(patterns).Resolve(files)
		logDebug("#%d touched %d files, inferred scope %q", change.ReferenceID, len(files), inferred)
		c = c.WithScope(inferred)
	}

	doc := changelog.Parse(content)
	entry := changelog.NewEntry(change.Title, change.ReferenceID, c.Scope)
	result := &MergeResult{
		Classification: c,
		Bump:           level,
		Entry:          entry.String(),
		Branch:         branch,
	}

	added, err := doc.Insert(c.Category, entry)
	if err != nil {
		return nil, fmt.Errorf("recording #%d: %w", change.ReferenceID, err)
	}
	if !added {
		logDebug("#%d already recorded, nothing to write", change.ReferenceID)
		result.Skipped = true
		return result, nil
	}

	if err := w.writeDocument(ctx, branch, doc.String(), mergeMessage(change), token); err != nil {
		return nil, err
	}
	return result, nil
}

// readFunc adapts the store to scope discovery on branch.
func (w *Workflow) readFunc(branch string) scope.ReadFunc {
	return func(ctx context.Context, path string) ([]byte, error) {
		f, err := w.Store.Read(ctx, path, branch)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
		}
		if err != nil {
			return nil, err
		}
		return f.Content, nil
	}
}

func mergeMessage(change event.ChangeMerged) string {
	if change.ReferenceID > 0 {
		return fmt.Sprintf("docs(changelog): record #%d", change.ReferenceID)
	}
	return "docs(changelog): record merged change"
}
