// changekeeper - changelog and version-bump automation
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/changekeeper

// Package workflow turns repository events into changelog updates.
// A merged change is classified and recorded in the staging section; a
// published release moves the staged entries into a new version section.
// Every run reads the document once, mutates it in memory and writes it back
// with the read token, so a concurrent update surfaces as a conflict.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariel-frischer/changekeeper/internal/config"
	"github.com/ariel-frischer/changekeeper/internal/store"
)

// debugLogger is an optional function for debug logging.
var debugLogger func(format string, args ...any)

// SetDebugLogger sets the debug logging function for the workflow package.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger("[workflow] "+format, args...)
	}
}

// ErrNoBranch is returned when neither the event nor the configuration names
// a branch to write to.
var ErrNoBranch = errors.New("no target branch")

// Workflow holds the collaborators of a run.
type Workflow struct {
	// Store reads and writes the changelog document.
	Store store.Store
	// Lister lists the files touched by a merged change. Nil disables scope
	// inference from changed files.
	Lister store.ChangeLister
	// Notes receives release notes at cutover. Nil skips publishing.
	Notes store.NotesSink
	// Scope is used for entries whose title carries no scope. When set,
	// scope inference from changed files is skipped.
	Scope string
	// Config is the effective configuration.
	Config *config.Configuration
	// Now returns the release date. Defaults to time.Now.
	Now func() time.Time
}

// New creates a workflow over s with cfg. Optional collaborators are set on
// the returned value.
func New(s store.Store, cfg *config.Configuration) *Workflow {
	return &Workflow{Store: s, Config: cfg, Now: time.Now}
}

func (w *Workflow) config() *config.Configuration {
	if w.Config == nil {
		return config.Defaults()
	}
	return w.Config
}

func (w *Workflow) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

// readDocument reads the changelog on branch. A missing document reads as
// empty text with an empty token, so the following write creates it.
func (w *Workflow) readDocument(ctx context.Context, branch string) (string, string, error) {
	path := w.config().ChangelogPath
	f, err := w.Store.Read(ctx, path, branch)
	if errors.Is(err, store.ErrNotFound) {
		logDebug("%s not found on %s, starting a new document", path, branch)
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("reading %s on %s: %w", path, branch, err)
	}
	logDebug("read %s on %s (%d bytes, token %s)", path, branch, len(f.Content), f.Token)
	return string(f.Content), f.Token, nil
}

// writeDocument writes content back with the token from readDocument.
func (w *Workflow) writeDocument(ctx context.Context, branch, content, message, token string) error {
	path := w.config().ChangelogPath
	if err := w.Store.Write(ctx, path, branch, []byte(content), message, token); err != nil {
		return fmt.Errorf("writing %s on %s: %w", path, branch, err)
	}
	logDebug("wrote %s on %s: %s", path, branch, message)
	return nil
}

func (w *Workflow) targetBranch(eventBranch string) (string, error) {
	branch := w.config().TargetBranch(eventBranch)
	if branch == "" {
		return "", ErrNoBranch
	}
	return branch, nil
}
