// Package store reads and writes the changelog document with optimistic
// concurrency. Every read returns a token that the following write must
// present; a write against a changed document fails with a ConflictError and
// is never retried.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariel-frischer/changekeeper/internal/event"
)

var (
	// ErrNotFound is returned by Read when the file does not exist on the ref.
	// Callers treat it as "create from scratch", not as a failure.
	ErrNotFound = errors.New("file not found")
	// ErrAuthMissing is returned when a backend needs credentials that were
	// not provided.
	ErrAuthMissing = errors.New("credentials missing")
)

// File is a document read from a store. Token must be passed back to Write.
type File struct {
	Content []byte
	Token   string
}

// ConflictError is returned by Write when the token no longer matches the
// stored document.
type ConflictError struct {
	Path string
	Ref  string
	Err  error
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("write conflict on %s@%s", e.Path, e.Ref)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether err is or wraps a ConflictError.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// Store persists a single text file per ref.
type Store interface {
	// Read returns the file at path on ref, or ErrNotFound.
	Read(ctx context.Context, path, ref string) (*File, error)
	// Write replaces the file at path on ref. An empty token means the file
	// must not exist yet.
	Write(ctx context.Context, path, ref string, content []byte, message, token string) error
}

// ChangeLister lists the paths touched by a merged change.
type ChangeLister interface {
	ChangedFiles(ctx context.Context, change event.ChangeMerged) ([]string, error)
}

// NotesSink receives the release notes extracted at cutover.
type NotesSink interface {
	PublishNotes(ctx context.Context, release event.ReleasePublished, body string) error
}
