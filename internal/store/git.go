package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariel-frischer/changekeeper/internal/event"
	"github.com/ariel-frischer/changekeeper/internal/git"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitOptions configures the git backend.
type GitOptions struct {
	// Remote receives a push after every write when Push is set.
	Remote      string
	Push        bool
	AuthorName  string
	AuthorEmail string
	// Now stamps commits; defaults to time.Now.
	Now func() time.Time
}

// Git stores the document in a local repository. Tokens are blob hashes and
// branches are advanced with compare-and-swap.
type Git struct {
	repo *git.Repository
	opts GitOptions
}

// NewGit returns a git backed store.
func NewGit(repo *git.Repository, opts GitOptions) *Git {
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	if opts.AuthorName == "" {
		opts.AuthorName = "changekeeper"
	}
	if opts.AuthorEmail == "" {
		opts.AuthorEmail = "changekeeper@users.noreply.github.com"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Git{repo: repo, opts: opts}
}

func (g *Git) Read(ctx context.Context, path, ref string) (*File, error) {
	f, err := g.repo.ReadFile(ctx, ref, path)
	if errors.Is(err, git.ErrFileNotFound) {
		return nil, fmt.Errorf("%w: %s@%s", ErrNotFound, path, ref)
	}
	if err != nil {
		return nil, err
	}
	return &File{Content: f.Content, Token: f.Blob.String()}, nil
}

func (g *Git) Write(ctx context.Context, path, ref string, content []byte, message, token string) error {
	expected := plumbing.ZeroHash
	if token != "" {
		if !plumbing.IsHash(token) {
			return fmt.Errorf("invalid token %q for git store", token)
		}
		expected = plumbing.NewHash(token)
	}

	_, err := g.repo.CommitFile(ctx, git.CommitRequest{
		Branch:  ref,
		Path:    path,
		Content: content,
		Message: message,
		Author: object.Signature{
			Name:  g.opts.AuthorName,
			Email: g.opts.AuthorEmail,
			When:  g.opts.Now(),
		},
		Expected: expected,
	})
	if errors.Is(err, git.ErrStale) {
		return &ConflictError{Path: path, Ref: ref, Err: err}
	}
	if err != nil {
		return fmt.Errorf("committing %s: %w", path, err)
	}

	if !g.opts.Push {
		return nil
	}

	err = g.repo.Push(ctx, g.opts.Remote, ref)
	if errors.Is(err, git.ErrPushRejected) {
		return &ConflictError{Path: path, Ref: ref, Err: err}
	}
	return err
}

// ChangedFiles lists the files of the merge commit, or of the base branch tip
// when the event carries no commit.
func (g *Git) ChangedFiles(ctx context.Context, change event.ChangeMerged) ([]string, error) {
	rev := change.MergeCommit
	if rev == "" {
		rev = change.BaseBranch
	}
	return g.repo.ChangedFiles(ctx, rev)
}
