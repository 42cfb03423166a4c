package git

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
)

// File is a file read from the tip of a branch.
type File struct {
	Content []byte
	// Blob is the object hash of the content; CommitFile expects it back.
	Blob plumbing.Hash
	// Commit is the branch tip the file was read from.
	Commit plumbing.Hash
}

// CommitRequest describes a single-file commit on top of a branch.
type CommitRequest struct {
	Branch  string
	Path    string
	Content []byte
	Message string
	Author  object.Signature
	// Expected is the blob the new content was derived from. The zero hash
	// means the file must not exist yet.
	Expected plumbing.Hash
}

// ReadFile returns the file at path on the tip of branch.
func (r *Repository) ReadFile(ctx context.Context, branch, filePath string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, err := cleanPath(filePath)
	if err != nil {
		return nil, err
	}

	ref, err := r.branchRef(branch)
	if err != nil {
		return nil, err
	}

	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", ref.Hash(), err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree of %s: %w", commit.Hash, err)
	}

	f, err := tree.File(name)
	if errors.Is(err, object.ErrFileNotFound) {
		logDebug("[git] ReadFile: %s not found on %s", name, branch)
		return nil, fmt.Errorf("%w: %s on %s", ErrFileNotFound, name, branch)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", name, err)
	}

	content, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	logDebug("[git] ReadFile: %s@%s blob %s", name, branch, f.Hash)
	return &File{Content: []byte(content), Blob: f.Hash, Commit: commit.Hash}, nil
}

// CommitFile writes req.Content to req.Path in a new commit on req.Branch and
// advances the branch with a compare-and-swap. It returns ErrStale when the
// file no longer matches req.Expected or the branch moved meanwhile.
//
// When the branch is checked out in a working tree whose copy of the file is
// unmodified, the working copy and index are updated to the new content.
func (r *Repository) CommitFile(ctx context.Context, req CommitRequest) (plumbing.Hash, error) {
	if err := ctx.Err(); err != nil {
		return plumbing.ZeroHash, err
	}

	name, err := cleanPath(req.Path)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	ref, err := r.branchRef(req.Branch)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	parent, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("loading commit %s: %w", ref.Hash(), err)
	}

	tree, err := parent.Tree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("loading tree of %s: %w", parent.Hash, err)
	}

	if err := checkExpected(tree, name, req.Expected); err != nil {
		return plumbing.ZeroHash, err
	}

	blob, err := r.storeBlob(req.Content)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	treeHash, err := r.updateTree(tree, strings.Split(name, "/"), blob)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	author := req.Author
	if author.When.IsZero() {
		author.When = time.Now()
	}

	commitHash, err := r.storeCommit(&object.Commit{
		Author:       author,
		Committer:    author,
		Message:      req.Message,
		TreeHash:     treeHash,
		ParentHashes: []plumbing.Hash{parent.Hash},
	})
	if err != nil {
		return plumbing.ZeroHash, err
	}

	next := plumbing.NewHashReference(ref.Name(), commitHash)
	if err := r.repo.Storer.CheckAndSetReference(next, ref); err != nil {
		if errors.Is(err, storage.ErrReferenceHasChanged) {
			return plumbing.ZeroHash, fmt.Errorf("%w: %s moved", ErrStale, req.Branch)
		}
		return plumbing.ZeroHash, fmt.Errorf("updating %s: %w", ref.Name(), err)
	}

	logDebug("[git] CommitFile: %s on %s -> %s", name, req.Branch, commitHash)
	r.syncWorktree(req.Branch, name, req.Content, req.Expected)
	return commitHash, nil
}

// checkExpected verifies the file at name still has the expected blob.
func checkExpected(tree *object.Tree, name string, expected plumbing.Hash) error {
	f, err := tree.File(name)
	exists := err == nil
	if err != nil && !errors.Is(err, object.ErrFileNotFound) {
		return fmt.Errorf("looking up %s: %w", name, err)
	}

	switch {
	case expected.IsZero() && exists:
		return fmt.Errorf("%w: %s was created", ErrStale, name)
	case !expected.IsZero() && !exists:
		return fmt.Errorf("%w: %s was deleted", ErrStale, name)
	case !expected.IsZero() && f.Hash != expected:
		return fmt.Errorf("%w: %s is now %s, expected %s", ErrStale, name, f.Hash, expected)
	}
	return nil
}

func (r *Repository) storeBlob(content []byte) (plumbing.Hash, error) {
	obj := r.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(content)))

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("opening blob writer: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return plumbing.ZeroHash, fmt.Errorf("writing blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("closing blob writer: %w", err)
	}

	return r.repo.Storer.SetEncodedObject(obj)
}

func (r *Repository) storeCommit(c *object.Commit) (plumbing.Hash, error) {
	obj := r.repo.Storer.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encoding commit: %w", err)
	}
	return r.repo.Storer.SetEncodedObject(obj)
}

func (r *Repository) storeTree(entries []object.TreeEntry) (plumbing.Hash, error) {
	sort.Slice(entries, func(i, j int) bool {
		return treeSortKey(entries[i]) < treeSortKey(entries[j])
	})

	obj := r.repo.Storer.NewEncodedObject()
	t := &object.Tree{Entries: entries}
	if err := t.Encode(obj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encoding tree: %w", err)
	}
	return r.repo.Storer.SetEncodedObject(obj)
}

// updateTree returns the hash of a copy of base with the file at parts set to
// blob. Missing intermediate directories are created. base may be nil.
func (r *Repository) updateTree(base *object.Tree, parts []string, blob plumbing.Hash) (plumbing.Hash, error) {
	var entries []object.TreeEntry
	if base != nil {
		entries = append(entries, base.Entries...)
	}

	name := parts[0]
	idx := -1
	for i, e := range entries {
		if e.Name == name {
			idx = i
			break
		}
	}

	entry := object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: blob}
	if len(parts) > 1 {
		var sub *object.Tree
		if idx >= 0 {
			if entries[idx].Mode != filemode.Dir {
				return plumbing.ZeroHash, fmt.Errorf("%s is not a directory", name)
			}
			t, err := r.repo.TreeObject(entries[idx].Hash)
			if err != nil {
				return plumbing.ZeroHash, fmt.Errorf("loading tree %s: %w", name, err)
			}
			sub = t
		}

		hash, err := r.updateTree(sub, parts[1:], blob)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entry = object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: hash}
	} else if idx >= 0 {
		if entries[idx].Mode == filemode.Dir {
			return plumbing.ZeroHash, fmt.Errorf("%s is a directory", name)
		}
		entry.Mode = entries[idx].Mode
	}

	if idx >= 0 {
		entries[idx] = entry
	} else {
		entries = append(entries, entry)
	}
	return r.storeTree(entries)
}

// treeSortKey orders entries the way git does: directories sort as if their
// name ended in a slash.
func treeSortKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}

// syncWorktree mirrors a committed file into the working tree when branch is
// checked out and the working copy still holds the previous content.
func (r *Repository) syncWorktree(branch, name string, content []byte, previous plumbing.Hash) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return
	}

	head, err := r.repo.Head()
	if err != nil || head.Name() != plumbing.NewBranchReferenceName(branch) {
		return
	}

	current, err := util.ReadFile(wt.Filesystem, name)
	switch {
	case err == nil && plumbing.ComputeHash(plumbing.BlobObject, current) != previous:
		logDebug("[git] working copy of %s has local changes, leaving it alone", name)
		return
	case err != nil && !previous.IsZero():
		logDebug("[git] working copy of %s is missing, leaving it alone", name)
		return
	}

	if err := util.WriteFile(wt.Filesystem, name, content, 0o644); err != nil {
		logDebug("[git] updating working copy of %s: %v", name, err)
		return
	}
	if _, err := wt.Add(name); err != nil {
		logDebug("[git] staging %s: %v", name, err)
	}
}

// cleanPath converts p into a slash-separated path relative to the repository root.
func cleanPath(p string) (string, error) {
	cleaned := path.Clean(strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(p)), "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid repository path %q", p)
	}
	return cleaned, nil
}
