package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/ariel-frischer/changekeeper/internal/config"
	"github.com/ariel-frischer/changekeeper/internal/event"
	"github.com/ariel-frischer/changekeeper/internal/store"
	"github.com/stretchr/testify/require"
)

const emptyChangelog = "# Changelog\n\n## [Unreleased]\n"

// memoryStore keeps one file per path and ref. The token changes on every
// write.
type memoryStore struct {
	mu       sync.Mutex
	files    map[string]*store.File
	writes   int
	revision int
	writeErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: make(map[string]*store.File)}
}

func (m *memoryStore) put(path, ref, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revision++
	m.files[ref+":"+path] = &store.File{Content: []byte(content), Token: "rev-" + strconv.Itoa(m.revision)}
}

func (m *memoryStore) get(path, ref string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[ref+":"+path]; ok {
		return string(f.Content)
	}
	return ""
}

func (m *memoryStore) Read(_ context.Context, path, ref string) (*store.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[ref+":"+path]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.File{Content: f.Content, Token: f.Token}, nil
}

func (m *memoryStore) Write(_ context.Context, path, ref string, content []byte, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	current, exists := m.files[ref+":"+path]
	if (exists && current.Token != token) || (!exists && token != "") {
		return &store.ConflictError{Path: path, Ref: ref}
	}
	m.revision++
	m.writes++
	m.files[ref+":"+path] = &store.File{Content: content, Token: "rev-" + strconv.Itoa(m.revision)}
	return nil
}

type fakeNotes struct {
	bodies []string
}

func (f *fakeNotes) PublishNotes(_ context.Context, _ event.ReleasePublished, body string) error {
	f.bodies = append(f.bodies, body)
	return nil
}

// useBackend makes commands open b instead of a real store.
func useBackend(t *testing.T, b *backend) {
	t.Helper()
	orig := openBackend
	openBackend = func(*config.Configuration) (*backend, error) { return b, nil }
	t.Cleanup(func() { openBackend = orig })
}

// isolate runs the test in an empty directory without user config or step
// outputs.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv(githubOutputEnv, "")
	return dir
}

// captureOutputs points $GITHUB_OUTPUT to a temporary file and returns a
// function reading it.
func captureOutputs(t *testing.T) func() string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "output")
	t.Setenv(githubOutputEnv, path)
	return func() string {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		return string(data)
	}
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

// run executes the command line against a fresh command tree.
func run(t *testing.T, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	err := execute(root, args, &stderr)
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (r runResult) code() int {
	return shared.ExitCode(r.err)
}
