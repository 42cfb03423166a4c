package workflow

import (
	"context"
	"strconv"
	"sync"

	"github.com/ariel-frischer/changekeeper/internal/event"
	"github.com/ariel-frischer/changekeeper/internal/store"
)

type storedFile struct {
	content string
	token   string
}

type recordedWrite struct {
	path    string
	ref     string
	content string
	message string
	token   string
}

// memoryStore is a Store keeping files per path and ref, with a token that
// changes on every write.
type memoryStore struct {
	mu       sync.Mutex
	files    map[string]storedFile
	writes   []recordedWrite
	revision int
	readErr  error
	writeErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: make(map[string]storedFile)}
}

func storeKey(path, ref string) string {
	return ref + ":" + path
}

func (m *memoryStore) put(path, ref, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revision++
	m.files[storeKey(path, ref)] = storedFile{content: content, token: "rev-" + strconv.Itoa(m.revision)}
}

func (m *memoryStore) get(path, ref string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[storeKey(path, ref)]
	return f.content, ok
}

func (m *memoryStore) Read(_ context.Context, path, ref string) (*store.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	f, ok := m.files[storeKey(path, ref)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.File{Content: []byte(f.content), Token: f.token}, nil
}

func (m *memoryStore) Write(_ context.Context, path, ref string, content []byte, message, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	current, exists := m.files[storeKey(path, ref)]
	if (exists && current.token != token) || (!exists && token != "") {
		return &store.ConflictError{Path: path, Ref: ref}
	}
	m.revision++
	m.files[storeKey(path, ref)] = storedFile{content: string(content), token: "rev-" + strconv.Itoa(m.revision)}
	m.writes = append(m.writes, recordedWrite{path: path, ref: ref, content: string(content), message: message, token: token})
	return nil
}

func (m *memoryStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

type fakeLister struct {
	mu    sync.Mutex
	files []string
	err   error
	calls int
}

func (f *fakeLister) ChangedFiles(_ context.Context, _ event.ChangeMerged) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.files, f.err
}

type publishedNotes struct {
	release event.ReleasePublished
	body    string
}

type fakeNotes struct {
	published []publishedNotes
	err       error
}

func (f *fakeNotes) PublishNotes(_ context.Context, release event.ReleasePublished, body string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedNotes{release: release, body: body})
	return nil
}
