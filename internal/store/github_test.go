package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ariel-frischer/changekeeper/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContents is a minimal contents API holding one file per path.
type fakeContents struct {
	mu      sync.Mutex
	files   map[string]string
	shas    map[string]string
	version int
	puts    []putContentRequest
}

func newFakeContents(files map[string]string) *fakeContents {
	f := &fakeContents{files: map[string]string{}, shas: map[string]string{}}
	for path, content := range files {
		f.set(path, content)
	}
	return f
}

func (f *fakeContents) set(path, content string) {
	f.version++
	f.files[path] = content
	f.shas[path] = fmt.Sprintf("sha-%d", f.version)
}

func (f *fakeContents) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer test-token" || !strings.HasPrefix(r.UserAgent(), "changekeeper/") {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Bad credentials"}`)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/repos/acme/widgets/contents/")
	switch r.Method {
	case http.MethodGet:
		content, ok := f.files[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"Not Found"}`)
			return
		}
		encoded := base64.StdEncoding.EncodeToString([]byte(content))
		// GitHub wraps base64 content at 60 columns.
		var wrapped strings.Builder
		for len(encoded) > 60 {
			wrapped.WriteString(encoded[:60] + "\n")
			encoded = encoded[60:]
		}
		wrapped.WriteString(encoded)
		_ = json.NewEncoder(w).Encode(contentResponse{
			Type: "file", Encoding: "base64", Content: wrapped.String(), SHA: f.shas[path],
		})

	case http.MethodPut:
		var req putContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.puts = append(f.puts, req)

		current, exists := f.shas[path]
		switch {
		case exists && req.SHA == "":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"message":"Invalid request.\n\n\"sha\" wasn't supplied."}`)
			return
		case exists && req.SHA != current:
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `{"message":"CHANGELOG.md does not match `+req.SHA+`"}`)
			return
		}

		content, _ := base64.StdEncoding.DecodeString(req.Content)
		f.set(path, string(content))
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{}`)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestGitHub(t *testing.T, handler http.Handler) *GitHub {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g, err := NewGitHub(GitHubOptions{
		Repository: "acme/widgets",
		Token:      "test-token",
		APIURL:     server.URL + "/",
	})
	require.NoError(t, err)
	return g
}

func TestNewGitHub(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		opts    GitHubOptions
		wantErr error
	}{
		"missing token": {
			opts:    GitHubOptions{Repository: "acme/widgets"},
			wantErr: ErrAuthMissing,
		},
		"blank token": {
			opts:    GitHubOptions{Repository: "acme/widgets", Token: "  "},
			wantErr: ErrAuthMissing,
		},
		"bad repository": {
			opts: GitHubOptions{Repository: "widgets", Token: "t"},
		},
		"nested repository": {
			opts: GitHubOptions{Repository: "acme/widgets/extra", Token: "t"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := NewGitHub(tt.opts)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	g, err := NewGitHub(GitHubOptions{Repository: "acme/widgets", Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, DefaultGitHubAPI, g.baseURL)
}

func TestGitHub_ReadWrite(t *testing.T) {
	t.Parallel()

	long := "# Changelog\n\n" + strings.Repeat("- a fairly long line of text (#1)\n", 10)
	fake := newFakeContents(map[string]string{"CHANGELOG.md": long})
	g := newTestGitHub(t, fake)
	ctx := context.Background()

	f, err := g.Read(ctx, "CHANGELOG.md", "main")
	require.NoError(t, err)
	assert.Equal(t, long, string(f.Content))
	assert.Equal(t, "sha-1", f.Token)

	require.NoError(t, g.Write(ctx, "CHANGELOG.md", "main", []byte("updated\n"), "docs: update", f.Token))

	fake.mu.Lock()
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "main", fake.puts[0].Branch)
	assert.Equal(t, "sha-1", fake.puts[0].SHA)
	assert.Equal(t, "docs: update", fake.puts[0].Message)
	fake.mu.Unlock()

	again, err := g.Read(ctx, "CHANGELOG.md", "main")
	require.NoError(t, err)
	assert.Equal(t, "updated\n", string(again.Content))
}

func TestGitHub_ReadNotFound(t *testing.T) {
	t.Parallel()

	g := newTestGitHub(t, newFakeContents(nil))
	_, err := g.Read(context.Background(), "docs/CHANGELOG.md", "main")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGitHub_WriteConflicts(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"stale sha":          "sha-0",
		"create over exists": "",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			g := newTestGitHub(t, newFakeContents(map[string]string{"CHANGELOG.md": "x\n"}))

			err := g.Write(context.Background(), "CHANGELOG.md", "main", []byte("y\n"), "m", token)
			require.Error(t, err)
			assert.True(t, IsConflict(err))

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestGitHub_BadCredentials(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(newFakeContents(nil))
	t.Cleanup(server.Close)

	g, err := NewGitHub(GitHubOptions{Repository: "acme/widgets", Token: "wrong", APIURL: server.URL})
	require.NoError(t, err)

	_, err = g.Read(context.Background(), "CHANGELOG.md", "main")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Bad credentials", apiErr.Message)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGitHub_LargeFileUsesBlobAPI(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/contents/CHANGELOG.md", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"type":"file","encoding":"none","content":"","sha":"big"}`)
	})
	mux.HandleFunc("/repos/acme/widgets/git/blobs/big", func(w http.ResponseWriter, r *http.Request) {
		content := base64.StdEncoding.EncodeToString([]byte("big file\n"))
		_, _ = fmt.Fprintf(w, `{"encoding":"base64","content":%q}`, content)
	})

	g := newTestGitHub(t, mux)
	f, err := g.Read(context.Background(), "CHANGELOG.md", "main")
	require.NoError(t, err)
	assert.Equal(t, "big file\n", string(f.Content))
	assert.Equal(t, "big", f.Token)
}

func TestGitHub_ChangedFilesPaginates(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var pages []string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/pulls/55/files", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		mu.Lock()
		pages = append(pages, page)
		mu.Unlock()

		type file struct {
			Filename         string `json:"filename"`
			PreviousFilename string `json:"previous_filename,omitempty"`
		}
		var files []file
		switch page {
		case "1":
			for i := 0; i < filesPerPage; i++ {
				files = append(files, file{Filename: fmt.Sprintf("packages/api/f%d.go", i)})
			}
		case "2":
			files = append(files, file{Filename: "packages/web/new.ts", PreviousFilename: "packages/web/old.ts"})
		}
		_ = json.NewEncoder(w).Encode(files)
	})

	g := newTestGitHub(t, mux)
	paths, err := g.ChangedFiles(context.Background(), event.ChangeMerged{ReferenceID: 55})
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, []string{"1", "2"}, pages)
	mu.Unlock()
	assert.Len(t, paths, filesPerPage+2)
	assert.Equal(t, []string{"packages/web/new.ts", "packages/web/old.ts"}, paths[filesPerPage:])
}

func TestGitHub_PublishNotes(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotMethod string
	var gotBody map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/releases/9001", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"id":9001}`)
	})

	g := newTestGitHub(t, mux)
	release := event.ReleasePublished{VersionTag: "v0.1.0", ReleaseID: 9001}
	require.NoError(t, g.PublishNotes(context.Background(), release, "### Fixes\n- Fix (#55)"))

	mu.Lock()
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, map[string]string{"body": "### Fixes\n- Fix (#55)"}, gotBody)
	mu.Unlock()

	err := g.PublishNotes(context.Background(), event.ReleasePublished{VersionTag: "v1"}, "x")
	assert.Error(t, err)
}

func TestGitHub_ContentsURLEscapesSegments(t *testing.T) {
	t.Parallel()

	g, err := NewGitHub(GitHubOptions{Repository: "acme/widgets", Token: "t", APIURL: "https://ghe.example.com/api/v3"})
	require.NoError(t, err)
	assert.Equal(t,
		"https://ghe.example.com/api/v3/repos/acme/widgets/contents/docs/release%20notes/CHANGELOG.md",
		g.contentsURL("/docs/release notes/CHANGELOG.md"))
}
