package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ariel-frischer/changekeeper/internal/build"
	"github.com/ariel-frischer/changekeeper/internal/event"
)

// DefaultGitHubAPI is the public GitHub REST endpoint.
const DefaultGitHubAPI = "https://api.github.com"

// DefaultGitHubTimeout bounds every request made by the GitHub backend.
const DefaultGitHubTimeout = 30 * time.Second

// maxFilePages caps pull request file listing; GitHub stops at 3000 files.
const maxFilePages = 30

const filesPerPage = 100

// GitHubOptions configures the GitHub backend.
type GitHubOptions struct {
	// Repository is "owner/name".
	Repository string
	Token      string
	APIURL     string
	HTTPClient *http.Client
}

// GitHub stores the document through the repository contents API. Tokens are
// blob SHAs as reported by GitHub.
type GitHub struct {
	baseURL    string
	repo       string
	token      string
	httpClient *http.Client
}

// APIError is a non-success response from the GitHub API.
type APIError struct {
	Method  string
	URL     string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("github %s %s: %d %s", e.Method, e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("github %s %s: status %d", e.Method, e.URL, e.Status)
}

// NewGitHub returns a GitHub backed store. A missing token is reported as
// ErrAuthMissing before any request is made.
func NewGitHub(opts GitHubOptions) (*GitHub, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, fmt.Errorf("%w: GITHUB_TOKEN is not set", ErrAuthMissing)
	}

	owner, name, ok := strings.Cut(strings.TrimSpace(opts.Repository), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("repository must be owner/name, got %q", opts.Repository)
	}

	baseURL := strings.TrimRight(opts.APIURL, "/")
	if baseURL == "" {
		baseURL = DefaultGitHubAPI
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultGitHubTimeout}
	}

	return &GitHub{
		baseURL:    baseURL,
		repo:       owner + "/" + name,
		token:      opts.Token,
		httpClient: httpClient,
	}, nil
}

type contentResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
	SHA      string `json:"sha"`
}

func (g *GitHub) Read(ctx context.Context, path, ref string) (*File, error) {
	endpoint := g.contentsURL(path) + "?ref=" + url.QueryEscape(ref)

	var resp contentResponse
	status, err := g.do(ctx, http.MethodGet, endpoint, nil, &resp)
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s@%s", ErrNotFound, path, ref)
	}
	if err != nil {
		return nil, err
	}
	if resp.Type != "" && resp.Type != "file" {
		return nil, fmt.Errorf("%s is a %s, not a file", path, resp.Type)
	}

	content, err := g.decodeContent(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return &File{Content: content, Token: resp.SHA}, nil
}

// decodeContent returns the file bytes. Files over 1 MB come back without
// inline content and are fetched through the blob API instead.
func (g *GitHub) decodeContent(ctx context.Context, resp contentResponse) ([]byte, error) {
	if resp.Encoding == "none" && resp.SHA != "" {
		var blob struct {
			Content  string `json:"content"`
			Encoding string `json:"encoding"`
		}
		endpoint := fmt.Sprintf("%s/repos/%s/git/blobs/%s", g.baseURL, g.repo, resp.SHA)
		if _, err := g.do(ctx, http.MethodGet, endpoint, nil, &blob); err != nil {
			return nil, err
		}
		resp.Content, resp.Encoding = blob.Content, blob.Encoding
	}

	if resp.Encoding != "base64" {
		return []byte(resp.Content), nil
	}
	return base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
}

type putContentRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

func (g *GitHub) Write(ctx context.Context, path, ref string, content []byte, message, token string) error {
	body := putContentRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  ref,
		SHA:     token,
	}

	status, err := g.do(ctx, http.MethodPut, g.contentsURL(path), body, nil)
	if status == http.StatusConflict || status == http.StatusUnprocessableEntity {
		return &ConflictError{Path: path, Ref: ref, Err: err}
	}
	return err
}

// ChangedFiles lists the files of the merged pull request, following pagination.
func (g *GitHub) ChangedFiles(ctx context.Context, change event.ChangeMerged) ([]string, error) {
	var paths []string
	for page := 1; page <= maxFilePages; page++ {
		endpoint := fmt.Sprintf("%s/repos/%s/pulls/%d/files?per_page=%d&page=%d",
			g.baseURL, g.repo, change.ReferenceID, filesPerPage, page)

		var files []struct {
			Filename         string `json:"filename"`
			PreviousFilename string `json:"previous_filename"`
		}
		if _, err := g.do(ctx, http.MethodGet, endpoint, nil, &files); err != nil {
			return nil, fmt.Errorf("listing files of #%d: %w", change.ReferenceID, err)
		}

		for _, f := range files {
			paths = append(paths, f.Filename)
			if f.PreviousFilename != "" {
				paths = append(paths, f.PreviousFilename)
			}
		}
		if len(files) < filesPerPage {
			break
		}
	}
	return paths, nil
}

// PublishNotes replaces the release description with body.
func (g *GitHub) PublishNotes(ctx context.Context, release event.ReleasePublished, body string) error {
	if release.ReleaseID <= 0 {
		return fmt.Errorf("release %s has no id", release.VersionTag)
	}

	endpoint := fmt.Sprintf("%s/repos/%s/releases/%d", g.baseURL, g.repo, release.ReleaseID)
	payload := map[string]string{"body": body}
	if _, err := g.do(ctx, http.MethodPatch, endpoint, payload, nil); err != nil {
		return fmt.Errorf("updating release %s: %w", release.VersionTag, err)
	}
	return nil
}

func (g *GitHub) contentsURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/contents/%s", g.baseURL, g.repo, strings.Join(segments, "/"))
}

// do sends a JSON request and decodes a JSON response into out. The HTTP
// status is returned alongside any error so callers can map it.
func (g *GitHub) do(ctx context.Context, method, endpoint string, in, out any) (int, error) {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("User-Agent", build.UserAgent())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, parseAPIError(req, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}

func parseAPIError(req *http.Request, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{
		Method: req.Method,
		URL:    req.URL.Path,
		Status: resp.StatusCode,
	}

	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		apiErr.Message = errResp.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
