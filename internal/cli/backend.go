package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/ariel-frischer/changekeeper/internal/config"
	clierrors "github.com/ariel-frischer/changekeeper/internal/errors"
	"github.com/ariel-frischer/changekeeper/internal/git"
	"github.com/ariel-frischer/changekeeper/internal/output"
	"github.com/ariel-frischer/changekeeper/internal/progress"
	"github.com/ariel-frischer/changekeeper/internal/store"
	"github.com/ariel-frischer/changekeeper/internal/workflow"
	"github.com/spf13/cobra"
)

// tokenEnvVars are checked in order for a GitHub API token.
var tokenEnvVars = []string{"GITHUB_TOKEN", "GH_TOKEN"}

// backend bundles the store adapters of one run.
type backend struct {
	Store  store.Store
	Lister store.ChangeLister
	Notes  store.NotesSink
	// CurrentBranch names the branch to use when neither the command line
	// nor the configuration names one. Nil when the backend has no notion of
	// a checked out branch.
	CurrentBranch func() (string, error)
}

// openBackend opens the configured store. Tests replace it.
var openBackend = func(cfg *config.Configuration) (*backend, error) {
	switch cfg.Store.Backend {
	case config.BackendGitHub:
		return openGitHub(cfg)
	case config.BackendGit, "":
		return openGit(cfg)
	default:
		return nil, clierrors.NewConfigError(
			fmt.Sprintf("unknown store backend %q", cfg.Store.Backend),
			"Valid backends: git, github",
		)
	}
}

func openGit(cfg *config.Configuration) (*backend, error) {
	repo, err := git.Open("")
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Runtime, "the git store needs a repository",
			"Run changekeeper inside a git checkout",
			"Or use the GitHub store: changekeeper config set store.backend github",
		)
	}
	s := store.NewGit(repo, store.GitOptions{
		Remote:      cfg.Store.Remote,
		Push:        cfg.Store.Push,
		AuthorName:  cfg.Store.AuthorName,
		AuthorEmail: cfg.Store.AuthorEmail,
	})
	return &backend{Store: s, Lister: s, CurrentBranch: repo.CurrentBranch}, nil
}

func openGitHub(cfg *config.Configuration) (*backend, error) {
	s, err := store.NewGitHub(store.GitHubOptions{
		Repository: cfg.GitHub.Repository,
		Token:      lookupToken(),
		APIURL:     cfg.GitHub.APIURL,
		HTTPClient: &http.Client{Timeout: cfg.GitHubTimeout()},
	})
	if err != nil {
		return nil, err
	}
	return &backend{Store: s, Lister: s, Notes: s}, nil
}

func lookupToken() string {
	for _, name := range tokenEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// loadConfig loads the configuration named by --config. A malformed
// configuration is reported as a warning and replaced by the defaults.
func loadConfig(cmd *cobra.Command) *config.Configuration {
	path, _ := cmd.Flags().GetString(shared.ConfigFlagName)
	cfg, err := config.Load(path)
	if err != nil {
		output.PrintWarning(cmd.ErrOrStderr(), clierrors.InvalidConfig(err).Message)
	}
	return cfg
}

// newWorkflow loads the configuration and opens the store for a mutating
// command. Store calls are reported on stderr.
func newWorkflow(cmd *cobra.Command) (*workflow.Workflow, *backend, error) {
	cfg := loadConfig(cmd)
	b, err := openBackend(cfg)
	if err != nil {
		return nil, nil, err
	}

	display := progress.NewDisplay(cmd.ErrOrStderr(), progress.DetectTerminalCapabilities())
	w := workflow.New(&trackedStore{Store: b.Store, document: cfg.ChangelogPath, display: display}, cfg)
	w.Lister = b.Lister
	w.Notes = b.Notes
	return w, b, nil
}

// trackedStore reports reads and writes of the document. Other paths pass
// through silently.
type trackedStore struct {
	store.Store
	document string
	display  *progress.Display
}

func (t *trackedStore) Read(ctx context.Context, path, ref string) (*store.File, error) {
	if path != t.document {
		return t.Store.Read(ctx, path, ref)
	}
	var f *store.File
	err := t.display.Track(fmt.Sprintf("reading %s@%s", path, ref), func() error {
		var err error
		f, err = t.Store.Read(ctx, path, ref)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, store.ErrNotFound
	}
	return f, nil
}

func (t *trackedStore) Write(ctx context.Context, path, ref string, content []byte, message, token string) error {
	return t.display.Track(fmt.Sprintf("writing %s@%s", path, ref), func() error {
		return t.Store.Write(ctx, path, ref, content, message, token)
	})
}
