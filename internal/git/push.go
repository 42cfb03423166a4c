package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// Push publishes a local branch to the same branch on the named remote.
// A rejected non-fast-forward update is reported as ErrPushRejected.
// Uses SSH agent auth for SSH remotes and environment credentials for HTTPS remotes.
func (r *Repository) Push(ctx context.Context, remoteName, branch string) error {
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return fmt.Errorf("looking up remote %s: %w", remoteName, err)
	}

	remoteConfig := remote.Config()
	if len(remoteConfig.URLs) == 0 {
		return fmt.Errorf("remote %s has no URL", remoteName)
	}
	url := remoteConfig.URLs[0]

	if isSSHURL(url) && !isSSHAgentAvailable() {
		return fmt.Errorf("remote %s uses SSH but no SSH agent is available (SSH_AUTH_SOCK)", remoteName)
	}

	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%[1]s:refs/heads/%[1]s", branch))
	logDebug("[git] pushing %s to remote '%s' (%s)", branch, remoteName, url)

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       getAuthForURL(url),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		if isRejection(err) {
			return fmt.Errorf("%w: %v", ErrPushRejected, err)
		}
		return fmt.Errorf("pushing %s to %s: %w", branch, remoteName, err)
	}
	return nil
}

// isRejection reports whether a push error means the remote branch moved.
func isRejection(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "non-fast-forward") ||
		strings.Contains(msg, "fetch first") ||
		strings.Contains(msg, "rejected")
}
