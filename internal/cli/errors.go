package cli

import (
	"errors"

	"github.com/ariel-frischer/changekeeper/internal/changelog"
	"github.com/ariel-frischer/changekeeper/internal/classify"
	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/ariel-frischer/changekeeper/internal/config"
	clierrors "github.com/ariel-frischer/changekeeper/internal/errors"
	"github.com/ariel-frischer/changekeeper/internal/event"
	"github.com/ariel-frischer/changekeeper/internal/store"
	"github.com/ariel-frischer/changekeeper/internal/workflow"
)

// describeError maps an error returned by a command to the message shown to
// the user and the process exit code. A nil message means the command already
// reported the failure.
func describeError(err error) (*clierrors.CLIError, int) {
	var (
		exitErr  *shared.ExitError
		cliErr   *clierrors.CLIError
		conflict *store.ConflictError
		payload  *event.InvalidPayloadError
		notFound *changelog.VersionNotFoundError
		existing *changelog.VersionExistsError
		apiErr   *store.APIError
	)

	switch {
	case errors.As(err, &exitErr):
		return nil, exitErr.Code
	case errors.As(err, &cliErr):
		return cliErr, exitCodeFor(cliErr.Category)
	case errors.As(err, &conflict):
		return clierrors.WriteConflict(conflict.Path, conflict.Ref, err), shared.ExitConflict
	case errors.Is(err, store.ErrAuthMissing):
		return clierrors.MissingToken(config.BackendGitHub), shared.ExitAuthMissing
	case errors.As(err, &payload):
		return clierrors.InvalidEvent(payload.Event, err), shared.ExitInvalidArguments
	case errors.Is(err, classify.ErrMalformedClassification), errors.Is(err, changelog.ErrInvalidCategory):
		return clierrors.MalformedClassification(err), shared.ExitFailure
	case errors.As(err, &notFound):
		return clierrors.VersionNotFound(notFound.Version), shared.ExitInvalidArguments
	case errors.As(err, &existing):
		return clierrors.NewArgumentError(existing.Error(),
			"Each version can be released once; check the tag",
			"Inspect the document with: changekeeper show "+existing.Version,
		), shared.ExitInvalidArguments
	case errors.Is(err, workflow.ErrNoBranch):
		return clierrors.NewArgumentError("no branch to write the changelog to",
			"Pass the branch explicitly: --base <branch> or --target <branch>",
			"Or configure one: changekeeper config set store.branch main",
		), shared.ExitInvalidArguments
	case errors.As(err, &apiErr) && (apiErr.Status == 401 || apiErr.Status == 403):
		return clierrors.WrapWithMessage(err, clierrors.Authentication, "GitHub rejected the credentials",
			"Check that GITHUB_TOKEN has contents: write permission",
		), shared.ExitAuthMissing
	default:
		return clierrors.Wrap(err, clierrors.Runtime), shared.ExitFailure
	}
}

func exitCodeFor(category clierrors.ErrorCategory) int {
	switch category {
	case clierrors.Argument:
		return shared.ExitInvalidArguments
	case clierrors.Authentication:
		return shared.ExitAuthMissing
	case clierrors.Conflict:
		return shared.ExitConflict
	default:
		return shared.ExitFailure
	}
}
