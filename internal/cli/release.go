package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ariel-frischer/changekeeper/internal/bump"
	"github.com/ariel-frischer/changekeeper/internal/changelog"
	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	clierrors "github.com/ariel-frischer/changekeeper/internal/errors"
	"github.com/ariel-frischer/changekeeper/internal/event"
	"github.com/ariel-frischer/changekeeper/internal/output"
	"github.com/ariel-frischer/changekeeper/internal/workflow"
	"github.com/spf13/cobra"
)

func newReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release <tag>",
		Short: "Move staged entries into a new version section",
		Long: `Move the staged entries into a new "[<version>] – <date>" section placed
directly below the staging section. The staging section stays in place and is
emptied. A leading "v" of the tag is dropped from the section title.

When nothing is staged, the document is left untouched and nothing is
published. With the GitHub store and --release-id, the moved entries also
become the body of the GitHub release.

The release notes are printed on stdout.`,
		Example: `  # Release the staged entries as 1.4.0 on the current branch
  changekeeper release v1.4.0

  # Release on another branch with a fixed date
  changekeeper release v1.4.0 --target release/1.x --date 2024-06-01`,
		Args: exactArgs(1),
		RunE: runRelease,
	}
	cmd.GroupID = shared.GroupEvents
	cmd.Flags().String("target", "", "Branch holding the changelog (default: current branch)")
	cmd.Flags().String("date", "", "Release date as YYYY-MM-DD (default: today)")
	cmd.Flags().Int64("release-id", 0, "GitHub release id whose body receives the notes")
	return cmd
}

func runRelease(cmd *cobra.Command, args []string) error {
	tag := args[0]
	if !bump.IsValid(tag) {
		return clierrors.InvalidVersionTag(tag)
	}
	target, _ := cmd.Flags().GetString("target")
	releaseID, _ := cmd.Flags().GetInt64("release-id")

	date, err := releaseDate(cmd)
	if err != nil {
		return err
	}

	w, b, err := newWorkflow(cmd)
	if err != nil {
		return err
	}
	if target == "" && w.Config.Store.Branch == "" && b.CurrentBranch != nil {
		if target, err = b.CurrentBranch(); err != nil {
			return fmt.Errorf("resolving current branch: %w", err)
		}
	}
	if !date.IsZero() {
		w.Now = func() time.Time { return date }
	}
	if releaseID <= 0 {
		w.Notes = nil
	}

	return cutRelease(cmd, w, event.ReleasePublished{
		VersionTag:   tag,
		TargetBranch: target,
		ReleaseID:    releaseID,
	})
}

func releaseDate(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(changelog.DateFormat, raw)
	if err != nil {
		return time.Time{}, clierrors.NewArgumentErrorWithUsage(
			fmt.Sprintf("invalid --date %q", raw), cmd.UseLine(),
			"Dates use the YYYY-MM-DD format, e.g. 2024-06-01",
		)
	}
	return date, nil
}

// cutRelease runs the release workflow and reports its outcome. A failure to
// publish the notes is returned after the outcome of the cutover is shown.
func cutRelease(cmd *cobra.Command, w *workflow.Workflow, release event.ReleasePublished) error {
	result, err := w.HandleRelease(cmd.Context(), release)
	if result == nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if result.Skipped {
		output.PrintSkipped(stderr, fmt.Sprintf("nothing staged on %s, %s not written", result.Branch, result.Version))
	} else {
		output.PrintSuccess(stderr, fmt.Sprintf("released %s on %s", result.Title, result.Branch))
		if result.Published {
			output.PrintSuccess(stderr, fmt.Sprintf("published notes to release %s", release.VersionTag))
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Notes)
	}

	if outErr := writeStepOutputs(
		stepOutput{name: "version", value: result.Version},
		stepOutput{name: "skipped", value: strconv.FormatBool(result.Skipped)},
		stepOutput{name: "notes", value: result.Notes},
	); outErr != nil && err == nil {
		err = outErr
	}
	return err
}
