package cli

import (
	"fmt"

	"github.com/ariel-frischer/changekeeper/internal/bump"
	"github.com/ariel-frischer/changekeeper/internal/changelog"
	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	clierrors "github.com/ariel-frischer/changekeeper/internal/errors"
	"github.com/ariel-frischer/changekeeper/internal/output"
	"github.com/ariel-frischer/changekeeper/internal/workflow"
	"github.com/spf13/cobra"
)

// initialVersion is the current version of a changelog without releases.
const initialVersion = "0.0.0"

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next [current]",
		Short: "Compute the next version",
		Long: `Compute the version that follows current.

Without --bump, the increment is suggested from the staged entries of the
local changelog: a breaking block or entry means major, features mean minor,
fixes and maintenance mean patch. Without current, the latest released
version of the changelog is used (0.0.0 when there is none).

The next version is printed on stdout and written to $GITHUB_OUTPUT as
"version" together with "bump" when that variable is set.`,
		Example: `  changekeeper next                  # From the changelog
  changekeeper next v1.4.0 --bump minor
  changekeeper next 2.0.0-rc.1 --bump patch`,
		Args: maxArgs(1),
		RunE: runNext,
	}
	cmd.GroupID = shared.GroupVersions
	addFileFlag(cmd)
	cmd.Flags().String("bump", "", "Increment to apply: major, minor, patch or none")
	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	current := ""
	if len(args) == 1 {
		current = args[0]
	}

	level, err := requestedLevel(cmd)
	if err != nil {
		return err
	}

	if current == "" || !cmd.Flags().Changed("bump") {
		text, err := readLocalDocument(documentPath(cmd))
		if err != nil {
			return err
		}
		if current == "" {
			current = latestVersion(text)
		}
		if !cmd.Flags().Changed("bump") {
			var staged int
			level, staged = workflow.Pending(text)
			output.PrintField(cmd.ErrOrStderr(), "staged", fmt.Sprintf("%d entries", staged))
		}
	}

	if !bump.IsValid(current) {
		return clierrors.InvalidVersionTag(current)
	}
	next, err := bump.Next(current, level)
	if err != nil {
		return err
	}

	output.PrintField(cmd.ErrOrStderr(), "bump", level.String())
	fmt.Fprintln(cmd.OutOrStdout(), next)

	return writeStepOutputs(
		stepOutput{name: "version", value: next},
		stepOutput{name: "bump", value: level.String()},
	)
}

func requestedLevel(cmd *cobra.Command) (bump.Level, error) {
	raw, _ := cmd.Flags().GetString("bump")
	level, err := bump.ParseLevel(raw)
	if err != nil {
		return bump.None, clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
	}
	return level, nil
}

func latestVersion(text string) string {
	if latest := changelog.Parse(text).LatestRelease(); latest != nil {
		return latest.Label
	}
	return initialVersion
}
