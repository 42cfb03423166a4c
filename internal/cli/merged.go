package cli

import (
	"fmt"
	"strconv"

	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/ariel-frischer/changekeeper/internal/event"
	"github.com/ariel-frischer/changekeeper/internal/output"
	"github.com/ariel-frischer/changekeeper/internal/workflow"
	"github.com/spf13/cobra"
)

func newMergedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merged",
		Short: "Record a merged change in the staging section",
		Long: `Record a merged change in the staging section of the changelog.

The change is classified from its labels and title: a label matching a
category alias wins, then the conventional-commit type of the title, then the
fallback category. A "!" after the type, a breaking label or the phrase
"breaking change" in the title marks it as breaking.

The entry is inserted directly below its category heading. A change whose
reference is already staged is skipped without writing.

The suggested bump (major, minor, patch or none) is printed on stdout and
written to $GITHUB_OUTPUT as "bump" when that variable is set.`,
		Example: `  # Record pull request #42 on main
  changekeeper merged --ref 42 --title "feat(api): add pagination" --base main

  # Labels select the category and can mark a breaking change
  changekeeper merged --ref 43 --title "Drop Go 1.20" --label breaking --label chore

  # Force the scope shown in the entry
  changekeeper merged --ref 44 --title "fix: handle empty body" --scope cli`,
		Args: maxArgs(0),
		RunE: runMerged,
	}
	cmd.GroupID = shared.GroupEvents
	cmd.Flags().StringP("title", "t", "", "Title of the merged change (required)")
	cmd.Flags().StringSliceP("label", "l", nil, "Label of the change (repeatable)")
	cmd.Flags().IntP("ref", "r", 0, "Reference number of the change, e.g. the pull request number")
	cmd.Flags().StringP("base", "b", "", "Branch the change was merged into (default: current branch)")
	cmd.Flags().String("commit", "", "Merge commit, used to list changed files with the git store")
	cmd.Flags().String("scope", "", "Scope used when the title carries none")
	return cmd
}

func runMerged(cmd *cobra.Command, _ []string) error {
	title, err := requireFlag(cmd, "title")
	if err != nil {
		return err
	}
	labels, _ := cmd.Flags().GetStringSlice("label")
	ref, _ := cmd.Flags().GetInt("ref")
	base, _ := cmd.Flags().GetString("base")
	commit, _ := cmd.Flags().GetString("commit")
	scope, _ := cmd.Flags().GetString("scope")

	w, b, err := newWorkflow(cmd)
	if err != nil {
		return err
	}
	if base == "" && w.Config.Store.Branch == "" && b.CurrentBranch != nil {
		if base, err = b.CurrentBranch(); err != nil {
			return fmt.Errorf("resolving current branch: %w", err)
		}
	}
	w.Scope = scope

	return recordMerged(cmd, w, event.ChangeMerged{
		ReferenceID: ref,
		Title:       title,
		Labels:      labels,
		BaseBranch:  base,
		MergeCommit: commit,
	})
}

// recordMerged runs the merged-change workflow and reports its outcome.
func recordMerged(cmd *cobra.Command, w *workflow.Workflow, change event.ChangeMerged) error {
	result, err := w.HandleMerged(cmd.Context(), change)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if result.Skipped {
		output.PrintSkipped(stderr, fmt.Sprintf("%s already recorded on %s", changeName(change), result.Branch))
	} else {
		output.PrintSuccess(stderr, fmt.Sprintf("recorded %s under %s on %s", changeName(change), result.Classification.Category, result.Branch))
	}
	output.PrintField(stderr, "entry", result.Entry)
	output.PrintField(stderr, "breaking", strconv.FormatBool(result.Classification.Breaking))
	output.PrintField(stderr, "bump", result.Bump.String())

	fmt.Fprintln(cmd.OutOrStdout(), result.Bump)

	return writeStepOutputs(
		stepOutput{name: "bump", value: result.Bump.String()},
		stepOutput{name: "category", value: result.Classification.Category},
		stepOutput{name: "breaking", value: strconv.FormatBool(result.Classification.Breaking)},
		stepOutput{name: "scope", value: result.Classification.Scope},
		stepOutput{name: "skipped", value: strconv.FormatBool(result.Skipped)},
	)
}

func changeName(change event.ChangeMerged) string {
	if change.ReferenceID > 0 {
		return fmt.Sprintf("#%d", change.ReferenceID)
	}
	return "change"
}
