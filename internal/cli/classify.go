package cli

import (
	"encoding/json"
	"strconv"

	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/ariel-frischer/changekeeper/internal/event"
	"github.com/ariel-frischer/changekeeper/internal/output"
	"github.com/ariel-frischer/changekeeper/internal/workflow"
	"github.com/spf13/cobra"
)

type classifyResult struct {
	Category string `json:"category"`
	Breaking bool   `json:"breaking"`
	Scope    string `json:"scope"`
	Bump     string `json:"bump"`
}

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Preview the classification and bump of a change",
		Long: `Preview how a change would be recorded without reading or writing the
changelog. The category, breaking flag, title scope and suggested bump are
printed. Scopes inferred from changed files are not included.`,
		Example: `  changekeeper classify --title "feat(api)!: remove v1 endpoints"
  changekeeper classify --title "Update README" --label docs --json`,
		Args: maxArgs(0),
		RunE: runClassify,
	}
	cmd.GroupID = shared.GroupVersions
	cmd.Flags().StringP("title", "t", "", "Title of the change (required)")
	cmd.Flags().StringSliceP("label", "l", nil, "Label of the change (repeatable)")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	title, err := requireFlag(cmd, "title")
	if err != nil {
		return err
	}
	labels, _ := cmd.Flags().GetStringSlice("label")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg := loadConfig(cmd)
	c, level, err := workflow.Classify(event.ChangeMerged{Title: title, Labels: labels}, cfg.Rules())
	if err != nil {
		return err
	}

	result := classifyResult{
		Category: c.Category,
		Breaking: c.Breaking,
		Scope:    c.Scope,
		Bump:     level.String(),
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	output.PrintField(out, "category", result.Category)
	output.PrintField(out, "breaking", strconv.FormatBool(result.Breaking))
	output.PrintField(out, "scope", result.Scope)
	output.PrintField(out, "bump", result.Bump)
	return nil
}
