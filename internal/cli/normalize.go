package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ariel-frischer/changekeeper/internal/changelog"
	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	clierrors "github.com/ariel-frischer/changekeeper/internal/errors"
	"github.com/ariel-frischer/changekeeper/internal/output"
	"github.com/spf13/cobra"
)

func newNormalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Bring the local changelog into canonical form",
		Long: `Bring the local changelog into canonical form: a title header, exactly one
staging section placed first when it was missing, and uniform blank lines
between sections. A missing file is created.

Running it twice changes nothing the second time. With --check, the file is
only compared and the command exits with code 1 when it would change.`,
		Example: `  changekeeper normalize
  changekeeper normalize --check   # CI guard`,
		Args: maxArgs(0),
		RunE: runNormalize,
	}
	cmd.GroupID = shared.GroupDocument
	addFileFlag(cmd)
	cmd.Flags().Bool("check", false, "Only report whether the file is normalized")
	return cmd
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	path := documentPath(cmd)
	check, _ := cmd.Flags().GetBool("check")

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	missing := err != nil
	current := string(data)
	normalized := changelog.Normalize(current)
	out := cmd.OutOrStdout()

	if !missing && normalized == current {
		output.PrintSuccess(out, fmt.Sprintf("%s is normalized", path))
		return nil
	}

	if check {
		return clierrors.NewRuntimeError(
			fmt.Sprintf("%s is not normalized", path),
			"Run: changekeeper normalize",
		)
	}

	if err := os.WriteFile(path, []byte(normalized), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if missing {
		output.PrintSuccess(out, fmt.Sprintf("created %s", path))
	} else {
		output.PrintSuccess(out, fmt.Sprintf("normalized %s", path))
	}
	return nil
}
