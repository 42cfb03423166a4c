package cli

import (
	"fmt"
	"strings"

	"github.com/ariel-frischer/changekeeper/internal/changelog"
	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <version>",
		Short: "Extract release notes for a specific version",
		Long: `Extract release notes for a specific version in markdown format.

The body of the version section is written to stdout exactly as it appears in
the changelog, suitable for GitHub release notes. Use "unreleased" for the
staged entries.`,
		Example: `  changekeeper extract v1.4.0      # Notes for version 1.4.0
  changekeeper extract 1.4.0       # Same (v prefix optional)
  changekeeper extract unreleased  # Staged entries`,
		Args: exactArgs(1),
		RunE: runExtract,
	}
	cmd.GroupID = shared.GroupDocument
	addFileFlag(cmd)
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	text, err := readLocalDocument(documentPath(cmd))
	if err != nil {
		return err
	}

	section, err := changelog.Parse(text).GetVersion(args[0])
	if err != nil {
		return err
	}

	body := strings.TrimSpace(section.Body)
	if body != "" {
		fmt.Fprintln(cmd.OutOrStdout(), body)
	}
	return nil
}
