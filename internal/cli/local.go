package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	clierrors "github.com/ariel-frischer/changekeeper/internal/errors"
	"github.com/spf13/cobra"
)

// workingTreeRef names the working tree in messages about local documents.
const workingTreeRef = "the working tree"

// addFileFlag registers --file on commands that work on the local document.
func addFileFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Changelog file (default: changelog_path from the configuration)")
}

// documentPath returns --file or the configured changelog path.
func documentPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		return path
	}
	return loadConfig(cmd).ChangelogPath
}

// readLocalDocument reads the changelog from the working tree. A missing file
// is reported as DocumentNotFound.
func readLocalDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", clierrors.DocumentNotFound(path, workingTreeRef)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
