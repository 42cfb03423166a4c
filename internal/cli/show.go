package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ariel-frischer/changekeeper/internal/changelog"
	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/ariel-frischer/changekeeper/internal/output"
	"github.com/ariel-frischer/changekeeper/internal/watch"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [version]",
		Short: "Display the changelog in the terminal",
		Long: `Display the local changelog in the terminal.

Without an argument, every section is listed with its entry count. With a
version, the entries of that section are shown grouped by category; use
"unreleased" for the staging section. The "v" prefix is optional.

With --follow, the view is rendered again every time the file changes until
interrupted.`,
		Example: `  changekeeper show              # One line per section
  changekeeper show unreleased   # Staged entries
  changekeeper show v1.4.0       # Entries of 1.4.0
  changekeeper show unreleased --follow
  changekeeper show --plain      # No colors or icons`,
		Args: maxArgs(1),
		RunE: runShow,
	}
	cmd.GroupID = shared.GroupDocument
	addFileFlag(cmd)
	cmd.Flags().Bool("plain", false, "Plain text output (no colors/icons)")
	cmd.Flags().Bool("follow", false, "Render again whenever the file changes")
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	path := documentPath(cmd)
	plain, _ := cmd.Flags().GetBool("plain")
	follow, _ := cmd.Flags().GetBool("follow")

	version := ""
	if len(args) == 1 {
		version = args[0]
	}
	opts := changelog.FormatOptions{Plain: plain}
	out := cmd.OutOrStdout()

	if !follow {
		return renderShow(out, path, version, opts)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return followShow(ctx, out, path, version, opts)
}

func renderShow(out io.Writer, path, version string, opts changelog.FormatOptions) error {
	text, err := readLocalDocument(path)
	if err != nil {
		return err
	}
	doc := changelog.Parse(text)

	if version == "" {
		if len(doc.Sections) == 0 {
			fmt.Fprintln(out, "No sections found.")
			return nil
		}
		return changelog.FormatSummary(doc, out, opts)
	}

	section, err := doc.GetVersion(version)
	if err != nil {
		return err
	}
	return changelog.FormatSection(section, out, opts)
}

// followShow renders the view and renders it again after every change to the
// file. Render failures while following are shown and do not stop the loop.
func followShow(ctx context.Context, out io.Writer, path, version string, opts changelog.FormatOptions) error {
	w, err := watch.New(path)
	if err != nil {
		return err
	}
	defer w.Close()

	changes := w.Changes(ctx)
	if err := renderShow(out, path, version, opts); err != nil {
		output.PrintWarning(out, err.Error())
	}
	for range changes {
		output.PrintSeparator(out, "updated "+time.Now().Format(time.TimeOnly))
		if err := renderShow(out, path, version, opts); err != nil {
			output.PrintWarning(out, err.Error())
		}
	}
	return nil
}
