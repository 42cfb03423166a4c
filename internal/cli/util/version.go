// Package util provides small informational commands of the CLI.
package util

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ariel-frischer/changekeeper/internal/build"
	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Register adds the version and sauce commands to root.
func Register(root *cobra.Command) {
	root.AddCommand(newVersionCmd(), newSauceCmd())
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Display version information (v)",
		Long:    "Display version, commit, build date, and Go version information for changekeeper",
		Example: `  # Show version info
  changekeeper version

  # Plain output (for scripts)
  changekeeper version --plain`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			plain, _ := cmd.Flags().GetBool("plain")
			if plain {
				printPlainVersion(cmd.OutOrStdout())
				return
			}
			printPrettyVersion(cmd.OutOrStdout())
		},
	}
	cmd.GroupID = shared.GroupInternal
	cmd.Flags().Bool("plain", false, "Plain output without formatting")
	return cmd
}

func newSauceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sauce",
		Short: "Display the source URL",
		Long:  "Display the source URL for the changekeeper project",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), build.SourceURL)
		},
	}
	cmd.GroupID = shared.GroupInternal
	return cmd
}

type versionField struct {
	label string
	value string
}

func versionFields() []versionField {
	return []versionField{
		{"Version", build.Version},
		{"Commit", truncateCommit(build.Commit)},
		{"Built", build.BuildDate},
		{"Go", runtime.Version()},
		{"Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
	}
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(out io.Writer) {
	fmt.Fprintf(out, "changekeeper %s\n", build.Version)
	fmt.Fprintf(out, "commit: %s\n", build.Commit)
	fmt.Fprintf(out, "built: %s\n", build.BuildDate)
	fmt.Fprintf(out, "go: %s\n", runtime.Version())
	fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// printPrettyVersion prints the version fields inside a box.
func printPrettyVersion(out io.Writer) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fields := versionFields()
	width := len("changekeeper")
	for _, f := range fields {
		if n := 12 + 4 + len(f.value); n > width {
			width = n
		}
	}
	width += 4

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  "+cyan("changekeeper"))
	fmt.Fprintln(out, "  ╭"+strings.Repeat("─", width)+"╮")
	for _, f := range fields {
		used := 12 + 4 + len(f.value)
		line := fmt.Sprintf("%s    %s", yellow(fmt.Sprintf("%12s", f.label)), white(f.value))
		fmt.Fprintln(out, "  │"+line+strings.Repeat(" ", width-used)+"│")
	}
	fmt.Fprintln(out, "  ╰"+strings.Repeat("─", width)+"╯")
	fmt.Fprintln(out)
}

// truncateCommit shortens commit hash if it's too long
func truncateCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
