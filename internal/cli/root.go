// Package cli implements the changekeeper command line.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	configcmd "github.com/ariel-frischer/changekeeper/internal/cli/config"
	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/ariel-frischer/changekeeper/internal/cli/util"
	clierrors "github.com/ariel-frischer/changekeeper/internal/errors"
	"github.com/ariel-frischer/changekeeper/internal/git"
	"github.com/ariel-frischer/changekeeper/internal/workflow"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "changekeeper",
		Short: "Keep a changelog in step with merged changes and releases",
		Long: `changekeeper records merged changes in the staging section of a Markdown
changelog and moves them into a dated version section when a release is
published. Every recorded change also yields a semantic-version bump
suggestion (major, minor, patch or none).

The document is read and written through a store: the local git repository
(default) or the GitHub contents API. Writes carry the token obtained on read,
so a concurrent update fails with exit code 2 instead of being overwritten.

Exit codes:
  0  success (including skipped duplicates and empty releases)
  1  failure
  2  write conflict, safe to re-run
  3  invalid arguments or event payload
  4  missing credentials`,
		Example: `  # GitHub Actions: process the triggering event
  changekeeper handle

  # Record a merged change on main
  changekeeper merged --ref 42 --title "feat(api): add pagination" --base main

  # Cut a release
  changekeeper release v1.4.0

  # Preview a classification without touching anything
  changekeeper classify --title "fix!: drop legacy flag"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			configureDebug(cmd.ErrOrStderr(), debug)
		},
	}

	rootCmd.AddGroup(
		&cobra.Group{ID: shared.GroupEvents, Title: "Event Commands:"},
		&cobra.Group{ID: shared.GroupDocument, Title: "Document Commands:"},
		&cobra.Group{ID: shared.GroupVersions, Title: "Version Commands:"},
		&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration:"},
		&cobra.Group{ID: shared.GroupInternal, Title: "Other Commands:"},
	)
	rootCmd.SetHelpCommandGroupID(shared.GroupInternal)
	rootCmd.SetCompletionCommandGroupID(shared.GroupInternal)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
	})

	rootCmd.PersistentFlags().StringP(shared.ConfigFlagName, "c", "", "Path to config file (default: .changekeeper.yml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log store and workflow decisions to stderr")

	rootCmd.AddCommand(
		newMergedCmd(),
		newReleaseCmd(),
		newHandleCmd(),
		newShowCmd(),
		newExtractCmd(),
		newNormalizeCmd(),
		newClassifyCmd(),
		newNextCmd(),
	)
	configcmd.Register(rootCmd)
	util.Register(rootCmd)

	return rootCmd
}

// Execute runs the command line and reports failures on stderr. The returned
// error carries the process exit code; see shared.ExitCode.
func Execute() error {
	return execute(NewRootCmd(), os.Args[1:], os.Stderr)
}

func execute(rootCmd *cobra.Command, args []string, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	cliErr, code := describeError(err)
	if cliErr != nil {
		clierrors.FprintError(stderr, cliErr)
	}
	return shared.NewExitError(code)
}

// configureDebug routes the package debug loggers to w.
func configureDebug(w io.Writer, enabled bool) {
	if !enabled {
		git.SetDebugLogger(nil)
		workflow.SetDebugLogger(nil)
		return
	}
	logger := log.New(w, "debug: ", log.Ltime)
	git.SetDebugLogger(logger.Printf)
	workflow.SetDebugLogger(logger.Printf)
	logger.Printf("[cli] debug logging enabled")
}

// exactArgs is cobra.ExactArgs reported as an argument error.
func exactArgs(n int) cobra.PositionalArgs {
	return withUsage(cobra.ExactArgs(n))
}

// maxArgs is cobra.MaximumNArgs reported as an argument error.
func maxArgs(n int) cobra.PositionalArgs {
	return withUsage(cobra.MaximumNArgs(n))
}

func withUsage(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
		}
		return nil
	}
}

// requireFlag reports an empty string flag as an argument error.
func requireFlag(cmd *cobra.Command, name string) (string, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return "", clierrors.NewArgumentErrorWithUsage(
			fmt.Sprintf("--%s is required", name), cmd.UseLine())
	}
	return value, nil
}
