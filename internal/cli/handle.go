package cli

import (
	"errors"
	"fmt"

	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/ariel-frischer/changekeeper/internal/event"
	"github.com/ariel-frischer/changekeeper/internal/output"
	"github.com/spf13/cobra"
)

func newHandleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "handle",
		Short: "Process a GitHub webhook event",
		Long: `Process the GitHub event that triggered the current workflow run.

A merged pull request ("pull_request" or "pull_request_target", action
"closed") is recorded like 'changekeeper merged'. A published release
("release", action "published") is cut like 'changekeeper release'. Other
events and actions are skipped with exit code 0.

The event is read from GITHUB_EVENT_NAME and GITHUB_EVENT_PATH unless both
flags are given.`,
		Example: `  # In a GitHub Actions step
  changekeeper handle

  # Replay a saved payload
  changekeeper handle --event-name pull_request --event-path payload.json`,
		Args: maxArgs(0),
		RunE: runHandle,
	}
	cmd.GroupID = shared.GroupEvents
	cmd.Flags().String("event-name", "", "Event name (default: $GITHUB_EVENT_NAME)")
	cmd.Flags().String("event-path", "", "Path of the JSON payload (default: $GITHUB_EVENT_PATH)")
	return cmd
}

func runHandle(cmd *cobra.Command, _ []string) error {
	ev, err := loadEvent(cmd)
	if errors.Is(err, event.ErrIgnored) {
		output.PrintSkipped(cmd.ErrOrStderr(), err.Error())
		return nil
	}
	if err != nil {
		return err
	}

	w, _, err := newWorkflow(cmd)
	if err != nil {
		return err
	}

	switch ev := ev.(type) {
	case event.ChangeMerged:
		return recordMerged(cmd, w, ev)
	case event.ReleasePublished:
		return cutRelease(cmd, w, ev)
	default:
		return fmt.Errorf("unsupported event kind %q", ev.Kind())
	}
}

func loadEvent(cmd *cobra.Command) (event.Event, error) {
	name, _ := cmd.Flags().GetString("event-name")
	path, _ := cmd.Flags().GetString("event-path")
	if name == "" && path == "" {
		return event.FromEnv()
	}
	return event.Load(name, path)
}
