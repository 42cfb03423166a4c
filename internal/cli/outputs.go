package cli

import (
	"fmt"
	"os"
	"strings"
)

// githubOutputEnv names the file GitHub Actions collects step outputs from.
const githubOutputEnv = "GITHUB_OUTPUT"

// outputDelimiter terminates multi-line values.
const outputDelimiter = "CHANGEKEEPER_EOF"

type stepOutput struct {
	name  string
	value string
}

// writeStepOutputs appends outputs to $GITHUB_OUTPUT. It does nothing when
// the variable is unset.
func writeStepOutputs(outputs ...stepOutput) error {
	path := os.Getenv(githubOutputEnv)
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", githubOutputEnv, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, o := range outputs {
		if strings.ContainsAny(o.value, "\r\n") {
			fmt.Fprintf(&b, "%s<<%s\n%s\n%s\n", o.name, outputDelimiter, strings.TrimRight(o.value, "\r\n"), outputDelimiter)
			continue
		}
		fmt.Fprintf(&b, "%s=%s\n", o.name, o.value)
	}

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("writing %s: %w", githubOutputEnv, err)
	}
	return nil
}
