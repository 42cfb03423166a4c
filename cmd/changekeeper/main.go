package main

import (
	"os"

	"github.com/ariel-frischer/changekeeper/internal/cli"
	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(shared.ExitCode(err))
	}
}
