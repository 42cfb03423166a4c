// Package progress shows activity while changekeeper waits on a document store.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

const spinnerDelay = 100 * time.Millisecond

// Display reports the start and outcome of long-running steps.
// On a TTY a spinner runs while the step is in flight; elsewhere only the
// outcome line is written.
type Display struct {
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
}

// NewDisplay creates a display writing to out.
func NewDisplay(out io.Writer, caps TerminalCapabilities) *Display {
	return &Display{
		out:     out,
		caps:    caps,
		symbols: SelectSymbols(caps),
	}
}

// Track runs fn while showing message and reports whether it succeeded.
// The error from fn is returned unchanged.
func (d *Display) Track(message string, fn func() error) error {
	var s *spinner.Spinner
	if d.caps.IsTTY {
		s = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], spinnerDelay, spinner.WithWriter(d.out))
		s.Suffix = " " + message
		s.Start()
	}

	err := fn()

	if s != nil {
		s.Stop()
	}
	d.finish(message, err)
	return err
}

func (d *Display) finish(message string, err error) {
	mark := d.symbols.Checkmark
	paint := color.New(color.FgGreen).SprintFunc()
	if err != nil {
		mark = d.symbols.Failure
		paint = color.New(color.FgRed).SprintFunc()
	}
	if !d.caps.SupportsColor {
		paint = fmt.Sprint
	}
	fmt.Fprintf(d.out, "%s %s\n", paint(mark), message)
}
