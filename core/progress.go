package core

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
	"golang.org/x/term"
)

// startProgress shows a spinner on stderr while a long fetch runs and returns the function that stops it.
// Nothing is drawn unless stderr is a terminal and output is a table.
func startProgress(cfg *contract.Config, suffix string) func() {
	if cfg.Output != schema.TextOut || !term.IsTerminal(int(os.Stderr.Fd())) {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = suffix
	if cfg.UseColors {
		_ = s.Color("cyan")
	}
	s.Start()
	return s.Stop
}
