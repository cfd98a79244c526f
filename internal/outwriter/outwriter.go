// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSummary prints the outcome of a sync using the configured output format.
func (ow *OutWriter) WriteSummary(summary schema.SyncSummary, cfg *contract.Config) error {
	return PrintSyncSummary(summary, cfg)
}

// WriteCommit prints a single commit and its file stats using the configured output format.
func (ow *OutWriter) WriteCommit(detail schema.CommitDetail, cfg *contract.Config) error {
	return PrintCommitDetail(detail, cfg)
}

// WriteDump prints flattened file rows using the configured output format.
func (ow *OutWriter) WriteDump(rows []schema.FileRow, cfg *contract.Config) error {
	return PrintFileRows(rows, cfg)
}

// GetMaxTablePathWidth calculates the maximum width for file paths in table output
// based on terminal width and the space taken by the other columns.
func GetMaxTablePathWidth(cfg *contract.Config, fixedWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve generous space for table borders, separators, and padding
	available := termWidth - fixedWidth - 20
	if available < 15 {
		return 15
	}
	if available > 90 {
		return 90
	}
	return available
}
