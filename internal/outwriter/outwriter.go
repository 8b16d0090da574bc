// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/hfconf/hfconf/internal/contract"
	"github.com/hfconf/hfconf/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteModel prints the assembled model using the configured output format.
func (ow *OutWriter) WriteModel(model schema.ModelSummary, cfg *contract.Config, duration time.Duration) error {
	return PrintModel(model, cfg, duration)
}

// WriteFindings prints lint findings using the configured output format.
func (ow *OutWriter) WriteFindings(findings []schema.LintFinding, cfg *contract.Config, duration time.Duration) error {
	return PrintFindings(findings, cfg, duration)
}
