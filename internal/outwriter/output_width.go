package outwriter

import (
	"os"

	"github.com/hfconf/hfconf/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableExprWidth calculates the maximum width for cut expressions in
// table output based on terminal width.
func GetMaxTableExprWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Region column plus borders and padding
	available := termWidth - 30
	if available < 20 {
		return 20
	}
	if available > 120 {
		return 120
	}
	return available
}
