package outwriter

import (
	"os"

	"github.com/huangsam/snowdash/internal/contract"
	"golang.org/x/term"
)

// terminalWidth returns the override width, the detected terminal width, or 80.
func terminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		return 80
	}
	return detectedWidth
}

// GetChartWidth calculates the bar width of the cost chart from the terminal width.
func GetChartWidth(cfg *contract.Config) int {
	// Date label, value, severity and separators
	available := terminalWidth(cfg) - 36
	if available < 10 {
		return 10
	}
	if available > 60 {
		return 60
	}
	return available
}
