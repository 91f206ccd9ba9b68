// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"

	"github.com/huangsam/debtlens/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableRepoWidth calculates the maximum width for repository names in table
// output based on terminal width and the fixed summary columns.
func GetMaxTableRepoWidth(cfg *contract.Config) int {
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

	// Status + Commits + Days + Trend + Tau + Seasonal + both causality columns + Time
	baseWidth := 95

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 50 {
		return 50
	}
	return available
}

// labelFuncs returns the label renderers for table output, colored or plain.
func labelFuncs(cfg *contract.Config) (trend func(tau, pValue, alpha float64) string, causal func(tested, causal bool) string) {
	if cfg.UseColors {
		return contract.GetTrendColorLabel, contract.GetCausalColorLabel
	}
	return contract.GetTrendLabel, contract.GetCausalLabel
}

// signedDelta renders a technical debt delta with an explicit sign and arrow.
func signedDelta(delta float64, precision int, useColors bool) string {
	text := contract.FormatFloat(delta, precision)
	switch {
	case text == contract.MissingValue:
		return text
	case delta > 0:
		text = fmt.Sprintf("+%s ▲", text)
		if useColors {
			return contract.IncreasingColor.Sprint(text)
		}
	case delta < 0:
		text += " ▼"
		if useColors {
			return contract.DecreasingColor.Sprint(text)
		}
	}
	return text
}
