package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pypilens/pypilens/pkg/record"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Run Summary
// =============================================================================

// printSummary prints one line per aggregated record plus a totals row.
func printSummary(records []*record.PackageRecord) {
	nameStyle := lipgloss.NewStyle().Foreground(colorWhite).Width(28)
	versionStyle := lipgloss.NewStyle().Foreground(colorCyan).Width(14)

	failed := 0
	for _, rec := range records {
		status := styleIconSuccess.Render(iconSuccess)
		detail := summaryDetail(rec)
		if rec.Error != "" {
			failed++
			status = styleIconError.Render(iconError)
			detail = StyleWarning.Render(rec.Error)
		}
		fmt.Println("  " + status + " " + nameStyle.Render(rec.Name) + versionStyle.Render(rec.Version) + StyleDim.Render(detail))
	}

	fmt.Println()
	if failed == 0 {
		printSuccess("Aggregated %d package(s)", len(records))
	} else {
		printWarning("Aggregated %d package(s), %d failed", len(records), failed)
	}
}

// summaryDetail condenses the interesting counters for one record.
func summaryDetail(rec *record.PackageRecord) string {
	deps := len(rec.Dependencies)
	if deps == 1 && rec.Dependencies[0] == record.NoDependencies {
		deps = 0
	}
	detail := fmt.Sprintf("%d deps", deps)
	if n, ok := rec.Downloads["last_month"]; ok {
		detail += fmt.Sprintf(" · %d dl/month", n)
	}
	if rec.VCSStats != nil {
		if stars, ok := rec.VCSStats["stars"]; ok {
			detail += fmt.Sprintf(" · %v stars", stars)
		}
	}
	return detail
}
