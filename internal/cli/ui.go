package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan  = lipgloss.Color("36")  // Teal - primary actions
	colorGreen = lipgloss.Color("35")  // Green - success
	colorRed   = lipgloss.Color("167") // Soft red - descending pairs
	colorWhite = lipgloss.Color("255") // Bright white - values
	colorGray  = lipgloss.Color("245") // Gray - secondary text
	colorDim   = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleAscending   = lipgloss.NewStyle().Foreground(colorGreen)
	styleDescending  = lipgloss.NewStyle().Foreground(colorRed)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCell        = lipgloss.NewStyle().Padding(0, 1)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconArrow   = "→"
	iconUp      = "↑"
	iconDown    = "↓"
)

// =============================================================================
// Output Helpers
// =============================================================================

// printSuccess prints a success message with a checkmark.
func printSuccess(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printTable renders rows under headers in a rounded table.
func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return styleHeader.Padding(0, 1)
			}
			return styleCell
		})
	fmt.Fprintln(w, t.Render())
}

// =============================================================================
// Sort Summary
// =============================================================================

// summary is what every sort command reports, mirroring the timing lines of
// the reference runs: dataset size, padded size, parallelism and time.
type summary struct {
	mode    string
	count   int
	padded  int
	unit    string // "Threads" or "Processes"; empty for serial runs
	units   int
	elapsed time.Duration
	output  string
}

func printSummary(w io.Writer, s summary) {
	printSuccess(w, "Sorted %s values %s", StyleNumber.Render(fmt.Sprint(s.count)), StyleDim.Render("("+s.mode+")"))
	printKeyValue(w, "Dataset", fmt.Sprintf("%d (padded to %d)", s.count, s.padded))
	if s.unit != "" {
		printKeyValue(w, s.unit, fmt.Sprint(s.units))
	}
	printKeyValue(w, "Time", formatSeconds(s.elapsed))
	if s.output != "" {
		printFile(w, s.output)
	}
}

// formatSeconds prints d in seconds with microsecond precision.
func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.6f s", d.Seconds())
}
