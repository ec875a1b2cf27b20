package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/modelgraph/pkg/project"
	"github.com/matzehuels/modelgraph/pkg/workspace"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess  = "✓"
	iconError    = "✗"
	iconWarning  = "!"
	iconInfo     = "›"
	iconArrow    = "→"
	iconFolder   = "▸"
	iconDiagram  = "◆"
	iconDocument = "≡"
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

// PrintError writes msg with the error icon used by failed commands.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+msg)
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

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Project Output
// =============================================================================

// printCounts prints record counts on a single line.
func printCounts(s *workspace.Summary) {
	parts := []string{
		fmt.Sprintf("%d diagrams", len(s.Diagrams)),
		fmt.Sprintf("%d model records", s.ModelRecords),
		fmt.Sprintf("%d view records", s.ViewRecords),
	}
	fmt.Println("  " + StyleDim.Render(strings.Join(parts, " · ")))
}

// printSummary writes the inspect report for s.
func printSummary(w io.Writer, s *workspace.Summary) {
	kv := func(k, v string) { fmt.Fprintln(w, styleKey.Render(k)+" "+StyleValue.Render(v)) }

	fmt.Fprintln(w, StyleTitle.Render(s.Name))
	kv("format", s.FormatVersion)
	kv("model records", strconv.Itoa(s.ModelRecords))
	kv("view records", strconv.Itoa(s.ViewRecords))
	if s.Unreferenced > 0 {
		kv("unreferenced", StyleWarning.Render(strconv.Itoa(s.Unreferenced)))
	}

	if len(s.Hierarchy) > 0 {
		fmt.Fprintln(w)
		for _, e := range s.Hierarchy {
			fmt.Fprintln(w, strings.Repeat("  ", e.Depth)+entryIcon(e.Type)+" "+e.Name+" "+StyleDim.Render(e.ID))
		}
	}

	if len(s.Diagrams) > 0 {
		rows := make([][]string, len(s.Diagrams))
		for i, d := range s.Diagrams {
			rows[i] = []string{d.Name, d.ViewType, strconv.Itoa(d.ModelNodes), strconv.Itoa(d.ViewNodes), d.ID}
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderTable([]string{"Diagram", "Notation", "Model", "Views", "ID"}, rows))
	}
}

func entryIcon(t string) string {
	switch project.EntryType(t) {
	case project.EntryFolder:
		return StyleHighlight.Render(iconFolder)
	case project.EntryDiagram:
		return StyleSuccess.Render(iconDiagram)
	default:
		return StyleDim.Render(iconDocument)
	}
}

// renderTable lays rows out in a bordered table.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

// =============================================================================
// Formatting
// =============================================================================

func formatSize(n int64) string {
	switch {
	case n < 1<<10:
		return fmt.Sprintf("%d B", n)
	case n < 1<<20:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	}
}

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
