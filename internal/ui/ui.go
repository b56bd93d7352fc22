package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Brand colors
var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Info   = color.New(color.FgCyan)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

// Mark prefixes banners and the vessel glyph.
const Mark = "◈"

// Verbose enables Logf output.
var Verbose bool

// Banner prints the lattice banner for a command.
func Banner(subtitle string) {
	fmt.Printf("%s %s — %s\n\n", Mark, Brand.Sprint("lattice"), subtitle)
}

// Fatal prints a single-line failure banner to stderr.
func Fatal(format string, args ...any) {
	Bad.Fprintf(os.Stderr, "  %s %s\n", "✗", fmt.Sprintf(format, args...))
}

// Logf prints a subtle diagnostic line to stderr when Verbose is set.
func Logf(format string, args ...any) {
	if !Verbose {
		return
	}
	Subtle.Fprintf(os.Stderr, "  · "+format+"\n", args...)
}

// Table prints a simple aligned table.
func Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	headerLine := "  "
	sepLine := "  "
	for i, h := range headers {
		headerLine += fmt.Sprintf("%-*s  ", widths[i], h)
		sepLine += strings.Repeat("─", widths[i]) + "  "
	}
	Subtle.Println(headerLine)
	Subtle.Println(sepLine)

	for _, row := range rows {
		line := "  "
		for i, cell := range row {
			if i < len(widths) {
				line += fmt.Sprintf("%-*s  ", widths[i], cell)
			}
		}
		fmt.Println(line)
	}
}

// StatusIcon returns a status icon string.
func StatusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}

// WarnIcon returns a warning icon.
func WarnIcon() string {
	return Warn.Sprint("⚠")
}
