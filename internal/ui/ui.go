package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// Brand colors
var (
	Brand  = color.New(color.FgHiGreen, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Info   = color.New(color.FgCyan)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

const Mark = "◉"

// SetColor turns coloured output on or off for every palette entry.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// Banner prints the tripgraph banner.
func Banner(w io.Writer, subtitle string) {
	fmt.Fprintf(w, "%s %s · %s\n\n", Brand.Sprint(Mark), Brand.Sprint("tripgraph"), subtitle)
}

// Table prints a simple aligned table. Widths ignore colour codes so cells
// may be pre-coloured.
func Table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	headerLine := "  "
	sepLine := "  "
	for i, h := range headers {
		headerLine += pad(h, widths[i]) + "  "
		sepLine += strings.Repeat("─", widths[i]) + "  "
	}
	Subtle.Fprintln(w, strings.TrimRight(headerLine, " "))
	Subtle.Fprintln(w, strings.TrimRight(sepLine, " "))

	for _, row := range rows {
		line := "  "
		for i, cell := range row {
			if i < len(widths) {
				line += pad(cell, widths[i]) + "  "
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
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

// Fail prints err in the failure colour.
func Fail(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", StatusIcon(false), Bad.Sprint(err.Error()))
}
