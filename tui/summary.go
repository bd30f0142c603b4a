// Package tui renders the post-scan summary table.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7A8291"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EBCB8B")).Bold(true)
)

// SummaryRow is one label/value line of the summary. Warn rows render the
// value in the warning color.
type SummaryRow struct {
	Label string
	Value string
	Warn  bool
}

// RenderSummary lays the rows out as an aligned two-column table.
func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}

	for _, row := range rows {
		style := valueStyle
		if row.Warn {
			style = warnStyle
		}
		line := fmt.Sprintf("%s | %s",
			labelStyle.Render(padRight(row.Label, labelWidth)),
			style.Render(padRight(row.Value, valueWidth)))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
