package ui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/untoldecay/movestories/internal/audit"
)

// RenderHistoryTable renders recorded runs, newest last
func RenderHistoryTable(entries []audit.Entry, width int) string {
	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := "ok"
		detail := e.Output
		if e.Kind == audit.KindExportFailed {
			status = "failed"
			detail = e.Error
		}
		data = append(data, []string{
			e.CreatedAt.Local().Format(time.DateTime),
			status,
			ansi.Truncate(e.Input, 32, "…"),
			strconv.Itoa(e.Rows),
			(time.Duration(e.DurationMS) * time.Millisecond).String(),
			ansi.Truncate(singleLine(detail), max(12, width-90), "…"),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(TableBorderStyle).
		Headers("When", "Status", "Input", "Rows", "Took", "Output / Error").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle.Padding(0, 1)
			}
			style := tableCellStyle
			if col == 1 && row >= 0 && row < len(data) {
				if data[row][1] == "failed" {
					style = style.Foreground(ColorFail)
				} else {
					style = style.Foreground(ColorPass)
				}
			}
			if col == 3 {
				style = style.Align(lipgloss.Right)
			}
			return style
		}).
		String()
}
