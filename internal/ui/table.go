package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/untoldecay/movestories/internal/types"
)

// Table Styles
var (
	TableHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorAccent).
		Align(lipgloss.Center)

	TableBorderStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	tableCellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// fixed columns: index, name, type, start, end
const fixedColumnsWidth = 6 + 24 + 12 + 8 + 8

// RenderEntityTable renders rows as a bordered table fitted to width.
// Names and source text are truncated with an ellipsis; the index column
// starts at offset.
func RenderEntityTable(rows []types.Row, offset, width int) string {
	textWidth := width - fixedColumnsWidth - 8 // borders
	if textWidth < 12 {
		textWidth = 12
	}

	data := make([][]string, 0, len(rows))
	for i, r := range rows {
		data = append(data, []string{
			strconv.Itoa(offset + i),
			ansi.Truncate(r.EntityName, 22, "…"),
			string(r.Type),
			strconv.Itoa(r.StartPosition),
			strconv.Itoa(r.EndPosition),
			ansi.Truncate(singleLine(r.OriginalText), textWidth-2, "…"),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(TableBorderStyle).
		Headers("#", "Entity", "Type", "Start", "End", "Text").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle.Padding(0, 1)
			}
			style := tableCellStyle
			switch col {
			case 0, 3, 4:
				style = style.Align(lipgloss.Right).Foreground(ColorMuted)
			case 2:
				if row >= 0 && row < len(data) && !types.EntityType(data[row][2]).IsValid() {
					style = style.Foreground(ColorWarn)
				}
			}
			return style
		}).
		String()
}

// singleLine flattens line breaks so a story fits one table row
func singleLine(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
