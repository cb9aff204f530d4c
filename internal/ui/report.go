package ui

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/untoldecay/movestories/internal/extractor"
	"github.com/untoldecay/movestories/internal/types"
	"github.com/untoldecay/movestories/internal/utils"
)

// ExportReport aggregates what an export run did
type ExportReport struct {
	Input    string
	Output   string
	Manifest string
	Stats    extractor.Stats
	Duration time.Duration
}

// RenderExportReport renders the summary printed after an export
func RenderExportReport(rep ExportReport, width int) string {
	var sections []string

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPass).
		Render(fmt.Sprintf("✓ Exported %d unique entities", rep.Stats.RowsUnique))
	sections = append(sections, header, "")

	details := [][]string{
		{"Input", rep.Input},
		{"Output", rep.Output},
		{"Stories", strconv.Itoa(rep.Stats.Records)},
		{"Relations", strconv.Itoa(rep.Stats.Relations)},
		{"Rows extracted", strconv.Itoa(rep.Stats.RowsExtracted)},
		{"Duplicates dropped", strconv.Itoa(rep.Stats.Duplicates)},
		{"Entity types", formatTypeCounts(rep.Stats)},
		{"Duration", rep.Duration.Round(time.Millisecond).String()},
	}
	if rep.Manifest != "" {
		details = append(details, []string{"Manifest", rep.Manifest})
	}

	summary := table.New().
		Headers("Run", "Value").
		Rows(details...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(TableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle.Padding(0, 1)
			}
			style := tableCellStyle.Align(lipgloss.Left)
			if col == 0 {
				style = style.Bold(true).Foreground(ColorAccent)
			}
			return style
		})
	if width > 0 {
		summary = summary.Width(min(width, 100))
	}
	sections = append(sections, summary.String())

	if rep.Stats.UnknownEntities > 0 || rep.Stats.UnknownRelations > 0 {
		sections = append(sections, "", RenderWarn(fmt.Sprintf(
			"⚠ %d entity and %d relation labels are outside the known vocabulary",
			rep.Stats.UnknownEntities, rep.Stats.UnknownRelations)))
		for _, label := range rep.Stats.UnknownLabels {
			line := "  " + label
			if s := suggestLabel(label); s != "" {
				line += fmt.Sprintf(" (did you mean %s?)", s)
			}
			sections = append(sections, RenderMuted(line))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func formatTypeCounts(st extractor.Stats) string {
	if len(st.EntityTypes) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(st.EntityTypes))
	for _, k := range slices.Sorted(maps.Keys(st.EntityTypes)) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, st.EntityTypes[k]))
	}
	return strings.Join(parts, " ")
}

func suggestLabel(label string) string {
	known := make([]string, 0, len(types.KnownEntityTypes)+len(types.KnownRelationTypes))
	for _, t := range types.KnownEntityTypes {
		known = append(known, string(t))
	}
	for _, t := range types.KnownRelationTypes {
		known = append(known, string(t))
	}
	return utils.SuggestLabel(label, known)
}
