package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vagabot/vagabot/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// narrowKeys are the columns shown unless every field is asked for.
var narrowKeys = []string{"title", "company", "location", "deadline"}

// renderJobs draws records as a table, one row per posting.
func renderJobs(records []model.Record, wide bool) string {
	fields := columns(wide)

	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Label
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = r[f.Key]
		}
		rows[i] = row
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

func columns(wide bool) []model.Field {
	if wide {
		return model.JobFields
	}
	var out []model.Field
	for _, key := range narrowKeys {
		for _, f := range model.JobFields {
			if f.Key == key {
				out = append(out, f)
			}
		}
	}
	return out
}
