/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package report

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"bokiquiz.dev/qscan/validator"
)

var (
	criticalColor = lipgloss.Color("#e53935")
	warningColor  = lipgloss.Color("#FFC107")
	infoColor     = lipgloss.Color("#2196F3")
	successColor  = lipgloss.Color("#8BC34A")
)

// TableOptions configures WriteTable.
type TableOptions struct {
	// Color enables severity colors when w is a terminal.
	Color bool
	// Info includes info-level issues.
	Info bool
	// Quiet prints only the summary line.
	Quiet bool
}

type styles struct {
	severity map[validator.Severity]lipgloss.Style
	ok       lipgloss.Style
	bold     lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	renderer := lipgloss.NewRenderer(w)
	plain := renderer.NewStyle()
	s := styles{
		severity: map[validator.Severity]lipgloss.Style{
			validator.Critical: plain,
			validator.Warning:  plain,
			validator.Info:     plain,
		},
		ok:   plain,
		bold: plain,
	}
	if !color {
		return s
	}
	s.severity[validator.Critical] = renderer.NewStyle().Foreground(criticalColor).Bold(true)
	s.severity[validator.Warning] = renderer.NewStyle().Foreground(warningColor)
	s.severity[validator.Info] = renderer.NewStyle().Foreground(infoColor)
	s.ok = renderer.NewStyle().Foreground(successColor).Bold(true)
	s.bold = renderer.NewStyle().Bold(true)
	return s
}

// WriteTable writes a terminal report: an issue table, per-category counts
// and a summary line.
func WriteTable(w io.Writer, r *Report, opts TableOptions) error {
	st := newStyles(w, opts.Color)
	var buf bytes.Buffer

	var issues []validator.Issue
	for _, i := range r.DetailedIssues {
		if i.Severity == validator.Info && !opts.Info {
			continue
		}
		issues = append(issues, i)
	}
	slices.SortStableFunc(issues, func(a, b validator.Issue) int {
		return a.Severity.Rank() - b.Severity.Rank()
	})

	if !opts.Quiet && len(issues) > 0 {
		table := tablewriter.NewWriter(&buf)
		table.SetHeader([]string{"Severity", "ID", "Location", "Category", "Message"})
		table.SetBorder(false)
		table.SetCenterSeparator("")
		table.SetAutoWrapText(false)
		table.SetAutoFormatHeaders(false)
		for _, i := range issues {
			table.Append([]string{
				st.severity[i.Severity].Render(string(i.Severity)),
				i.RecordID,
				location(i),
				string(i.Category),
				i.Message,
			})
		}
		table.Render()
		buf.WriteString("\n")
	}

	if !opts.Quiet && len(r.IssuesByCategory) > 0 {
		table := tablewriter.NewWriter(&buf)
		table.SetHeader([]string{"Category", "Count", "Critical", "Warning", "Info"})
		table.SetBorder(false)
		table.SetCenterSeparator("")
		table.SetAutoFormatHeaders(false)
		table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
		for _, c := range r.IssuesByCategory {
			table.Append([]string{
				string(c.Category),
				strconv.Itoa(c.Count),
				strconv.Itoa(c.Critical),
				strconv.Itoa(c.Warning),
				strconv.Itoa(c.Info),
			})
		}
		table.Render()
		buf.WriteString("\n")

		for _, rec := range r.Recommendations {
			fmt.Fprintf(&buf, "[%s] %s\n", st.bold.Render(string(rec.Priority)), rec.Message)
		}
		if len(r.Recommendations) > 0 {
			buf.WriteString("\n")
		}
	}

	s := r.Summary
	critical, warning := len(r.CriticalIssues), len(r.WarningIssues)
	status := st.ok.Render("ok")
	switch {
	case critical > 0:
		status = st.severity[validator.Critical].Render("failed")
	case warning > 0:
		status = st.severity[validator.Warning].Render("passed with warnings")
	}
	fmt.Fprintf(&buf, "%s: %d records in %d file(s), %d critical, %d warnings, success rate %s\n",
		status, s.TotalQuestions, len(s.Files), critical, warning, s.SuccessRate)

	_, err := w.Write(buf.Bytes())
	return err
}

func location(i validator.Issue) string {
	switch {
	case i.FilePath == "":
		return ""
	case i.Line > 0:
		return fmt.Sprintf("%s:%d", i.FilePath, i.Line)
	}
	return i.FilePath
}
