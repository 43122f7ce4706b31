/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package list provides the list command for qscan.
package list

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"bokiquiz.dev/qscan/internal/logger"
	"bokiquiz.dev/qscan/internal/project"
	"bokiquiz.dev/qscan/record"
)

// Cmd is the list cobra command.
var Cmd = &cobra.Command{
	Use:   "list [files...]",
	Short: "List question records in data files",
	Long:  `List the id, category, line and byte span of every question record.`,
	Args:  cobra.ArbitraryArgs,
	RunE:  run,
}

func init() {
	Cmd.Flags().String("category", "", "Filter by category (journal, ledger, trial_balance)")
	Cmd.Flags().String("format", "table", "Output format: table, json")
}

type entry struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Difficulty int    `json:"difficulty,omitempty"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
}

func run(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	format, _ := cmd.Flags().GetString("format")

	p, err := project.FromViper()
	if err != nil {
		return err
	}
	files, err := p.Files(args)
	if err != nil {
		return err
	}

	var all []*record.Record
	for _, file := range files {
		res, err := p.Parse(file)
		if err != nil {
			logger.Error("%v", err)
			if res == nil {
				continue
			}
		}
		for _, fe := range res.FieldErrors {
			logger.Warn("%s: %v", file, fe)
		}
		all = append(all, res.Records...)
	}

	records := filterRecords(all, record.Category(category))

	switch format {
	case "json":
		return outputJSON(cmd.OutOrStdout(), records)
	default:
		return outputTable(cmd.OutOrStdout(), records)
	}
}

func filterRecords(records []*record.Record, category record.Category) []*record.Record {
	if category == "" {
		return records
	}
	filtered := make([]*record.Record, 0)
	for _, r := range records {
		if r.Category() == category {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func toEntry(r *record.Record) entry {
	return entry{
		ID:         r.ID,
		Category:   r.CategoryID,
		Difficulty: r.Difficulty,
		File:       r.FilePath,
		Line:       r.Line,
		Start:      r.Span.Start,
		End:        r.Span.End,
	}
}

func outputTable(w io.Writer, records []*record.Record) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Category", "Difficulty", "Line", "Span", "File"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for _, r := range records {
		e := toEntry(r)
		difficulty := "-"
		if r.HasDifficulty {
			difficulty = strconv.Itoa(e.Difficulty)
		}
		table.Append([]string{
			e.ID,
			e.Category,
			difficulty,
			strconv.Itoa(e.Line),
			fmt.Sprintf("%d-%d", e.Start, e.End),
			e.File,
		})
	}
	table.Render()
	return nil
}

func outputJSON(w io.Writer, records []*record.Record) error {
	output := make([]entry, 0, len(records))
	for _, r := range records {
		output = append(output, toEntry(r))
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
