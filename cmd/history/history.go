/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package history provides the history command for qscan.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"bokiquiz.dev/qscan/internal/project"
	"bokiquiz.dev/qscan/journal"
)

// Cmd is the history cobra command.
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "Show journaled field edits",
	Long:  `Show the field edits recorded by qscan patch, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  run,
}

func init() {
	Cmd.Flags().String("file", "", "Only edits of this data file")
	Cmd.Flags().String("record", "", "Only edits of this record id")
	Cmd.Flags().String("field", "", "Only edits of this field")
	Cmd.Flags().Int("limit", 20, "Maximum number of edits (0 for all)")
	Cmd.Flags().String("format", "table", "Output format: table, json")
}

func run(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	recordID, _ := cmd.Flags().GetString("record")
	field, _ := cmd.Flags().GetString("field")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	p, err := project.FromViper()
	if err != nil {
		return err
	}
	if !p.FS.Exists(p.JournalPath()) {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "no edits recorded")
		return err
	}

	j, err := journal.Open(p.JournalPath())
	if err != nil {
		return err
	}
	defer j.Close()

	filter := journal.Filter{RecordID: recordID, Field: field, Limit: limit}
	if file != "" {
		filter.File = p.Absolute(file)
	}
	entries, err := j.List(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if format == "json" {
		return outputJSON(cmd.OutOrStdout(), entries)
	}
	return outputTable(cmd.OutOrStdout(), entries)
}

func short(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

func outputTable(w io.Writer, entries []journal.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no edits recorded")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Applied", "Run", "Record", "Field", "Old", "New", "File"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for _, e := range entries {
		table.Append([]string{
			e.AppliedAt.Local().Format(time.DateTime),
			short(e.RunID),
			e.RecordID,
			e.Field,
			short(e.OldSHA),
			short(e.NewSHA),
			e.File,
		})
	}
	table.Render()
	return nil
}

func outputJSON(w io.Writer, entries []journal.Entry) error {
	if entries == nil {
		entries = []journal.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
