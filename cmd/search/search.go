/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package search provides the search command for qscan.
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"bokiquiz.dev/qscan/internal/logger"
	"bokiquiz.dev/qscan/internal/project"
	"bokiquiz.dev/qscan/record"
	"bokiquiz.dev/qscan/vocab"
)

// searchFields are the decoded fields searched when --field is not given.
var searchFields = []string{
	record.FieldQuestionText,
	record.FieldExplanation,
	record.FieldCorrectAnswerJSON,
}

// Cmd is the search cobra command.
var Cmd = &cobra.Command{
	Use:   "search <query> [files...]",
	Short: "Search question records by text",
	Long: `Search the question text, explanation and answer of every record.
Plain queries ignore case and full-width/half-width differences.`,
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().StringSlice("field", nil, "Search only these fields (repeatable)")
	Cmd.Flags().String("category", "", "Filter by category")
	Cmd.Flags().Bool("regex", false, "Query is a regex")
	Cmd.Flags().String("format", "table", "Output format: table, json, ids")
}

// match is one record field that matched.
type match struct {
	ID    string `json:"id"`
	Field string `json:"field"`
	File  string `json:"file"`
	Line  int    `json:"line"`
	Text  string `json:"text"`
}

func run(cmd *cobra.Command, args []string) error {
	query := args[0]
	files := args[1:]

	fields, _ := cmd.Flags().GetStringSlice("field")
	category, _ := cmd.Flags().GetString("category")
	useRegex, _ := cmd.Flags().GetBool("regex")
	format, _ := cmd.Flags().GetString("format")

	var pattern *regexp.Regexp
	var err error
	if useRegex {
		pattern, err = regexp.Compile(query)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
	}
	if len(fields) == 0 {
		fields = searchFields
	}

	p, err := project.FromViper()
	if err != nil {
		return err
	}
	files, err = p.Files(files)
	if err != nil {
		return err
	}

	var matches []match
	for _, file := range files {
		res, err := p.Parse(file)
		if err != nil {
			logger.Error("%v", err)
			if res == nil {
				continue
			}
		}
		matches = append(matches, searchRecords(res.Records, fields, record.Category(category), query, pattern)...)
	}

	w := cmd.OutOrStdout()
	switch format {
	case "json":
		return outputJSON(w, matches)
	case "ids":
		return outputIDs(w, matches)
	default:
		return outputTable(w, matches)
	}
}

func searchRecords(records []*record.Record, fields []string, category record.Category, query string, pattern *regexp.Regexp) []match {
	var matches []match
	for _, r := range records {
		if category != "" && r.Category() != category {
			continue
		}
		for _, field := range fields {
			text := r.Text(field)
			if text == "" || !matchString(text, query, pattern) {
				continue
			}
			matches = append(matches, match{
				ID:    r.ID,
				Field: field,
				File:  r.FilePath,
				Line:  r.Line,
				Text:  text,
			})
		}
	}
	return matches
}

func matchString(s, query string, pattern *regexp.Regexp) bool {
	if pattern != nil {
		return pattern.MatchString(s)
	}
	return strings.Contains(strings.ToLower(vocab.Normalize(s)), strings.ToLower(vocab.Normalize(query)))
}

// excerpt returns the first line of s, cut to n runes.
func excerpt(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n]) + "…"
	}
	return s
}

func outputTable(w io.Writer, matches []match) error {
	if len(matches) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Field", "Location", "Text"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for _, m := range matches {
		table.Append([]string{m.ID, m.Field, fmt.Sprintf("%s:%d", m.File, m.Line), excerpt(m.Text, 40)})
	}
	table.Render()
	return nil
}

func outputJSON(w io.Writer, matches []match) error {
	if matches == nil {
		matches = []match{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(matches)
}

func outputIDs(w io.Writer, matches []match) error {
	seen := make(map[string]bool)
	for _, m := range matches {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		if _, err := fmt.Fprintln(w, m.ID); err != nil {
			return err
		}
	}
	return nil
}
