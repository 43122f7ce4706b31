/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package report turns validation results into JSON, HTML and terminal
// reports.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"bokiquiz.dev/qscan/validator"
)

// Summary is the headline of a report.
type Summary struct {
	validator.Statistics
	ValidationDate time.Time `json:"validationDate"`
	SuccessRate    string    `json:"successRate"`
	Files          []string  `json:"files,omitempty"`
}

// CategorySummary counts the issues of one category.
type CategorySummary struct {
	Category validator.Category `json:"category"`
	Count    int                `json:"count"`
	Critical int                `json:"critical"`
	Warning  int                `json:"warning"`
	Info     int                `json:"info"`
	Issues   []validator.Issue  `json:"issues"`
}

// Priority of a recommendation.
type Priority string

const (
	High   Priority = "high"
	Medium Priority = "medium"
)

// Recommendation is a follow-up suggested by the statistics.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
}

// Report is a complete validation report.
type Report struct {
	Summary          Summary           `json:"summary"`
	IssuesByCategory []CategorySummary `json:"issuesByCategory"`
	CriticalIssues   []validator.Issue `json:"criticalIssues"`
	WarningIssues    []validator.Issue `json:"warningIssues"`
	Recommendations  []Recommendation  `json:"recommendations"`
	DetailedIssues   []validator.Issue `json:"detailedIssues"`
}

// Build assembles a report dated now.
func Build(result *validator.Result, files []string) *Report {
	return BuildAt(result, files, time.Now())
}

// BuildAt assembles a report with the given validation date.
func BuildAt(result *validator.Result, files []string, at time.Time) *Report {
	stats := result.Statistics
	r := &Report{
		Summary: Summary{
			Statistics:     stats,
			ValidationDate: at.UTC(),
			SuccessRate:    SuccessRate(stats),
			Files:          files,
		},
		IssuesByCategory: categorize(result.Issues),
		CriticalIssues:   nonNil(result.Filter(validator.Critical)),
		WarningIssues:    nonNil(result.Filter(validator.Warning)),
		Recommendations:  recommend(stats),
		DetailedIssues:   nonNil(result.Issues),
	}
	return r
}

func nonNil(issues []validator.Issue) []validator.Issue {
	if issues == nil {
		return []validator.Issue{}
	}
	return issues
}

// SuccessRate is the share of records without critical or warning issues.
func SuccessRate(stats validator.Statistics) string {
	if stats.TotalQuestions == 0 {
		return "100.00%"
	}
	ok := stats.TotalQuestions - stats.RecordsWithIssues
	return fmt.Sprintf("%.2f%%", float64(ok)/float64(stats.TotalQuestions)*100)
}

// categorize groups issues by category, largest group first.
func categorize(issues []validator.Issue) []CategorySummary {
	index := make(map[validator.Category]int)
	var out []CategorySummary
	for _, issue := range issues {
		i, ok := index[issue.Category]
		if !ok {
			i = len(out)
			index[issue.Category] = i
			out = append(out, CategorySummary{Category: issue.Category})
		}
		cs := &out[i]
		cs.Count++
		cs.Issues = append(cs.Issues, issue)
		switch issue.Severity {
		case validator.Critical:
			cs.Critical++
		case validator.Warning:
			cs.Warning++
		case validator.Info:
			cs.Info++
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if out == nil {
		out = []CategorySummary{}
	}
	return out
}

func recommend(stats validator.Statistics) []Recommendation {
	recs := []Recommendation{}
	if stats.AmountMismatches > 0 {
		recs = append(recs, Recommendation{
			Priority: High,
			Category: "金額不一致",
			Message:  fmt.Sprintf("%d件の金額不一致が発見されました。借方・貸方の金額、および問題文との整合性を確認してください。", stats.AmountMismatches),
		})
	}
	if stats.AccountIssues > 0 {
		recs = append(recs, Recommendation{
			Priority: Medium,
			Category: "勘定科目問題",
			Message:  fmt.Sprintf("%d件の勘定科目に関する問題が発見されました。未定義科目や異常な使用方法を確認してください。", stats.AccountIssues),
		})
	}
	if stats.GenericExplanations > 0 {
		recs = append(recs, Recommendation{
			Priority: Medium,
			Category: "説明文改善",
			Message:  fmt.Sprintf("%d件の一般的すぎる説明文が見つかりました。より具体的で教育的な説明を追加することを推奨します。", stats.GenericExplanations),
		})
	}
	if stats.StructuralIssues > 0 {
		recs = append(recs, Recommendation{
			Priority: High,
			Category: "構造的問題",
			Message:  fmt.Sprintf("%d件の構造的な問題が発見されました。JSON構文エラーや必須フィールドの不備を修正してください。", stats.StructuralIssues),
		})
	}
	return recs
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}
