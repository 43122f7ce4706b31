/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package validator

import (
	"fmt"
	"strings"
)

// Severity ranks an issue.
type Severity string

const (
	// Critical marks structural breakage: unparseable JSON, a missing
	// required field, unbalanced debit and credit.
	Critical Severity = "critical"
	// Warning marks data that is plausible but suspicious.
	Warning Severity = "warning"
	// Info marks stylistic findings.
	Info Severity = "info"
)

// Rank orders severities from most to least severe.
func (s Severity) Rank() int {
	switch s {
	case Critical:
		return 0
	case Warning:
		return 1
	}
	return 2
}

// Category groups issues by the check that raised them.
type Category string

const (
	CategoryStructure          Category = "structure"
	CategoryAmountMismatch     Category = "amount_mismatch"
	CategoryAccountIssue       Category = "account_issue"
	CategoryGenericExplanation Category = "generic_explanation"
	CategoryExplanation        Category = "explanation"
	CategoryLedgerIssue        Category = "ledger_issue"
	CategoryGenericContent     Category = "generic_content"
	CategoryTransactionPattern Category = "transaction_pattern"
	CategoryValidationError    Category = "validation_error"
	CategoryDuplicateID        Category = "duplicate_id"
	CategoryDifficulty         Category = "difficulty"
	CategoryTags               Category = "tags"
)

// Issue is one finding about one record.
type Issue struct {
	RecordID string         `json:"questionId"`
	FilePath string         `json:"file,omitempty"`
	Line     int            `json:"line,omitempty"`
	Severity Severity       `json:"severity"`
	Category Category       `json:"category"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (i *Issue) Error() string {
	var sb strings.Builder
	if i.FilePath != "" {
		sb.WriteString(i.FilePath)
		if i.Line > 0 {
			fmt.Fprintf(&sb, ":%d", i.Line)
		}
		sb.WriteString(": ")
	}
	if i.RecordID != "" {
		sb.WriteString("[")
		sb.WriteString(i.RecordID)
		sb.WriteString("] ")
	}
	sb.WriteString(i.Message)
	return sb.String()
}

// Statistics are the counters of one validation run.
type Statistics struct {
	TotalQuestions        int `json:"totalQuestions"`
	JournalQuestions      int `json:"journalQuestions"`
	LedgerQuestions       int `json:"ledgerQuestions"`
	TrialBalanceQuestions int `json:"trialBalanceQuestions"`
	// IssuesFound counts critical and warning issues.
	IssuesFound int `json:"issuesFound"`
	// RecordsWithIssues counts records with at least one critical or warning issue.
	RecordsWithIssues   int `json:"recordsWithIssues"`
	AmountMismatches    int `json:"amountMismatches"`
	AccountIssues       int `json:"accountIssues"`
	GenericExplanations int `json:"genericExplanations"`
	StructuralIssues    int `json:"structuralIssues"`
}

func (s *Statistics) add(other Statistics) {
	s.TotalQuestions += other.TotalQuestions
	s.JournalQuestions += other.JournalQuestions
	s.LedgerQuestions += other.LedgerQuestions
	s.TrialBalanceQuestions += other.TrialBalanceQuestions
	s.IssuesFound += other.IssuesFound
	s.RecordsWithIssues += other.RecordsWithIssues
	s.AmountMismatches += other.AmountMismatches
	s.AccountIssues += other.AccountIssues
	s.GenericExplanations += other.GenericExplanations
	s.StructuralIssues += other.StructuralIssues
}

// Result holds the issues and counters of a validation run.
type Result struct {
	Issues     []Issue    `json:"issues"`
	Statistics Statistics `json:"statistics"`
}

// Merge appends other to r.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Issues = append(r.Issues, other.Issues...)
	r.Statistics.add(other.Statistics)
}

// Filter returns the issues of the given severity.
func (r *Result) Filter(severity Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == severity {
			out = append(out, i)
		}
	}
	return out
}

// Count returns the number of issues of the given severity.
func (r *Result) Count(severity Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == severity {
			n++
		}
	}
	return n
}

// Failed reports whether the run should fail: any critical issue, or any
// warning when strict.
func (r *Result) Failed(strict bool) bool {
	if r.Count(Critical) > 0 {
		return true
	}
	return strict && r.Count(Warning) > 0
}
