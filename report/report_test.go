/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bokiquiz.dev/qscan/report"
	"bokiquiz.dev/qscan/validator"
)

var at = time.Date(2025, 8, 7, 0, 31, 25, 0, time.UTC)

func sample() *validator.Result {
	return &validator.Result{
		Issues: []validator.Issue{
			{RecordID: "Q_J_002", FilePath: "q.ts", Line: 20, Severity: validator.Critical, Category: validator.CategoryAmountMismatch, Message: "借方・貸方金額不一致: 借方=300000, 貸方=250000"},
			{RecordID: "Q_J_002", FilePath: "q.ts", Line: 20, Severity: validator.Warning, Category: validator.CategoryGenericExplanation, Message: "一般的すぎる説明文"},
			{RecordID: "Q_J_003", FilePath: "q.ts", Line: 31, Severity: validator.Warning, Category: validator.CategoryAccountIssue, Message: "未定義の勘定科目: 未払い金"},
			{RecordID: "Q_J_001", FilePath: "q.ts", Line: 8, Severity: validator.Info, Category: validator.CategoryAccountIssue, Message: "現金の貸方計上（通常は借方科目）"},
		},
		Statistics: validator.Statistics{
			TotalQuestions:      4,
			JournalQuestions:    4,
			IssuesFound:         3,
			RecordsWithIssues:   2,
			AmountMismatches:    1,
			AccountIssues:       1,
			GenericExplanations: 1,
		},
	}
}

func TestBuild(t *testing.T) {
	r := report.BuildAt(sample(), []string{"q.ts"}, at)

	assert.Equal(t, "50.00%", r.Summary.SuccessRate)
	assert.Equal(t, at, r.Summary.ValidationDate)
	assert.Len(t, r.CriticalIssues, 1)
	assert.Len(t, r.WarningIssues, 2)
	assert.Len(t, r.DetailedIssues, 4)

	require.Len(t, r.IssuesByCategory, 3)
	first := r.IssuesByCategory[0]
	assert.Equal(t, validator.CategoryAccountIssue, first.Category)
	assert.Equal(t, 2, first.Count)
	assert.Equal(t, 1, first.Warning)
	assert.Equal(t, 1, first.Info)

	var priorities []report.Priority
	for _, rec := range r.Recommendations {
		priorities = append(priorities, rec.Priority)
	}
	assert.Equal(t, []report.Priority{report.High, report.Medium, report.Medium}, priorities)
	assert.Contains(t, r.Recommendations[0].Message, "1件の金額不一致")
}

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, "100.00%", report.SuccessRate(validator.Statistics{}))
	assert.Equal(t, "66.67%", report.SuccessRate(validator.Statistics{TotalQuestions: 3, RecordsWithIssues: 1}))
}

func TestWriteJSON(t *testing.T) {
	r := report.BuildAt(sample(), []string{"q.ts"}, at)
	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf, r))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, float64(4), summary["totalQuestions"])
	assert.Equal(t, "50.00%", summary["successRate"])
	assert.Equal(t, "2025-08-07T00:31:25Z", summary["validationDate"])

	critical := decoded["criticalIssues"].([]any)
	require.Len(t, critical, 1)
	assert.Equal(t, "Q_J_002", critical[0].(map[string]any)["questionId"])
	assert.Contains(t, buf.String(), "借方・貸方金額不一致", "non-ASCII is written verbatim")
}

func TestWriteJSON_Empty(t *testing.T) {
	r := report.BuildAt(&validator.Result{}, nil, at)
	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf, r))
	assert.Contains(t, buf.String(), `"criticalIssues": []`)
	assert.Contains(t, buf.String(), `"issuesByCategory": []`)
}

func TestWriteHTML(t *testing.T) {
	res := sample()
	res.Issues[0].Message = "<script>alert(1)</script>"
	r := report.BuildAt(res, nil, at)

	var buf bytes.Buffer
	require.NoError(t, report.WriteHTML(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "<title>簿記問題検証レポート</title>")
	assert.Contains(t, out, "検証日時: 2025-08-07T00:31:25Z")
	assert.Contains(t, out, "<tr><td>成功率</td><td>50.00%</td></tr>")
	assert.Contains(t, out, "重大な問題 (1件)")
	assert.Contains(t, out, "警告 (2件)")
	assert.Contains(t, out, "[HIGH]")
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestWriteHTML_Truncates(t *testing.T) {
	res := &validator.Result{Statistics: validator.Statistics{TotalQuestions: 25}}
	for range 25 {
		res.Issues = append(res.Issues, validator.Issue{RecordID: "Q", Severity: validator.Critical, Category: validator.CategoryStructure, Message: "m"})
	}
	var buf bytes.Buffer
	require.NoError(t, report.WriteHTML(&buf, report.BuildAt(res, nil, at)))
	assert.Equal(t, 20, strings.Count(buf.String(), `<div class="critical">`))
	assert.Contains(t, buf.String(), "... 他5件")
}

func TestWriteTable(t *testing.T) {
	r := report.BuildAt(sample(), []string{"q.ts"}, at)

	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf, r, report.TableOptions{}))
	out := buf.String()

	assert.Contains(t, out, "q.ts:20")
	assert.Contains(t, out, "未定義の勘定科目: 未払い金")
	assert.NotContains(t, out, "現金の貸方計上", "info hidden by default")
	assert.Contains(t, out, "failed: 4 records in 1 file(s), 1 critical, 2 warnings, success rate 50.00%")

	buf.Reset()
	require.NoError(t, report.WriteTable(&buf, r, report.TableOptions{Color: true}))
	assert.Contains(t, buf.String(), "4 records in 1 file(s)")
}

func TestWriteTable_InfoAndQuiet(t *testing.T) {
	r := report.BuildAt(sample(), []string{"q.ts"}, at)

	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf, r, report.TableOptions{Info: true}))
	assert.Contains(t, buf.String(), "現金の貸方計上")

	buf.Reset()
	require.NoError(t, report.WriteTable(&buf, r, report.TableOptions{Quiet: true}))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestWriteTable_Clean(t *testing.T) {
	r := report.BuildAt(&validator.Result{Statistics: validator.Statistics{TotalQuestions: 2}}, []string{"a.ts", "b.ts"}, at)
	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf, r, report.TableOptions{}))
	assert.Equal(t, "ok: 2 records in 2 file(s), 0 critical, 0 warnings, success rate 100.00%\n", buf.String())
}

func TestWriteTable_SeverityOrder(t *testing.T) {
	res := sample()
	res.Issues[0], res.Issues[3] = res.Issues[3], res.Issues[0]
	r := report.BuildAt(res, []string{"q.ts"}, at)

	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf, r, report.TableOptions{Info: true}))
	out := buf.String()

	critical := strings.Index(out, "借方・貸方金額不一致")
	warning := strings.Index(out, "未定義の勘定科目")
	info := strings.Index(out, "現金の貸方計上")
	require.True(t, critical >= 0 && warning >= 0 && info >= 0)
	assert.Less(t, critical, warning)
	assert.Less(t, warning, info)
}
