/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package report

import (
	"html/template"
	"io"
	"strings"

	"bokiquiz.dev/qscan/validator"
)

// htmlIssueLimit caps the issues listed per severity in the HTML report.
const htmlIssueLimit = 20

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"head": func(issues []validator.Issue) []validator.Issue {
		if len(issues) > htmlIssueLimit {
			return issues[:htmlIssueLimit]
		}
		return issues
	},
	"rest": func(issues []validator.Issue) int {
		return max(len(issues)-htmlIssueLimit, 0)
	},
	"upper": func(p Priority) string { return strings.ToUpper(string(p)) },
}).Parse(`<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>簿記問題検証レポート</title>
<style>
body { font-family: 'Segoe UI', sans-serif; margin: 20px; line-height: 1.6; }
.header { background: #2c3e50; color: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; }
.summary { background: #ecf0f1; padding: 15px; border-radius: 8px; margin: 20px 0; }
.critical { background: #e74c3c; color: white; padding: 10px; border-radius: 4px; margin: 5px 0; }
.warning { background: #f39c12; color: white; padding: 10px; border-radius: 4px; margin: 5px 0; }
.category { border: 1px solid #bdc3c7; padding: 15px; margin: 10px 0; border-radius: 4px; }
table { width: 100%; border-collapse: collapse; margin: 10px 0; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
th { background-color: #34495e; color: white; }
.recommendation { background: #27ae60; color: white; padding: 10px; margin: 5px 0; border-radius: 4px; }
</style>
</head>
<body>
<div class="header">
<h1>簿記問題検証レポート</h1>
<p>検証日時: {{.Summary.ValidationDate.Format "2006-01-02T15:04:05Z07:00"}}</p>
</div>

<div class="summary">
<h2>検証結果サマリー</h2>
<table>
<tr><td>総問題数</td><td>{{.Summary.TotalQuestions}}</td></tr>
<tr><td>仕訳問題</td><td>{{.Summary.JournalQuestions}}</td></tr>
<tr><td>元帳問題</td><td>{{.Summary.LedgerQuestions}}</td></tr>
<tr><td>試算表問題</td><td>{{.Summary.TrialBalanceQuestions}}</td></tr>
<tr><td>問題のある問題数</td><td>{{.Summary.RecordsWithIssues}}</td></tr>
<tr><td>成功率</td><td>{{.Summary.SuccessRate}}</td></tr>
</table>
</div>

<div class="category">
<h2>問題分類</h2>
<ul>
<li>金額不一致: {{.Summary.AmountMismatches}}</li>
<li>勘定科目問題: {{.Summary.AccountIssues}}</li>
<li>一般的な説明: {{.Summary.GenericExplanations}}</li>
<li>構造的問題: {{.Summary.StructuralIssues}}</li>
</ul>
</div>
{{with .CriticalIssues}}
<div class="category">
<h2>重大な問題 ({{len .}}件)</h2>
{{range head .}}<div class="critical">[{{.RecordID}}] {{.Message}}</div>
{{end}}{{with rest .}}<p>... 他{{.}}件</p>{{end}}
</div>
{{end}}{{with .WarningIssues}}
<div class="category">
<h2>警告 ({{len .}}件)</h2>
{{range head .}}<div class="warning">[{{.RecordID}}] {{.Message}}</div>
{{end}}{{with rest .}}<p>... 他{{.}}件</p>{{end}}
</div>
{{end}}
<div class="category">
<h2>推奨事項</h2>
{{range .Recommendations}}<div class="recommendation">[{{upper .Priority}}] {{.Message}}</div>
{{end}}</div>

<div class="category">
<h2>カテゴリ別問題数</h2>
<table>
<tr><th>カテゴリ</th><th>件数</th><th>重大</th><th>警告</th><th>情報</th></tr>
{{range .IssuesByCategory}}<tr><td>{{.Category}}</td><td>{{.Count}}</td><td>{{.Critical}}</td><td>{{.Warning}}</td><td>{{.Info}}</td></tr>
{{end}}</table>
</div>
</body>
</html>
`))

// WriteHTML writes the report as a standalone HTML page.
func WriteHTML(w io.Writer, r *Report) error {
	return htmlTemplate.Execute(w, r)
}
