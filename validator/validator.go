/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package validator checks question records against bookkeeping rules and
// the reference vocabulary.
package validator

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"bokiquiz.dev/qscan/parser"
	"bokiquiz.dev/qscan/record"
	"bokiquiz.dev/qscan/vocab"
)

// MinExplanationLength is the shortest acceptable explanation, in characters.
const MinExplanationLength = 10

// MinLedgerQuestionLength is the shortest ledger question text, in
// characters, that can carry the transactions to post.
const MinLedgerQuestionLength = 50

// Validator validates records. It never modifies them.
type Validator struct {
	Vocab *vocab.Vocabulary
}

// New creates a validator. A nil vocabulary selects vocab.Default.
func New(v *vocab.Vocabulary) *Validator {
	if v == nil {
		v = vocab.Default()
	}
	return &Validator{Vocab: v}
}

// ValidateResult validates the records of one parsed file, reporting field
// read errors as structure issues.
func (v *Validator) ValidateResult(res *parser.Result) *Result {
	result := v.Validate(res.Records)
	for _, fe := range res.FieldErrors {
		result.Issues = append(result.Issues, Issue{
			RecordID: fe.RecordID,
			FilePath: res.Path,
			Line:     fe.Line,
			Severity: Critical,
			Category: CategoryStructure,
			Message:  fmt.Sprintf("フィールドを文字列として読み取れません: %s", fe.Field),
			Details:  map[string]any{"error": fe.Err.Error()},
		})
		result.Statistics.IssuesFound++
		result.Statistics.StructuralIssues++
	}
	return result
}

// Validate checks every record and the batch as a whole.
func (v *Validator) Validate(records []*record.Record) *Result {
	result := &Result{}
	result.Statistics.TotalQuestions = len(records)

	flagged := make(map[*record.Record]bool)
	for _, r := range records {
		c := &checker{vocab: v.Vocab, record: r, stats: &result.Statistics}
		c.run()
		for _, i := range c.issues {
			if i.Severity != Info {
				flagged[r] = true
			}
		}
		result.Issues = append(result.Issues, c.issues...)
	}

	for _, i := range duplicates(records) {
		result.Issues = append(result.Issues, i.issue)
		result.Statistics.IssuesFound++
		flagged[i.record] = true
	}
	result.Statistics.RecordsWithIssues = len(flagged)
	return result
}

// ValidateRecord checks a single record.
func (v *Validator) ValidateRecord(r *record.Record) []Issue {
	c := &checker{vocab: v.Vocab, record: r, stats: &Statistics{}}
	c.run()
	return c.issues
}

type duplicate struct {
	record *record.Record
	issue  Issue
}

func duplicates(records []*record.Record) []duplicate {
	byID := make(map[string][]*record.Record)
	var order []string
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if _, ok := byID[r.ID]; !ok {
			order = append(order, r.ID)
		}
		byID[r.ID] = append(byID[r.ID], r)
	}

	var out []duplicate
	for _, id := range order {
		group := byID[id]
		if len(group) < 2 {
			continue
		}
		lines := make([]int, 0, len(group))
		for _, r := range group {
			lines = append(lines, r.Line)
		}
		for _, r := range group[1:] {
			out = append(out, duplicate{record: r, issue: Issue{
				RecordID: id,
				FilePath: r.FilePath,
				Line:     r.Line,
				Severity: Critical,
				Category: CategoryDuplicateID,
				Message:  fmt.Sprintf("IDが重複しています (%d件)", len(group)),
				Details:  map[string]any{"lines": lines},
			}})
		}
	}
	return out
}

// checker validates one record.
type checker struct {
	vocab  *vocab.Vocabulary
	record *record.Record
	stats  *Statistics
	issues []Issue

	answer *record.Answer
}

func (c *checker) add(severity Severity, category Category, details map[string]any, format string, args ...any) {
	c.issues = append(c.issues, Issue{
		RecordID: c.record.ID,
		FilePath: c.record.FilePath,
		Line:     c.record.Line,
		Severity: severity,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Details:  details,
	})
	if severity != Info {
		c.stats.IssuesFound++
	}
	if category == CategoryStructure && severity == Critical {
		c.stats.StructuralIssues++
	}
}

func (c *checker) run() {
	c.structure()
	c.questionText()

	switch c.record.Category() {
	case record.Journal:
		c.stats.JournalQuestions++
		if c.answer != nil {
			c.journal()
		}
	case record.Ledger:
		c.stats.LedgerQuestions++
		if c.answer != nil {
			c.ledger()
		}
	case record.TrialBalance:
		c.stats.TrialBalanceQuestions++
		if c.answer != nil {
			c.trialBalance()
		}
	default:
		c.add(Warning, CategoryStructure, nil, "未知のカテゴリ: %s", c.record.CategoryID)
	}

	c.explanation()
}

func (c *checker) structure() {
	r := c.record
	for _, field := range record.RequiredFields {
		if !r.Present[field] || strings.TrimSpace(r.Get(field)) == "" {
			c.add(Critical, CategoryStructure, nil, "必須フィールドが空: %s", field)
		}
	}

	if r.Present[record.FieldAnswerTemplateJSON] {
		tmpl, err := r.Template()
		switch {
		case err != nil:
			c.add(Critical, CategoryStructure, map[string]any{"error": err.Error()}, "answer_template_jsonの構文エラー")
		case tmpl.Type != "" && !slices.Contains(record.KnownTemplateTypes, tmpl.Type):
			c.add(Warning, CategoryStructure, nil, "未知のテンプレート種別: %s", tmpl.Type)
		}
	}

	if r.Present[record.FieldCorrectAnswerJSON] {
		answer, err := r.Answer()
		if err != nil {
			c.add(Critical, CategoryStructure, map[string]any{"error": err.Error()}, "correct_answer_jsonの構文エラー")
		} else {
			c.answer = answer
		}
	}

	if r.Present[record.FieldTagsJSON] {
		if _, err := r.Tags(); err != nil {
			c.add(Warning, CategoryTags, map[string]any{"error": err.Error()}, "tags_jsonの構文エラー")
		}
	}

	switch {
	case !r.HasDifficulty:
		c.add(Warning, CategoryDifficulty, nil, "difficultyが設定されていません")
	case r.Difficulty < 1 || r.Difficulty > 5:
		c.add(Warning, CategoryDifficulty, nil, "difficultyが範囲外です: %d (1〜5)", r.Difficulty)
	}
}

// questionText flags question text that cannot be answered on its own. A
// blank text is already a structure issue.
func (c *checker) questionText() {
	text := strings.TrimSpace(c.record.Text(record.FieldQuestionText))
	if text == "" {
		return
	}
	if p, ok := c.vocab.InsufficientReference(text); ok {
		c.add(Warning, CategoryGenericContent, map[string]any{"phrase": p}, "問題文に不完全な参照: 「%s」を含みます", p)
	}
	if c.record.Category() != record.Ledger {
		return
	}
	if n := utf8.RuneCountInString(text); n < MinLedgerQuestionLength {
		c.add(Warning, CategoryGenericContent, map[string]any{"length": n}, "問題文が短すぎます (%d文字, %d文字以上が必要)", n, MinLedgerQuestionLength)
	}
	if !strings.ContainsAny(text, "円月日年") {
		c.add(Info, CategoryGenericContent, nil, "問題文に具体的な金額・日付の情報がありません")
	}
}

func (c *checker) journal() {
	entry := c.answer.JournalEntry
	if entry == nil {
		switch {
		case len(c.answer.Vouchers) > 0:
			c.vouchers()
		case c.answer.Selected != nil:
		default:
			c.add(Critical, CategoryStructure, nil, "仕訳問題にjournalEntryが設定されていません")
		}
		return
	}

	if entry.Compound() {
		c.compoundEntry(entry.Entries)
		return
	}
	c.simpleEntry(entry.JournalLine)
}

func (c *checker) simpleEntry(line record.JournalLine) {
	if line.DebitAmount != line.CreditAmount {
		c.add(Critical, CategoryAmountMismatch, nil, "借方・貸方金額不一致: 借方=%d, 貸方=%d", line.DebitAmount, line.CreditAmount)
		c.stats.AmountMismatches++
	}
	c.account(line.DebitAccount, vocab.Debit)
	c.account(line.CreditAccount, vocab.Credit)
	c.amounts(line.DebitAmount, line.CreditAmount)
	c.pattern(line.DebitAccount, line.CreditAccount)
}

func (c *checker) compoundEntry(lines []record.JournalLine) {
	var debit, credit record.Amount
	for _, l := range lines {
		if l.DebitAccount != "" && l.DebitAmount != 0 {
			debit += l.DebitAmount
			c.account(l.DebitAccount, vocab.Debit)
		}
		if l.CreditAccount != "" && l.CreditAmount != 0 {
			credit += l.CreditAmount
			c.account(l.CreditAccount, vocab.Credit)
		}
	}
	if debit != credit {
		c.add(Critical, CategoryAmountMismatch, nil, "複合仕訳の貸借不一致: 借方計=%d, 貸方計=%d", debit, credit)
		c.stats.AmountMismatches++
	}
	c.amounts(debit, credit)
}

func (c *checker) vouchers() {
	for _, v := range c.answer.Vouchers {
		for _, e := range v.Entries {
			if e.Account == "" {
				c.add(Critical, CategoryAccountIssue, nil, "伝票(%s)の勘定科目が空", v.Type)
				c.stats.AccountIssues++
				continue
			}
			if _, _, ok := c.vocab.Lookup(e.Account); !ok {
				c.add(Warning, CategoryAccountIssue, nil, "未定義の勘定科目: %s", e.Account)
				c.stats.AccountIssues++
			}
		}
	}
}

func (c *checker) account(name string, side vocab.Side) {
	if name == "" {
		c.add(Critical, CategoryAccountIssue, nil, "勘定科目が空: %s側", side)
		c.stats.AccountIssues++
		return
	}

	canonical, acct, ok := c.vocab.Lookup(name)
	if !ok {
		c.add(Warning, CategoryAccountIssue, nil, "未定義の勘定科目: %s", name)
		c.stats.AccountIssues++
		return
	}

	if acct.NormalSide == vocab.Both || acct.NormalSide == side {
		return
	}
	if c.vocab.IsSpecialAccount(canonical) || c.vocab.HasSpecialKeyword(c.record.Text(record.FieldQuestionText)) {
		return
	}
	c.add(Info, CategoryAccountIssue, nil, "%sの%s計上（通常は%s科目）", canonical, side.Label(), acct.NormalSide.Label())
}

func (c *checker) amounts(answer ...record.Amount) {
	found := ExtractAmounts(c.record.Text(record.FieldQuestionText))
	if len(found) == 0 {
		c.add(Warning, CategoryAmountMismatch, nil, "問題文に金額が見つかりません")
		return
	}
	for _, a := range answer {
		n := int64(a)
		if slices.Contains(found, n) || IsCalculatedAmount(found, n) {
			continue
		}
		c.add(Warning, CategoryAmountMismatch,
			map[string]any{"questionAmounts": found, "answerAmount": n},
			"解答金額%d円が問題文の金額と一致しません", n)
	}
}

func (c *checker) pattern(debit, credit string) {
	if name, _, ok := c.vocab.Lookup(debit); ok {
		debit = name
	}
	if name, _, ok := c.vocab.Lookup(credit); ok {
		credit = name
	}
	p, ok := c.vocab.Pattern(debit, credit)
	if !ok {
		return
	}
	text := c.record.Text(record.FieldQuestionText)
	for _, k := range p.Keywords {
		if !strings.Contains(text, k) {
			c.add(Warning, CategoryTransactionPattern, map[string]any{"missingKeyword": k}, "取引パターン「%s」の処理に疑問があります", p.Name)
			return
		}
	}
}

func (c *checker) ledger() {
	if !c.answer.HasEntries {
		c.add(Critical, CategoryStructure, nil, "元帳問題にentriesが設定されていません")
		return
	}

	dated := false
	for _, e := range c.answer.Entries {
		if strings.TrimSpace(e.Date) != "" && strings.TrimSpace(e.Description) != "" {
			dated = true
		}
		if c.vocab.IsGenericDescription(e.Description) {
			c.add(Warning, CategoryGenericContent, nil, "元帳記入の摘要が一般的すぎます")
		}
		if e.Debit != 0 && e.Credit != 0 {
			c.add(Warning, CategoryLedgerIssue, nil, "同一行に借方・貸方が両方設定されています")
		}
	}
	if !dated {
		c.add(Critical, CategoryLedgerIssue, nil, "日付と摘要を両方持つ記入がありません")
	}
}

func (c *checker) trialBalance() {
	if len(c.answer.Accounts) == 0 && !c.answer.HasEntries {
		c.add(Critical, CategoryStructure, nil, "試算表問題にaccountsまたはentriesが設定されていません")
		return
	}

	names := make([]string, 0, len(c.answer.Accounts))
	for name := range c.answer.Accounts {
		names = append(names, name)
	}
	slices.Sort(names)

	var debit, credit record.Amount
	for _, name := range names {
		line := c.answer.Accounts[name]
		debit += line.Debit
		credit += line.Credit
		if _, _, ok := c.vocab.Lookup(name); !ok {
			c.add(Warning, CategoryAccountIssue, nil, "試算表に未定義の勘定科目: %s", name)
		}
	}

	if debit != credit && debit > 0 && credit > 0 {
		c.add(Critical, CategoryAmountMismatch, nil, "試算表の貸借不一致: 借方計=%d, 貸方計=%d", debit, credit)
		c.stats.AmountMismatches++
	}
}

func (c *checker) explanation() {
	text := strings.TrimSpace(c.record.Text(record.FieldExplanation))
	if utf8.RuneCountInString(text) < MinExplanationLength {
		c.add(Warning, CategoryExplanation, nil, "説明文が短すぎます")
		return
	}

	marker := c.vocab.ReviewedMarker
	if p, ok := c.vocab.GenericExplanation(text); ok && (marker == "" || !strings.Contains(text, marker)) {
		c.add(Warning, CategoryGenericExplanation, nil, "一般的すぎる説明文: 「%s」を含む説明文に具体的な解説がありません", p)
		c.stats.GenericExplanations++
	}

	if c.record.Category() != record.Journal || c.answer == nil || c.answer.JournalEntry == nil {
		return
	}
	var accounts []string
	for _, l := range c.answer.JournalEntry.Lines() {
		if l.DebitAccount != "" {
			accounts = append(accounts, l.DebitAccount)
		}
		if l.CreditAccount != "" {
			accounts = append(accounts, l.CreditAccount)
		}
	}
	if len(accounts) == 0 {
		return
	}
	for _, a := range accounts {
		if strings.Contains(text, a) {
			return
		}
	}
	c.add(Info, CategoryExplanation, nil, "説明文に解答の勘定科目が言及されていません")
}
