/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Template types found in answer_template_json.
const (
	TemplateJournalEntry   = "journal_entry"
	TemplateLedgerEntry    = "ledger_entry"
	TemplateLedgerAccount  = "ledger_account"
	TemplateTrialBalance   = "trial_balance"
	TemplateVoucherEntry   = "voucher_entry"
	TemplateSingleChoice   = "single_choice"
	TemplateMultipleChoice = "multiple_choice"
)

// KnownTemplateTypes lists the template types the quiz understands.
var KnownTemplateTypes = []string{
	TemplateJournalEntry,
	TemplateLedgerEntry,
	TemplateLedgerAccount,
	TemplateTrialBalance,
	TemplateVoucherEntry,
	TemplateSingleChoice,
	TemplateMultipleChoice,
}

// Amount is a yen amount. It accepts JSON numbers and numeric strings that
// may contain thousands separators.
type Amount int64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			*a = 0
			return nil
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*a = Amount(n)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", s)
	}
	*a = Amount(f)
	return nil
}

// TemplateField is one input of a journal or voucher template.
type TemplateField struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Format   string   `json:"format,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// TemplateColumn is one column of a ledger account template.
type TemplateColumn struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Width   string   `json:"width,omitempty"`
	Options []string `json:"options,omitempty"`
}

// Choice is one option of a choice template.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Template is the decoded answer_template_json payload.
type Template struct {
	Type        string           `json:"type"`
	AccountName string           `json:"account_name,omitempty"`
	Fields      []TemplateField  `json:"fields,omitempty"`
	Columns     []TemplateColumn `json:"columns,omitempty"`
	Vouchers    []VoucherSpec    `json:"vouchers,omitempty"`
	Choices     []Choice         `json:"choices,omitempty"`
	Options     []Choice         `json:"options,omitempty"`
}

// VoucherSpec is one voucher form of a voucher template.
type VoucherSpec struct {
	Type   string          `json:"type"`
	Fields []TemplateField `json:"fields,omitempty"`
}

// JournalLine is a single debit/credit pair.
type JournalLine struct {
	DebitAccount  string `json:"debit_account,omitempty"`
	DebitAmount   Amount `json:"debit_amount,omitempty"`
	CreditAccount string `json:"credit_account,omitempty"`
	CreditAmount  Amount `json:"credit_amount,omitempty"`
}

// JournalEntry is a simple entry, or a compound entry when Entries is set.
type JournalEntry struct {
	JournalLine
	Entries []JournalLine `json:"entries,omitempty"`
}

// Lines returns the entry's debit/credit pairs.
func (e *JournalEntry) Lines() []JournalLine {
	if len(e.Entries) > 0 {
		return e.Entries
	}
	return []JournalLine{e.JournalLine}
}

// Compound reports whether the entry has more than one line.
func (e *JournalEntry) Compound() bool {
	return len(e.Entries) > 0
}

// LedgerLine is one row of a ledger account answer.
type LedgerLine struct {
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
	Account     string `json:"account,omitempty"`
	Ref         string `json:"ref,omitempty"`
	Debit       Amount `json:"debit,omitempty"`
	Credit      Amount `json:"credit,omitempty"`
	Balance     Amount `json:"balance,omitempty"`
	Amount      Amount `json:"amount,omitempty"`
}

// TrialBalanceLine is one account row of a trial balance answer.
type TrialBalanceLine struct {
	Debit  Amount `json:"debit,omitempty"`
	Credit Amount `json:"credit,omitempty"`
}

// Voucher is one filled-in voucher of a voucher answer.
type Voucher struct {
	Type    string       `json:"type"`
	Entries []LedgerLine `json:"entries,omitempty"`
}

// Answer is the decoded correct_answer_json payload. Which members are set
// depends on the question shape.
type Answer struct {
	JournalEntry *JournalEntry               `json:"journalEntry,omitempty"`
	Entries      []LedgerLine                `json:"entries,omitempty"`
	Accounts     map[string]TrialBalanceLine `json:"accounts,omitempty"`
	Vouchers     []Voucher                   `json:"vouchers,omitempty"`
	Selected     json.RawMessage             `json:"selected,omitempty"`

	// HasEntries is true when the payload carries an "entries" key, even if empty.
	HasEntries bool `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Answer) UnmarshalJSON(data []byte) error {
	type rawAnswer Answer
	if err := json.Unmarshal(data, (*rawAnswer)(a)); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err == nil {
		_, a.HasEntries = keys["entries"]
	}
	return nil
}
