/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package search

import (
	"bytes"
	"regexp"
	"testing"

	"bokiquiz.dev/qscan/parser"
	"bokiquiz.dev/qscan/record"
	"bokiquiz.dev/qscan/testutil"
)

func TestMatchString(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		query    string
		pattern  *regexp.Regexp
		expected bool
	}{
		{"simple match", "商品を現金で仕入れた", "現金", nil, true},
		{"case insensitive", "ABC Trading", "abc", nil, true},
		{"full width query", "売上 300,000円", "３００", nil, true},
		{"half width katakana", "クレジットカード", "ｶｰﾄﾞ", nil, true},
		{"no match", "商品を現金で仕入れた", "売掛金", nil, false},
		{"empty query", "現金", "", nil, true},
		{"empty string", "", "現金", nil, false},
		{"regex match", "Q_J_001", "", regexp.MustCompile(`^Q_J_`), true},
		{"regex no match", "Q_L_001", "", regexp.MustCompile(`^Q_J_`), false},
		{"regex amount", "代金200,000円", "", regexp.MustCompile(`\d{1,3}(,\d{3})+円`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchString(tt.s, tt.query, tt.pattern)
			if got != tt.expected {
				t.Errorf("matchString(%q, %q, pattern) = %v, want %v", tt.s, tt.query, got, tt.expected)
			}
		})
	}
}

func masterRecords(t *testing.T) []*record.Record {
	t.Helper()
	res, err := parser.NewScanParser().Parse(testutil.LoadFixtureFile(t, "fixtures/questions/master-questions.ts"), parser.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res.Records
}

func TestSearchRecords(t *testing.T) {
	records := masterRecords(t)

	t.Run("default fields", func(t *testing.T) {
		result := searchRecords(records, searchFields, "", "売掛金", nil)
		if len(result) == 0 {
			t.Fatal("expected matches")
		}
		for _, m := range result {
			if m.Field != record.FieldQuestionText && m.Field != record.FieldExplanation && m.Field != record.FieldCorrectAnswerJSON {
				t.Errorf("unexpected field %s", m.Field)
			}
		}
	})

	t.Run("field and category", func(t *testing.T) {
		result := searchRecords(records, []string{record.FieldQuestionText}, record.Ledger, "勘定記入問題", nil)
		if len(result) != 2 {
			t.Fatalf("expected 2 ledger matches, got %d", len(result))
		}
		if result[0].ID != "Q_L_001" || result[1].ID != "Q_L_002" {
			t.Errorf("unexpected ids %s, %s", result[0].ID, result[1].ID)
		}
	})

	t.Run("decoded text", func(t *testing.T) {
		result := searchRecords(records, []string{record.FieldQuestionText}, "", "", regexp.MustCompile(`問題】\n\n前月繰越`))
		if len(result) != 1 || result[0].ID != "Q_L_001" {
			t.Errorf("expected Q_L_001 via decoded newlines, got %+v", result)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		result := searchRecords(records, searchFields, "", "存在しない語", nil)
		if len(result) != 0 {
			t.Errorf("expected 0 matches, got %d", len(result))
		}
	})
}

func TestOutputIDs(t *testing.T) {
	var buf bytes.Buffer
	err := outputIDs(&buf, []match{{ID: "Q1", Field: "explanation"}, {ID: "Q1", Field: "question_text"}, {ID: "Q2"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "Q1\nQ2\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("一行目\n二行目", 10); got != "一行目" {
		t.Errorf("expected first line, got %q", got)
	}
	if got := excerpt("あいうえお", 3); got != "あいう…" {
		t.Errorf("expected truncation, got %q", got)
	}
}
