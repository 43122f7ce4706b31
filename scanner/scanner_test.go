/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package scanner_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bokiquiz.dev/qscan/scanner"
)

func readFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "questions.ts"))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	return string(data)
}

const example = `[{id:"Q_1", correct_answer_json: '{"a":1}'}, {id:"Q_2", correct_answer_json: '{"b":2}'}]`

func TestLocate_Example(t *testing.T) {
	offset, err := scanner.Locate(example, "Q_2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Index(example, `id:"Q_2"`)
	if offset != want {
		t.Errorf("expected offset %d, got %d", want, offset)
	}

	span, err := scanner.FindEnclosingObject(example, offset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record := span.Text(example)
	if record != `{id:"Q_2", correct_answer_json: '{"b":2}'}` {
		t.Errorf("unexpected record %q", record)
	}

	value, err := scanner.ExtractField(record, "correct_answer_json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != `{"b":2}` {
		t.Errorf("expected {\"b\":2}, got %q", value)
	}

	var decoded map[string]int
	if err := scanner.DecodeJSON(value, &decoded); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if decoded["b"] != 2 {
		t.Errorf("expected b=2, got %v", decoded)
	}
}

func TestLocate_NotFound(t *testing.T) {
	_, err := scanner.Locate(example, "Q_3")
	if !errors.Is(err, scanner.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocate_Duplicate(t *testing.T) {
	src := `[{id: "Q_1"}, {id: 'Q_1'}]`
	_, err := scanner.Locate(src, "Q_1")
	if !errors.Is(err, scanner.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if got := len(scanner.LocateAll(src, "Q_1")); got != 2 {
		t.Errorf("expected 2 offsets, got %d", got)
	}
}

func TestLocate_IgnoresSimilarKeys(t *testing.T) {
	src := `[{question_id: "Q_1", id: "Q_10"}, {"id": "Q_1"}]`
	offset, err := scanner.Locate(src, "Q_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := strings.Index(src, `"id": "Q_1"`); offset != want {
		t.Errorf("expected offset %d, got %d", want, offset)
	}
}

func TestLocate_IgnoresKeyInStringsAndComments(t *testing.T) {
	src := `[
  {id: "Q_A", explanation: "旧ID id: 'Q_B' から移行"},
  // id: "Q_B" was renamed
  /* {id: "Q_B"} */
]`
	_, err := scanner.Locate(src, "Q_B")
	if !errors.Is(err, scanner.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	src = `[{id: "Q_A", explanation: "id: 'Q_B' の続き"}, {id: "Q_B"}]`
	offset, err := scanner.Locate(src, "Q_B")
	if err != nil {
		t.Fatalf("mention in a string must not count as a duplicate: %v", err)
	}
	if want := strings.Index(src, `{id: "Q_B"}`) + 1; offset != want {
		t.Errorf("expected offset %d, got %d", want, offset)
	}
}

func TestLocate_EscapesKey(t *testing.T) {
	src := `[{id: "Q.1"}, {id: "QX1"}]`
	offsets := scanner.LocateAll(src, "Q.1")
	if len(offsets) != 1 {
		t.Errorf("expected key to match literally once, got %d", len(offsets))
	}
}

func TestFindEnclosingObject_BraceInString(t *testing.T) {
	src := `[{note: "a { brace } inside a string", id: "Q_1", tail: "}"}, {id: "Q_2"}]`
	offset, err := scanner.Locate(src, "Q_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	span, err := scanner.FindEnclosingObject(src, offset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{note: "a { brace } inside a string", id: "Q_1", tail: "}"}`
	if got := span.Text(src); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFindEnclosingObject_UnbalancedBraceInString(t *testing.T) {
	src := `[{note: "open { only", id: "Q_1"}]`
	offset, _ := scanner.Locate(src, "Q_1")
	span, err := scanner.FindEnclosingObject(src, offset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if span.Start != 1 || src[span.End-1] != '}' {
		t.Errorf("unexpected span %+v", span)
	}
}

func TestFindEnclosingObject_EscapedQuote(t *testing.T) {
	src := `[{id: "Q_1", text: "say \"}\" twice", n: 1}]`
	offset, _ := scanner.Locate(src, "Q_1")
	span, err := scanner.FindEnclosingObject(src, offset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record := span.Text(src)
	if !strings.HasSuffix(record, "n: 1}") {
		t.Errorf("scan ended early: %q", record)
	}
	value, err := scanner.ExtractField(record, "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != `say \"}\" twice` {
		t.Errorf("expected escapes intact, got %q", value)
	}
}

func TestFindEnclosingObject_CommentsIgnored(t *testing.T) {
	src := "// don't { count\n[{ /* } */ id: \"Q_1\" }]"
	offset, _ := scanner.Locate(src, "Q_1")
	span, err := scanner.FindEnclosingObject(src, offset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := span.Text(src); got != `{ /* } */ id: "Q_1" }` {
		t.Errorf("unexpected record %q", got)
	}
}

func TestFindEnclosingObject_Malformed(t *testing.T) {
	src := `[{id: "Q_1", text: "x"`
	offset, _ := scanner.Locate(src, "Q_1")
	span, err := scanner.FindEnclosingObject(src, offset)
	var malformed *scanner.MalformedSpanError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedSpanError, got %v", err)
	}
	if !errors.Is(err, scanner.ErrMalformedSpan) {
		t.Errorf("expected errors.Is ErrMalformedSpan")
	}
	if span.Start != 1 || span.End != len(src) {
		t.Errorf("expected partial span [1,%d), got %+v", len(src), span)
	}
}

func TestFindEnclosingObject_NotInObject(t *testing.T) {
	src := `const x = 1; [{id: "Q_1"}]`
	_, err := scanner.FindEnclosingObject(src, 3)
	if !errors.Is(err, scanner.ErrNoEnclosingObject) {
		t.Errorf("expected ErrNoEnclosingObject, got %v", err)
	}
}

func TestRecords_Fixture(t *testing.T) {
	src := readFixture(t)
	spans, err := scanner.Records(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 records, got %d", len(spans))
	}
	for _, span := range spans {
		text := span.Text(src)
		if text[0] != '{' || text[len(text)-1] != '}' {
			t.Errorf("span is not an object literal: %q", text)
		}
	}
	id, err := scanner.ExtractField(spans[1].Text(src), "id")
	if err != nil || id != "Q_L_001" {
		t.Errorf("expected second record Q_L_001, got %q (%v)", id, err)
	}
}

func TestRecords_SkipsNestedObjects(t *testing.T) {
	src := `export const q = [{id: "A", options: [{id: "inner"}]}, {id: "B"}];`
	spans, err := scanner.Records(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 outer records, got %d", len(spans))
	}
}

func TestRecords_Unclosed(t *testing.T) {
	src := `[{id: "A"}, {id: "B", x: 1`
	spans, err := scanner.Records(src)
	if !errors.Is(err, scanner.ErrMalformedSpan) {
		t.Fatalf("expected ErrMalformedSpan, got %v", err)
	}
	if len(spans) != 1 {
		t.Errorf("expected the closed record to be returned, got %d", len(spans))
	}
}

func TestLineAt(t *testing.T) {
	src := "a\nb\nc"
	if got := scanner.LineAt(src, 4); got != 3 {
		t.Errorf("expected line 3, got %d", got)
	}
	if got := scanner.LineAt(src, 0); got != 1 {
		t.Errorf("expected line 1, got %d", got)
	}
}
