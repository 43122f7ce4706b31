/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package history

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"bokiquiz.dev/qscan/journal"
)

func entries() []journal.Entry {
	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	return []journal.Entry{
		{ID: 2, RunID: "0b6f0f5e-1111-4c1e-9a53-7a2c4a8f0e01", File: "/data/q.ts", RecordID: "Q_L_003", Field: "explanation", OldSHA: journal.Digest("a"), NewSHA: journal.Digest("b"), AppliedAt: at},
		{ID: 1, RunID: "4c2d9a1e-2222-4f7b-8b11-3d9e6c7a5b02", File: "/data/q.ts", RecordID: "Q_J_002", Field: "difficulty", OldSHA: journal.Digest("1"), NewSHA: journal.Digest("2"), AppliedAt: at.Add(-time.Hour)},
	}
}

func TestOutputTable(t *testing.T) {
	var buf bytes.Buffer
	if err := outputTable(&buf, entries()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Q_L_003", "explanation", "0b6f0f5e", short(journal.Digest("b"))} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, journal.Digest("b")) {
		t.Error("expected shortened digests")
	}
}

func TestOutputTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := outputTable(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "no edits recorded\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := outputJSON(&buf, entries()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []journal.Entry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 2 || got[0].RecordID != "Q_L_003" || got[1].Field != "difficulty" {
		t.Errorf("unexpected entries %+v", got)
	}

	buf.Reset()
	if err := outputJSON(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected [], got %q", buf.String())
	}
}

func TestShort(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"abc", "abc"},
		{"0123456789", "01234567"},
	}
	for _, tt := range tests {
		if got := short(tt.in); got != tt.want {
			t.Errorf("short(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
