/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package fs_test

import (
	"errors"
	"testing"

	"bokiquiz.dev/qscan/fs"
	"bokiquiz.dev/qscan/internal/mapfs"
)

func TestWriteFileAtomic(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/data/questions.ts", "old", 0600)

	if err := fs.WriteFileAtomic(mfs, "/data/questions.ts", []byte("new")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := mfs.ReadFile("/data/questions.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("expected new content, got %q", data)
	}

	info, err := mfs.Stat("/data/questions.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600 to be kept, got %v", info.Mode().Perm())
	}

	if mfs.Exists(fs.TempName("/data/questions.ts")) {
		t.Errorf("temporary file left behind")
	}
	if w := mfs.Writes(); len(w) != 1 || w[0] != "/data/questions.ts" {
		t.Errorf("expected a single committed write, got %v", w)
	}
}

func TestWriteFileAtomic_RenameFails(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/data/questions.ts", "old", 0644)
	mfs.FailOn("/data/questions.ts", nil)

	err := fs.WriteFileAtomic(mfs, "/data/questions.ts", []byte("new"))
	if !errors.Is(err, mapfs.ErrInjected) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	data, _ := mfs.ReadFile("/data/questions.ts")
	if string(data) != "old" {
		t.Errorf("original must survive a failed replace, got %q", data)
	}
	if mfs.Exists(fs.TempName("/data/questions.ts")) {
		t.Errorf("staging file left behind")
	}
}

func TestWriteFileAtomic_NewFile(t *testing.T) {
	mfs := mapfs.New()
	if err := fs.WriteFileAtomic(mfs, "/out/report.ts", []byte("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mfs.Exists("/out/report.ts") {
		t.Errorf("expected file to be created")
	}
}
