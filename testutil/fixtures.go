/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package testutil loads testdata fixtures for qscan tests.
package testutil

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"testing"

	"bokiquiz.dev/qscan/internal/mapfs"
)

// fixture resolves name under the nearest testdata directory. Packages sit
// at most two levels below the module root.
func fixture(t *testing.T, name string) string {
	t.Helper()
	for _, up := range []string{".", "..", filepath.Join("..", "..")} {
		p := filepath.Join(up, "testdata", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Fatalf("fixture %s not found in any testdata directory", name)
	return ""
}

// LoadFixtureFile returns the bytes of a single fixture file.
func LoadFixtureFile(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(fixture(t, name))
	if err != nil {
		t.Fatalf("reading fixture %s: %v", name, err)
	}
	return data
}

// AddFixture copies a single fixture file into mfs at dest.
func AddFixture(t *testing.T, mfs *mapfs.MapFileSystem, name, dest string) {
	t.Helper()
	mfs.AddFile(dest, string(LoadFixtureFile(t, name)), 0o644)
}

// NewFixtureFS mirrors a fixture directory into a fresh in-memory filesystem
// rooted at root, e.g. a question-data project at /project.
func NewFixtureFS(t *testing.T, dir, root string) *mapfs.MapFileSystem {
	t.Helper()
	src := fixture(t, dir)
	mfs := mapfs.New()
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		mfs.AddFile(path.Join(root, filepath.ToSlash(rel)), string(data), 0o644)
		return nil
	})
	if err != nil {
		t.Fatalf("loading fixtures from %s: %v", dir, err)
	}
	return mfs
}
