/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package mapfs provides an in-memory filesystem for tests that read and
// rewrite question data files. It records every committed write and can be
// told to fail operations on chosen paths.
package mapfs

import (
	"errors"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
	"testing/fstest"
	"time"
)

// ErrInjected is returned by operations on paths registered with FailOn
// when no specific error was given.
var ErrInjected = errors.New("injected failure")

// epoch is the modification time of every file.
var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// MapFileSystem is a concurrency-safe FileSystem over fstest.MapFS. Host
// paths are mapped to slash-separated keys without a leading slash.
type MapFileSystem struct {
	mu     sync.RWMutex
	files  fstest.MapFS
	writes []string
	fail   map[string]error
}

// New returns an empty filesystem.
func New() *MapFileSystem {
	return &MapFileSystem{files: fstest.MapFS{}, fail: map[string]error{}}
}

// AddFile seeds a file without recording a write.
func (m *MapFileSystem) AddFile(name, content string, mode fs.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key(name)] = &fstest.MapFile{Data: []byte(content), Mode: mode, ModTime: epoch}
}

// FailOn makes writes, renames and removals touching name return err, or
// ErrInjected when err is nil.
func (m *MapFileSystem) FailOn(name string, err error) {
	if err == nil {
		err = ErrInjected
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[key(name)] = err
}

// Writes lists, in order, the paths whose contents were replaced through
// WriteFile or the destination of Rename. Staging files are excluded once
// renamed away.
func (m *MapFileSystem) Writes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.writes)
}

func (m *MapFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(name)
	if err := m.check("write", k); err != nil {
		return err
	}
	m.files[k] = &fstest.MapFile{Data: slices.Clone(data), Mode: perm, ModTime: epoch}
	m.writes = append(m.writes, "/"+k)
	return nil
}

func (m *MapFileSystem) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	from, to := key(oldpath), key(newpath)
	f, ok := m.files[from]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	if err := m.check("rename", to); err != nil {
		return err
	}
	m.files[to] = f
	delete(m.files, from)
	m.writes = slices.DeleteFunc(m.writes, func(w string) bool { return w == "/"+from })
	m.writes = append(m.writes, "/"+to)
	return nil
}

func (m *MapFileSystem) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(name)
	if _, ok := m.files[k]; !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(m.files, k)
	m.writes = slices.DeleteFunc(m.writes, func(w string) bool { return w == "/"+k })
	return nil
}

// MkdirAll records an explicit directory entry; MapFS already synthesizes
// parents of files.
func (m *MapFileSystem) MkdirAll(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(name)
	if f, ok := m.files[k]; ok && !f.Mode.IsDir() {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	if err := m.check("mkdir", k); err != nil {
		return err
	}
	m.files[k] = &fstest.MapFile{Mode: fs.ModeDir | perm.Perm(), ModTime: epoch}
	return nil
}

func (m *MapFileSystem) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files.ReadFile(key(name))
}

func (m *MapFileSystem) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files.Stat(key(name))
}

func (m *MapFileSystem) Open(name string) (fs.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files.Open(key(name))
}

// Exists reports whether name is a file or has descendants.
func (m *MapFileSystem) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k := key(name)
	if _, ok := m.files[k]; ok {
		return true
	}
	for p := range m.files {
		if strings.HasPrefix(p, k+"/") {
			return true
		}
	}
	return false
}

// check must be called with mu held.
func (m *MapFileSystem) check(op, k string) error {
	if err, ok := m.fail[k]; ok {
		return &fs.PathError{Op: op, Path: "/" + k, Err: err}
	}
	return nil
}

func key(name string) string {
	k := strings.TrimPrefix(path.Clean("/"+name), "/")
	if k == "" {
		return "."
	}
	return k
}
