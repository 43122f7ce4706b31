/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package fs is the filesystem seam between qscan commands and the data
// files they read and rewrite. Tests substitute an in-memory implementation.
package fs

import (
	"io/fs"
	"os"
)

// FileSystem is the subset of file operations qscan performs. Paths are
// host paths; the io/fs methods let fs.WalkDir and doublestar traverse it.
type FileSystem interface {
	fs.StatFS
	fs.ReadFileFS

	Exists(name string) bool
	WriteFile(name string, data []byte, perm fs.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
	MkdirAll(name string, perm fs.FileMode) error
}

// OSFileSystem is the FileSystem backed by the host.
type OSFileSystem struct{}

var _ FileSystem = (*OSFileSystem)(nil)

// NewOSFileSystem returns the host filesystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (*OSFileSystem) Open(name string) (fs.File, error)            { return os.Open(name) }
func (*OSFileSystem) Stat(name string) (fs.FileInfo, error)        { return os.Stat(name) }
func (*OSFileSystem) ReadFile(name string) ([]byte, error)         { return os.ReadFile(name) }
func (*OSFileSystem) Rename(oldpath, newpath string) error         { return os.Rename(oldpath, newpath) }
func (*OSFileSystem) Remove(name string) error                     { return os.Remove(name) }
func (*OSFileSystem) MkdirAll(name string, perm fs.FileMode) error { return os.MkdirAll(name, perm) }

func (*OSFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// Exists reports whether name can be stat'ed.
func (*OSFileSystem) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}
