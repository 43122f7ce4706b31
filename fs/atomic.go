/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package fs

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

const tmpSuffix = ".qscan-tmp"

// TempName is the sibling path WriteFileAtomic stages data in.
func TempName(name string) string {
	return filepath.Join(filepath.Dir(name), "."+filepath.Base(name)+tmpSuffix)
}

// WriteFileAtomic stages data in a hidden sibling and renames it over name,
// so readers see either the old or the new data file. An existing file keeps
// its mode; new files get 0644.
func WriteFileAtomic(filesystem FileSystem, name string, data []byte) error {
	perm := fs.FileMode(0o644)
	if info, err := filesystem.Stat(name); err == nil {
		perm = info.Mode().Perm()
	}

	tmp := TempName(name)
	if err := filesystem.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("failed to stage %s: %w", name, err)
	}
	if err := filesystem.Rename(tmp, name); err != nil {
		_ = filesystem.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
