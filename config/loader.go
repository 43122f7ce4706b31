/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	qfs "bokiquiz.dev/qscan/fs"
)

// ConfigFileName is the base name of the config file without extension.
const ConfigFileName = "qscan"

// ConfigDir is the directory under the project root holding the config file.
const ConfigDir = ".config"

type decoder func(data []byte, cfg *Config) error

// decoders in lookup order. JSON configs may carry comments and trailing
// commas.
var decoders = []struct {
	ext    string
	decode decoder
}{
	{".yaml", func(d []byte, c *Config) error { return yaml.Unmarshal(d, c) }},
	{".yml", func(d []byte, c *Config) error { return yaml.Unmarshal(d, c) }},
	{".json", func(d []byte, c *Config) error { return json.Unmarshal(jsonc.ToJSON(d), c) }},
}

// Load reads the first of .config/qscan.{yaml,yml,json} under rootDir over
// the defaults. It returns nil without error when the project has no config.
func Load(filesystem qfs.FileSystem, rootDir string) (*Config, error) {
	for _, d := range decoders {
		p := filepath.Join(rootDir, ConfigDir, ConfigFileName+d.ext)
		if !filesystem.Exists(p) {
			continue
		}
		data, err := filesystem.ReadFile(p)
		if err != nil {
			return nil, err
		}
		cfg := Default()
		if err := d.decode(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		return cfg, nil
	}
	return nil, nil
}

// ExpandFiles resolves the configured data files against rootDir. Glob
// entries match files found on disk, in walk order; plain entries are kept
// even when missing so the reader reports them. Duplicates and paths
// matching an Exclude pattern are dropped.
func (c *Config) ExpandFiles(filesystem qfs.FileSystem, rootDir string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, spec := range c.Files {
		matches, err := glob(filesystem, Resolve(rootDir, spec.Path))
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", spec.Path, err)
		}
		for _, m := range matches {
			if seen[m] || c.excluded(rootDir, m) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	return files, nil
}

func (c *Config) excluded(rootDir, file string) bool {
	for _, pattern := range c.Exclude {
		if matches(Resolve(rootDir, pattern), file) {
			return true
		}
	}
	return false
}

// matches reports whether the host path name matches a ** glob.
func matches(pattern, name string) bool {
	ok, _ := doublestar.Match(filepath.ToSlash(pattern), filepath.ToSlash(name))
	return ok
}

// glob walks the literal prefix of an absolute pattern. Unreadable
// directories are skipped.
func glob(filesystem qfs.FileSystem, pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return []string{pattern}, nil
	}

	base, rel := doublestar.SplitPattern(filepath.ToSlash(pattern))
	base = filepath.FromSlash(base)

	var matches []string
	err := fs.WalkDir(filesystem, base, func(p string, d fs.DirEntry, err error) error {
		switch {
		case err != nil && d != nil && d.IsDir():
			return fs.SkipDir
		case err != nil, d.IsDir():
			return nil
		}
		r, err := filepath.Rel(base, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(rel, filepath.ToSlash(r)); ok {
			matches = append(matches, p)
		}
		return nil
	})
	return matches, err
}
