/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package config provides project configuration loading for qscan.
package config

import (
	"encoding/json"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"bokiquiz.dev/qscan/journal"
	"bokiquiz.dev/qscan/parser"
)

// Config represents the qscan project configuration.
type Config struct {
	// Files specifies the question data files to scan (paths or globs).
	Files []FileSpec `yaml:"files" json:"files"`

	// Exclude lists globs removed from the expanded Files.
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Parser selects the default parser: "scan" or "treesitter".
	Parser string `yaml:"parser" json:"parser"`

	// Vocabulary is a vocabulary file merged over the built-in one.
	Vocabulary string `yaml:"vocabulary" json:"vocabulary"`

	// ReportDir receives question-validation-report.{json,html} when set.
	ReportDir string `yaml:"reportDir" json:"reportDir"`

	// Journal is the edit history database.
	Journal string `yaml:"journal" json:"journal"`

	// Strict fails validation on warnings.
	Strict bool `yaml:"strict" json:"strict"`
}

// FileSpec represents a data file specification.
// It can be specified as a simple string path or as an object with overrides.
type FileSpec struct {
	// Path is the file path (supports globs).
	Path string `yaml:"path" json:"path"`

	// Parser overrides the global parser for this file.
	Parser string `yaml:"parser" json:"parser"`
}

// UnmarshalYAML handles both string and object forms for FileSpec.
func (f *FileSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Path = node.Value
		return nil
	}

	type rawFileSpec FileSpec
	return node.Decode((*rawFileSpec)(f))
}

// UnmarshalJSON handles both string and object forms for FileSpec.
func (f *FileSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Path = s
		return nil
	}

	type rawFileSpec FileSpec
	return json.Unmarshal(data, (*rawFileSpec)(f))
}

// Default returns a config with default values.
func Default() *Config {
	return &Config{
		Parser:  string(parser.KindScan),
		Journal: journal.DefaultPath,
	}
}

// ParserFor returns the parser kind for a resolved file path. A FileSpec
// override applies when its path or glob matches.
func (c *Config) ParserFor(rootDir, path string) parser.Kind {
	for _, spec := range c.Files {
		if spec.Parser == "" {
			continue
		}
		pattern := Resolve(rootDir, spec.Path)
		if pattern == path || matches(pattern, path) {
			return parser.Kind(spec.Parser)
		}
	}
	return parser.Kind(c.Parser)
}

// Resolve returns path made absolute against rootDir. Empty stays empty.
func Resolve(rootDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}

// JournalPath returns the absolute journal path.
func (c *Config) JournalPath(rootDir string) string {
	if c.Journal == "" {
		return Resolve(rootDir, journal.DefaultPath)
	}
	return Resolve(rootDir, c.Journal)
}
