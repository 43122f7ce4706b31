/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package parser reads question records out of TypeScript and JavaScript
// data files.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"bokiquiz.dev/qscan/fs"
	"bokiquiz.dev/qscan/record"
)

// Kind selects a parser implementation.
type Kind string

const (
	// KindScan uses the brace-depth scanner.
	KindScan Kind = "scan"
	// KindTreeSitter uses a tree-sitter grammar.
	KindTreeSitter Kind = "treesitter"
)

// Language is the source grammar of a data file.
type Language string

const (
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
	LanguageJavaScript Language = "javascript"
)

// Options configures record parsing.
type Options struct {
	// Language overrides detection from the file extension.
	Language Language
}

// FieldError reports a field that exists on a record but could not be read.
type FieldError struct {
	RecordID string
	Line     int
	Field    string
	Err      error
}

func (e *FieldError) Error() string {
	id := e.RecordID
	if id == "" {
		id = fmt.Sprintf("line %d", e.Line)
	}
	return fmt.Sprintf("%s: %s: %v", id, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Result holds the records of one file and the field defects met on the way.
type Result struct {
	Path        string
	Source      []byte
	Records     []*record.Record
	FieldErrors []*FieldError
}

// Parser parses question data files.
type Parser interface {
	// Parse parses source text and returns its records.
	Parse(data []byte, opts Options) (*Result, error)

	// ParseFile parses a data file and returns its records.
	ParseFile(filesystem fs.FileSystem, path string, opts Options) (*Result, error)
}

// New returns the parser for kind. An empty kind selects KindScan.
func New(kind Kind) (Parser, error) {
	switch kind {
	case "", KindScan:
		return NewScanParser(), nil
	case KindTreeSitter:
		return NewTreeSitterParser(), nil
	}
	return nil, fmt.Errorf("unknown parser %q (want %s or %s)", kind, KindScan, KindTreeSitter)
}

// LanguageForPath guesses the grammar from a file extension.
func LanguageForPath(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return LanguageTSX
	case ".js", ".mjs", ".cjs", ".jsx":
		return LanguageJavaScript
	default:
		return LanguageTypeScript
	}
}

func parseFile(p Parser, filesystem fs.FileSystem, path string, opts Options) (*Result, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	if opts.Language == "" {
		opts.Language = LanguageForPath(path)
	}

	result, err := p.Parse(data, opts)
	if result != nil {
		result.Path = path
		for _, r := range result.Records {
			r.FilePath = path
		}
	}
	if err != nil {
		return result, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return result, nil
}
