/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package parser

import (
	"bokiquiz.dev/qscan/fs"
	"bokiquiz.dev/qscan/record"
	"bokiquiz.dev/qscan/scanner"
)

// ScanParser reads records with the brace-depth scanner. It works on any
// JS-like source and does not need the file to be syntactically valid
// outside the records themselves.
type ScanParser struct{}

// NewScanParser creates a scanner-based parser.
func NewScanParser() *ScanParser {
	return &ScanParser{}
}

// Parse implements Parser. When the text ends inside an unclosed record the
// records before it are returned together with the error.
func (p *ScanParser) Parse(data []byte, opts Options) (*Result, error) {
	src := string(data)
	spans, scanErr := scanner.Records(src)

	result := &Result{Source: data}
	for _, span := range spans {
		text := span.Text(src)
		r := record.New(span, scanner.LineAt(src, span.Start))
		result.FieldErrors = append(result.FieldErrors, readFields(r, text)...)
		result.Records = append(result.Records, r)
	}

	return result, scanErr
}

// ParseFile implements Parser.
func (p *ScanParser) ParseFile(filesystem fs.FileSystem, path string, opts Options) (*Result, error) {
	return parseFile(p, filesystem, path, opts)
}

// readFields fills r from the record text and returns the fields that exist
// but are not plain literals.
func readFields(r *record.Record, text string) []*FieldError {
	var errs []*FieldError

	for _, name := range record.StringFields {
		prop, ok := scanner.FindProperty(text, name)
		if !ok {
			continue
		}
		value, err := scanner.ExtractField(text, name)
		if err != nil {
			errs = append(errs, &FieldError{Line: r.Line, Field: name, Err: err})
			continue
		}
		r.Set(name, value, prop.Quote)
	}

	if _, ok := scanner.FindProperty(text, record.FieldDifficulty); ok {
		n, err := scanner.ExtractNumber(text, record.FieldDifficulty)
		if err != nil {
			errs = append(errs, &FieldError{Line: r.Line, Field: record.FieldDifficulty, Err: err})
		} else {
			r.Difficulty = n
			r.HasDifficulty = true
		}
	}

	for _, e := range errs {
		e.RecordID = r.ID
	}
	return errs
}
