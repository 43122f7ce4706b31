/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package document loads a question data file once, queues field edits
// against it and serializes the result once.
package document

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bokiquiz.dev/qscan/parser"
	"bokiquiz.dev/qscan/record"
	"bokiquiz.dev/qscan/scanner"
)

var (
	// ErrOverlappingEdit is returned by Apply when two queued edits touch
	// the same bytes.
	ErrOverlappingEdit = errors.New("overlapping edits")
	// ErrNotRecord is returned when a key is found but its enclosing object
	// is not a record of the data array.
	ErrNotRecord = errors.New("key does not identify a record")
)

// Edit replaces Span of the source with Replacement.
type Edit struct {
	RecordID    string
	Field       string
	Span        scanner.Span
	Old         string
	Replacement string
}

// Document is an in-memory data file.
type Document struct {
	src     string
	records []*record.Record
	index   map[int]*record.Record
	edits   []Edit
}

// Load indexes the records of data. An unclosed trailing record is an error.
func Load(data []byte) (*Document, error) {
	d := &Document{}
	if err := d.reset(string(data)); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) reset(src string) error {
	result, err := parser.NewScanParser().Parse([]byte(src), parser.Options{})
	if err != nil {
		return err
	}
	d.src = src
	d.records = result.Records
	d.index = make(map[int]*record.Record, len(result.Records))
	for _, r := range result.Records {
		d.index[r.Span.Start] = r
	}
	d.edits = nil
	return nil
}

// Records returns the indexed records in source order.
func (d *Document) Records() []*record.Record {
	return d.records
}

// Get returns the record whose id is key.
func (d *Document) Get(key string) (*record.Record, error) {
	offset, err := scanner.Locate(d.src, key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	span, err := scanner.FindEnclosingObject(d.src, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	r, ok := d.index[span.Start]
	if !ok || r.Span != span {
		return nil, fmt.Errorf("%s: %w", key, ErrNotRecord)
	}
	if r.ID != key {
		return nil, fmt.Errorf("%s: %w: match lies in record %s", key, scanner.ErrNotFound, r.ID)
	}
	return r, nil
}

// property returns the named property of record key with its value span
// made absolute.
func (d *Document) property(key, name string) (*record.Record, scanner.Property, bool, error) {
	r, err := d.Get(key)
	if err != nil {
		return nil, scanner.Property{}, false, err
	}
	prop, ok := scanner.FindProperty(r.Span.Text(d.src), name)
	if ok {
		prop.Key = prop.Key.Offset(r.Span.Start)
		prop.Value = prop.Value.Offset(r.Span.Start)
	}
	return r, prop, ok, nil
}

// Field returns the raw contents of string field name of record key.
func (d *Document) Field(key, name string) (string, error) {
	r, err := d.Get(key)
	if err != nil {
		return "", err
	}
	value, err := scanner.ExtractField(r.Span.Text(d.src), name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

// Expr returns the value expression of field name exactly as written.
func (d *Document) Expr(key, name string) (string, error) {
	_, prop, ok, err := d.property(key, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%s: %w: %s", key, scanner.ErrFieldMissing, name)
	}
	return prop.Value.Text(d.src), nil
}

// SetField queues replacing the value expression of field name with expr.
// A missing field is appended after the record's last property.
func (d *Document) SetField(key, name, expr string) error {
	r, prop, ok, err := d.property(key, name)
	if err != nil {
		return err
	}
	if ok {
		d.queue(Edit{
			RecordID:    r.ID,
			Field:       name,
			Span:        prop.Value,
			Old:         prop.Value.Text(d.src),
			Replacement: expr,
		})
		return nil
	}

	text := r.Span.Text(d.src)
	props := scanner.Properties(text)
	if len(props) == 0 {
		return fmt.Errorf("%s: %w: %s", key, scanner.ErrFieldMissing, name)
	}
	last := props[len(props)-1]
	at := r.Span.Start + last.Value.End
	indent := lineIndent(d.src, r.Span.Start+last.Key.Start)
	d.queue(Edit{
		RecordID:    r.ID,
		Field:       name,
		Span:        scanner.Span{Start: at, End: at},
		Replacement: ",\n" + indent + name + ": " + expr,
	})
	return nil
}

// SetString queues setting field name to the string value, quoted with the
// field's current quote character. When value equals the field's decoded
// text the original literal is kept byte for byte.
func (d *Document) SetString(key, name, value string) error {
	_, prop, ok, err := d.property(key, name)
	if err != nil {
		return err
	}
	quote := byte('"')
	if ok && prop.Quote != 0 {
		expr := prop.Value.Text(d.src)
		if current, err := scanner.Unescape(expr[1 : len(expr)-1]); err == nil && current == value {
			return d.SetField(key, name, expr)
		}
		quote = prop.Quote
	}
	return d.SetField(key, name, scanner.Quote(value, quote))
}

// SetNumber queues setting field name to the integer n.
func (d *Document) SetNumber(key, name string, n int) error {
	return d.SetField(key, name, strconv.Itoa(n))
}

// queue adds e, replacing any earlier edit of the same span.
func (d *Document) queue(e Edit) {
	for i := range d.edits {
		if d.edits[i].Span == e.Span && d.edits[i].Field == e.Field {
			d.edits[i] = e
			return
		}
	}
	d.edits = append(d.edits, e)
}

// Pending returns the queued edits in the order they were made.
func (d *Document) Pending() []Edit {
	return d.edits
}

// Changed reports whether any queued edit alters the text.
func (d *Document) Changed() bool {
	for _, e := range d.edits {
		if e.Old != e.Replacement {
			return true
		}
	}
	return false
}

// Apply splices the queued edits into the source, re-indexes the records and
// returns the new text. Edits are applied from the highest offset down so
// earlier offsets stay valid.
func (d *Document) Apply() (string, error) {
	out, err := splice(d.src, d.edits)
	if err != nil {
		return "", err
	}
	if err := d.reset(out); err != nil {
		return "", fmt.Errorf("edited text no longer scans: %w", err)
	}
	return out, nil
}

// Preview returns the text Apply would produce without committing it.
func (d *Document) Preview() (string, error) {
	return splice(d.src, d.edits)
}

// Bytes returns the current source text.
func (d *Document) Bytes() []byte {
	return []byte(d.src)
}

// String returns the current source text.
func (d *Document) String() string {
	return d.src
}

// Splice replaces span of src with replacement.
func Splice(src string, span scanner.Span, replacement string) string {
	return src[:span.Start] + replacement + src[span.End:]
}

func splice(src string, edits []Edit) (string, error) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start > sorted[j].Span.Start
	})
	for i := 1; i < len(sorted); i++ {
		hi, lo := sorted[i-1], sorted[i]
		if lo.Span.End > hi.Span.Start || (lo.Span.Start == hi.Span.Start && lo.Span.Len() == 0 && hi.Span.Len() == 0) {
			return "", fmt.Errorf("%w: %s.%s and %s.%s", ErrOverlappingEdit, lo.RecordID, lo.Field, hi.RecordID, hi.Field)
		}
	}
	for _, e := range sorted {
		if e.Span.Start < 0 || e.Span.End > len(src) || e.Span.Start > e.Span.End {
			return "", fmt.Errorf("edit %s.%s out of range", e.RecordID, e.Field)
		}
		src = Splice(src, e.Span, e.Replacement)
	}
	return src, nil
}

func lineIndent(src string, offset int) string {
	start := strings.LastIndexByte(src[:offset], '\n') + 1
	end := start
	for end < offset && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return src[start:end]
}
