/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package scanner locates question records inside JS/TS source text and
// extracts their fields without a full language parser.
//
// Records are object literals in an exported array. A record is found by its
// id, expanded to the enclosing braces with a string- and comment-aware brace
// scan, and then read property by property.
package scanner

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Span is a half-open byte range [Start, End) into source text.
type Span struct {
	Start int
	End   int
}

// Text returns the slice of src covered by the span.
func (s Span) Text(src string) string {
	return src[s.Start:s.End]
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Offset shifts the span by base bytes.
func (s Span) Offset(base int) Span {
	return Span{Start: s.Start + base, End: s.End + base}
}

func keyPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?:"id"|'id'|\bid)\s*:\s*["']` + regexp.QuoteMeta(key) + `["']`)
}

// Locate returns the offset of the unique `id: "<key>"` occurrence in src.
// It fails with ErrNotFound when the key is absent and ErrDuplicateKey when
// it occurs more than once.
func Locate(src, key string) (int, error) {
	offsets := LocateAll(src, key)
	switch len(offsets) {
	case 0:
		return -1, fmt.Errorf("%w: %s", ErrNotFound, key)
	case 1:
		return offsets[0], nil
	default:
		return offsets[0], fmt.Errorf("%w: %s occurs %d times", ErrDuplicateKey, key, len(offsets))
	}
}

// LocateAll returns the offsets of every `id: "<key>"` occurrence in src
// that starts in code. Text inside string literals and comments is skipped.
func LocateAll(src, key string) []int {
	matches := keyPattern(key).FindAllStringIndex(src, -1)
	if len(matches) == 0 {
		return []int{}
	}
	offsets := make([]int, 0, len(matches))
	lx := newLexer(src)
	k := 0
	for i := 0; i < len(src) && k < len(matches); {
		for k < len(matches) && matches[k][0] < i {
			k++
		}
		if k < len(matches) && matches[k][0] == i {
			if lx.state == stateCode {
				offsets = append(offsets, i)
			}
			k++
		}
		width, _ := lx.next(i)
		i += width
	}
	return offsets
}

// FindEnclosingObject returns the span of the innermost object literal that
// contains innerOffset. The start is the nearest unmatched '{' before the
// offset; the end is its matching '}'. Braces inside strings and comments are
// ignored. If the text ends before the object closes, the partial span is
// returned along with a *MalformedSpanError.
func FindEnclosingObject(src string, innerOffset int) (Span, error) {
	if innerOffset < 0 || innerOffset > len(src) {
		return Span{}, fmt.Errorf("%w: offset %d out of range", ErrNoEnclosingObject, innerOffset)
	}

	var open []int
	lx := newLexer(src)
	for i := 0; i < innerOffset; {
		width, code := lx.next(i)
		if code {
			switch src[i] {
			case '{':
				open = append(open, i)
			case '}':
				if len(open) > 0 {
					open = open[:len(open)-1]
				}
			}
		}
		i += width
	}

	if len(open) == 0 {
		return Span{}, fmt.Errorf("%w: offset %d", ErrNoEnclosingObject, innerOffset)
	}
	return MatchBrace(src, open[len(open)-1])
}

// MatchBrace returns the span from the '{' at start to its matching '}'.
func MatchBrace(src string, start int) (Span, error) {
	if start < 0 || start >= len(src) || src[start] != '{' {
		return Span{}, fmt.Errorf("%w: no '{' at offset %d", ErrNoEnclosingObject, start)
	}

	depth := 0
	lx := newLexer(src)
	for i := start; i < len(src); {
		width, code := lx.next(i)
		if code {
			switch src[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return Span{Start: start, End: i + 1}, nil
				}
			}
		}
		i += width
	}

	partial := Span{Start: start, End: len(src)}
	return partial, &MalformedSpanError{Span: partial}
}

type frame struct {
	open   byte
	start  int
	parent byte
}

// Records returns the spans of every object literal that sits directly in an
// array and has an `id` property, in source order. Objects nested inside an
// earlier record are not reported separately. When the text ends with an
// unclosed object, the spans found so far are returned with a
// *MalformedSpanError.
func Records(src string) ([]Span, error) {
	var (
		stack []frame
		spans []Span
	)
	lx := newLexer(src)
	for i := 0; i < len(src); {
		width, code := lx.next(i)
		if code {
			switch c := src[i]; c {
			case '{', '[', '(':
				var parent byte
				if len(stack) > 0 {
					parent = stack[len(stack)-1].open
				}
				stack = append(stack, frame{open: c, start: i, parent: parent})
			case '}', ']', ')':
				if len(stack) == 0 {
					break
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if c == '}' && top.open == '{' && top.parent == '[' {
					span := Span{Start: top.start, End: i + 1}
					if _, ok := FindProperty(span.Text(src), "id"); ok {
						spans = append(spans, span)
					}
				}
			}
		}
		i += width
	}

	spans = outermost(spans)

	for _, f := range stack {
		if f.open == '{' {
			partial := Span{Start: f.start, End: len(src)}
			return spans, &MalformedSpanError{Span: partial}
		}
	}
	return spans, nil
}

// outermost sorts spans by start and drops any span nested in an earlier one.
func outermost(spans []Span) []Span {
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	result := spans[:0]
	for _, s := range spans {
		if len(result) > 0 && result[len(result)-1].Contains(s) {
			continue
		}
		result = append(result, s)
	}
	return result
}

// LineAt returns the 1-based line number of offset in src.
func LineAt(src string, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return strings.Count(src[:offset], "\n") + 1
}
