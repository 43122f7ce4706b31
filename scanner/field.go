/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package scanner

import (
	"fmt"
	"regexp"
	"strconv"
)

// Property is one top-level `key: value` pair of an object literal.
// Spans are relative to the record text the property was read from.
type Property struct {
	// Name is the property key with any quotes removed.
	Name string
	// Key covers the key as written, including quotes.
	Key Span
	// Value covers the value expression with surrounding whitespace trimmed.
	Value Span
	// Quote is the quote character when Value is a single string literal, else 0.
	Quote byte
	// Multiline is true when a line break separates the colon from the value.
	Multiline bool
}

// Properties returns the top-level properties of the object literal that
// starts at record[0]. Spread elements, shorthand properties and methods are
// skipped.
func Properties(record string) []Property {
	if len(record) == 0 || record[0] != '{' {
		return nil
	}

	var props []Property
	i := 1
	for i < len(record) {
		i = skipTrivia(record, i)
		if i >= len(record) || record[i] == '}' {
			break
		}
		if record[i] == ',' {
			i++
			continue
		}

		keyStart := i
		var name string
		switch {
		case isQuote(record[i]):
			end := stringEnd(record, i)
			if end < 0 {
				return props
			}
			name = record[i+1 : end-1]
			i = end
		case record[i] == '[' || record[i] == '.':
			i = skipValue(record, i)
			continue
		default:
			for i < len(record) && isIdentByte(record[i]) {
				i++
			}
			if i == keyStart {
				i = skipValue(record, i+1)
				continue
			}
			name = record[keyStart:i]
		}
		keyEnd := i

		i = skipTrivia(record, i)
		if i >= len(record) || record[i] != ':' {
			i = skipValue(record, i)
			continue
		}
		colon := i
		i = skipTrivia(record, i+1)
		valueStart := i
		valueEnd := skipValue(record, i)
		i = valueEnd
		for valueEnd > valueStart && isSpace(record[valueEnd-1]) {
			valueEnd--
		}

		prop := Property{
			Name:      name,
			Key:       Span{Start: keyStart, End: keyEnd},
			Value:     Span{Start: valueStart, End: valueEnd},
			Multiline: containsNewline(record[colon:valueStart]),
		}
		if _, quote, ok := stringLiteral(record[valueStart:valueEnd]); ok {
			prop.Quote = quote
		}
		props = append(props, prop)
	}
	return props
}

// skipValue returns the index of the ',' or closing bracket that ends the
// expression starting at i.
func skipValue(record string, i int) int {
	depth := 0
	lx := newLexer(record)
	for i < len(record) {
		width, code := lx.next(i)
		if code {
			switch record[i] {
			case '{', '[', '(':
				depth++
			case '}', ']', ')':
				if depth == 0 {
					return i
				}
				depth--
			case ',':
				if depth == 0 {
					return i
				}
			}
		}
		i += width
	}
	return len(record)
}

func containsNewline(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return true
		}
	}
	return false
}

// FindProperty returns the first top-level property called name.
func FindProperty(record, name string) (Property, bool) {
	for _, p := range Properties(record) {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// ExtractField returns the raw contents of the string property name, with
// the outer quotes removed and escape sequences left as written. The value
// may sit on the same line as the key or on the following lines.
func ExtractField(record, name string) (string, error) {
	p, ok := FindProperty(record, name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrFieldMissing, name)
	}
	inner, _, ok := stringLiteral(p.Value.Text(record))
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string literal", ErrFieldMissing, name)
	}
	return inner, nil
}

var leadingDigits = regexp.MustCompile(`^\d+`)

// ExtractNumber returns the integer value of property name.
func ExtractNumber(record, name string) (int, error) {
	p, ok := FindProperty(record, name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrFieldMissing, name)
	}
	digits := leadingDigits.FindString(p.Value.Text(record))
	if digits == "" {
		return 0, fmt.Errorf("%w: %s is not a number", ErrFieldMissing, name)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrFieldMissing, name, err)
	}
	return n, nil
}
