/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package scanner

import (
	"errors"
	"fmt"
)

// Sentinel errors for scanner operations.
var (
	// ErrNotFound indicates no record carries the requested key.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates the requested key occurs more than once.
	ErrDuplicateKey = errors.New("record key is not unique")

	// ErrNoEnclosingObject indicates an offset that is not inside any object literal.
	ErrNoEnclosingObject = errors.New("offset is not inside an object literal")

	// ErrMalformedSpan indicates an object literal whose closing brace was never found.
	ErrMalformedSpan = errors.New("object literal is not closed")

	// ErrFieldMissing indicates a field that is absent or not a single string literal.
	ErrFieldMissing = errors.New("field not found")

	// ErrJSONParse indicates a *_json field whose content is not valid JSON.
	ErrJSONParse = errors.New("invalid JSON payload")

	// ErrInvalidEscape indicates a malformed escape sequence in a string literal.
	ErrInvalidEscape = errors.New("invalid escape sequence")
)

// MalformedSpanError reports an unclosed object literal together with the
// partial span that was scanned before the text ran out.
type MalformedSpanError struct {
	Span Span
}

func (e *MalformedSpanError) Error() string {
	return fmt.Sprintf("object literal at offset %d is not closed (scanned to %d)", e.Span.Start, e.Span.End)
}

// Unwrap lets errors.Is match ErrMalformedSpan.
func (e *MalformedSpanError) Unwrap() error {
	return ErrMalformedSpan
}
