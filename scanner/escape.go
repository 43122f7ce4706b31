/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package scanner

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Unescape decodes the escape sequences of a JS string literal body.
func Unescape(raw string) (string, error) {
	if !strings.ContainsRune(raw, '\\') {
		return raw, nil
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(raw) {
			return "", fmt.Errorf("%w: trailing backslash", ErrInvalidEscape)
		}
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\r':
			// line continuation
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		case '\n':
			// line continuation
		case 'x':
			if i+2 >= len(raw) {
				return "", fmt.Errorf("%w: short \\x escape at %d", ErrInvalidEscape, i-1)
			}
			v, err := strconv.ParseUint(raw[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("%w: \\x%s", ErrInvalidEscape, raw[i+1:i+3])
			}
			b.WriteRune(rune(v))
			i += 2
		case 'u':
			r, next, err := readUnicodeEscape(raw, i+1)
			if err != nil {
				return "", err
			}
			i = next - 1
			if utf16.IsSurrogate(r) && strings.HasPrefix(raw[next:], `\u`) {
				if r2, next2, err := readUnicodeEscape(raw, next+2); err == nil {
					if combined := utf16.DecodeRune(r, r2); combined != utf8.RuneError {
						r = combined
						i = next2 - 1
					}
				}
			}
			b.WriteRune(r)
		default:
			b.WriteByte(raw[i])
		}
	}
	return b.String(), nil
}

// readUnicodeEscape reads the hex digits of \uXXXX or \u{X...} starting at i
// (just past the 'u') and returns the rune and the index after the escape.
func readUnicodeEscape(raw string, i int) (rune, int, error) {
	if i < len(raw) && raw[i] == '{' {
		end := strings.IndexByte(raw[i:], '}')
		if end < 0 {
			return 0, 0, fmt.Errorf("%w: unterminated \\u{", ErrInvalidEscape)
		}
		v, err := strconv.ParseUint(raw[i+1:i+end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, fmt.Errorf("%w: \\u{%s}", ErrInvalidEscape, raw[i+1:i+end])
		}
		return rune(v), i + end + 1, nil
	}
	if i+4 > len(raw) {
		return 0, 0, fmt.Errorf("%w: short \\u escape", ErrInvalidEscape)
	}
	v, err := strconv.ParseUint(raw[i:i+4], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: \\u%s", ErrInvalidEscape, raw[i:i+4])
	}
	return rune(v), i + 4, nil
}

// Escape encodes value as the body of a string literal delimited by quote.
func Escape(value string, quote byte) string {
	var b strings.Builder
	b.Grow(len(value) + 8)
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == quote:
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n' && quote != '`':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t' && quote != '`':
			b.WriteString(`\t`)
		case c == '$' && quote == '`' && i+1 < len(value) && value[i+1] == '{':
			b.WriteString(`\$`)
		case c < 0x20 && c != '\n' && c != '\t':
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Quote returns value as a complete string literal delimited by quote.
func Quote(value string, quote byte) string {
	return string(quote) + Escape(value, quote) + string(quote)
}

// DecodeJSON decodes the escapes of a raw *_json field body and unmarshals
// the resulting JSON text into v.
func DecodeJSON(raw string, v any) error {
	text, err := Unescape(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrJSONParse, err)
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("%w: %v", ErrJSONParse, err)
	}
	return nil
}
