/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package scanner

type lexState int

const (
	stateCode lexState = iota
	stateString
	stateLineComment
	stateBlockComment
)

// lexer classifies bytes of JS/TS source as code or as part of a string
// literal or comment. It understands the three quote characters and
// backslash escapes, but not template interpolation or regex literals.
type lexer struct {
	src     string
	state   lexState
	quote   byte
	escaped bool
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

// next consumes the token starting at i and returns its width and whether
// src[i] is a structural code byte.
func (l *lexer) next(i int) (width int, code bool) {
	c := l.src[i]
	switch l.state {
	case stateString:
		switch {
		case l.escaped:
			l.escaped = false
		case c == '\\':
			l.escaped = true
		case c == l.quote:
			l.state = stateCode
		}
		return 1, false
	case stateLineComment:
		if c == '\n' {
			l.state = stateCode
		}
		return 1, false
	case stateBlockComment:
		if c == '*' && i+1 < len(l.src) && l.src[i+1] == '/' {
			l.state = stateCode
			return 2, false
		}
		return 1, false
	}

	switch c {
	case '"', '\'', '`':
		l.state = stateString
		l.quote = c
		return 1, false
	case '/':
		if i+1 < len(l.src) {
			switch l.src[i+1] {
			case '/':
				l.state = stateLineComment
				return 2, false
			case '*':
				l.state = stateBlockComment
				return 2, false
			}
		}
	}
	return 1, true
}

func isQuote(c byte) bool {
	return c == '"' || c == '\'' || c == '`'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}

// skipTrivia skips whitespace and comments starting at i.
func skipTrivia(src string, i int) int {
	for i < len(src) {
		switch {
		case isSpace(src[i]):
			i++
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i += 2
			if i > len(src) {
				i = len(src)
			}
		default:
			return i
		}
	}
	return i
}

// stringEnd returns the index just past the string literal that opens at i,
// or -1 if it is never closed.
func stringEnd(src string, i int) int {
	quote := src[i]
	escaped := false
	for j := i + 1; j < len(src); j++ {
		switch {
		case escaped:
			escaped = false
		case src[j] == '\\':
			escaped = true
		case src[j] == quote:
			return j + 1
		}
	}
	return -1
}

// stringLiteral reports whether text is exactly one quoted string literal and
// returns its raw contents and quote character.
func stringLiteral(text string) (inner string, quote byte, ok bool) {
	if len(text) < 2 || !isQuote(text[0]) {
		return "", 0, false
	}
	if stringEnd(text, 0) != len(text) {
		return "", 0, false
	}
	return text[1 : len(text)-1], text[0], true
}
