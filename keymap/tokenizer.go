package keymap

import (
	"fmt"
	"strings"
)

// tokenizer is a line-oriented reader over fully buffered layout contents.
// It tracks the current line so parse errors can point at the offending
// location; it performs no I/O of its own.
type tokenizer struct {
	filename string
	data     string
	pos      int
	line     int
}

func newTokenizer(filename, contents string) *tokenizer {
	return &tokenizer{filename: filename, data: contents, line: 1}
}

func (t *tokenizer) isEof() bool {
	return t.pos >= len(t.data)
}

// isEol reports whether the cursor sits at a line boundary (or EOF).
func (t *tokenizer) isEol() bool {
	return t.isEof() || t.data[t.pos] == '\n' || t.data[t.pos] == '\r'
}

func (t *tokenizer) peekChar() byte {
	if t.isEof() {
		return 0
	}
	return t.data[t.pos]
}

func (t *tokenizer) nextChar() byte {
	c := t.peekChar()
	if !t.isEof() {
		t.pos++
	}
	return c
}

// skipSpaces advances past spaces and tabs within the current line.
func (t *tokenizer) skipSpaces() {
	for !t.isEof() {
		c := t.data[t.pos]
		if c != ' ' && c != '\t' {
			return
		}
		t.pos++
	}
}

// nextLine advances the cursor past the end of the current line.
func (t *tokenizer) nextLine() {
	for !t.isEof() {
		c := t.data[t.pos]
		t.pos++
		if c == '\n' {
			t.line++
			return
		}
	}
}

// nextToken reads characters until whitespace, end of line, or one of the
// extra delimiter characters. The delimiter itself is not consumed.
func (t *tokenizer) nextToken(extraDelims string) string {
	start := t.pos
	for !t.isEol() {
		c := t.data[t.pos]
		if c == ' ' || c == '\t' || strings.IndexByte(extraDelims, c) >= 0 {
			break
		}
		t.pos++
	}
	return t.data[start:t.pos]
}

// peekRemainder returns the unconsumed portion of the current line.
func (t *tokenizer) peekRemainder() string {
	end := t.pos
	for end < len(t.data) && t.data[end] != '\n' && t.data[end] != '\r' {
		end++
	}
	return t.data[t.pos:end]
}

func (t *tokenizer) location() string {
	return fmt.Sprintf("%s:%d", t.filename, t.line)
}

// errorf builds a parse error carrying the current file and line.
func (t *tokenizer) errorf(format string, args ...any) error {
	return fmt.Errorf("%s: %s", t.location(), fmt.Sprintf(format, args...))
}
