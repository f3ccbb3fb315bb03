// Package deb822 parses Debian control files: the dpkg status database,
// APT Packages indexes and Release files.
//
// The scanner is zero-copy: field values alias the input buffer, so callers
// must not modify the buffer and must copy values they keep beyond its
// lifetime.
package deb822

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrMalformed reports a line that is neither a field nor a continuation.
var ErrMalformed = errors.New("deb822: malformed line")

// SyntaxError locates a malformed line in the input.
type SyntaxError struct {
	Line   int
	Offset int
	Text   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("deb822: line %d (offset %d): malformed field %q", e.Line, e.Offset, e.Text)
}

func (e *SyntaxError) Unwrap() error { return ErrMalformed }

type field struct {
	name  []byte
	value []byte
}

// Stanza is one paragraph of fields. Offset and Raw locate it in the input.
type Stanza struct {
	Offset int
	Raw    []byte
	fields []field
}

// Get returns the value of the named field (case-insensitive). Multi-line
// values keep their continuation lines, newline separated, with the single
// leading space of each continuation removed.
func (s *Stanza) Get(name string) ([]byte, bool) {
	for _, f := range s.fields {
		if len(f.name) == len(name) && bytes.EqualFold(f.name, []byte(name)) {
			return f.value, true
		}
	}
	return nil, false
}

// String returns the named field as a string, or "" when absent.
func (s *Stanza) String(name string) string {
	v, _ := s.Get(name)
	return string(v)
}

// Scanner reads stanzas from a buffer, one per call to Scan.
type Scanner struct {
	data []byte
	pos  int
	line int
	cur  Stanza
	err  error
}

// NewScanner returns a scanner over data.
func NewScanner(data []byte) *Scanner {
	return &Scanner{data: data}
}

// Scan advances to the next stanza. It returns false at the end of the input
// or on a syntax error; Err distinguishes the two.
func (sc *Scanner) Scan() bool {
	if sc.err != nil {
		return false
	}
	sc.cur = Stanza{}
	start := -1
	for sc.pos < len(sc.data) {
		lineStart := sc.pos
		line := sc.nextLine()
		trimmed := bytes.TrimSpace(line)
		switch {
		case len(trimmed) == 0:
			if start >= 0 {
				sc.cur.Raw = sc.data[start:lineStart]
				return true
			}
			continue
		case line[0] == '#':
			continue
		case line[0] == ' ' || line[0] == '\t':
			if start < 0 || len(sc.cur.fields) == 0 {
				sc.err = &SyntaxError{Line: sc.line, Offset: lineStart, Text: string(trimmed)}
				return false
			}
			f := &sc.cur.fields[len(sc.cur.fields)-1]
			f.value = appendContinuation(f.value, line[1:])
			continue
		}
		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			sc.err = &SyntaxError{Line: sc.line, Offset: lineStart, Text: string(trimmed)}
			return false
		}
		if start < 0 {
			start = lineStart
			sc.cur.Offset = lineStart
		}
		sc.cur.fields = append(sc.cur.fields, field{
			name:  bytes.TrimSpace(line[:colon]),
			value: bytes.TrimSpace(line[colon+1:]),
		})
	}
	if start >= 0 {
		sc.cur.Raw = sc.data[start:]
		return true
	}
	return false
}

// Stanza returns the stanza found by the last successful Scan. The stanza
// is overwritten by the next call to Scan.
func (sc *Scanner) Stanza() *Stanza { return &sc.cur }

// Err returns the first syntax error, if any.
func (sc *Scanner) Err() error { return sc.err }

func (sc *Scanner) nextLine() []byte {
	sc.line++
	rest := sc.data[sc.pos:]
	i := bytes.IndexByte(rest, '\n')
	if i < 0 {
		sc.pos = len(sc.data)
		return bytes.TrimRight(rest, "\r")
	}
	sc.pos += i + 1
	return bytes.TrimRight(rest[:i], "\r")
}

// appendContinuation joins a continuation line to a value. The value of the
// first line aliases the input; continuations force a private copy.
func appendContinuation(value, line []byte) []byte {
	out := make([]byte, 0, len(value)+1+len(line))
	out = append(out, value...)
	out = append(out, '\n')
	return append(out, bytes.TrimRight(line, " \t")...)
}

// Parse reads every stanza of data. Stanzas are returned by value and own
// their field slices; values still alias data.
func Parse(data []byte) ([]Stanza, error) {
	var out []Stanza
	sc := NewScanner(data)
	for sc.Scan() {
		out = append(out, *sc.Stanza())
	}
	return out, sc.Err()
}

// ToUTF8 returns b unchanged when it is valid UTF-8 and otherwise decodes it
// as ISO-8859-1, which is what old control files were written in.
func ToUTF8(b []byte) []byte {
	if b == nil || utf8.Valid(b) {
		return b
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return b
	}
	return decoded
}

// Description splits a Description field into its synopsis and extended
// description. In the extended part a line holding only "." becomes an
// empty line.
func Description(value []byte) (short, long []byte) {
	nl := bytes.IndexByte(value, '\n')
	if nl < 0 {
		return value, nil
	}
	short = value[:nl]
	lines := bytes.Split(value[nl+1:], []byte("\n"))
	for i, l := range lines {
		if bytes.Equal(bytes.TrimSpace(l), []byte(".")) {
			lines[i] = nil
		}
	}
	return short, bytes.Join(lines, []byte("\n"))
}
