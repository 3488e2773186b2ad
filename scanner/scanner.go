// Package scanner reads a makefile into logical lines. It drops
// full-line comments, joins backslash continuations and records the
// physical line number each logical line ends on.
package scanner

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var comment = regexp.MustCompile(`^\s*#`)

// Line is one logical makefile line.
type Line struct {
	// Num is the 1-based number of the last physical line.
	Num int
	// Text is the line as written, continuations joined.
	Text string
	// Expanded is Text after the first macro expansion pass.
	Expanded string
	// Ignore is set for directives, assignments and lines in a false
	// conditional branch.
	Ignore bool
}

func (l *Line) String() string {
	return fmt.Sprintf("%d: %s", l.Num, l.Text)
}

// LineScanner iterates over the logical lines of a makefile.
//
// A trailing backslash joins a physical line with the next one. A
// trailing ^\ ends the line with a literal backslash. Comment lines are
// removed before continuations are considered, so a comment inside a
// continued line does not end it.
type LineScanner struct {
	s       *bufio.Scanner
	num     int
	partial strings.Builder
	pending bool
	done    bool
	err     error

	// OnPhysical, when set, is called with every physical line read.
	OnPhysical func(num int, text string)
}

// New creates a LineScanner reading from r.
func New(r io.Reader) *LineScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &LineScanner{s: s}
}

// Next returns the next logical line, or false at end of input or on
// a read error.
func (ls *LineScanner) Next() (*Line, bool) {
	if ls.done {
		return nil, false
	}
	for ls.s.Scan() {
		ls.num++
		text := strings.TrimSuffix(ls.s.Text(), "\r")
		if ls.OnPhysical != nil {
			ls.OnPhysical(ls.num, text)
		}
		switch {
		case comment.MatchString(text):
		case strings.HasSuffix(text, `^\`):
			ls.partial.WriteString(text[:len(text)-2])
			ls.partial.WriteByte('\\')
			return ls.emit(), true
		case strings.HasSuffix(text, `\`):
			ls.partial.WriteString(text[:len(text)-1])
			ls.pending = true
		default:
			ls.partial.WriteString(text)
			return ls.emit(), true
		}
	}
	ls.done = true
	if err := ls.s.Err(); err != nil {
		ls.err = fmt.Errorf("reading makefile at line %d: %w", ls.num+1, err)
		return nil, false
	}
	if ls.pending && ls.partial.Len() > 0 {
		return ls.emit(), true
	}
	return nil, false
}

// Err returns the read error that stopped Next, if any.
func (ls *LineScanner) Err() error {
	return ls.err
}

func (ls *LineScanner) emit() *Line {
	l := &Line{Num: ls.num, Text: ls.partial.String()}
	ls.partial.Reset()
	ls.pending = false
	return l
}

// Read returns all logical lines of r.
func Read(r io.Reader) ([]*Line, error) {
	ls := New(r)
	var lines []*Line
	for {
		l, ok := ls.Next()
		if !ok {
			break
		}
		lines = append(lines, l)
	}
	return lines, ls.Err()
}
