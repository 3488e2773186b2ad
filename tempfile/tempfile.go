// Package tempfile creates scoped temporary files for here-document
// payloads. A File is removed by Cleanup unless Keep was called.
package tempfile

import (
	"bufio"
	"fmt"
	"os"
)

// File is a temporary file being written.
type File struct {
	f    *os.File
	w    *bufio.Writer
	path string
	keep bool
}

// New creates an empty file in dir (os.TempDir when empty) named
// prefix*.suffix.
func New(dir, prefix, suffix string) (*File, error) {
	pattern := prefix + "*"
	if suffix != "" {
		pattern += "." + suffix
	}
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}
	return &File{f: f, w: bufio.NewWriter(f), path: f.Name()}, nil
}

// Path returns the file name.
func (t *File) Path() string {
	return t.path
}

// WriteLine writes s followed by eol.
func (t *File) WriteLine(s, eol string) error {
	if _, err := t.w.WriteString(s); err != nil {
		return err
	}
	_, err := t.w.WriteString(eol)
	return err
}

// Close flushes and closes the file. It is safe to call more than once.
func (t *File) Close() error {
	if t.f == nil {
		return nil
	}
	err := t.w.Flush()
	if cerr := t.f.Close(); err == nil {
		err = cerr
	}
	t.f = nil
	if err != nil {
		return fmt.Errorf("writing %s: %w", t.path, err)
	}
	return nil
}

// Keep stops Cleanup from removing the file.
func (t *File) Keep() {
	t.keep = true
}

// Kept reports whether Keep was called.
func (t *File) Kept() bool {
	return t.keep
}

// Cleanup closes the file and removes it unless it is kept.
func (t *File) Cleanup() error {
	err := t.Close()
	if t.keep {
		return err
	}
	if rerr := os.Remove(t.path); rerr != nil && !os.IsNotExist(rerr) && err == nil {
		err = rerr
	}
	return err
}
