package stream

import (
	"bufio"
	"io"
	"os"

	"github.com/TheSEED/kmertable/internal/kerr"
	"golang.org/x/xerrors"
)

// Declared concatenates the files listed, one per line, in a source
// declaration file, consuming them in order as if they formed a single
// continuous stream (spec.md §4.5). Every listed file is checked to exist
// at Open time; a missing file fails the whole open with ErrNotFound,
// before any line is read.
type Declared struct {
	paths []string
	idx   int
	cur   LineSource
}

// OpenDeclared reads declPath (a plain text file, one absolute path per
// line) and opens a Declared stream over the files it names, in order.
func OpenDeclared(declPath string) (*Declared, error) {
	f, err := os.Open(declPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("stream: declaration file %s: %w", declPath, kerr.ErrNotFound)
		}
		return nil, xerrors.Errorf("stream: opening declaration file %s: %w", declPath, kerr.ErrIO)
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if _, err := os.Stat(line); err != nil {
			return nil, xerrors.Errorf("stream: declared file %s: %w", line, kerr.ErrNotFound)
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, xerrors.Errorf("stream: reading declaration file %s: %w", declPath, kerr.ErrIO)
	}

	d := &Declared{paths: paths}
	if err := d.advance(); err != nil && err != io.EOF {
		return nil, err
	}
	return d, nil
}

// advance opens the next declared file, closing the current one if any.
// It leaves d.cur nil once every declared file has been opened and
// consumed.
func (d *Declared) advance() error {
	if d.cur != nil {
		d.cur.Close()
		d.cur = nil
	}
	if d.idx >= len(d.paths) {
		return io.EOF
	}
	src, err := openFile(d.paths[d.idx])
	if err != nil {
		return err
	}
	d.idx++
	d.cur = src
	return nil
}

// ReadLine returns the next line from the concatenation of declared files,
// or io.EOF once the last file's last line has been delivered.
func (d *Declared) ReadLine() (string, error) {
	for {
		if d.cur == nil {
			return "", io.EOF
		}
		line, err := d.cur.ReadLine()
		if err == nil {
			return line, nil
		}
		if err != io.EOF {
			return "", err
		}
		if aerr := d.advance(); aerr != nil && aerr != io.EOF {
			return "", aerr
		}
		if d.cur == nil {
			return "", io.EOF
		}
	}
}

// Close releases the currently open declared file, if any.
func (d *Declared) Close() error {
	if d.cur == nil {
		return nil
	}
	err := d.cur.Close()
	d.cur = nil
	return err
}

var _ LineSource = (*Declared)(nil)
var _ io.Closer = (*Declared)(nil)
