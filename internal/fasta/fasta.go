// Package fasta provides a minimal FASTA-record reader used to build an
// id->translation map for the kmer-oligomers CLI's convenience
// FASTA-input mode. The translation
// store proper (an external B-tree keyed by sequence id) is out of scope;
// this package only covers the input-side text format, grounded on
// original_source/fasta.c's read_fasta_item, but with each Reader owning
// its own line buffer instead of a shared package-level one.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/TheSEED/kmertable/internal/kerr"
	"golang.org/x/xerrors"
)

// Record is one parsed FASTA entry: the header id (the token following
// '>' up to the first whitespace) and the sequence with all whitespace
// removed and lines concatenated.
type Record struct {
	ID   string
	Data []byte
}

// Reader iterates FASTA records from an underlying stream. Unlike the
// original's single static linebuf, each Reader owns its own buffered
// line, so multiple Readers (or concurrent tests) never interfere.
type Reader struct {
	br      *bufio.Reader
	nextHdr string // header line primed for the next ReadRecord call, "" if none pending
	eof     bool
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// ReadRecord returns the next record, or io.EOF once the stream is
// exhausted.
func (fr *Reader) ReadRecord() (Record, error) {
	header := fr.nextHdr
	fr.nextHdr = ""

	if header == "" {
		if fr.eof {
			return Record{}, io.EOF
		}
		line, err := fr.readLine()
		if err == io.EOF {
			fr.eof = true
			return Record{}, io.EOF
		}
		if err != nil {
			return Record{}, err
		}
		header = line
	}

	if !strings.HasPrefix(header, ">") {
		return Record{}, xerrors.Errorf("fasta: expected header line, got %q: %w", header, kerr.ErrBadFormat)
	}
	id := strings.Fields(header[1:])
	if len(id) == 0 {
		return Record{}, xerrors.Errorf("fasta: empty header %q: %w", header, kerr.ErrBadFormat)
	}

	var data strings.Builder
	for {
		line, err := fr.readLine()
		if err == io.EOF {
			fr.eof = true
			break
		}
		if err != nil {
			return Record{}, err
		}
		if strings.HasPrefix(line, ">") {
			fr.nextHdr = line
			break
		}
		for _, r := range line {
			if !isSpace(r) {
				data.WriteRune(r)
			}
		}
	}

	return Record{ID: id[0], Data: []byte(data.String())}, nil
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}

// readLine reads one line with its trailing newline stripped, growing the
// buffer as needed rather than truncating (spec.md §9's resolved open
// question applies here too).
func (fr *Reader) readLine() (string, error) {
	line, err := fr.br.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", xerrors.Errorf("fasta: reading line: %w", kerr.ErrIO)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" && err == io.EOF {
		return "", io.EOF
	}
	if err == io.EOF {
		// Last line had content but no trailing newline; deliver it now
		// and report a clean EOF on the following call.
		return line, nil
	}
	return line, nil
}

// ReadAll consumes every record from r into an id->translation map,
// matching the shape OligomerEmitter and its tests need.
func ReadAll(r io.Reader) (map[string][]byte, error) {
	fr := NewReader(r)
	out := map[string][]byte{}
	for {
		rec, err := fr.ReadRecord()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out[rec.ID] = rec.Data
	}
}
