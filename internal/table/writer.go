package table

import (
	"bytes"

	"github.com/TheSEED/kmertable/internal/codec"
	"github.com/TheSEED/kmertable/internal/kerr"
	"github.com/google/renameio"
	"golang.org/x/xerrors"
)

// Writer builds a motif table on disk. Entries must be supplied in
// strictly ascending motif order (I1); Writer does not sort. The output is
// written to a temporary file and atomically renamed into place on Close,
// so a crash mid-write never leaves a corrupt file visible at dest.
type Writer struct {
	dest     string
	out      *renameio.PendingFile
	motifLen int
	padLen   int
	attrLen  []int32
	recLen   int
	pad      []byte

	lastMotif []byte
	wroteAny  bool
	closed    bool
}

// NewWriter creates a table at dest with the given header fields. attrLen
// must have 1..32 entries, each in {1,2,4}.
func NewWriter(dest string, magic, motifLen, padLen int32, attrLen []int32) (*Writer, error) {
	if len(attrLen) == 0 || len(attrLen) > codec.MaxAttrs {
		return nil, xerrors.Errorf("table: attribute count %d out of range: %w", len(attrLen), kerr.ErrBadFormat)
	}
	for i, w := range attrLen {
		if codec.AttrWidth(w) == 0 {
			return nil, xerrors.Errorf("table: attr_len[%d] = %d not in {1,2,4}: %w", i, w, kerr.ErrBadFormat)
		}
	}

	header, err := codec.EncodeHeader(magic, motifLen, padLen, attrLen)
	if err != nil {
		return nil, err
	}

	out, err := renameio.TempFile("", dest)
	if err != nil {
		return nil, xerrors.Errorf("table: opening %s: %w", dest, kerr.ErrIO)
	}
	if _, err := out.Write(header); err != nil {
		out.Cleanup()
		return nil, xerrors.Errorf("table: writing header to %s: %w", dest, kerr.ErrIO)
	}

	var sum int32
	for _, w := range attrLen {
		sum += w
	}

	return &Writer{
		dest:     dest,
		out:      out,
		motifLen: int(motifLen),
		padLen:   int(padLen),
		attrLen:  append([]int32(nil), attrLen...),
		recLen:   int(motifLen + padLen + sum),
		pad:      make([]byte, padLen),
	}, nil
}

// Append writes one record. motif must be exactly motifLen bytes and
// values must have exactly len(attrLen) entries. motif must compare
// strictly greater than the previously appended motif (OutOfOrder check,
// §7, default: reject).
func (w *Writer) Append(motif []byte, values []int32) error {
	if len(motif) != w.motifLen {
		return xerrors.Errorf("table: motif length %d, want %d: %w", len(motif), w.motifLen, kerr.ErrBadInput)
	}
	if len(values) != len(w.attrLen) {
		return xerrors.Errorf("table: %d values, want %d: %w", len(values), len(w.attrLen), kerr.ErrBadInput)
	}
	if w.wroteAny && bytes.Compare(motif, w.lastMotif) <= 0 {
		return xerrors.Errorf("table: motif %q out of order after %q: %w", motif, w.lastMotif, kerr.ErrOutOfOrder)
	}

	rec := make([]byte, 0, w.recLen)
	rec = append(rec, motif...)
	attrBuf := make([]byte, 4)
	for i, v := range values {
		width := int(w.attrLen[i])
		codec.WriteAttr(attrBuf, width, v)
		rec = append(rec, attrBuf[:width]...)
	}
	rec = append(rec, w.pad...)

	if _, err := w.out.Write(rec); err != nil {
		return xerrors.Errorf("table: writing record: %w", kerr.ErrIO)
	}

	w.lastMotif = append(w.lastMotif[:0], motif...)
	w.wroteAny = true
	return nil
}

// Close flushes and seals the table, atomically replacing dest. Once
// Close returns nil, the table is sealed and immutable.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.out.CloseAtomicallyReplace(); err != nil {
		return xerrors.Errorf("table: sealing %s: %w", w.dest, kerr.ErrIO)
	}
	return nil
}

// Abort discards the in-progress table without writing anything to dest.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.out.Cleanup()
}
