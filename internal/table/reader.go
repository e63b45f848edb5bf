package table

import (
	"log"
	"os"

	"github.com/TheSEED/kmertable/internal/codec"
	"github.com/TheSEED/kmertable/internal/env"
	"github.com/TheSEED/kmertable/internal/kerr"
	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// Table is a read-only, memory-mapped view of a sealed motif table
// (spec.md §4.3). Many readers may coexist on the same file; the mapping
// is released by Close.
type Table struct {
	header codec.Header
	data   []byte // raw mmap of the whole file
	recs   []byte // data[HeaderSize:], the record array
	n      int
	recLen int

	attrOff []int // byte offset of each attribute within a record
	attrW   []int // width of each attribute
}

// Open maps file read-only and validates its header. If the DEBUG
// environment variable is set (internal/env), the decoded header is
// logged, mirroring Kmers::open_data's stderr trace in the original
// implementation this format was distilled from.
func Open(file string) (*Table, error) {
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("table: %s: %w", file, kerr.ErrNotFound)
		}
		return nil, xerrors.Errorf("table: opening %s: %w", file, kerr.ErrIO)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, xerrors.Errorf("table: stat %s: %w", file, kerr.ErrIO)
	}
	size := fi.Size()
	if size < codec.HeaderSize {
		return nil, xerrors.Errorf("table: %s smaller than header (%d bytes): %w", file, size, kerr.ErrBadFormat)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, xerrors.Errorf("table: mmap %s: %w", file, kerr.ErrIO)
	}

	h, err := codec.DecodeHeader(data[:codec.HeaderSize])
	if err != nil {
		unix.Munmap(data)
		return nil, err
	}
	if h.DataEntryLen <= 0 {
		unix.Munmap(data)
		return nil, xerrors.Errorf("table: %s: data_entry_len %d: %w", file, h.DataEntryLen, kerr.ErrBadFormat)
	}

	recs := data[codec.HeaderSize:]
	if len(recs)%int(h.DataEntryLen) != 0 {
		unix.Munmap(data)
		return nil, xerrors.Errorf("table: %s: record area %d not a multiple of entry length %d: %w",
			file, len(recs), h.DataEntryLen, kerr.ErrBadFormat)
	}
	n := len(recs) / int(h.DataEntryLen)

	attrOff := make([]int, h.NumAttrs)
	attrW := make([]int, h.NumAttrs)
	off := int(h.MotifLen)
	for i := 0; i < int(h.NumAttrs); i++ {
		attrOff[i] = off
		w := codec.AttrWidth(h.AttrLen[i])
		attrW[i] = w
		off += w
	}

	if env.Debug() {
		log.Printf("table: mapped %s, motif_len=%d pad_len=%d num_attrs=%d data_entry_len=%d len=%d",
			file, h.MotifLen, h.PadLen, h.NumAttrs, h.DataEntryLen, n)
	}

	return &Table{
		header:  h,
		data:    data,
		recs:    recs,
		n:       n,
		recLen:  int(h.DataEntryLen),
		attrOff: attrOff,
		attrW:   attrW,
	}, nil
}

// Len returns the number of records in the table.
func (t *Table) Len() int { return t.n }

// MotifLen returns the fixed motif length for this table.
func (t *Table) MotifLen() int { return int(t.header.MotifLen) }

// NumAttrs returns the number of attributes per record.
func (t *Table) NumAttrs() int { return int(t.header.NumAttrs) }

// MotifAt returns a zero-copy view of the motif at record index i.
func (t *Table) MotifAt(i int) []byte {
	off := i * t.recLen
	return t.recs[off : off+int(t.header.MotifLen)]
}

// AttrsAt decodes and returns the attribute tuple at record index i.
func (t *Table) AttrsAt(i int) []int32 {
	base := i * t.recLen
	out := make([]int32, len(t.attrOff))
	for j, off := range t.attrOff {
		out[j] = codec.ReadAttr(t.recs[base+off:], t.attrW[j])
	}
	return out
}

// Close unmaps the table. The file descriptor used to establish the
// mapping was already closed by Open; only the mapping itself is released
// here.
func (t *Table) Close() error {
	if t.data == nil {
		return nil
	}
	err := unix.Munmap(t.data)
	t.data = nil
	t.recs = nil
	if err != nil {
		return xerrors.Errorf("table: munmap: %w", kerr.ErrIO)
	}
	return nil
}
