package usable

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/TheSEED/kmertable/internal/kerr"
	"github.com/klauspost/pgzip"
	"golang.org/x/xerrors"
)

// Outputs holds one gzip writer per k in [kmin, kmax], each backed by
// outdir/<k>/good.oligos.gz (spec.md §4.7's output location).
type Outputs struct {
	files map[int]*os.File
	gz    map[int]*pgzip.Writer
}

// OpenOutputs creates outdir (and outdir/<k> for every k in [kmin, kmax])
// if needed and opens a gzip writer for each k's good.oligos.gz.
func OpenOutputs(outdir string, kmin, kmax int) (*Outputs, error) {
	if err := os.MkdirAll(outdir, 0777); err != nil {
		return nil, xerrors.Errorf("usable: creating %s: %w", outdir, kerr.ErrIO)
	}

	out := &Outputs{
		files: map[int]*os.File{},
		gz:    map[int]*pgzip.Writer{},
	}
	for k := kmin; k <= kmax; k++ {
		dir := filepath.Join(outdir, strconv.Itoa(k))
		if err := os.MkdirAll(dir, 0777); err != nil {
			out.Close()
			return nil, xerrors.Errorf("usable: creating %s: %w", dir, kerr.ErrIO)
		}
		f, err := os.Create(filepath.Join(dir, "good.oligos.gz"))
		if err != nil {
			out.Close()
			return nil, xerrors.Errorf("usable: creating %s: %w", filepath.Join(dir, "good.oligos.gz"), kerr.ErrIO)
		}
		out.files[k] = f
		out.gz[k] = pgzip.NewWriter(f)
	}
	return out, nil
}

// Writer returns the gzip writer for k.
func (o *Outputs) Writer(k int) io.Writer {
	return o.gz[k]
}

// Close flushes and closes every output file, returning the first error
// encountered (if any) after attempting to close them all.
func (o *Outputs) Close() error {
	var first error
	for k, gz := range o.gz {
		if err := gz.Close(); err != nil && first == nil {
			first = xerrors.Errorf("usable: closing gzip writer for k=%d: %w", k, kerr.ErrIO)
		}
	}
	for k, f := range o.files {
		if err := f.Close(); err != nil && first == nil {
			first = xerrors.Errorf("usable: closing output file for k=%d: %w", k, kerr.ErrIO)
		}
	}
	return first
}
