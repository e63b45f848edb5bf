// Program kmer-oligomers walks a translated-protein FASTA file, cuts
// every translation into overlapping oligomer windows, and writes each
// window to a sort-behind output partition keyed by leading residue,
// grounded on original_source/make_oligos.cc.
//
// The external B-tree translation store the original specification
// assumes is out of scope; this driver instead reads translations
// directly from a FASTA file (internal/fasta), which is sufficient for
// standalone use.
//
// Example usage:
//
//	kmer-oligomers -fasta=proteins.fasta -attrs=functions.tsv \
//	    -outdir=oligos -kmin=8 -kmax=10 -offsets
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/TheSEED/kmertable/internal/fasta"
	"github.com/TheSEED/kmertable/internal/kerr"
	"github.com/TheSEED/kmertable/internal/oligomer"
	"github.com/TheSEED/kmertable/internal/progress"
)

// fastaCursor adapts a pre-loaded id->translation map (sorted by id, to
// honor TranslationCursor's ordering contract) to oligomer.TranslationCursor.
type fastaCursor struct {
	ids   []string
	data  map[string][]byte
	index int
}

func newFastaCursor(data map[string][]byte) *fastaCursor {
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &fastaCursor{ids: ids, data: data}
}

func (c *fastaCursor) Next() (string, []byte, bool, error) {
	if c.index >= len(c.ids) {
		return "", nil, false, nil
	}
	id := c.ids[c.index]
	c.index++
	return id, c.data[id], true, nil
}

func run() error {
	var (
		fastaPath = flag.String("fasta", "", "FASTA file of translations")
		attrsPath = flag.String("attrs", "", "tab-separated id\\tvalue attribute file")
		outdir    = flag.String("outdir", "", "output directory (one kmers.<partition>/ subdirectory per residue group)")
		kmin      = flag.Int("kmin", 0, "minimum window length")
		kmax      = flag.Int("kmax", 0, "maximum window length")
		offsets   = flag.Bool("offsets", false, "append an OFF<n> suffix recording the residual translation length")
		writeLim  = flag.Int("write_limit", 0, "records per sort child before rotating (0 = default)")
	)
	flag.Parse()

	if *fastaPath == "" || *attrsPath == "" || *outdir == "" || *kmin == 0 || *kmax == 0 {
		return fmt.Errorf("usage: kmer-oligomers -fasta=FILE -attrs=FILE -outdir=DIR -kmin=N -kmax=N [-offsets]")
	}

	ff, err := os.Open(*fastaPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *fastaPath, kerr.ErrIO)
	}
	kerr.RegisterAtExit(ff.Close)
	translations, err := fasta.ReadAll(ff)
	if err != nil {
		return err
	}

	af, err := os.Open(*attrsPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *attrsPath, kerr.ErrIO)
	}
	attrs, err := oligomer.ReadAttrMap(af)
	af.Close()
	if err != nil {
		return err
	}

	counter := progress.NewCounter(os.Stderr, os.Stderr.Fd(), "translations")
	cursor := countingCursor{inner: newFastaCursor(translations), c: counter}

	ctx, cancel := kerr.InterruptibleContext()
	defer cancel()

	e := &oligomer.Emitter{
		KMin:        *kmin,
		KMax:        *kmax,
		EmitOffsets: *offsets,
		OutDir:      *outdir,
		WriteLimit:  *writeLim,
	}
	err = e.Run(ctx, cursor, attrs)
	counter.Done()
	return err
}

// countingCursor increments a progress counter as the wrapped cursor is
// drained, so long oligomer runs show liveness.
type countingCursor struct {
	inner *fastaCursor
	c     *progress.Counter
}

func (c countingCursor) Next() (string, []byte, bool, error) {
	id, data, ok, err := c.inner.Next()
	if ok {
		c.c.Add(1)
	}
	return id, data, ok, err
}

func main() {
	err := run()
	if aerr := kerr.RunAtExit(); aerr != nil && err == nil {
		err = aerr
	}
	if err != nil {
		log.Fatal(err)
	}
}
