// Program kmer-usable-motifs scans a sorted, duplicate-suppressed stream
// of (oligo, value, offset) records and emits the motifs that are
// "usable" at every k in [kmin, kmax] — those for which a single value
// dominates every occurrence of the k-byte prefix — together with their
// offset statistics, grounded on original_source/usable_motifs.cc's
// main_loop/process_set.
//
// Example usage:
//
//	kmer-usable-motifs -in=oligos.txt.gz -outdir=usable -kmin=5 -kmax=8 -column=2
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/TheSEED/kmertable/internal/kerr"
	"github.com/TheSEED/kmertable/internal/progress"
	"github.com/TheSEED/kmertable/internal/stream"
	"github.com/TheSEED/kmertable/internal/usable"
)

func openInput(path string, declared bool) (stream.LineSource, error) {
	if path == "" || path == "-" {
		return stream.NewReaderSource(os.Stdin), nil
	}
	if declared {
		return stream.OpenDeclared(path)
	}
	return stream.OpenFile(path)
}

func run() error {
	var (
		in       = flag.String("in", "", "input file, gzip (.gz) file, or - for stdin")
		declared = flag.Bool("declared", false, "treat -in as a declared-file-list instead of a single file")
		outdir   = flag.String("outdir", "", "output directory; outdir/<k>/good.oligos.gz is written for each k")
		kmin     = flag.Int("kmin", 0, "minimum motif prefix length")
		kmax     = flag.Int("kmax", 0, "maximum motif prefix length")
		column   = flag.Int("column", 2, "value column variant: 2 or 3")
	)
	flag.Parse()

	if *outdir == "" || *kmin == 0 || *kmax == 0 || *kmin > *kmax {
		return fmt.Errorf("usage: kmer-usable-motifs -outdir=DIR -kmin=N -kmax=N [-in=FILE] [-column=2|3]")
	}
	var col usable.ValueColumn
	switch *column {
	case 2:
		col = usable.Column2
	case 3:
		col = usable.Column3
	default:
		return fmt.Errorf("-column must be 2 or 3, got %d", *column)
	}

	src, err := openInput(*in, *declared)
	if err != nil {
		return err
	}
	kerr.RegisterAtExit(src.Close)

	outs, err := usable.OpenOutputs(*outdir, *kmin, *kmax)
	if err != nil {
		return err
	}
	kerr.RegisterAtExit(outs.Close)

	ctx, cancel := kerr.InterruptibleContext()
	defer cancel()

	counter := progress.NewCounter(os.Stderr, os.Stderr.Fd(), "usable motifs")
	sel := &usable.Selector{KMin: *kmin, KMax: *kmax, Column: col}
	err = sel.Run(ctx, src, func(k int, oligo string, funcVal, avg, max, min int32) error {
		counter.Add(1)
		_, werr := outs.Writer(k).Write([]byte(usable.FormatLine(oligo, funcVal, avg, max, min)))
		return werr
	})
	counter.Done()
	return err
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
