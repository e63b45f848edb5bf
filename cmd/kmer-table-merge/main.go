// Program kmer-table-merge merges several sorted, declared-file-list
// attribute streams on a shared motif key into a single motif table,
// generalizing the original's hardcoded three-source (function, figfam,
// phylo) merge (merge_and_build_kmers.cc) to an arbitrary ordered list of
// sources and an arbitrary attribute tuple width.
//
// Example usage:
//
//	kmer-table-merge -out=kmers.tbl -motif_len=8 -width=3 \
//	    -attr_len=4,2,4 \
//	    -source=function.decl:0=0 \
//	    -source=figfam.decl:0=1 \
//	    -source=phylo.decl:0=2
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/TheSEED/kmertable/internal/kerr"
	"github.com/TheSEED/kmertable/internal/merger"
	"github.com/TheSEED/kmertable/internal/progress"
	"github.com/TheSEED/kmertable/internal/stream"
	"github.com/TheSEED/kmertable/internal/table"
)

// sourceFlag collects repeated -source=declfile:col=slot,col=slot flags.
type sourceFlag struct {
	specs []string
}

func (s *sourceFlag) String() string { return strings.Join(s.specs, " ") }

func (s *sourceFlag) Set(v string) error {
	s.specs = append(s.specs, v)
	return nil
}

func (s *sourceFlag) parse() ([]merger.Input, error) {
	inputs := make([]merger.Input, len(s.specs))
	for i, spec := range s.specs {
		parts := strings.SplitN(spec, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("-source %q: expected declfile:col=slot[,col=slot...]", spec)
		}
		declFile, fieldSpec := parts[0], parts[1]

		src, err := stream.OpenDeclared(declFile)
		if err != nil {
			return nil, fmt.Errorf("-source %q: %w", spec, err)
		}

		var fields merger.FieldMap
		for _, pair := range strings.Split(fieldSpec, ",") {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("-source %q: bad field assignment %q", spec, pair)
			}
			col, err := strconv.Atoi(kv[0])
			if err != nil {
				return nil, fmt.Errorf("-source %q: bad column %q: %w", spec, kv[0], err)
			}
			slot, err := strconv.Atoi(kv[1])
			if err != nil {
				return nil, fmt.Errorf("-source %q: bad slot %q: %w", spec, kv[1], err)
			}
			fields = append(fields, merger.FieldAssignment{SourceColumn: col, TargetSlot: slot})
		}

		inputs[i] = merger.Input{Source: src, Fields: fields}
	}
	return inputs, nil
}

func parseIntList(s string) ([]int32, error) {
	var out []int32
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("bad integer %q in %q: %w", f, s, err)
		}
		out = append(out, int32(v))
	}
	return out, nil
}

func run() error {
	var (
		out      = flag.String("out", "", "destination motif table path")
		motifLen = flag.Int("motif_len", 0, "motif length in bytes")
		padLen   = flag.Int("pad_len", 0, "per-record padding length in bytes")
		width    = flag.Int("width", 0, "output attribute tuple width")
		attrLens = flag.String("attr_len", "", "comma-separated attribute widths (each 1, 2, or 4)")
		magic    = flag.Int("magic", 0x4b4d5431, "table format magic number")
		sources  sourceFlag
	)
	flag.Var(&sources, "source", "declfile:col=slot[,col=slot...] (repeatable)")
	flag.Parse()

	if *out == "" || *motifLen == 0 || *width == 0 || *attrLens == "" {
		return fmt.Errorf("usage: kmer-table-merge -out=FILE -motif_len=N -width=N -attr_len=W,W,... -source=...")
	}
	attrLen, err := parseIntList(*attrLens)
	if err != nil {
		return err
	}
	if len(attrLen) != *width {
		return fmt.Errorf("-attr_len has %d entries, -width is %d", len(attrLen), *width)
	}

	inputs, err := sources.parse()
	if err != nil {
		return err
	}

	w, err := table.NewWriter(*out, int32(*magic), int32(*motifLen), int32(*padLen), attrLen)
	if err != nil {
		return err
	}
	kerr.RegisterAtExit(w.Abort)

	ctx, cancel := kerr.InterruptibleContext()
	defer cancel()

	counter := progress.NewCounter(os.Stderr, os.Stderr.Fd(), "merged entries")
	countingWriter := mergeCounter{w: w, c: counter}

	if err := merger.Merge(ctx, inputs, *width, countingWriter); err != nil {
		w.Abort()
		return err
	}
	counter.Done()
	return w.Close()
}

// mergeCounter wraps a table.Writer to drive progress reporting without
// the merger package needing to know about it.
type mergeCounter struct {
	w *table.Writer
	c *progress.Counter
}

func (m mergeCounter) Append(motif []byte, values []int32) error {
	m.c.Add(1)
	return m.w.Append(motif, values)
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
