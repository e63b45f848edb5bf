// Package merger implements the k-way streaming merge that combines
// several sorted attribute streams on a shared motif key into motif-table
// entries (spec.md §4.6), generalizing the fixed 3-source,
// function/figfam/phylo merge in the original implementation
// (merge_and_build_kmers.cc) to an arbitrary ordered list of sources and
// an arbitrary attribute width.
package merger

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/TheSEED/kmertable/internal/kerr"
	"github.com/TheSEED/kmertable/internal/stream"
	"github.com/TheSEED/kmertable/internal/table"
	"golang.org/x/xerrors"
)

// FieldAssignment copies column SourceColumn of a source's parsed integer
// values into slot TargetSlot of the global attribute tuple.
type FieldAssignment struct {
	SourceColumn int
	TargetSlot   int
}

// FieldMap is the ordered set of assignments for one source.
type FieldMap []FieldAssignment

// Input pairs a sorted line source with the field map describing how its
// columns populate the output attribute tuple.
type Input struct {
	Source stream.LineSource
	Fields FieldMap
}

// Writer is the subset of *table.Writer the merger needs, so tests can
// substitute a recording fake.
type Writer interface {
	Append(motif []byte, values []int32) error
}

var _ Writer = (*table.Writer)(nil)

// sourceState tracks one input's current parsed line.
type sourceState struct {
	idx    int
	source stream.LineSource
	fields FieldMap
	motif  string
	values []int32
	active bool
}

func (s *sourceState) advance() error {
	line, err := s.source.ReadLine()
	if err == io.EOF {
		s.active = false
		return nil
	}
	if err != nil {
		return xerrors.Errorf("merger: source %d: %w", s.idx, kerr.ErrIO)
	}
	motif, values, err := parseLine(line)
	if err != nil {
		return xerrors.Errorf("merger: source %d: %w", s.idx, err)
	}
	s.motif = motif
	s.values = values
	return nil
}

// parseLine splits a "motif\tv1\tv2..." line into the motif and its
// integer value columns.
func parseLine(line string) (string, []int32, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 1 || fields[0] == "" {
		return "", nil, xerrors.Errorf("merger: empty motif in line %q: %w", line, kerr.ErrBadInput)
	}
	values := make([]int32, len(fields)-1)
	for i, f := range fields[1:] {
		v, err := strconv.Atoi(f)
		if err != nil {
			return "", nil, xerrors.Errorf("merger: field %d (%q) in line %q: %w", i+1, f, line, kerr.ErrBadInput)
		}
		values[i] = int32(v)
	}
	return fields[0], values, nil
}

// Merge runs the k-way merge over inputs, writing one entry per distinct
// motif (with slot 0 supplied, per the flush rule in spec.md §4.6) to w.
// width is the output attribute tuple width (num_attrs of the target
// table). Output motifs are strictly ascending provided each input is
// itself sorted (P4). ctx is checked before each input line is applied so
// a long-running merge can be asked to stop cleanly (e.g. on SIGINT)
// instead of being killed mid-write (spec.md §5); on cancellation the
// entry accumulated so far is flushed to w and the context's error is
// returned.
func Merge(ctx context.Context, inputs []Input, width int, w Writer) error {
	states := make([]*sourceState, len(inputs))
	for i, in := range inputs {
		s := &sourceState{idx: i, source: in.Source, fields: in.Fields, active: true}
		if err := s.advance(); err != nil {
			return err
		}
		states[i] = s
	}

	var accumMotif string
	var accum []int32
	haveAccum := false

	flush := func() error {
		if !haveAccum {
			return nil
		}
		if len(accum) > 0 && accum[0] >= 0 {
			if err := w.Append([]byte(accumMotif), accum); err != nil {
				return err
			}
		}
		return nil
	}

	reset := func(motif string) {
		accumMotif = motif
		accum = make([]int32, width)
		for i := range accum {
			accum[i] = -1
		}
		haveAccum = true
	}

	for {
		if err := ctx.Err(); err != nil {
			flush()
			return xerrors.Errorf("merger: %w", err)
		}

		// Pick the active source with the lexicographically smallest
		// current motif, ties broken by source index.
		var min *sourceState
		for _, s := range states {
			if !s.active {
				continue
			}
			if min == nil || s.motif < min.motif {
				min = s
			}
		}
		if min == nil {
			break
		}

		if !haveAccum || min.motif != accumMotif {
			if err := flush(); err != nil {
				return err
			}
			reset(min.motif)
		}

		for _, fa := range min.fields {
			if fa.SourceColumn >= len(min.values) {
				return xerrors.Errorf("merger: source %d field map references column %d, only %d present: %w",
					min.idx, fa.SourceColumn, len(min.values), kerr.ErrBadInput)
			}
			if fa.TargetSlot < 0 || fa.TargetSlot >= width {
				return xerrors.Errorf("merger: source %d field map targets slot %d, width %d: %w",
					min.idx, fa.TargetSlot, width, kerr.ErrBadInput)
			}
			accum[fa.TargetSlot] = min.values[fa.SourceColumn]
		}

		if err := min.advance(); err != nil {
			return err
		}
	}

	return flush()
}
