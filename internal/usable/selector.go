// Package usable implements the sliding-window aggregator that decides
// which short oligomers ("motifs") are usable — those for which a single
// attribute value dominates every occurrence sharing a k-byte prefix — and
// summarises their offset statistics (spec.md §4.7), grounded on
// original_source/usable_motifs.cc's main_loop/process_set.
package usable

import (
	"context"
	"fmt"
	"io"

	"github.com/TheSEED/kmertable/internal/stream"
	"golang.org/x/xerrors"
)

type record struct {
	motif string
	v1    int32
	v2    int32
}

// offsetStats accumulates the offset distribution for one v1 value across
// an entire kmin-prefix run.
type offsetStats struct {
	accum int64
	count int
	min   int32
	max   int32
}

// Selector groups a sorted stream of oligomer records into maximal runs
// sharing a kmin-byte prefix, then evaluates each run once per k in
// [kmin, kmax].
type Selector struct {
	KMin, KMax int
	Column     ValueColumn
}

// Run drives the aggregation, calling emit(k, shortOligo, maxV1, avg, max,
// min) for every usable motif found. emit is expected to write one
// tab-separated line per call to the k-th output partition. ctx is checked
// between runs so a long-running selection can be asked to stop cleanly
// (e.g. on SIGINT) at its next run boundary instead of being killed
// mid-write (spec.md §5).
func (s *Selector) Run(ctx context.Context, src stream.LineSource, emit func(k int, shortOligo string, funcVal int32, avg, max, min int32) error) error {
	ur := NewUniqReader(src)

	line, err := ur.ReadLine()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return xerrors.Errorf("usable: %w", err)
		}

		rec, err := parseOne(line, s.Column)
		if err != nil {
			return err
		}
		if len(rec.motif) < s.KMin {
			// Can't even form the kmin prefix; treat as its own
			// (unusable) run and move on.
			line, err = ur.ReadLine()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			continue
		}
		prefix := rec.motif[:s.KMin]

		run := []record{rec}
		var next string
		eof := false
		for {
			l, err := ur.ReadLine()
			if err == io.EOF {
				eof = true
				break
			}
			if err != nil {
				return err
			}
			r2, err := parseOne(l, s.Column)
			if err != nil {
				return err
			}
			if len(r2.motif) < s.KMin || r2.motif[:s.KMin] != prefix {
				next = l
				break
			}
			run = append(run, r2)
		}

		if err := processRun(run, s.KMin, s.KMax, emit); err != nil {
			return err
		}

		if eof {
			return nil
		}
		line = next
	}
}

func parseOne(line string, col ValueColumn) (record, error) {
	motif, v1, v2, err := ParseRecord(line, col)
	if err != nil {
		return record{}, err
	}
	return record{motif: motif, v1: v1, v2: v2}, nil
}

// processRun implements the per-run-per-k aggregation and majority-v1
// usability test described in spec.md §4.7.
func processRun(run []record, kmin, kmax int, emit func(k int, shortOligo string, funcVal int32, avg, max, min int32) error) error {
	for k := kmin; k <= kmax; k++ {
		sums := map[int32]*offsetStats{}

		type bucket struct {
			order []int32       // first-seen order of v1 values, for deterministic tie-breaking
			count map[int32]int // v1 -> occurrence count within this short_oligo
		}
		buckets := map[string]*bucket{}
		var oligoOrder []string

		for _, r := range run {
			if len(r.motif) < k {
				continue
			}
			shortOligo := r.motif[:k]

			st, ok := sums[r.v1]
			if !ok {
				sums[r.v1] = &offsetStats{accum: int64(r.v2), count: 1, min: r.v2, max: r.v2}
			} else {
				st.accum += int64(r.v2)
				st.count++
				if r.v2 > st.max {
					st.max = r.v2
				}
				if r.v2 < st.min {
					st.min = r.v2
				}
			}

			b, ok := buckets[shortOligo]
			if !ok {
				b = &bucket{count: map[int32]int{}}
				buckets[shortOligo] = b
				oligoOrder = append(oligoOrder, shortOligo)
			}
			if _, seen := b.count[r.v1]; !seen {
				b.order = append(b.order, r.v1)
			}
			b.count[r.v1]++
		}

		for _, oligo := range oligoOrder {
			b := buckets[oligo]
			var sum, maxv int
			var maxV1 int32
			for i, v1 := range b.order {
				c := b.count[v1]
				sum += c
				if i == 0 || c > maxv {
					maxv = c
					maxV1 = v1
				}
			}

			if maxv != sum {
				continue // not usable: more than one v1 appears in this bucket
			}

			st := sums[maxV1]
			var avg int32
			if st != nil && st.count > 0 {
				avg = int32(st.accum / int64(st.count))
			}
			var max, min int32
			if st != nil {
				max, min = st.max, st.min
			}

			if err := emit(k, oligo, maxV1, avg, max, min); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatLine renders the usable-motif output record (spec.md §3):
// "oligo \t func \t avg_offset \t max_offset \t min_offset".
func FormatLine(shortOligo string, funcVal, avg, max, min int32) string {
	return fmt.Sprintf("%s\t%d\t%d\t%d\t%d\n", shortOligo, funcVal, avg, max, min)
}
