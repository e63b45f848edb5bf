// Package oligomer implements the final emission stage: walking a
// translation store in id order, cutting each translation into
// overlapping windows of length [kmin, kmax], and routing each window to
// a sort-behind output partition keyed by its leading residue (spec.md
// §4.8), grounded on original_source/make_oligos.cc.
package oligomer

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/TheSEED/kmertable/internal/kerr"
	"golang.org/x/xerrors"
)

// TranslationCursor is an ordered forward cursor over a translation
// store. The store itself (a B-tree keyed by sequence id) is external to
// this module; spec.md scopes it out, so callers supply their own
// implementation.
type TranslationCursor interface {
	// Next returns the next (id, translation) pair in the cursor's
	// order. ok is false once the cursor is exhausted.
	Next() (id string, translation []byte, ok bool, err error)
}

// PartitionFunc routes a window to a named output partition based on its
// leading residue. ok is false when the residue has no assigned
// partition, in which case the window is dropped (no output).
type PartitionFunc func(firstByte byte) (name string, ok bool)

// DefaultPartitions groups the twenty standard amino acid residues into
// three output partitions of alphabetically consecutive letters:
// ACDEFG, HIKLMNP and QRSTVWY.
func DefaultPartitions() PartitionFunc {
	groups := []string{"ACDEFG", "HIKLMNP", "QRSTVWY"}
	byByte := map[byte]string{}
	for _, g := range groups {
		for i := 0; i < len(g); i++ {
			byByte[g[i]] = g
		}
	}
	return func(firstByte byte) (string, bool) {
		name, ok := byByte[firstByte]
		return name, ok
	}
}

// Emitter cuts translations into windows and writes them to per-partition
// sort-behind outputs.
type Emitter struct {
	KMin, KMax  int
	EmitOffsets bool
	Partition   PartitionFunc
	OutDir      string
	WriteLimit  int // default 4000000, matching the original's write_limit
}

const defaultWriteLimit = 4000000

// Run iterates cursor, skipping any id absent from attrs, and emits every
// window of length in [KMin, KMax] (truncated at the translation's end)
// to its partition's output.
func (e *Emitter) Run(ctx context.Context, cursor TranslationCursor, attrs map[string]string) error {
	limit := e.WriteLimit
	if limit <= 0 {
		limit = defaultWriteLimit
	}
	partition := e.Partition
	if partition == nil {
		partition = DefaultPartitions()
	}

	writers := map[string]*sortWriter{}
	closeAll := func() error {
		var first error
		for name, w := range writers {
			if err := w.Close(); err != nil && first == nil {
				first = xerrors.Errorf("oligomer: closing partition %s: %w", name, err)
			}
		}
		return first
	}

	for {
		if err := ctx.Err(); err != nil {
			closeAll()
			return xerrors.Errorf("oligomer: %w", err)
		}

		id, translation, ok, err := cursor.Next()
		if err != nil {
			closeAll()
			return xerrors.Errorf("oligomer: reading translation cursor: %w", err)
		}
		if !ok {
			break
		}
		value, have := attrs[id]
		if !have {
			continue
		}

		n := len(translation)
		for _, start := range windowStarts(n, e.KMin) {
			window := translation[start:windowEnd(start, n, e.KMax)]

			name, ok := partition(window[0])
			if !ok {
				continue
			}
			w, have := writers[name]
			if !have {
				w, err = newSortWriter(ctx, e.OutDir+"/kmers."+name+"/%05d", limit)
				if err != nil {
					closeAll()
					return err
				}
				writers[name] = w
			}

			line := oligomerLine(window, value, n-start, e.EmitOffsets)
			if err := w.Write([]byte(line)); err != nil {
				closeAll()
				return err
			}
		}
	}

	return closeAll()
}

// windowStarts returns every window start offset i in [0, n-kmin), matching
// spec.md §4.8's half-open range and original_source/make_oligos.cc's
// write_oligos loop (`for (...; i < trans_len - kmin; ...)`).
func windowStarts(n, kmin int) []int {
	var starts []int
	for i := 0; i+kmin < n; i++ {
		starts = append(starts, i)
	}
	return starts
}

// windowEnd returns the exclusive end index of the window starting at
// start, truncated to the translation's length n.
func windowEnd(start, n, kmax int) int {
	end := start + kmax
	if end > n {
		end = n
	}
	return end
}

// oligomerLine renders one output record: the window, a tab, the
// attribute value, and (if emitOffset) a tab-separated "OFF<n>" suffix
// giving the residual length from the window's start to the translation's
// end.
func oligomerLine(window []byte, value string, offset int, emitOffset bool) string {
	line := string(window) + "\t" + value
	if emitOffset {
		line += "\tOFF" + strconv.Itoa(offset)
	}
	return line + "\n"
}

// ReadAttrMap parses tab-separated "id\tvalue" lines (one per sequence
// id) into a lookup map, matching original_source/make_oligos.cc's
// read_peg_map.
func ReadAttrMap(r io.Reader) (map[string]string, error) {
	attrs := map[string]string{}
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, xerrors.Errorf("oligomer: reading attribute map: %w", kerr.ErrIO)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if err == io.EOF {
				break
			}
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, xerrors.Errorf("oligomer: malformed attribute line %q: %w", line, kerr.ErrBadInput)
		}
		attrs[parts[0]] = parts[1]
		if err == io.EOF {
			break
		}
	}
	return attrs, nil
}
