package merger

import (
	"context"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// lineSource is an in-memory stream.LineSource for tests.
type lineSource struct {
	lines []string
	i     int
}

func (l *lineSource) ReadLine() (string, error) {
	if l.i >= len(l.lines) {
		return "", io.EOF
	}
	line := l.lines[l.i]
	l.i++
	return line, nil
}

func (l *lineSource) Close() error { return nil }

type recordingWriter struct {
	motifs []string
	values [][]int32
}

func (w *recordingWriter) Append(motif []byte, values []int32) error {
	w.motifs = append(w.motifs, string(motif))
	w.values = append(w.values, append([]int32(nil), values...))
	return nil
}

// S3: merge. "x" in spec.md's example line is an illustrative stand-in
// for "some unused column value"; source 1's field map never reads column
// 1, so a numeric placeholder (99) is used here instead of a literal
// non-numeric token, which would trip the parser's BadInput check (spec.md
// §4.6's "parse errors on a source line are fatal").
func TestMergeS3(t *testing.T) {
	src1 := &lineSource{lines: []string{"AAA\t10\t99\t20"}}
	src2 := &lineSource{lines: []string{"AAA\t30"}}
	src3 := &lineSource{lines: []string{"AAA\t40"}}

	inputs := []Input{
		{Source: src1, Fields: FieldMap{{SourceColumn: 0, TargetSlot: 0}, {SourceColumn: 2, TargetSlot: 3}}},
		{Source: src2, Fields: FieldMap{{SourceColumn: 0, TargetSlot: 2}}},
		{Source: src3, Fields: FieldMap{{SourceColumn: 0, TargetSlot: 1}}},
	}

	w := &recordingWriter{}
	if err := Merge(context.Background(), inputs, 4, w); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"AAA"}, w.motifs); diff != "" {
		t.Fatalf("motifs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]int32{{10, 40, 30, 20}}, w.values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

// P4: merge monotonicity and union of motif sets, restricted to motifs
// whose slot 0 is supplied (BBB and DDD only fill slot 1, so they are not
// emitted).
func TestMergeMonotonicUnion(t *testing.T) {
	src1 := &lineSource{lines: []string{"AAA\t1", "CCC\t2", "EEE\t3"}}
	src2 := &lineSource{lines: []string{"BBB\t9", "CCC\t8", "DDD\t7"}}

	inputs := []Input{
		{Source: src1, Fields: FieldMap{{SourceColumn: 0, TargetSlot: 0}}},
		{Source: src2, Fields: FieldMap{{SourceColumn: 0, TargetSlot: 1}}},
	}

	w := &recordingWriter{}
	if err := Merge(context.Background(), inputs, 2, w); err != nil {
		t.Fatal(err)
	}

	wantMotifs := []string{"AAA", "CCC", "EEE"}
	if diff := cmp.Diff(wantMotifs, w.motifs); diff != "" {
		t.Fatalf("motif set/order mismatch (-want +got):\n%s", diff)
	}
	for i := 1; i < len(w.motifs); i++ {
		if w.motifs[i-1] >= w.motifs[i] {
			t.Fatalf("motifs not strictly increasing at %d: %q >= %q", i, w.motifs[i-1], w.motifs[i])
		}
	}

	want := [][]int32{{1, -1}, {2, 8}, {3, -1}}
	if diff := cmp.Diff(want, w.values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeSkipsUnsuppliedPrimarySlot(t *testing.T) {
	src1 := &lineSource{lines: []string{"BBB\t1"}}
	src2 := &lineSource{lines: []string{"AAA\t9"}}

	inputs := []Input{
		{Source: src1, Fields: FieldMap{{SourceColumn: 0, TargetSlot: 0}}},
		{Source: src2, Fields: FieldMap{{SourceColumn: 0, TargetSlot: 1}}},
	}

	w := &recordingWriter{}
	if err := Merge(context.Background(), inputs, 2, w); err != nil {
		t.Fatal(err)
	}

	// AAA only has slot 1 supplied (slot 0 stays -1), so it must not be
	// emitted; BBB has slot 0 supplied and is emitted.
	if diff := cmp.Diff([]string{"BBB"}, w.motifs); diff != "" {
		t.Fatalf("motifs mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeStopsWhenContextCanceled(t *testing.T) {
	src1 := &lineSource{lines: []string{"AAA\t1", "BBB\t2"}}
	inputs := []Input{
		{Source: src1, Fields: FieldMap{{SourceColumn: 0, TargetSlot: 0}}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &recordingWriter{}
	if err := Merge(ctx, inputs, 1, w); err == nil {
		t.Fatal("expected an error from a canceled context")
	}
}
