package table

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/TheSEED/kmertable/internal/kerr"
	"github.com/google/go-cmp/cmp"
)

func buildTable(t *testing.T, attrLen []int32, entries map[string][]int32, motifLen int32) string {
	t.Helper()
	dest := filepath.Join(t.TempDir(), "table.kmers")
	w, err := NewWriter(dest, 0xfeedface, motifLen, 0, attrLen)
	if err != nil {
		t.Fatal(err)
	}

	motifs := make([]string, 0, len(entries))
	for m := range entries {
		motifs = append(motifs, m)
	}
	// caller-provided map iteration is unordered; sort lexicographically
	// since the writer requires ascending motif order (I1).
	for i := 0; i < len(motifs); i++ {
		for j := i + 1; j < len(motifs); j++ {
			if motifs[j] < motifs[i] {
				motifs[i], motifs[j] = motifs[j], motifs[i]
			}
		}
	}

	for _, m := range motifs {
		if err := w.Append([]byte(m), entries[m]); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return dest
}

// S2: find.
func TestFindS2(t *testing.T) {
	entries := map[string][]int32{
		"AAAAA": {1, 2, 3, 4},
		"AAAAB": {5, 6, 7, 8},
		"AAAAC": {9, 10, 11, 12},
	}
	dest := buildTable(t, []int32{4, 2, 4, 4}, entries, 5)

	tbl, err := Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer tbl.Close()

	idx := tbl.Find([]byte("AAAAB"))
	if idx < 0 {
		t.Fatalf("Find(AAAAB) = %d, want >= 0", idx)
	}
	if got, want := tbl.AttrsAt(idx), []int32{5, 6, 7, 8}; !cmp.Equal(got, want) {
		t.Errorf("AttrsAt(%d) = %v, want %v", idx, got, want)
	}

	if idx := tbl.Find([]byte("AAAAD")); idx != -1 {
		t.Errorf("Find(AAAAD) = %d, want -1", idx)
	}
}

// P1/P2: round trip and binary-search completeness over a larger table.
func TestRoundTripAndSearch(t *testing.T) {
	entries := map[string][]int32{}
	alphabet := "ACDEFGHIKLMNPQRSTVWY"
	for i := 0; i < len(alphabet); i++ {
		for j := 0; j < len(alphabet); j++ {
			m := string([]byte{alphabet[i], alphabet[i], alphabet[j], alphabet[j], 'X'})
			entries[m] = []int32{int32(i), int32(j), int32(i * j), int32(i - j)}
		}
	}
	dest := buildTable(t, []int32{4, 2, 4, 4}, entries, 5)

	tbl, err := Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer tbl.Close()

	if tbl.Len() != len(entries) {
		t.Fatalf("Len() = %d, want %d", tbl.Len(), len(entries))
	}

	for m, want := range entries {
		idx := tbl.Find([]byte(m))
		if idx < 0 {
			t.Fatalf("Find(%q) = -1, want a match", m)
		}
		if !bytesEqual(tbl.MotifAt(idx), []byte(m)) {
			t.Fatalf("MotifAt(%d) = %q, want %q", idx, tbl.MotifAt(idx), m)
		}
		if got := tbl.AttrsAt(idx); !cmp.Equal(got, want) {
			t.Fatalf("AttrsAt(%d) = %v, want %v", idx, got, want)
		}
	}

	for _, absent := range []string{"ZZZZZ", "QQQQQ"} {
		if _, ok := entries[absent]; ok {
			continue
		}
		if idx := tbl.Find([]byte(absent)); idx != -1 {
			t.Errorf("Find(%q) = %d, want -1", absent, idx)
		}
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// S6: out-of-range attribute write truncates, round-tripped through a
// sealed table.
func TestWriteTruncationThroughTable(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "table.kmers")
	w, err := NewWriter(dest, 1, 3, 0, []int32{1})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Append([]byte("AAA"), []int32{1000}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	tbl, err := Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer tbl.Close()

	if got := tbl.AttrsAt(0)[0]; got != -24 {
		t.Fatalf("AttrsAt(0)[0] = %d, want -24", got)
	}
}

func TestWriterRejectsOutOfOrder(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "table.kmers")
	w, err := NewWriter(dest, 1, 3, 0, []int32{4})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Append([]byte("BBB"), []int32{1}); err != nil {
		t.Fatal(err)
	}
	err = w.Append([]byte("AAA"), []int32{2})
	if !errors.Is(err, kerr.ErrOutOfOrder) {
		t.Fatalf("Append out of order err = %v, want ErrOutOfOrder", err)
	}
	if err := w.Abort(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("Abort left a file at %s", dest)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.kmers"))
	if !errors.Is(err, kerr.ErrNotFound) {
		t.Fatalf("Open(missing) err = %v, want ErrNotFound", err)
	}
}

func TestLowerBound(t *testing.T) {
	entries := map[string][]int32{
		"AAAAA": {1},
		"AAAAC": {2},
		"AAAAE": {3},
	}
	dest := buildTable(t, []int32{4}, entries, 5)
	tbl, err := Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer tbl.Close()

	if idx := tbl.LowerBound([]byte("AAAAB")); idx != 1 {
		t.Errorf("LowerBound(AAAAB) = %d, want 1", idx)
	}
	if idx := tbl.LowerBound([]byte("AAAAA")); idx != 0 {
		t.Errorf("LowerBound(AAAAA) = %d, want 0", idx)
	}
	if idx := tbl.LowerBound([]byte("AAAAZ")); idx != tbl.Len() {
		t.Errorf("LowerBound(AAAAZ) = %d, want %d", idx, tbl.Len())
	}
}
