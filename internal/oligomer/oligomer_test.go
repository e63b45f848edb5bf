package oligomer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWindowStarts(t *testing.T) {
	cases := []struct {
		n, kmin int
		want    []int
	}{
		{n: 5, kmin: 3, want: []int{0, 1}},
		{n: 2, kmin: 3, want: nil},
		{n: 3, kmin: 3, want: nil},
	}
	for _, c := range cases {
		got := windowStarts(c.n, c.kmin)
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("windowStarts(%d,%d) mismatch (-want +got):\n%s", c.n, c.kmin, diff)
		}
	}
}

func TestWindowEndTruncatesAtTranslationLength(t *testing.T) {
	if got := windowEnd(0, 5, 3); got != 3 {
		t.Fatalf("windowEnd = %d, want 3", got)
	}
	if got := windowEnd(3, 5, 4); got != 5 {
		t.Fatalf("windowEnd = %d, want 5 (truncated)", got)
	}
}

func TestOligomerLineWithoutOffset(t *testing.T) {
	got := oligomerLine([]byte("ACD"), "fig|1.peg.1", 7, false)
	want := "ACD\tfig|1.peg.1\n"
	if got != want {
		t.Fatalf("oligomerLine = %q, want %q", got, want)
	}
}

func TestOligomerLineWithOffset(t *testing.T) {
	got := oligomerLine([]byte("ACD"), "fig|1.peg.1", 7, true)
	want := "ACD\tfig|1.peg.1\tOFF7\n"
	if got != want {
		t.Fatalf("oligomerLine = %q, want %q", got, want)
	}
}

func TestDefaultPartitionsGroupsResidues(t *testing.T) {
	p := DefaultPartitions()

	for _, residue := range []byte("ACDEFG") {
		name, ok := p(residue)
		if !ok || name != "ACDEFG" {
			t.Errorf("partition(%c) = %q,%v, want \"ACDEFG\",true", residue, name, ok)
		}
	}
	for _, residue := range []byte("HIKLMNP") {
		name, ok := p(residue)
		if !ok || name != "HIKLMNP" {
			t.Errorf("partition(%c) = %q,%v, want \"HIKLMNP\",true", residue, name, ok)
		}
	}
	for _, residue := range []byte("QRSTVWY") {
		name, ok := p(residue)
		if !ok || name != "QRSTVWY" {
			t.Errorf("partition(%c) = %q,%v, want \"QRSTVWY\",true", residue, name, ok)
		}
	}

	if _, ok := p('X'); ok {
		t.Fatalf("partition('X') = true, want false (unassigned residue)")
	}
}

func TestReadAttrMap(t *testing.T) {
	in := "fig|1.peg.1\tfunctionA\nfig|1.peg.2\tfunctionB\n"
	attrs, err := ReadAttrMap(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"fig|1.peg.1": "functionA",
		"fig|1.peg.2": "functionB",
	}
	if diff := cmp.Diff(want, attrs); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReadAttrMapNoTrailingNewline(t *testing.T) {
	in := "fig|1.peg.1\tfunctionA"
	attrs, err := ReadAttrMap(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if attrs["fig|1.peg.1"] != "functionA" {
		t.Fatalf("attrs = %v, want functionA for fig|1.peg.1", attrs)
	}
}

func TestReadAttrMapRejectsMalformedLine(t *testing.T) {
	if _, err := ReadAttrMap(strings.NewReader("no-tab-here\n")); err == nil {
		t.Fatal("expected error for line without a tab separator")
	}
}
