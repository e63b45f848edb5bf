package table

import "bytes"

// Find performs an exact-match binary search for motif and returns the
// index of a record whose motif equals it (any such index; by I1 at most
// one exists), or -1 if absent. This does not allocate.
//
// Legacy comments in the original implementation this format was
// distilled from claim find_in_range returns "the first item equal to or
// greater than the search item"; the implementation it documented never
// actually did that (it returned -1 on any non-equal comparison at a leaf).
// Find adopts exact-match-only, per spec.md §4.4 / §9. Use LowerBound if
// range-query behavior is needed.
func (t *Table) Find(motif []byte) int {
	beg, end := 0, t.n
	for beg < end {
		mid := int(uint(beg+end) >> 1)
		cmp := bytes.Compare(motif, t.MotifAt(mid))
		switch {
		case cmp < 0:
			end = mid
		case cmp == 0:
			return mid
		default:
			beg = mid + 1
		}
	}
	return -1
}

// LowerBound returns the index of the first record whose motif is >=
// motif, or Len() if every record's motif is smaller. This is the "first
// item equal to or greater" behavior the legacy documentation described
// for find_in_range but the reference implementation never provided.
func (t *Table) LowerBound(motif []byte) int {
	beg, end := 0, t.n
	for beg < end {
		mid := int(uint(beg+end) >> 1)
		if bytes.Compare(t.MotifAt(mid), motif) < 0 {
			beg = mid + 1
		} else {
			end = mid
		}
	}
	return beg
}
