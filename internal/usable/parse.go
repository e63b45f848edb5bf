package usable

import (
	"strconv"
	"strings"

	"github.com/TheSEED/kmertable/internal/kerr"
	"golang.org/x/xerrors"
)

// ValueColumn selects which column of an oligomer record carries the
// primary attribute value (spec.md §4.7: "Two parser variants select v1
// from column 2 or column 3 of the source").
type ValueColumn int

const (
	Column2 ValueColumn = 2
	Column3 ValueColumn = 3
)

// offsetPrefix marks the optional offset column, e.g. "OFF12".
const offsetPrefix = "OFF"

// figPrefix is the 3-letter tag parse_line_3_col strips before parsing
// column 3 as an integer (e.g. "FIG1234" -> 1234).
const figPrefix = "FIG"

// ParseRecord parses one oligomer-stream line ("motif \t attr1 [\t
// attrN]* [\t OFFn]") per the selected value column, returning the motif,
// the primary attribute value v1 and the offset v2 (0 if absent).
func ParseRecord(line string, col ValueColumn) (motif string, v1, v2 int32, err error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 1 || fields[0] == "" {
		return "", 0, 0, xerrors.Errorf("usable: empty motif in line %q: %w", line, kerr.ErrBadInput)
	}
	motif = fields[0]

	valueIdx := int(col) - 1 // column 2 -> fields[1], column 3 -> fields[2]
	if len(fields) <= valueIdx {
		return "", 0, 0, xerrors.Errorf("usable: missing column %d in line %q: %w", col, line, kerr.ErrBadInput)
	}

	raw := fields[valueIdx]
	if col == Column3 && strings.HasPrefix(raw, figPrefix) {
		raw = raw[len(figPrefix):]
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return "", 0, 0, xerrors.Errorf("usable: value column %q in line %q: %w", raw, line, kerr.ErrBadInput)
	}
	v1 = int32(n)

	for _, f := range fields[valueIdx+1:] {
		if strings.HasPrefix(f, offsetPrefix) {
			off, err := strconv.Atoi(f[len(offsetPrefix):])
			if err != nil {
				return "", 0, 0, xerrors.Errorf("usable: offset field %q in line %q: %w", f, line, kerr.ErrBadInput)
			}
			v2 = int32(off)
			break
		}
	}

	return motif, v1, v2, nil
}
