// Package codec implements the fixed-width, big-endian encoding used by
// motif tables: the 160-byte file header and the 1/2/4-byte signed integer
// attributes that follow each motif in a record.
package codec

import (
	"encoding/binary"

	"github.com/TheSEED/kmertable/internal/kerr"
	"golang.org/x/xerrors"
)

// HeaderSize is the on-disk size of a motif table header, in bytes.
const HeaderSize = 160

// MaxAttrs is the largest number of attributes a single table may declare
// (I4 in the data model).
const MaxAttrs = 32

// Header is the decoded form of the 160-byte table header.
type Header struct {
	Magic        int32
	MotifLen     int32
	PadLen       int32
	NumAttrs     int32
	AttrLen      [MaxAttrs]int32
	DataEntryLen int32
}

// EncodeHeader builds the 160-byte on-disk header for a table with the
// given magic, motif length, padding length and attribute widths. Trailing
// attr_len slots beyond len(attrLen) are zero-filled. DataEntryLen is
// computed as motifLen + padLen + sum(attrLen).
func EncodeHeader(magic, motifLen, padLen int32, attrLen []int32) ([]byte, error) {
	if len(attrLen) > MaxAttrs {
		return nil, xerrors.Errorf("codec: %d attributes exceeds max %d", len(attrLen), MaxAttrs)
	}

	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(magic))
	binary.BigEndian.PutUint32(buf[4:8], uint32(motifLen))
	binary.BigEndian.PutUint32(buf[8:12], uint32(padLen))
	binary.BigEndian.PutUint32(buf[12:16], uint32(len(attrLen)))

	var sum int32
	for i := 0; i < MaxAttrs; i++ {
		var v int32
		if i < len(attrLen) {
			v = attrLen[i]
			sum += v
		}
		binary.BigEndian.PutUint32(buf[16+4*i:20+4*i], uint32(v))
	}

	dataEntryLen := motifLen + padLen + sum
	binary.BigEndian.PutUint32(buf[144:148], uint32(dataEntryLen))
	// bytes 148..160 are reserved padding; left zero.

	return buf, nil
}

// DecodeHeader parses a 160-byte header, validating the invariants the
// writer is responsible for upholding (I3, I4 and the {1,2,4} attribute
// width constraint).
func DecodeHeader(buf []byte) (Header, error) {
	var h Header
	if len(buf) != HeaderSize {
		return h, xerrors.Errorf("codec: header must be %d bytes, got %d: %w", HeaderSize, len(buf), kerr.ErrBadFormat)
	}

	h.Magic = int32(binary.BigEndian.Uint32(buf[0:4]))
	h.MotifLen = int32(binary.BigEndian.Uint32(buf[4:8]))
	h.PadLen = int32(binary.BigEndian.Uint32(buf[8:12]))
	h.NumAttrs = int32(binary.BigEndian.Uint32(buf[12:16]))

	if h.NumAttrs < 0 || h.NumAttrs > MaxAttrs {
		return h, xerrors.Errorf("codec: num_attrs %d out of range [0, %d]: %w", h.NumAttrs, MaxAttrs, kerr.ErrBadFormat)
	}

	var sum int32
	for i := 0; i < MaxAttrs; i++ {
		v := int32(binary.BigEndian.Uint32(buf[16+4*i : 20+4*i]))
		h.AttrLen[i] = v
		if i < int(h.NumAttrs) {
			if v != 1 && v != 2 && v != 4 {
				return h, xerrors.Errorf("codec: attr_len[%d] = %d not in {1,2,4}: %w", i, v, kerr.ErrBadFormat)
			}
			sum += v
		}
	}

	h.DataEntryLen = int32(binary.BigEndian.Uint32(buf[144:148]))
	if want := h.MotifLen + h.PadLen + sum; h.DataEntryLen != want {
		return h, xerrors.Errorf("codec: data_entry_len %d disagrees with component sum %d: %w", h.DataEntryLen, want, kerr.ErrBadFormat)
	}

	return h, nil
}

// ReadAttr decodes a big-endian signed integer of the given width (1, 2 or
// 4 bytes) from the front of buf, widening it to int32.
func ReadAttr(buf []byte, width int) int32 {
	switch width {
	case 1:
		return int32(int8(buf[0]))
	case 2:
		return int32(int16(binary.BigEndian.Uint16(buf[:2])))
	case 4:
		return int32(binary.BigEndian.Uint32(buf[:4]))
	default:
		panic("codec: unsupported attribute width")
	}
}

// WriteAttr encodes value as a big-endian signed integer of the given width
// into the front of buf, truncating value if it doesn't fit (documented
// intentional narrowing, see S6 in spec.md).
func WriteAttr(buf []byte, width int, value int32) {
	switch width {
	case 1:
		buf[0] = byte(int8(value))
	case 2:
		binary.BigEndian.PutUint16(buf[:2], uint16(int16(value)))
	case 4:
		binary.BigEndian.PutUint32(buf[:4], uint32(value))
	default:
		panic("codec: unsupported attribute width")
	}
}

// AttrWidth returns the number of bytes width occupies, or 0 if width is
// not one of {1,2,4}.
func AttrWidth(width int32) int {
	switch width {
	case 1, 2, 4:
		return int(width)
	default:
		return 0
	}
}
