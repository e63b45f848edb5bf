package usable

import (
	"io"

	"github.com/TheSEED/kmertable/internal/stream"
)

// UniqReader collapses consecutive byte-exact duplicate lines from an
// underlying source to a single occurrence, grounded on
// original_source/usable_motifs.cc's uniq_reader.
type UniqReader struct {
	src    stream.LineSource
	prev   string
	primed bool
	done   bool
}

// NewUniqReader wraps src.
func NewUniqReader(src stream.LineSource) *UniqReader {
	return &UniqReader{src: src}
}

// ReadLine returns the next line distinct from the one most recently
// delivered, skipping any immediate byte-exact repeats, or io.EOF once the
// source and any trailing duplicate run are exhausted.
func (u *UniqReader) ReadLine() (string, error) {
	if !u.primed {
		line, err := u.src.ReadLine()
		if err == io.EOF {
			u.done = true
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
		u.prev = line
		u.primed = true
	}
	if u.done {
		return "", io.EOF
	}

	result := u.prev
	for {
		line, err := u.src.ReadLine()
		if err == io.EOF {
			u.done = true
			return result, nil
		}
		if err != nil {
			return "", err
		}
		if line != u.prev {
			u.prev = line
			return result, nil
		}
		// duplicate of u.prev: skip and keep looking.
	}
}

// Close releases the underlying source.
func (u *UniqReader) Close() error {
	return u.src.Close()
}
