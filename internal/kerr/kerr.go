// Package kerr defines the error kinds shared across the motif-table
// engine (spec.md §7) plus small process-lifecycle helpers — an at-exit
// cleanup registry and an interruptible context — adapted from the
// teacher's root-package atexit.go and context.go.
package kerr

import "errors"

// Sentinel error kinds. Wrap these with golang.org/x/xerrors.Errorf's %w
// verb to attach context; check with errors.Is.
var (
	// ErrNotFound indicates an input file or declared sub-file does not exist.
	ErrNotFound = errors.New("kerr: not found")
	// ErrBadFormat indicates a header or table fails its sanity checks.
	ErrBadFormat = errors.New("kerr: bad format")
	// ErrBadInput indicates an intermediate text line could not be parsed.
	ErrBadInput = errors.New("kerr: bad input")
	// ErrIO indicates a read/write/mmap/open failure reported by the OS.
	ErrIO = errors.New("kerr: io error")
	// ErrOutOfOrder indicates a writer received a motif not strictly
	// greater than the previously written one.
	ErrOutOfOrder = errors.New("kerr: out of order")
)
