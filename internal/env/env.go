// Package env captures the one environment dependency the motif-table
// engine has: the DEBUG variable that enables verbose logging in the
// table reader (spec.md §6).
package env

import "os"

// Debug reports whether the DEBUG environment variable is set to a
// non-empty, non-zero value, mirroring Kmers::debug in the original
// implementation ("d ? atoi(d) : 0").
func Debug() bool {
	v := os.Getenv("DEBUG")
	return v != "" && v != "0"
}
