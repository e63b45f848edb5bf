// Program kmer-lookup opens a motif table and reports the attribute
// tuple for each motif given on stdin or argv, one per line in the form
// "motif\tattr1\t...\tattrN", or "motif\tNOTFOUND" for a miss. It
// supplements the library-only TableSearch contract (the original ships
// Kmers::find_hit with no standalone driver) with a small CLI useful for
// manual inspection and round-trip testing.
//
// Example usage:
//
//	kmer-lookup -table=kmers.tbl ACDEFGHI < motifs.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/TheSEED/kmertable/internal/kerr"
	"github.com/TheSEED/kmertable/internal/table"
)

func lookupAndPrint(t *table.Table, w io.Writer, motif string) error {
	if len(motif) != t.MotifLen() {
		_, err := fmt.Fprintf(w, "%s\tNOTFOUND\n", motif)
		return err
	}
	idx := t.Find([]byte(motif))
	if idx < 0 {
		_, err := fmt.Fprintf(w, "%s\tNOTFOUND\n", motif)
		return err
	}
	attrs := t.AttrsAt(idx)
	fields := make([]string, len(attrs))
	for i, v := range attrs {
		fields[i] = strconv.Itoa(int(v))
	}
	_, err := fmt.Fprintf(w, "%s\t%s\n", motif, strings.Join(fields, "\t"))
	return err
}

func run() error {
	tablePath := flag.String("table", "", "path to a motif table")
	flag.Parse()
	if *tablePath == "" {
		return fmt.Errorf("usage: kmer-lookup -table=FILE [motif ...]")
	}

	t, err := table.Open(*tablePath)
	if err != nil {
		return err
	}
	kerr.RegisterAtExit(t.Close)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	if flag.NArg() > 0 {
		for _, motif := range flag.Args() {
			if err := lookupAndPrint(t, out, motif); err != nil {
				return err
			}
		}
		return nil
	}

	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		motif := strings.TrimSpace(sc.Text())
		if motif == "" {
			continue
		}
		if err := lookupAndPrint(t, out, motif); err != nil {
			return err
		}
	}
	return sc.Err()
}

func main() {
	err := run()
	if aerr := kerr.RunAtExit(); aerr != nil && err == nil {
		err = aerr
	}
	if err != nil {
		log.Fatal(err)
	}
}
