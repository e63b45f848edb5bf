package oligomer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/TheSEED/kmertable/internal/kerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/xerrors"
)

// sortWriter is a sort-behind write pipe: it hands its caller a pipe whose
// other end feeds a backgrounded `sort` subprocess, rotating to a new
// subprocess and output chunk file once writeLimit writes have been made.
// Grounded on original_source/make_oligos.cc's sort_writer class.
//
// At most one previously-started child is allowed to keep running in the
// background; a third rotation waits for the oldest outstanding child to
// finish before starting (spec.md §4.8/§5), implemented with a
// weight-1 semaphore rather than the original's raw fork/waitpid
// bookkeeping.
type sortWriter struct {
	ctx        context.Context
	pathFormat string // e.g. "/out/kmers.ACDEFG/%05d"
	writeLimit int

	sem *semaphore.Weighted
	g   *errgroup.Group

	fileIdx int
	count   int
	cur     *exec.Cmd
	stdin   writeCloserFlusher
}

// writeCloserFlusher is satisfied by an *os.File's write end of a pipe.
type writeCloserFlusher interface {
	Write(p []byte) (int, error)
	Close() error
}

func newSortWriter(ctx context.Context, pathFormat string, writeLimit int) (*sortWriter, error) {
	g, gctx := errgroup.WithContext(ctx)
	w := &sortWriter{
		ctx:        gctx,
		pathFormat: pathFormat,
		writeLimit: writeLimit,
		sem:        semaphore.NewWeighted(1),
		g:          g,
	}
	if err := w.openWriter(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *sortWriter) openWriter() error {
	outfile := fmt.Sprintf(w.pathFormat, w.fileIdx)
	w.fileIdx++

	if err := os.MkdirAll(filepath.Dir(outfile), 0777); err != nil {
		return xerrors.Errorf("oligomer: creating %s: %w", filepath.Dir(outfile), kerr.ErrIO)
	}
	out, err := os.Create(outfile)
	if err != nil {
		return xerrors.Errorf("oligomer: creating %s: %w", outfile, kerr.ErrIO)
	}

	cmd := exec.Command("sort", "-S", "400M")
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		out.Close()
		return xerrors.Errorf("oligomer: sort stdin pipe: %w", kerr.ErrIO)
	}
	if err := cmd.Start(); err != nil {
		out.Close()
		return xerrors.Errorf("oligomer: starting sort: %w", kerr.ErrIO)
	}

	w.cur = cmd
	w.stdin = stdin
	w.count = 0
	// out is owned by cmd.Stdout now; it's closed when the process exits
	// and we drop our reference, but we still must Close() our *os.File
	// handle once the subprocess has it open via fork/exec (os/exec dup's
	// the fd, so closing ours here is safe and avoids leaking it in this
	// process).
	return out.Close()
}

// closeCurrentAsync closes the current child's stdin (which tells `sort`
// its input is complete) and waits for the background slot to be free
// before handing this child off to run concurrently with the next one.
func (w *sortWriter) closeCurrentAsync() error {
	if w.cur == nil {
		return nil
	}
	if err := w.stdin.Close(); err != nil {
		return xerrors.Errorf("oligomer: closing sort stdin: %w", kerr.ErrIO)
	}
	if err := w.sem.Acquire(w.ctx, 1); err != nil {
		return err
	}
	cmd := w.cur
	w.g.Go(func() error {
		defer w.sem.Release(1)
		if err := cmd.Wait(); err != nil {
			return xerrors.Errorf("oligomer: sort exited: %w", err)
		}
		return nil
	})
	w.cur = nil
	w.stdin = nil
	return nil
}

// Write appends a record, rotating to a new chunk file/child once
// writeLimit writes have been made on the current one.
func (w *sortWriter) Write(p []byte) error {
	if w.count >= w.writeLimit {
		if err := w.closeCurrentAsync(); err != nil {
			return err
		}
		if err := w.openWriter(); err != nil {
			return err
		}
	}
	if _, err := w.stdin.Write(p); err != nil {
		return xerrors.Errorf("oligomer: writing to sort: %w", kerr.ErrIO)
	}
	w.count++
	return nil
}

// Close closes the final child's stdin and waits for every spawned `sort`
// child (current and backgrounded) to finish.
func (w *sortWriter) Close() error {
	if err := w.closeCurrentAsync(); err != nil {
		return err
	}
	return w.g.Wait()
}
