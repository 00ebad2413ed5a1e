package apipe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"
)

// Handle is a live spawned pipeline: one child process per stage, in stage
// order, plus the capture read end when the terminal stage's output was
// captured. Wait and Output may each be called any number of times; the
// pipeline is collected exactly once.
type Handle struct {
	id       uuid.UUID
	procs    []*exec.Cmd
	out      *os.File
	stderr   *bytes.Buffer
	captured bool
	fed      chan struct{}

	once    sync.Once
	codes   []int
	stdout  []byte
	readErr error
	feedErr error
	err     error
}

// ID returns the handle's unique identifier.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Len returns the number of stage processes.
func (h *Handle) Len() int {
	return len(h.procs)
}

// Wait blocks until every stage has exited and returns the exit codes in
// stage order. A non-zero code is data, not an error; the returned error
// reports only infrastructure failures (wait, drain, or input feeding).
func (h *Handle) Wait() ([]int, error) {
	h.collect()
	return append([]int(nil), h.codes...), h.err
}

// Output blocks until every stage has exited and returns the captured
// bytes together with the per-stage exit codes. It fails with
// ErrOutputNotCaptured when the pipeline was spawned without capture.
func (h *Handle) Output() (*Output, error) {
	if !h.captured {
		return nil, ErrOutputNotCaptured
	}
	h.collect()
	if h.err != nil {
		return nil, h.err
	}
	return &Output{
		stdout:   h.stdout,
		stderr:   h.stderr.Bytes(),
		statuses: append([]int(nil), h.codes...),
	}, nil
}

// collect drains the capture pipe while reaping the children. Draining
// runs concurrently with waiting: a sequential wait-then-read would let a
// full pipe buffer block the terminal stage forever.
func (h *Handle) collect() {
	h.once.Do(func() {
		drained := make(chan struct{})
		if h.out != nil {
			go func() {
				defer close(drained)
				var buf bytes.Buffer
				_, err := io.Copy(&buf, h.out)
				h.out.Close()
				h.stdout = buf.Bytes()
				if err != nil {
					h.readErr = &IOError{Op: "read captured output", Err: err}
				}
			}()
		} else {
			close(drained)
		}

		codes := make([]int, len(h.procs))
		var waitErr error
		for i, cmd := range h.procs {
			if err := cmd.Wait(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					codes[i] = exitErr.ExitCode()
				} else if waitErr == nil {
					waitErr = &IOError{Op: fmt.Sprintf("wait stage %d", i), Err: err}
				}
			}
		}

		<-drained
		if h.fed != nil {
			<-h.fed
		}

		h.codes = codes
		h.err = errors.Join(waitErr, h.readErr, h.feedErr)
	})
}

// feedInput copies the registered input into stage 0's stdin pipe and
// closes the write end so the stage sees end-of-stream.
func (h *Handle) feedInput(r io.Reader, w *os.File) {
	defer close(h.fed)
	_, err := io.Copy(w, r)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		h.feedErr = &IOError{Op: "feed input", Err: err}
	}
}
