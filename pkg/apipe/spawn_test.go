package apipe

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// countingSystem runs processes for real but records pipe creation.
type countingSystem struct {
	osSystem
	created int
}

func (c *countingSystem) CreatePipe() (*os.File, *os.File, error) {
	c.created++
	return os.Pipe()
}

// failingSystem pretends to start processes and fails at a chosen stage,
// keeping every created descriptor observable.
type failingSystem struct {
	failAt  int
	started int
	files   []*os.File
}

func (f *failingSystem) CreatePipe() (*os.File, *os.File, error) {
	r, w, err := os.Pipe()
	if err == nil {
		f.files = append(f.files, r, w)
	}
	return r, w, err
}

func (f *failingSystem) Start(cmd *exec.Cmd) error {
	if f.started == f.failAt {
		return errors.New("boom")
	}
	f.started++
	return nil
}

func TestSpawnCreatesOnePairPerLink(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 4; n++ {
		t.Run(fmt.Sprintf("stages=%d", n), func(t *testing.T) {
			sys := &countingSystem{}
			p := New()
			p.sys = sys
			for i := 0; i < n; i++ {
				p.Add(NewCommand("true"))
			}

			h, err := p.Spawn()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.Len() != n {
				t.Fatalf("expected %d process handles, got %d", n, h.Len())
			}
			if sys.created != n-1 {
				t.Fatalf("expected %d pipe pairs, got %d", n-1, sys.created)
			}
			if _, err := h.Wait(); err != nil {
				t.Fatalf("wait failed: %v", err)
			}
		})
	}
}

func TestSpawnEmptyPipeline(t *testing.T) {
	t.Parallel()

	if _, err := New().Spawn(); !errors.Is(err, ErrEmptyPipeline) {
		t.Fatalf("expected ErrEmptyPipeline, got %v", err)
	}
}

func TestSpawnEmptyProgram(t *testing.T) {
	t.Parallel()

	p := New(NewCommand("echo"), NewCommand(""))
	if _, err := p.Spawn(); !errors.Is(err, ErrInvalidCommand) {
		t.Fatalf("expected ErrInvalidCommand, got %v", err)
	}
}

func TestSpawnUnknownProgram(t *testing.T) {
	t.Parallel()

	_, err := New(NewCommand("apipe-no-such-program")).Spawn()

	var serr *SpawnError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SpawnError, got %v", err)
	}
	if serr.Stage != 0 || serr.Program != "apipe-no-such-program" {
		t.Fatalf("unexpected spawn error: %+v", serr)
	}
}

func TestSpawnFailureClosesAllDescriptors(t *testing.T) {
	t.Parallel()

	sys := &failingSystem{failAt: 2}
	p := New(NewCommand("a"), NewCommand("b"), NewCommand("c"), NewCommand("d")).
		WithInput(strings.NewReader("payload"))
	p.sys = sys

	_, err := p.SpawnWithOutput()

	var serr *SpawnError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SpawnError, got %v", err)
	}
	if serr.Stage != 2 || serr.Program != "c" {
		t.Fatalf("expected failure at stage 2 (c), got %+v", serr)
	}

	// 3 inter-stage pairs + feed pair + capture pair, both ends each.
	if len(sys.files) != 10 {
		t.Fatalf("expected 10 descriptors, got %d", len(sys.files))
	}
	for i, f := range sys.files {
		if _, err := f.Stat(); !errors.Is(err, os.ErrClosed) {
			t.Fatalf("descriptor %d was not closed after failed spawn: %v", i, err)
		}
	}
}

func TestSpawnWithOutputCaptures(t *testing.T) {
	t.Parallel()

	h, err := New(NewCommand("echo", "hello")).SpawnWithOutput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := h.Output()
	if err != nil {
		t.Fatalf("output failed: %v", err)
	}
	if string(out.Stdout()) != "hello\n" {
		t.Fatalf("expected %q, got %q", "hello\n", out.Stdout())
	}
	if out.StatusCode() != 0 {
		t.Fatalf("expected status 0, got %d", out.StatusCode())
	}
}

func TestOutputNotCaptured(t *testing.T) {
	t.Parallel()

	h, err := New(NewCommand("true")).Spawn()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.Output(); !errors.Is(err, ErrOutputNotCaptured) {
		t.Fatalf("expected ErrOutputNotCaptured, got %v", err)
	}
	if _, err := h.Wait(); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
}

func TestNonZeroExitStatusIsData(t *testing.T) {
	t.Parallel()

	h, err := New(NewCommand("false"), NewCommand("true")).Spawn()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	codes, err := h.Wait()
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if len(codes) != 2 || codes[0] != 1 || codes[1] != 0 {
		t.Fatalf("expected [1 0], got %v", codes)
	}
}

func TestWaitIsIdempotent(t *testing.T) {
	t.Parallel()

	h, err := New(NewCommand("echo", "x")).SpawnWithOutput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.Wait(); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}
	if _, err := h.Wait(); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}
	out, err := h.Output()
	if err != nil {
		t.Fatalf("output after wait failed: %v", err)
	}
	if string(out.Stdout()) != "x\n" {
		t.Fatalf("expected %q, got %q", "x\n", out.Stdout())
	}
}
