package apipe

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/google/uuid"
)

// system is the narrow seam over the OS primitives the spawner calls into.
// Everything above it is platform-neutral.
type system interface {
	CreatePipe() (r, w *os.File, err error)
	Start(cmd *exec.Cmd) error
}

type osSystem struct{}

func (osSystem) CreatePipe() (*os.File, *os.File, error) { return os.Pipe() }

func (osSystem) Start(cmd *exec.Cmd) error { return cmd.Start() }

var defaultSystem system = osSystem{}

// pipePair is one unidirectional channel between consecutive stages. The
// write end belongs to the upstream child, the read end to the downstream
// child; the parent holds both only between creation and spawn.
type pipePair struct {
	r, w *os.File
}

func (pp *pipePair) closeRead() {
	if pp.r != nil {
		pp.r.Close()
		pp.r = nil
	}
}

func (pp *pipePair) closeWrite() {
	if pp.w != nil {
		pp.w.Close()
		pp.w = nil
	}
}

func (p *Pipeline) system() system {
	if p.sys != nil {
		return p.sys
	}
	return defaultSystem
}

// spawn wires and starts every stage in order. After each individual start
// the parent closes its copies of the descriptors that stage inherited; a
// retained write end would keep the downstream reader from ever seeing
// end-of-stream.
func (p *Pipeline) spawn(capture bool) (*Handle, error) {
	n := len(p.stages)
	feed := p.input != nil

	plans, err := connect(n, feed, capture)
	if err != nil {
		return nil, err
	}
	for k, stage := range p.stages {
		if err := stage.validate(); err != nil {
			return nil, fmt.Errorf("stage %d: %w", k, err)
		}
	}

	sys := p.system()

	pairs := make([]pipePair, n-1)
	var feedPipe, capPipe pipePair

	closeAll := func() {
		for i := range pairs {
			pairs[i].closeRead()
			pairs[i].closeWrite()
		}
		feedPipe.closeRead()
		feedPipe.closeWrite()
		capPipe.closeRead()
		capPipe.closeWrite()
	}

	for i := range pairs {
		if pairs[i].r, pairs[i].w, err = sys.CreatePipe(); err != nil {
			closeAll()
			return nil, &IOError{Op: "create pipe", Err: err}
		}
	}
	if feed {
		if feedPipe.r, feedPipe.w, err = sys.CreatePipe(); err != nil {
			closeAll()
			return nil, &IOError{Op: "create input pipe", Err: err}
		}
	}
	if capture {
		if capPipe.r, capPipe.w, err = sys.CreatePipe(); err != nil {
			closeAll()
			return nil, &IOError{Op: "create capture pipe", Err: err}
		}
	}

	var stderrBuf *bytes.Buffer
	procs := make([]*exec.Cmd, 0, n)

	for k, stage := range p.stages {
		cmd := stage.build()
		plan := plans[k]

		switch plan.stdin {
		case srcInherit:
			cmd.Stdin = os.Stdin
		case srcPipe:
			cmd.Stdin = pairs[plan.in].r
		case srcFeed:
			cmd.Stdin = feedPipe.r
		}
		switch plan.stdout {
		case srcInherit:
			cmd.Stdout = os.Stdout
		case srcPipe:
			cmd.Stdout = pairs[plan.out].w
		case srcCapture:
			cmd.Stdout = capPipe.w
		}
		cmd.Stderr = os.Stderr
		if plan.stdout == srcCapture {
			stderrBuf = new(bytes.Buffer)
			cmd.Stderr = stderrBuf
		}

		if err := sys.Start(cmd); err != nil {
			closeAll()
			reap(procs)
			return nil, &SpawnError{Stage: k, Program: stage.program, Err: err}
		}
		procs = append(procs, cmd)

		// Stage k now owns its endpoints; relinquish the parent's copies.
		switch plan.stdin {
		case srcPipe:
			pairs[plan.in].closeRead()
		case srcFeed:
			feedPipe.closeRead()
		}
		switch plan.stdout {
		case srcPipe:
			pairs[plan.out].closeWrite()
		case srcCapture:
			capPipe.closeWrite()
		}
	}

	h := &Handle{
		id:       uuid.New(),
		procs:    procs,
		out:      capPipe.r,
		stderr:   stderrBuf,
		captured: capture,
	}
	if feed {
		h.fed = make(chan struct{})
		go h.feedInput(p.input, feedPipe.w)
	}
	return h, nil
}

// reap kills and waits every already-started stage so a failed spawn never
// leaves a partial pipeline running.
func reap(procs []*exec.Cmd) {
	for _, cmd := range procs {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	}
	for _, cmd := range procs {
		if cmd.Process != nil {
			cmd.Wait()
		}
	}
}
