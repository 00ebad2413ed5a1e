package build

import (
	"io"

	"github.com/apipe-go/apipe/pkg/apipe"
)

// Builder accumulates pipeline stages. The zero value is not usable; start
// with New.
type Builder struct {
	pipeline *apipe.Pipeline
	last     *apipe.Command
	err      error
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{pipeline: apipe.New()}
}

// Command appends a new stage for the given program.
func (b *Builder) Command(program string, args ...string) *Builder {
	b.last = apipe.NewCommand(program, args...)
	b.pipeline.Add(b.last)
	return b
}

// Arg appends a single argument to the most recently added command.
func (b *Builder) Arg(arg string) *Builder {
	if b.check() {
		b.last.Arg(arg)
	}
	return b
}

// Args appends multiple arguments to the most recently added command.
func (b *Builder) Args(args ...string) *Builder {
	if b.check() {
		b.last.Args(args...)
	}
	return b
}

// Env sets an environment override on the most recently added command.
func (b *Builder) Env(key, value string) *Builder {
	if b.check() {
		b.last.Env(key, value)
	}
	return b
}

// Dir sets the working directory of the most recently added command.
func (b *Builder) Dir(dir string) *Builder {
	if b.check() {
		b.last.Dir(dir)
	}
	return b
}

// Input feeds r to the first stage's stdin.
func (b *Builder) Input(r io.Reader) *Builder {
	b.pipeline.WithInput(r)
	return b
}

// Pipeline returns the assembled pipeline, or the first recorded misuse.
func (b *Builder) Pipeline() (*apipe.Pipeline, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.pipeline, nil
}

// Spawn assembles and spawns the pipeline with inherited terminal stdout.
func (b *Builder) Spawn() (*apipe.Handle, error) {
	p, err := b.Pipeline()
	if err != nil {
		return nil, err
	}
	return p.Spawn()
}

// SpawnWithOutput assembles and spawns the pipeline with the terminal
// stage's output captured.
func (b *Builder) SpawnWithOutput() (*apipe.Handle, error) {
	p, err := b.Pipeline()
	if err != nil {
		return nil, err
	}
	return p.SpawnWithOutput()
}

func (b *Builder) check() bool {
	if b.last == nil {
		if b.err == nil {
			b.err = apipe.ErrNoCommand
		}
		return false
	}
	return true
}
