package apipe

import "io"

// Pipeline is an ordered sequence of commands where stage i's stdout feeds
// stage i+1's stdin. A pipeline of length 1 behaves as a single unpiped
// process. Composition is structural; nothing touches the OS until Spawn.
type Pipeline struct {
	stages []*Command
	input  io.Reader
	sys    system
}

// New creates a pipeline from the given commands in order.
func New(cmds ...*Command) *Pipeline {
	return &Pipeline{stages: append([]*Command(nil), cmds...)}
}

// Add appends a command as the new terminal stage.
func (p *Pipeline) Add(cmd *Command) *Pipeline {
	p.stages = append(p.stages, cmd)
	return p
}

// Pipe concatenates two pipelines into a new one: the receiver's terminal
// stage feeds next's first stage. Neither operand is modified.
func (p *Pipeline) Pipe(next *Pipeline) *Pipeline {
	stages := make([]*Command, 0, len(p.stages)+len(next.stages))
	stages = append(stages, p.stages...)
	stages = append(stages, next.stages...)
	return &Pipeline{stages: stages, input: p.input, sys: p.sys}
}

// WithInput feeds r to stage 0's stdin through a dedicated pipe instead of
// inheriting the parent's stdin. The reader is drained by a goroutine once
// the pipeline is spawned.
func (p *Pipeline) WithInput(r io.Reader) *Pipeline {
	p.input = r
	return p
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Stages returns a copy of the stage sequence.
func (p *Pipeline) Stages() []*Command {
	return append([]*Command(nil), p.stages...)
}

// Spawn starts every stage. The terminal stage's stdout is inherited from
// the parent; use SpawnWithOutput to capture it instead.
func (p *Pipeline) Spawn() (*Handle, error) {
	return p.spawn(false)
}

// SpawnWithOutput starts every stage with the terminal stage's stdout (and
// stderr) captured; retrieve them through Handle.Output.
func (p *Pipeline) SpawnWithOutput() (*Handle, error) {
	return p.spawn(true)
}
