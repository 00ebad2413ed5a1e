package apipe

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCommand reports a stage whose program name is empty.
	ErrInvalidCommand = errors.New("apipe: empty program name")

	// ErrEmptyPipeline reports an attempt to spawn a pipeline with no stages.
	ErrEmptyPipeline = errors.New("apipe: pipeline has no stages")

	// ErrOutputNotCaptured reports an Output call on a handle whose terminal
	// stage was spawned with inherited stdout.
	ErrOutputNotCaptured = errors.New("apipe: output was not captured")

	// ErrNoCommand reports a builder call that needs a preceding command.
	ErrNoCommand = errors.New("apipe: no command to apply to")
)

// ParseError reports a malformed pipeline string. Segment is the zero-based
// index of the offending pipe-separated segment.
type ParseError struct {
	Segment int
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("apipe: parse segment %d: %s", e.Segment, e.Reason)
}

// SpawnError reports that the OS could not create a process for a stage.
// All previously spawned stages have been reaped and all parent-side pipe
// descriptors closed before this error is returned.
type SpawnError struct {
	Stage   int
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("apipe: spawn stage %d (%s): %v", e.Stage, e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IOError reports a failure moving bytes between the parent and a pipeline,
// such as reading captured output or feeding input.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("apipe: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
