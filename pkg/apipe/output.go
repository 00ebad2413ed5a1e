package apipe

// Output holds the captured streams of a finished pipeline together with
// the per-stage exit codes.
type Output struct {
	stdout   []byte
	stderr   []byte
	statuses []int
}

// Stdout returns the bytes the terminal stage wrote to its stdout.
func (o *Output) Stdout() []byte {
	return o.stdout
}

// Stderr returns the bytes the terminal stage wrote to its stderr.
func (o *Output) Stderr() []byte {
	return o.stderr
}

// ExitStatuses returns the exit codes in stage order.
func (o *Output) ExitStatuses() []int {
	return append([]int(nil), o.statuses...)
}

// StatusCode returns the terminal stage's exit code.
func (o *Output) StatusCode() int {
	return o.statuses[len(o.statuses)-1]
}
