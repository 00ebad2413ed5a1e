// Package apipe builds and executes N-ary UNIX-style process pipelines:
// each stage's stdout is wired to the next stage's stdin over OS pipes,
// every stage runs concurrently, and the terminal stage's output can be
// captured by the parent.
//
// Key operations:
// - NewCommand/Arg/Args/Env/Dir: describe a single executable invocation
// - Command.Pipe / Pipeline.Pipe / Add: structural composition, no wiring yet
// - Parse: turn a pipeline string into a Pipeline
// - Spawn/SpawnWithOutput: wire the pipes and start every stage
// - Handle.Wait/Output: reap the stages and read captured bytes
//
// The parent relinquishes its copy of every pipe descriptor immediately
// after the owning stage has inherited it, so readers always see
// end-of-stream once their writer exits; waiting can therefore never
// deadlock. A failed spawn closes all descriptors and reaps the already
// started stages before the error is returned.
//
//	h, err := apipe.NewCommand("echo", "This is a test.").
//		Pipe(apipe.NewCommand("grep", "-Eo", `\w\w\sa[^.]*`)).
//		SpawnWithOutput()
//	if err != nil {
//		return err
//	}
//	out, err := h.Output() // out.Stdout() == []byte("is a test\n")
//
// Non-zero exit statuses are reported as data, never as errors; the caller
// decides what a failing stage means.
package apipe
