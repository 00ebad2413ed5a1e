// Package build provides a fluent builder over apipe.Pipeline for
// assembling pipelines one command at a time.
//
// It accumulates stages behind a convenient Builder type so callers can
// write pipelines without juggling intermediate Command values:
//
//	h, err := build.New().
//		Command("echo").Arg("This is a test.").
//		Command("grep").Args("-Eo", `\w\w\sa[^.]*`).
//		SpawnWithOutput()
//
// Key operations:
// - Command: append a stage
// - Arg/Args/Env/Dir: modify the most recently appended stage
// - Input: feed bytes to the first stage's stdin
// - Pipeline/Spawn/SpawnWithOutput: collapse the builder into the core API
//
// Misuse such as Arg before any Command is recorded and surfaced by the
// terminal methods instead of panicking.
package build
