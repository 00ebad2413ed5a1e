package apipe

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
)

// Command describes a single executable invocation: a program name, its
// ordered arguments and optional environment/working-directory overrides.
// No I/O wiring is decided until the owning Pipeline is spawned.
type Command struct {
	program string
	args    []string
	env     map[string]string
	dir     string
}

// NewCommand creates a command for the given program, with optional
// leading arguments.
func NewCommand(program string, args ...string) *Command {
	return &Command{
		program: program,
		args:    append([]string(nil), args...),
	}
}

// Arg appends a single argument.
func (c *Command) Arg(arg string) *Command {
	c.args = append(c.args, arg)
	return c
}

// Args appends multiple arguments in order. Duplicates are allowed.
func (c *Command) Args(args ...string) *Command {
	c.args = append(c.args, args...)
	return c
}

// Env sets an environment override for the spawned process. Overrides are
// applied on top of the parent environment, last write wins per key.
func (c *Command) Env(key, value string) *Command {
	if c.env == nil {
		c.env = make(map[string]string)
	}
	c.env[key] = value
	return c
}

// Dir sets the working directory of the spawned process.
func (c *Command) Dir(dir string) *Command {
	c.dir = dir
	return c
}

// Program returns the program name.
func (c *Command) Program() string {
	return c.program
}

// Argv returns a copy of the argument list.
func (c *Command) Argv() []string {
	return append([]string(nil), c.args...)
}

// Pipe connects the command's stdout to next's stdin, producing a
// two-stage pipeline. Wiring and spawning are deferred; composition is
// purely structural.
func (c *Command) Pipe(next *Command) *Pipeline {
	return New(c, next)
}

func (c *Command) validate() error {
	if c.program == "" {
		return ErrInvalidCommand
	}
	return nil
}

// build materializes the command as an unstarted exec.Cmd. Environment
// overrides are appended in sorted key order so spawns are deterministic.
func (c *Command) build() *exec.Cmd {
	cmd := exec.Command(c.program, c.args...)
	cmd.Dir = c.dir
	if len(c.env) > 0 {
		keys := make([]string, 0, len(c.env))
		for k := range c.env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cmd.Env = os.Environ()
		for _, k := range keys {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, c.env[k]))
		}
	}
	return cmd
}
