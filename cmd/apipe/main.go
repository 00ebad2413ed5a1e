package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/apipe-go/apipe/pkg/apipe"
)

func isStdinTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// runLine parses and executes one pipeline string, writing its captured
// streams through, and returns the terminal stage's exit code.
func runLine(line string, logger *zap.Logger) int {
	p, err := apipe.Parse(line)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	h, err := p.SpawnWithOutput()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger.Info("pipeline spawned",
		zap.String("id", h.ID().String()),
		zap.Int("stages", h.Len()))

	out, err := h.Output()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	os.Stdout.Write(out.Stdout())
	os.Stderr.Write(out.Stderr())
	logger.Info("pipeline finished",
		zap.String("id", h.ID().String()),
		zap.Ints("exit_statuses", out.ExitStatuses()))

	return out.StatusCode()
}

func repl(logger *zap.Logger) int {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "| ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rl.Close()

	status := 0
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF || err != nil {
			return status
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		status = runLine(line, logger)
	}
}

func main() {
	verbose := flag.Bool("v", false, "log the pipeline lifecycle")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger = l
	}
	defer logger.Sync()

	// one-shot: pipeline string on the command line
	if flag.NArg() > 0 {
		os.Exit(runLine(strings.Join(flag.Args(), " "), logger))
	}

	// batch: one pipeline per line on a non-terminal stdin
	if !isStdinTerminal() {
		status := 0
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			status = runLine(line, logger)
		}
		os.Exit(status)
	}

	os.Exit(repl(logger))
}
