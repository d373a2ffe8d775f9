// Command um runs a Universal Machine program image.
//
// Usage: um <path-to-um-file>
//
// Exit status is 0 on HALT, non-zero on any fatal condition or a usage
// error. Usage errors are written to standard error.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/arnebjarne/um/internal/engine"
	"github.com/arnebjarne/um/internal/loader"
)

const usage = "usage: um <path-to-um-file>\n"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr *os.File) int {
	if len(args) != 1 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	fp, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "um: %s\n", err)
		return 1
	}
	defer fp.Close()

	info, err := fp.Stat()
	if err != nil {
		fmt.Fprintf(stderr, "um: %s\n", err)
		return 1
	}

	mem, err := loader.Load(fp, info.Size())
	if err != nil {
		fmt.Fprintf(stderr, "um: %s\n", err)
		return 1
	}

	restore, usingRawTTY := enterRawMode(stdin, stderr)
	defer restore()

	eng := engine.New(mem, stdin, stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The engine runs to completion in its own goroutine (via the
	// errgroup), while this goroutine waits for either its result or
	// SIGINT/SIGTERM. Whichever comes first decides the outcome: on a
	// signal we restore the terminal and exit without waiting for the
	// engine, since spec.md §5 leaves cancellation to "the host may kill
	// the process."
	var group errgroup.Group
	group.Go(eng.Run)
	done := make(chan error, 1)
	go func() { done <- group.Wait() }()

	select {
	case err = <-done:
	case <-ctx.Done():
		if usingRawTTY {
			restore()
		}
		fmt.Fprintln(stderr, "um: interrupted")
		return 1
	}

	switch {
	case errors.Is(err, engine.ErrHalt):
		return 0
	case err != nil:
		fmt.Fprintf(stderr, "um: %s\n", err)
		return 1
	default:
		return 0
	}
}

// enterRawMode puts stdin into raw mode when it is a terminal, so IN
// observes one byte per keystroke with no line buffering and no local
// echo. It returns a restore function (safe to call more than once) and
// whether raw mode was actually entered.
func enterRawMode(stdin *os.File, stderr *os.File) (restore func(), ok bool) {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, false
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(stderr, "um: could not enter raw terminal mode: %s\n", err)
		return func() {}, false
	}
	restored := false
	return func() {
		if restored {
			return
		}
		restored = true
		_ = term.Restore(fd, state)
	}, true
}
