package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// commands maps the first argument to the command it runs. A command reads
// events from input, prints results to output and parses args, the
// remaining arguments, with the flag package. It may exit with code 2 on a
// bad flag.
//
//   $ stakecli addr -name vault1
//   $ stakecli replay -genesis genesis.json < events.jsonl
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"addr":    cmdAddr,
	"replay":  cmdReplay,
	"version": cmdVersion,
}

func main() {
	if len(os.Args) < 2 {
		usage("%s replays staking events against the reward engine.", os.Args[0])
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		usage("unknown command %q", os.Args[1])
	}
	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %+v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage(headline string, args ...interface{}) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(os.Stderr, headline+"\n\n", args...)
	fmt.Fprintf(os.Stderr, "usage: %s <command> [flags]\n\ncommands:\n\t%s\n",
		os.Args[0], strings.Join(names, "\n\t"))
	os.Exit(2)
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, gitHash)
	return nil
}

// gitHash is set with -ldflags at build time.
var gitHash = "dev"

// env returns the variable name if it is set, even to an empty string.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

// flagDie reports a bad flag value and exits.
func flagDie(description string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, description, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(2)
}
