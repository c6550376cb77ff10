package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

var (
	// Commit is the commit hash of this build, set with -ldflags.
	Commit string
	// Version is the version string of this build, set with -ldflags.
	Version = "dev"
)

type globalOptions struct {
	Config      string `short:"c" long:"config" description:"Path to the YAML configuration file" default:"configs/config.yaml"`
	Debug       bool   `long:"debug" description:"Enable development logging at debug level"`
	ShowVersion bool   `short:"V" long:"version" description:"Print the version and exit"`
}

var opts globalOptions

func newParser() *flags.Parser {
	parser := flags.NewParser(&opts, flags.Default)
	parser.SubcommandsOptional = true

	parser.AddCommand("serve", "Run the daemon",
		"Starts the REST, WebSocket and gRPC APIs on top of the configured simulated devices.",
		&serveCommand{})
	parser.AddCommand("wash", "Run one wash cycle",
		"Runs a single cycle, locally or against a remote daemon, and prints the report as JSON.",
		&washCommand{out: os.Stdout})
	parser.AddCommand("programs", "List wash programs",
		"Prints the program catalog with durations and weight limits.",
		&programsCommand{out: os.Stdout})
	parser.AddCommand("watch", "Stream cycle events from a daemon",
		"Connects to a daemon over gRPC and prints every cycle event as one JSON line.",
		&watchCommand{out: os.Stdout})
	parser.AddCommand("hash-password", "Hash an operator password",
		"Prints an argon2id hash suitable for auth.operators[].password_hash.",
		&hashPasswordCommand{out: os.Stdout})

	return parser
}

// laundrydMain is the real entry point; defers do not run when main calls os.Exit.
func laundrydMain(args []string) error {
	parser := newParser()
	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}

	if parser.Active == nil {
		if opts.ShowVersion {
			fmt.Printf("laundryd %s (commit %s)\n", Version, Commit)
			return nil
		}
		parser.WriteHelp(os.Stderr)
		return fmt.Errorf("no command given")
	}
	return nil
}

func main() {
	if err := laundrydMain(os.Args[1:]); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		// go-flags already printed parse errors with flags.Default
		if _, ok := err.(*flags.Error); !ok {
			fmt.Fprintf(os.Stderr, "laundryd: %v\n", err)
		}
		os.Exit(1)
	}
}
