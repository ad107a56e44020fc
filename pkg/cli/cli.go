// Package cli parses the like command line.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zurustar/like/pkg/logger"
)

// Config holds the settings parsed from the command line and environment.
type Config struct {
	SourcePath  string        // program to run; empty starts the REPL
	Timeout     time.Duration // evaluation deadline, 0 for none
	LogLevel    string        // debug, info, warn or error
	DumpAST     bool          // print the parsed tree before evaluating
	PrintResult bool          // print the program's final value
	NoColor     bool          // plain diagnostics
	ShowHelp    bool
}

// boolFlags never take a separate value argument.
var boolFlags = map[string]bool{
	"-h": true, "--help": true, "-help": true,
	"-a": true, "--ast": true, "-ast": true,
	"-r": true, "--result": true, "-result": true,
	"--no-color": true, "-no-color": true,
}

// ParseArgs parses args (without the program name). Flags win over the
// LIKE_TIMEOUT, LIKE_LOG_LEVEL and NO_COLOR environment variables.
func ParseArgs(args []string) (*Config, error) {
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("like", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	var timeoutSec int
	fs.IntVar(&timeoutSec, "timeout", 0, "evaluation timeout in seconds")
	fs.IntVar(&timeoutSec, "t", 0, "evaluation timeout in seconds (shorthand)")
	fs.StringVar(&config.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&config.LogLevel, "l", "", "log level (shorthand)")
	fs.BoolVar(&config.DumpAST, "ast", false, "print the syntax tree")
	fs.BoolVar(&config.DumpAST, "a", false, "print the syntax tree (shorthand)")
	fs.BoolVar(&config.PrintResult, "result", false, "print the final value")
	fs.BoolVar(&config.PrintResult, "r", false, "print the final value (shorthand)")
	fs.BoolVar(&config.NoColor, "no-color", false, "disable colored diagnostics")
	fs.BoolVar(&config.ShowHelp, "help", false, "show help")
	fs.BoolVar(&config.ShowHelp, "h", false, "show help (shorthand)")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	if timeoutSec == 0 {
		if timeoutEnv := os.Getenv("LIKE_TIMEOUT"); timeoutEnv != "" {
			t, err := strconv.Atoi(timeoutEnv)
			if err != nil {
				return nil, fmt.Errorf("invalid LIKE_TIMEOUT %q: %w", timeoutEnv, err)
			}
			timeoutSec = t
		}
	}

	if config.LogLevel == "" {
		config.LogLevel = os.Getenv("LIKE_LOG_LEVEL")
	}
	if config.LogLevel == "" {
		config.LogLevel = "warn"
	}
	config.LogLevel = strings.ToLower(config.LogLevel)

	// https://no-color.org: any non-empty value disables color.
	if os.Getenv("NO_COLOR") != "" {
		config.NoColor = true
	}

	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return nil, fmt.Errorf("%w (must be debug, info, warn, or error)", err)
	}

	switch fs.NArg() {
	case 0:
	case 1:
		config.SourcePath = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected at most one source file, got %d", fs.NArg())
	}

	return config, nil
}

// reorderArgs moves flags (and their values) in front of positional arguments
// so `like prog.like -r` works like `like -r prog.like`.
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// A value flag written as `-t 5` takes the next argument.
			if !boolFlags[arg] && !strings.Contains(arg, "=") && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}

	if len(positional) > 0 {
		flags = append(flags, "--")
	}
	return append(flags, positional...)
}

// PrintHelp writes the usage message to w.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `like - an expression language with wildcard function dispatch

Usage:
  like [options] [file]

Arguments:
  file    program to run; without it an interactive session starts

Options:
  -t, --timeout <seconds>     abort evaluation after the given time (default: none);
                              the language has no conditionals, so recursion never
                              ends on its own and without a timeout it overflows the stack
  -l, --log-level <level>     debug, info, warn, error (default: warn)
  -a, --ast                   print the syntax tree before evaluating
  -r, --result                print the program's final value
      --no-color              plain diagnostics
  -h, --help                  show this help

Environment Variables:
  LIKE_TIMEOUT=<seconds>      evaluation timeout
  LIKE_LOG_LEVEL=<level>      log level
  NO_COLOR=1                  disable colored diagnostics

Examples:
  like samples/collect.like           run a program
  like -r samples/arith.like          run and print the final value
  like --ast samples/functions.like   show the parsed tree first
  like                                start the REPL
`)
}
