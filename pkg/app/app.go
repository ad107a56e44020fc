// Package app wires the command line, front end and interpreter together.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/zurustar/like/pkg/cli"
	"github.com/zurustar/like/pkg/compiler"
	"github.com/zurustar/like/pkg/compiler/ast"
	"github.com/zurustar/like/pkg/interpreter"
	"github.com/zurustar/like/pkg/logger"
)

// ErrReported is returned once a diagnostic has already been printed, so the
// caller only needs to set the exit status.
var ErrReported = errors.New("error already reported")

// Application runs a like program or an interactive session.
type Application struct {
	config *cli.Config
	log    *slog.Logger
	in     *interpreter.Interpreter
	diag   *reporter

	stdout io.Writer
	stderr io.Writer
}

// New creates an Application writing program output to stdout and
// diagnostics to stderr.
func New(stdout, stderr io.Writer) *Application {
	return &Application{
		stdout: stdout,
		stderr: stderr,
	}
}

// Run parses args and executes the requested mode.
func (app *Application) Run(args []string) error {
	// 1. Command line
	config, err := cli.ParseArgs(args)
	if err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	// 2. Logger and interpreter
	if err := app.configure(config); err != nil {
		return err
	}

	// 3. Mode
	if config.SourcePath == "" {
		app.log.Info("Starting interactive session")
		return app.runREPL(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return app.runFile(ctx, config.SourcePath)
}

// configure installs config, the logger, the diagnostics reporter and the
// interpreter.
func (app *Application) configure(config *cli.Config) error {
	app.config = config
	if err := logger.InitLoggerWithWriter(config.LogLevel, app.stderr); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = logger.GetLogger()
	app.diag = newReporter(app.stderr, config.NoColor)
	app.in = interpreter.New(
		interpreter.WithLogger(app.log),
		interpreter.WithOutput(app.stdout),
	)
	return nil
}

// runFile parses and evaluates a program file.
func (app *Application) runFile(ctx context.Context, path string) error {
	app.log.Info("Loading source", "path", path)

	prog, errs := compiler.ParseFile(path)
	if len(errs) > 0 {
		app.log.Error("Parse failed", "path", path, "errors", len(errs))
		app.diag.syntaxErrors(errs)
		return ErrReported
	}

	app.log.Info("Parse completed", "files", prog.Files, "statements", len(prog.Root.Items))
	if prog.Metadata != nil && prog.Metadata.Title != "" {
		app.log.Info("Program info", "title", prog.Metadata.Title, "author", prog.Metadata.Author, "version", prog.Metadata.Version)
	}

	if app.config.DumpAST {
		fmt.Fprint(app.stdout, ast.Pretty(prog.Root))
	}

	result, err := app.evaluate(ctx, app.in.NewEnv(), prog.Root)
	if err != nil {
		app.log.Error("Evaluation failed", "path", path, "error", err)
		app.diag.runtimeError(err, prog.Source)
		return ErrReported
	}

	app.log.Info("Evaluation finished", "result", result.Kind())
	if app.config.PrintResult {
		fmt.Fprintln(app.stdout, interpreter.Unwrap(result).String())
	}
	return nil
}

// evaluate runs node against env under the configured timeout.
func (app *Application) evaluate(ctx context.Context, env *interpreter.Env, node ast.Node) (interpreter.Value, error) {
	if app.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.config.Timeout)
		defer cancel()
	}
	return app.in.Eval(ctx, env, node)
}
