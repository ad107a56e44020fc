package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/zurustar/like/pkg/compiler"
	"github.com/zurustar/like/pkg/compiler/lexer"
	"github.com/zurustar/like/pkg/interpreter"
)

const (
	prompt         = "like> "
	continuePrompt = "....> "
	historyFile    = ".like_history"
)

// session is the state of one interactive session. Bindings persist in env
// between entries.
type session struct {
	app     *Application
	env     *interpreter.Env
	pending strings.Builder

	// entryContext scopes one evaluation, so an interrupt aborts only the
	// running entry.
	entryContext func(context.Context) (context.Context, context.CancelFunc)
}

func (app *Application) newSession() *session {
	return &session{
		app: app,
		env: app.in.NewEnv(),
		entryContext: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		},
	}
}

// prompt returns the prompt for the next line.
func (s *session) prompt() string {
	if s.pending.Len() > 0 {
		return continuePrompt
	}
	return prompt
}

// feed handles one input line and reports whether the session should end.
// Lines accumulate until every brace and parenthesis is closed.
func (s *session) feed(ctx context.Context, line string) bool {
	if s.pending.Len() == 0 {
		switch strings.TrimSpace(line) {
		case "":
			return false
		case ":quit", ":q":
			return true
		case ":env":
			s.printEnv()
			return false
		}
	}

	s.pending.WriteString(line)
	s.pending.WriteString("\n")
	source := s.pending.String()
	if openDelimiters(source) > 0 {
		return false
	}
	s.pending.Reset()

	s.eval(ctx, source)
	return false
}

// reset drops a partially entered statement.
func (s *session) reset() {
	s.pending.Reset()
}

func (s *session) eval(ctx context.Context, source string) {
	prog, errs := compiler.Parse(source)
	if len(errs) > 0 {
		s.app.diag.syntaxErrors(errs)
		return
	}

	ctx, stop := s.entryContext(ctx)
	defer stop()

	result, err := s.app.evaluate(ctx, s.env, prog.Root)
	if err != nil {
		s.app.diag.runtimeError(err, source)
		return
	}

	if v := interpreter.Unwrap(result); v.Kind() != interpreter.KindUnit {
		fmt.Fprintln(s.app.stdout, v.String())
	}
}

// printEnv lists the global bindings in definition order.
func (s *session) printEnv() {
	global := s.env.Stack().Global()
	for _, name := range global.Keys() {
		v, _ := global.Get(name)
		fmt.Fprintf(s.app.stdout, "%s = %s\n", name, interpreter.Unwrap(v))
	}
}

// openDelimiters counts braces and parentheses still open in source.
// Delimiters inside strings and comments are ignored.
func openDelimiters(source string) int {
	tokens, _ := lexer.New(source).Tokenize()
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.TOKEN_LBRACE, lexer.TOKEN_LPAREN:
			depth++
		case lexer.TOKEN_RBRACE, lexer.TOKEN_RPAREN:
			depth--
		}
	}
	return depth
}

// runREPL reads entries with line editing until EOF or :quit.
func (app *Application) runREPL(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			if _, err := line.ReadHistory(f); err != nil {
				app.log.Warn("Failed to read history", "path", histPath, "error", err)
			}
			f.Close()
		}
	}

	fmt.Fprintln(app.stdout, "like interactive session; :env lists bindings, :quit exits")
	s := app.newSession()
	for {
		input, err := line.Prompt(s.prompt())
		if errors.Is(err, liner.ErrPromptAborted) {
			s.reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(app.stdout)
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if s.feed(ctx, input) {
			break
		}
	}

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			if _, err := line.WriteHistory(f); err != nil {
				app.log.Warn("Failed to write history", "path", histPath, "error", err)
			}
			f.Close()
		}
	}

	app.log.Info("Interactive session ended")
	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}
