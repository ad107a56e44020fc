// Package compiler is the front end of the like toolchain. It chains the
// preprocessor, lexer and parser and returns the syntax tree the
// interpreter evaluates:
//
//   - Parse: parses a source string
//   - ParseFile: parses a file on disk, expanding #include directives
//   - ParseFS: parses an entry file inside any fs.FS (os.DirFS, embed.FS)
package compiler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zurustar/like/pkg/compiler/ast"
	"github.com/zurustar/like/pkg/compiler/lexer"
	"github.com/zurustar/like/pkg/compiler/parser"
	"github.com/zurustar/like/pkg/compiler/preprocessor"
)

// Program is a parsed source unit.
type Program struct {
	// Root is the start node.
	Root *ast.Tree

	// Source is the text that was lexed, after preprocessing.
	Source string

	// Files lists the files read, entry first. Empty for Parse.
	Files []string

	// Metadata holds #info values. Nil for Parse.
	Metadata *preprocessor.Metadata
}

// Parse lexes and parses source. On failure every syntax error is returned
// as a *CompileError carrying source context, and the Program is nil.
func Parse(source string) (*Program, []error) {
	p := parser.New(lexer.New(source))
	root, errs := p.ParseProgram()

	if len(errs) > 0 {
		compileErrors := make([]error, 0, len(errs))
		for _, err := range errs {
			compileErrors = append(compileErrors, withContext(err, source))
		}
		return nil, compileErrors
	}

	return &Program{Root: root, Source: source}, nil
}

// ParseFile reads, preprocesses and parses the file at path. Includes are
// resolved relative to the file's directory.
func ParseFile(path string) (*Program, []error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return ParseFS(os.DirFS(dir), name)
}

// ParseFS preprocesses and parses entry inside fsys.
func ParseFS(fsys fs.FS, entry string) (*Program, []error) {
	result, err := preprocessor.New(fsys).Process(entry)
	if err != nil {
		return nil, []error{fmt.Errorf("preprocess %s: %w", entry, err)}
	}

	prog, errs := Parse(result.Source)
	if len(errs) > 0 {
		return nil, errs
	}

	prog.Files = result.IncludedFiles
	prog.Metadata = result.Metadata
	return prog, nil
}
