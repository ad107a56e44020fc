// Package preprocessor expands #include and #info directives and decodes
// source bytes to UTF-8 before lexing.
package preprocessor

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/zurustar/like/pkg/fileutil"
)

// Metadata holds #info directive values.
type Metadata struct {
	Title       string
	Author      string
	Version     string
	Description string
	Custom      map[string]string
}

// Result is the expanded source of an entry file.
type Result struct {
	Source        string
	Metadata      *Metadata
	IncludedFiles []string // every file read, entry first, as resolved in the FS
}

// Preprocessor reads sources from an fs.FS.
type Preprocessor struct {
	fsys     fs.FS
	stack    []string // files currently being expanded
	result   *Result
	metadata *Metadata
}

// New creates a preprocessor reading from fsys.
func New(fsys fs.FS) *Preprocessor {
	return &Preprocessor{fsys: fsys}
}

// Process expands the entry file and everything it includes.
func (p *Preprocessor) Process(name string) (*Result, error) {
	p.stack = nil
	p.metadata = &Metadata{Custom: make(map[string]string)}
	p.result = &Result{Metadata: p.metadata}

	source, err := p.processFile(name)
	if err != nil {
		return nil, err
	}
	p.result.Source = source
	return p.result, nil
}

func (p *Preprocessor) processFile(name string) (string, error) {
	data, resolved, err := fileutil.ReadFile(p.fsys, name)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", name, err)
	}

	for i, open := range p.stack {
		if open == resolved {
			chain := append(append([]string{}, p.stack[i:]...), resolved)
			return "", fmt.Errorf("circular include detected: %s", strings.Join(chain, " -> "))
		}
	}
	p.stack = append(p.stack, resolved)
	defer func() { p.stack = p.stack[:len(p.stack)-1] }()

	p.result.IncludedFiles = append(p.result.IncludedFiles, resolved)

	text, err := Decode(data)
	if err != nil {
		return "", fmt.Errorf("encoding error in %s: %w", resolved, err)
	}

	return p.processDirectives(text, resolved)
}

// Decode converts source bytes to UTF-8. A byte order mark selects UTF-8 or
// UTF-16 and is stripped; otherwise valid UTF-8 passes through and anything
// else is read as Shift-JIS.
func Decode(data []byte) (string, error) {
	if hasBOM(data) {
		out, _, err := transform.Bytes(xunicode.BOMOverride(xunicode.UTF8.NewDecoder()), data)
		if err != nil {
			return "", fmt.Errorf("failed to decode: %w", err)
		}
		return string(out), nil
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode Shift-JIS: %w", err)
	}
	return string(out), nil
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}

func (p *Preprocessor) processDirectives(text string, currentFile string) (string, error) {
	var result strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "#info"):
			if err := p.parseInfoDirective(trimmed); err != nil {
				return "", fmt.Errorf("%s:%d: %w", currentFile, lineNum, err)
			}
			// Keep line numbers of the including file stable.
			result.WriteString("\n")

		case strings.HasPrefix(trimmed, "#include"):
			included, err := p.parseIncludeDirective(trimmed, currentFile)
			if err != nil {
				return "", fmt.Errorf("%s:%d: %w", currentFile, lineNum, err)
			}
			result.WriteString(included)
			if !strings.HasSuffix(included, "\n") {
				result.WriteString("\n")
			}

		default:
			result.WriteString(line)
			result.WriteString("\n")
		}
	}

	if err := scanner.Err(); err != nil {
		return "", err
	}

	return result.String(), nil
}

// parseInfoDirective parses `#info key "value"`.
func (p *Preprocessor) parseInfoDirective(line string) error {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 || parts[1] == "" {
		return fmt.Errorf("invalid #info directive: %s", line)
	}

	key := strings.ToLower(parts[1])
	value := strings.Trim(strings.TrimSpace(parts[2]), "\"")

	switch key {
	case "title":
		p.metadata.Title = value
	case "author":
		p.metadata.Author = value
	case "version":
		p.metadata.Version = value
	case "description":
		p.metadata.Description = value
	default:
		p.metadata.Custom[key] = value
	}

	return nil
}

// parseIncludeDirective expands `#include "file"` relative to currentFile.
func (p *Preprocessor) parseIncludeDirective(line string, currentFile string) (string, error) {
	arg := strings.TrimSpace(strings.TrimPrefix(line, "#include"))
	if len(arg) < 3 || arg[0] != '"' || arg[len(arg)-1] != '"' {
		return "", fmt.Errorf("invalid #include directive: %s", line)
	}

	includePath := path.Join(path.Dir(currentFile), arg[1:len(arg)-1])
	return p.processFile(includePath)
}
