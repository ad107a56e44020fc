package preprocessor

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"golang.org/x/text/encoding/japanese"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func file(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

func TestPreprocessor_InfoDirective(t *testing.T) {
	fsys := fstest.MapFS{
		"test.like": file(`#info title "Test Program"
#info author "Test Author"
#info version "1.0"
#info description "A test program"
#info custom_key "custom value"

// code here
`),
	}

	result, err := New(fsys).Process("test.like")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	meta := result.Metadata
	if meta.Title != "Test Program" {
		t.Errorf("Expected title 'Test Program', got '%s'", meta.Title)
	}
	if meta.Author != "Test Author" {
		t.Errorf("Expected author 'Test Author', got '%s'", meta.Author)
	}
	if meta.Version != "1.0" {
		t.Errorf("Expected version '1.0', got '%s'", meta.Version)
	}
	if meta.Description != "A test program" {
		t.Errorf("Expected description 'A test program', got '%s'", meta.Description)
	}
	if meta.Custom["custom_key"] != "custom value" {
		t.Errorf("Expected custom_key 'custom value', got '%s'", meta.Custom["custom_key"])
	}

	if strings.Contains(result.Source, "#info") {
		t.Error("#info directives should be removed from output")
	}
	// The blanked directive lines keep later line numbers intact.
	lines := strings.Split(result.Source, "\n")
	if lines[6] != "// code here" {
		t.Errorf("line 7 = %q, want line 7 unchanged", lines[6])
	}
}

func TestPreprocessor_IncludeDirective(t *testing.T) {
	fsys := fstest.MapFS{
		"main.like": file(`// main file
#include "lib.like"
// after include
`),
		"lib.like": file(`// library file
fn test() { 1 }`),
	}

	result, err := New(fsys).Process("main.like")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	expected := "// main file\n// library file\nfn test() { 1 }\n// after include\n"
	if result.Source != expected {
		t.Errorf("Source =\n%q\nwant\n%q", result.Source, expected)
	}

	if len(result.IncludedFiles) != 2 || result.IncludedFiles[0] != "main.like" || result.IncludedFiles[1] != "lib.like" {
		t.Errorf("IncludedFiles = %v", result.IncludedFiles)
	}
}

func TestPreprocessor_NestedIncludesAreRelative(t *testing.T) {
	fsys := fstest.MapFS{
		"main.like":        file(`#include "lib/a.like"`),
		"lib/a.like":       file("#include \"inner/b.like\"\na = 1"),
		"lib/inner/b.like": file("b = 2"),
	}

	result, err := New(fsys).Process("main.like")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Source != "b = 2\na = 1\n" {
		t.Errorf("Source = %q", result.Source)
	}
	expected := []string{"main.like", "lib/a.like", "lib/inner/b.like"}
	for i, name := range expected {
		if i >= len(result.IncludedFiles) || result.IncludedFiles[i] != name {
			t.Fatalf("IncludedFiles = %v, want %v", result.IncludedFiles, expected)
		}
	}
}

func TestPreprocessor_CaseInsensitiveInclude(t *testing.T) {
	fsys := fstest.MapFS{
		"main.like":     file(`#include "LIB/Math.like"`),
		"LIB/MATH.LIKE": file("fn sq(n) { n * n }"),
	}

	result, err := New(fsys).Process("main.like")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !strings.Contains(result.Source, "fn sq(n)") {
		t.Errorf("included content missing: %q", result.Source)
	}
	if result.IncludedFiles[1] != "LIB/MATH.LIKE" {
		t.Errorf("resolved include = %q", result.IncludedFiles[1])
	}
}

func TestPreprocessor_CircularInclude(t *testing.T) {
	fsys := fstest.MapFS{
		"a.like": file(`#include "b.like"`),
		"b.like": file(`#include "a.like"`),
	}

	_, err := New(fsys).Process("a.like")
	if err == nil {
		t.Fatal("Expected error for circular include")
	}
	if !strings.Contains(err.Error(), "circular include detected: a.like -> b.like -> a.like") {
		t.Errorf("Expected circular include error, got: %v", err)
	}
}

func TestPreprocessor_RepeatedIncludeIsAllowed(t *testing.T) {
	fsys := fstest.MapFS{
		"main.like":   file("#include \"util.like\"\n#include \"util.like\""),
		"util.like":   file("u = 1"),
		"unused.like": file("x"),
	}

	result, err := New(fsys).Process("main.like")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Source != "u = 1\nu = 1\n" {
		t.Errorf("Source = %q", result.Source)
	}
}

func TestPreprocessor_MissingFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"main.like": file(`#include "missing.like"`),
	}

	_, err := New(fsys).Process("main.like")
	if err == nil {
		t.Fatal("Expected error for missing include")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got: %v", err)
	}
	if !strings.Contains(err.Error(), "main.like:1") {
		t.Errorf("Expected include location in error, got: %v", err)
	}

	if _, err := New(fsys).Process("nothing.like"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist for missing entry, got: %v", err)
	}
}

func TestPreprocessor_InvalidDirectives(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"info without value", "#info title"},
		{"include without name", "#include"},
		{"include without quotes", "#include lib.like"},
		{"include with one quote", `#include "lib.like`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"main.like": file(tt.source), "lib.like": file("")}
			if _, err := New(fsys).Process("main.like"); err == nil {
				t.Errorf("Expected error for %q", tt.source)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	const text = "s = \"こんにちは\""

	sjis, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(text))
	if err != nil {
		t.Fatalf("failed to encode Shift-JIS: %v", err)
	}
	utf16, _, err := transform.Bytes(xunicode.UTF16(xunicode.BigEndian, xunicode.UseBOM).NewEncoder(), []byte(text))
	if err != nil {
		t.Fatalf("failed to encode UTF-16: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"utf-8", []byte(text)},
		{"utf-8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, text...)},
		{"utf-16 with bom", utf16},
		{"shift-jis", sjis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got != text {
				t.Errorf("Decode = %q, want %q", got, text)
			}
		})
	}
}

func TestPreprocessor_ShiftJISInclude(t *testing.T) {
	sjis, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(`greeting = "やあ"`))
	if err != nil {
		t.Fatalf("failed to encode Shift-JIS: %v", err)
	}
	fsys := fstest.MapFS{
		"main.like": file(`#include "sjis.like"`),
		"sjis.like": {Data: sjis},
	}

	result, err := New(fsys).Process("main.like")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Source != "greeting = \"やあ\"\n" {
		t.Errorf("Source = %q", result.Source)
	}
}
