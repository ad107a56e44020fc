// Package fileutil locates source files inside an fs.FS.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// FindFileCaseInsensitiveFS searches dir for a regular file whose name
// matches filename ignoring case, and returns its slash-separated path.
//
// Example:
//
//	name, err := FindFileCaseInsensitiveFS(os.DirFS("."), "lib", "MATH.like")
//	// finds "lib/math.like", "lib/Math.LIKE", etc.
func FindFileCaseInsensitiveFS(fsys fs.FS, dir, filename string) (string, error) {
	searchName := strings.ToLower(filename)

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(entry.Name()) == searchName {
			return path.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("file not found: %s (searched in %s): %w", filename, dir, fs.ErrNotExist)
}

// ReadFile reads name from fsys. When no file has that exact name, a
// case-insensitive match in the same directory is tried. The path that was
// actually read is returned with the contents.
func ReadFile(fsys fs.FS, name string) ([]byte, string, error) {
	name = path.Clean(name)

	data, err := fs.ReadFile(fsys, name)
	if err == nil {
		return data, name, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, "", err
	}

	found, findErr := FindFileCaseInsensitiveFS(fsys, path.Dir(name), path.Base(name))
	if findErr != nil {
		return nil, "", err
	}
	data, err = fs.ReadFile(fsys, found)
	if err != nil {
		return nil, "", err
	}
	return data, found, nil
}
