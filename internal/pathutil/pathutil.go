// Package pathutil provides cross-platform path helpers shared by the
// launcher and the document-processing tools.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Normalize converts a path to an absolute, cleaned form.
func Normalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDir creates the directory (and any parents) if it does not exist.
func EnsureDir(path string) (string, error) {
	norm, err := Normalize(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(norm, 0755); err != nil {
		return "", err
	}
	return norm, nil
}

// GlobFiles returns the regular files matching pattern. An absolute path
// without metacharacters short-circuits to a direct stat, so callers can pass
// either a literal file path or a glob.
func GlobFiles(pattern string) ([]string, error) {
	if filepath.IsAbs(pattern) && !strings.ContainsAny(pattern, "*?[") {
		if FileExists(pattern) {
			return []string{pattern}, nil
		}
		return nil, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if FileExists(m) {
			files = append(files, m)
		}
	}
	return files, nil
}
