// Package filex writes CLI output files such as RSVP QR codes.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates dir, resolved against the working directory when
// relative, and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// WriteInto writes data to dir/name and returns the file path. Only the
// base of name is used, so a name cannot escape dir.
func WriteInto(dir, name string, data []byte) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("write into %s: bad file name %q", dir, name)
	}
	abs, err := EnsureDir(dir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(abs, base)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
