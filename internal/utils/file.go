// Package utils provides file handling helpers shared by the CLI commands.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"tailorbase/internal/errors"
)

// ValidateInputFile checks that the path points at a readable regular file.
func ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("file does not exist: %s", path), err)
		}
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("cannot access file: %s", path), err)
	}
	if info.IsDir() {
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("file is not readable: %s", path), err)
	}
	return f.Close()
}

// ValidateOutputFile checks that the output path's directory exists and is
// writable, creating missing parent directories.
func ValidateOutputFile(path string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("cannot create output directory: %s", dir), err)
		}
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("output path is a directory: %s", path), nil)
	}
	return nil
}

// IsTextFile reports whether the file looks like text by sampling its first
// bytes for valid UTF-8 without NUL characters.
func IsTextFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return false
	}
	sample := buf[:n]
	if strings.ContainsRune(string(sample), 0) {
		return false
	}
	// Trailing bytes may be a truncated rune; trim up to 3 before checking.
	for i := 0; i < 4 && len(sample) > 0; i++ {
		if utf8.Valid(sample) {
			return true
		}
		sample = sample[:len(sample)-1]
	}
	return false
}

// FormatFileSize renders a byte count in human-readable form.
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
