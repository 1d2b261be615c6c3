// Package common provides the shared plumbing for AI-backed CLI commands:
// input file handling, output formatting and the generic command runner.
package common

import (
	"fmt"
	"os"

	"tailorbase/internal/errors"
	"tailorbase/internal/utils"
)

// FileProcessor reads and writes command input and output files.
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a file processor.
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadFile reads a file after validating it exists and is readable.
func (fp *FileProcessor) ReadFile(path string) (string, error) {
	if err := utils.ValidateInputFile(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("failed to read file: %s", path), err)
	}
	return string(data), nil
}

// WriteFile writes output to a file, creating parent directories as needed.
func (fp *FileProcessor) WriteFile(path, content string) error {
	if err := utils.ValidateOutputFile(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("failed to write output file: %s", path), err)
	}
	return nil
}

// ValidateAndReadFiles reads every path in order, warning when a file does
// not look like text.
func (fp *FileProcessor) ValidateAndReadFiles(paths ...string) ([]string, error) {
	contents := make([]string, 0, len(paths))
	for _, path := range paths {
		if !utils.IsTextFile(path) {
			fp.logger.Warn("Input file does not look like text", "file", path)
		}
		content, err := fp.ReadFile(path)
		if err != nil {
			return nil, err
		}
		fp.logger.Debug("Read input file",
			"file", path,
			"size", utils.FormatFileSize(int64(len(content))))
		contents = append(contents, content)
	}
	return contents, nil
}
