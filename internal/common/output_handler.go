package common

import (
	"fmt"

	"tailorbase/internal/errors"
	"tailorbase/internal/formatters"
)

// CommandConfig holds the output options shared by the AI commands.
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler formats command results and writes them to stdout or a file.
type OutputHandler struct {
	logger        *errors.Logger
	fileProcessor *FileProcessor
}

// NewOutputHandler creates an output handler.
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		logger:        logger,
		fileProcessor: NewFileProcessor(logger),
	}
}

// HandleOutput renders data in the requested format and delivers it.
func (oh *OutputHandler) HandleOutput(data any, cfg CommandConfig) error {
	formatted, err := formatters.GlobalRegistry.Format(cfg.OutputFormat, data)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("failed to format output as %s", cfg.OutputFormat), err)
	}

	if cfg.OutputFile == "" {
		fmt.Println(formatted)
		return nil
	}

	if err := oh.fileProcessor.WriteFile(cfg.OutputFile, formatted); err != nil {
		return err
	}
	oh.logger.Info("Output written", "file", cfg.OutputFile, "format", cfg.OutputFormat)
	return nil
}
