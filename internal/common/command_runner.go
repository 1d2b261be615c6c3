package common

import (
	"context"

	"tailorbase/internal/ai"
	"tailorbase/internal/errors"
)

// RunAICommand is the shared execution path for file-based AI commands: read
// and validate the input files, build the operation input, call the AI
// service and hand the result to the output handler.
func RunAICommand[Input any, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput func(contents []string) (Input, error),
	aiOperation func(ctx context.Context, input Input) (Output, *ai.TokenUsage, error),
	logDetails func(logger *errors.Logger, args []string),
) error {
	fileProcessor := NewFileProcessor(logger)
	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return err
	}

	if logDetails != nil {
		logDetails(logger, args)
	}

	result, usage, err := aiOperation(ctx, input)
	if err != nil {
		return err
	}
	if usage != nil {
		logger.Debug("Token usage",
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"total_tokens", usage.TotalTokens)
	}

	return NewOutputHandler(logger).HandleOutput(result, cmdConfig)
}
