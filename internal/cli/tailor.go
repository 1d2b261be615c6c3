package cli

import (
	"context"

	"github.com/spf13/cobra"

	"tailorbase/internal/ai"
	"tailorbase/internal/common"
	"tailorbase/internal/errors"
	"tailorbase/internal/types"
)

var tailorCmdConfig common.CommandConfig

var tailorCmd = &cobra.Command{
	Use:   "tailor <resume-file> <job-description-file>",
	Short: "Tailor a resume to a job description",
	Long: `Tailor rewrites a resume so it targets a specific job description,
and reports an ATS score with strengths, weaknesses and the skills that
were changed along the way.`,
	Args:    cobra.ExactArgs(2),
	PreRunE: validateFormatFlag(&tailorCmdConfig),
	RunE:    runTailor,
}

func init() {
	addOutputFlags(tailorCmd, &tailorCmdConfig)
}

func runTailor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	svc, err := ai.NewService(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	return common.RunAICommand(ctx, logger, tailorCmdConfig, args,
		func(contents []string) (types.TailorResumeInput, error) {
			return types.TailorResumeInput{
				BaseResume:     contents[0],
				JobDescription: contents[1],
			}, nil
		},
		func(ctx context.Context, input types.TailorResumeInput) (*types.TailorResumeOutput, *ai.TokenUsage, error) {
			out, usage, err := svc.TailorResume(ctx, input)
			if err != nil {
				return nil, usage, err
			}
			return &out, usage, nil
		},
		func(logger *errors.Logger, args []string) {
			logger.Info("Tailoring resume", "resume", args[0], "job", args[1])
		},
	)
}
