package cli

import (
	"context"

	"github.com/spf13/cobra"

	"tailorbase/internal/ai"
	"tailorbase/internal/common"
	"tailorbase/internal/errors"
	"tailorbase/internal/types"
)

var impactCmdConfig common.CommandConfig

var impactCmd = &cobra.Command{
	Use:   "analyze-impact <resume-file>",
	Short: "Score how well achievements are quantified",
	Long: `Analyze-impact extracts achievement statements from the resume and
scores how well each one is quantified, suggesting improvements for the
ones that are not.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateFormatFlag(&impactCmdConfig),
	RunE:    runAnalyzeImpact,
}

func init() {
	addOutputFlags(impactCmd, &impactCmdConfig)
}

func runAnalyzeImpact(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	svc, err := ai.NewService(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	return common.RunAICommand(ctx, logger, impactCmdConfig, args,
		func(contents []string) (types.ImpactAnalysisInput, error) {
			return types.ImpactAnalysisInput{ResumeContent: contents[0]}, nil
		},
		func(ctx context.Context, input types.ImpactAnalysisInput) (*types.ImpactAnalysisOutput, *ai.TokenUsage, error) {
			out, usage, err := svc.AnalyzeImpact(ctx, input)
			if err != nil {
				return nil, usage, err
			}
			return &out, usage, nil
		},
		func(logger *errors.Logger, args []string) {
			logger.Info("Analyzing impact statements", "resume", args[0])
		},
	)
}
