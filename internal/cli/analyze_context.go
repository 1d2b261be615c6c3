package cli

import (
	"context"

	"github.com/spf13/cobra"

	"tailorbase/internal/ai"
	"tailorbase/internal/common"
	"tailorbase/internal/errors"
	"tailorbase/internal/types"
)

var (
	contextCmdConfig common.CommandConfig
	contextSkills    []string
)

var contextCmd = &cobra.Command{
	Use:   "analyze-context <resume-file>",
	Short: "Check which claimed skills have supporting context",
	Long: `Analyze-context checks each listed skill against the resume body and
reports whether the resume backs the claim with concrete evidence.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: validateFormatFlag(&contextCmdConfig),
	RunE:    runAnalyzeContext,
}

func init() {
	addOutputFlags(contextCmd, &contextCmdConfig)
	contextCmd.Flags().StringSliceVar(&contextSkills, "skills", nil,
		"comma-separated skills to verify against the resume")
	_ = contextCmd.MarkFlagRequired("skills")
}

func runAnalyzeContext(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	svc, err := ai.NewService(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	return common.RunAICommand(ctx, logger, contextCmdConfig, args,
		func(contents []string) (types.ContextAnalysisInput, error) {
			return types.ContextAnalysisInput{
				ResumeContent: contents[0],
				Skills:        contextSkills,
			}, nil
		},
		func(ctx context.Context, input types.ContextAnalysisInput) (*types.ContextAnalysisOutput, *ai.TokenUsage, error) {
			out, usage, err := svc.AnalyzeContext(ctx, input)
			if err != nil {
				return nil, usage, err
			}
			return &out, usage, nil
		},
		func(logger *errors.Logger, args []string) {
			logger.Info("Analyzing skill context",
				"resume", args[0], "skills", len(contextSkills))
		},
	)
}
