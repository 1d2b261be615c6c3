package ai

import (
	"context"
	"fmt"

	"tailorbase/internal/config"
	"tailorbase/internal/errors"
	"tailorbase/internal/types"
)

// Service fronts all AI operations. It holds one provider per operation so
// each analysis module runs with its own model, temperature and circuit
// breaker configuration.
type Service struct {
	providers map[string]Provider
	logger    *errors.Logger
}

// NewService creates providers for every configured operation
func NewService(cfg *config.Config, logger *errors.Logger) (*Service, error) {
	providers := make(map[string]Provider, len(config.Operations()))

	for _, operation := range config.Operations() {
		opCfg := cfg.OperationConfig(operation)

		logger.Debug("Initializing AI provider",
			"provider", opCfg.Provider,
			"operation", operation,
			"model", opCfg.Model,
			"temperature", *opCfg.Temperature,
			"timeout", *opCfg.Timeout,
			"max_retries", *opCfg.MaxRetries)

		provider, err := newProvider(&opCfg, operation, logger)
		if err != nil {
			return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
				"Failed to create AI provider for "+operation, err)
		}
		providers[operation] = provider
	}

	return &Service{providers: providers, logger: logger}, nil
}

func newProvider(cfg *config.OperationAIConfig, operation string, logger *errors.Logger) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg, operation, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}

func (s *Service) provider(operation string) Provider {
	return s.providers[operation]
}

// TailorResume tailors a resume to a job description
func (s *Service) TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailorResumeOutput, *TokenUsage, error) {
	return s.provider(config.OpTailor).TailorResume(ctx, input)
}

// AnalyzeContext reports how each skill is evidenced in the resume
func (s *Service) AnalyzeContext(ctx context.Context, input types.ContextAnalysisInput) (types.ContextAnalysisOutput, *TokenUsage, error) {
	return s.provider(config.OpContext).AnalyzeContext(ctx, input)
}

// AnalyzeUniqueness finds what differentiates the resume from the applicant pool
func (s *Service) AnalyzeUniqueness(ctx context.Context, input types.UniquenessAnalysisInput) (types.UniquenessAnalysisOutput, *TokenUsage, error) {
	return s.provider(config.OpUniqueness).AnalyzeUniqueness(ctx, input)
}

// AnalyzeImpact scores the quantified impact of achievement statements
func (s *Service) AnalyzeImpact(ctx context.Context, input types.ImpactAnalysisInput) (types.ImpactAnalysisOutput, *TokenUsage, error) {
	return s.provider(config.OpImpact).AnalyzeImpact(ctx, input)
}

// ResearchCompany summarizes what is known about an employer
func (s *Service) ResearchCompany(ctx context.Context, input types.CompanyResearchInput) (types.CompanyResearchOutput, *TokenUsage, error) {
	return s.provider(config.OpCompany).ResearchCompany(ctx, input)
}

// SoftSkillsTurn advances a soft-skills interview by one exchange
func (s *Service) SoftSkillsTurn(ctx context.Context, input types.SoftSkillsTurnInput) (types.SoftSkillsTurnOutput, *TokenUsage, error) {
	return s.provider(config.OpSoftSkills).SoftSkillsTurn(ctx, input)
}

// AnalyzeTemplate extracts a style sheet from a sample resume page image
func (s *Service) AnalyzeTemplate(ctx context.Context, input types.TemplateAnalysisInput) (types.TemplateAnalysisOutput, *TokenUsage, error) {
	return s.provider(config.OpTemplate).AnalyzeTemplate(ctx, input)
}

// ModelInfo returns per-operation model readiness for health checks
func (s *Service) ModelInfo(ctx context.Context) map[string]*ModelInfo {
	info := make(map[string]*ModelInfo, len(s.providers))
	for operation, provider := range s.providers {
		info[operation] = provider.GetModelInfo(ctx)
	}
	return info
}

// CircuitBreakerStats aggregates breaker statistics across all operations
func (s *Service) CircuitBreakerStats() map[string]any {
	stats := make(map[string]any, len(s.providers))
	healthy := true
	for operation, provider := range s.providers {
		if g, ok := provider.(*GeminiProvider); ok {
			opStats := g.CircuitBreakerStats()
			stats[operation] = opStats
			if h, _ := opStats["overall_healthy"].(bool); !h {
				healthy = false
			}
		}
	}
	stats["overall_healthy"] = healthy
	return stats
}

// Close releases all provider resources
func (s *Service) Close() error {
	var firstErr error
	for _, provider := range s.providers {
		if err := provider.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
