package ai

import (
	"context"

	"tailorbase/internal/types"
)

// Provider is the interface every AI backend implements. All methods return
// token usage information - callers can ignore it if not needed.
type Provider interface {
	TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailorResumeOutput, *TokenUsage, error)
	AnalyzeContext(ctx context.Context, input types.ContextAnalysisInput) (types.ContextAnalysisOutput, *TokenUsage, error)
	AnalyzeUniqueness(ctx context.Context, input types.UniquenessAnalysisInput) (types.UniquenessAnalysisOutput, *TokenUsage, error)
	AnalyzeImpact(ctx context.Context, input types.ImpactAnalysisInput) (types.ImpactAnalysisOutput, *TokenUsage, error)
	ResearchCompany(ctx context.Context, input types.CompanyResearchInput) (types.CompanyResearchOutput, *TokenUsage, error)
	SoftSkillsTurn(ctx context.Context, input types.SoftSkillsTurnInput) (types.SoftSkillsTurnOutput, *TokenUsage, error)
	AnalyzeTemplate(ctx context.Context, input types.TemplateAnalysisInput) (types.TemplateAnalysisOutput, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
