package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tailorbase/internal/config"
	tberrors "tailorbase/internal/errors"
	"tailorbase/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const modelCheckTimeout = 10 * time.Second

// GeminiProvider implements Provider for Google Gemini. Each instance is
// bound to a single operation's resolved configuration, so every analysis
// module gets its own model, temperature and breaker settings.
type GeminiProvider struct {
	client         *genai.Client
	config         *config.OperationAIConfig
	operation      string
	circuitBreaker *CircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *tberrors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operation string, logger *tberrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, tberrors.NewAIError(tberrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		config:         cfg,
		operation:      operation,
		circuitBreaker: NewCircuitBreaker(operation, cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operation, cfg, logger),
		logger:         logger,
	}, nil
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"operation", g.operation,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"operation", g.operation,
		"version", modelInfo.Version)

	return modelInfo
}

// executeAIOperation runs an AI operation with common tracing, timeout,
// circuit breaker, retry, and response validation logic.
func executeAIOperation[Out any](
	g *GeminiProvider,
	ctx context.Context,
	operation string,
	contents []*genai.Content,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	tracer := otel.Tracer("tailorbase.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.UseSystemPrompts {
		if sp := systemPrompt(g.config, operation); sp != "" {
			genaiConfig.SystemInstruction = genai.NewContentFromText(sp, genai.RoleUser)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, *g.config.Timeout)
	defer cancel()

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operation, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, contents, genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, classifyUpstreamError(operation, err)
	}

	raw := []byte(result.Text())
	if err := validateResponse(operation, raw); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, tberrors.NewAIError(tberrors.ErrCodeAIResponseParse,
			"Model response failed validation for "+operation, err)
	}
	if err := json.Unmarshal(raw, &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, tberrors.NewAIError(tberrors.ErrCodeAIResponseParse,
			"Failed to parse AI response for "+operation, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// textContents wraps a formatted user prompt as genai request contents
func textContents(userPrompt string) []*genai.Content {
	return genai.Text(userPrompt)
}

// TailorResume implements Provider for resume tailoring
func (g *GeminiProvider) TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailorResumeOutput, *TokenUsage, error) {
	userPrompt := fmt.Sprintf(userPromptTemplate(g.config, config.OpTailor),
		input.BaseResume, input.JobDescription)

	output, tokenUsage, err := executeAIOperation[types.TailorResumeOutput](
		g,
		ctx,
		config.OpTailor,
		textContents(userPrompt),
		generationConfig(g.config, config.OpTailor),
		attribute.Int("input.resume_length", len(input.BaseResume)),
		attribute.Int("input.job_length", len(input.JobDescription)),
	)
	if err != nil {
		return types.TailorResumeOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.tailored_length", len(output.TailoredResume)),
			attribute.Int("ats.score", output.ATSAnalysis.Score),
		)
	}

	return output, tokenUsage, nil
}

// AnalyzeContext implements Provider for skill context analysis
func (g *GeminiProvider) AnalyzeContext(ctx context.Context, input types.ContextAnalysisInput) (types.ContextAnalysisOutput, *TokenUsage, error) {
	skills := "- " + strings.Join(input.Skills, "\n- ")
	userPrompt := fmt.Sprintf(userPromptTemplate(g.config, config.OpContext),
		skills, input.ResumeContent)

	output, tokenUsage, err := executeAIOperation[types.ContextAnalysisOutput](
		g,
		ctx,
		config.OpContext,
		textContents(userPrompt),
		generationConfig(g.config, config.OpContext),
		attribute.Int("input.skills_count", len(input.Skills)),
		attribute.Int("input.resume_length", len(input.ResumeContent)),
	)
	if err != nil {
		return types.ContextAnalysisOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("context.score", output.Score),
			attribute.Float64("context.coverage", output.Coverage),
		)
	}

	return output, tokenUsage, nil
}

// AnalyzeUniqueness implements Provider for differentiation analysis
func (g *GeminiProvider) AnalyzeUniqueness(ctx context.Context, input types.UniquenessAnalysisInput) (types.UniquenessAnalysisOutput, *TokenUsage, error) {
	userPrompt := fmt.Sprintf(userPromptTemplate(g.config, config.OpUniqueness),
		input.ResumeContent, input.JobDescription)

	output, tokenUsage, err := executeAIOperation[types.UniquenessAnalysisOutput](
		g,
		ctx,
		config.OpUniqueness,
		textContents(userPrompt),
		generationConfig(g.config, config.OpUniqueness),
		attribute.Int("input.resume_length", len(input.ResumeContent)),
		attribute.Int("input.job_length", len(input.JobDescription)),
	)
	if err != nil {
		return types.UniquenessAnalysisOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("uniqueness.score", output.Score),
			attribute.Int("uniqueness.differentiators", len(output.Differentiators)),
		)
	}

	return output, tokenUsage, nil
}

// AnalyzeImpact implements Provider for quantified impact analysis
func (g *GeminiProvider) AnalyzeImpact(ctx context.Context, input types.ImpactAnalysisInput) (types.ImpactAnalysisOutput, *TokenUsage, error) {
	userPrompt := fmt.Sprintf(userPromptTemplate(g.config, config.OpImpact),
		input.ResumeContent)

	output, tokenUsage, err := executeAIOperation[types.ImpactAnalysisOutput](
		g,
		ctx,
		config.OpImpact,
		textContents(userPrompt),
		generationConfig(g.config, config.OpImpact),
		attribute.Int("input.resume_length", len(input.ResumeContent)),
	)
	if err != nil {
		return types.ImpactAnalysisOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("impact.score", output.Score),
			attribute.Int("impact.statements", len(output.Statements)),
		)
	}

	return output, tokenUsage, nil
}

// ResearchCompany implements Provider for company research
func (g *GeminiProvider) ResearchCompany(ctx context.Context, input types.CompanyResearchInput) (types.CompanyResearchOutput, *TokenUsage, error) {
	userPrompt := fmt.Sprintf(userPromptTemplate(g.config, config.OpCompany),
		input.CompanyName, input.JobDescription)

	output, tokenUsage, err := executeAIOperation[types.CompanyResearchOutput](
		g,
		ctx,
		config.OpCompany,
		textContents(userPrompt),
		generationConfig(g.config, config.OpCompany),
		attribute.Int("input.company_length", len(input.CompanyName)),
	)
	if err != nil {
		return types.CompanyResearchOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("company.well_known", output.WellKnown),
		)
	}

	return output, tokenUsage, nil
}

// SoftSkillsTurn implements Provider for one turn of the soft-skills interview
func (g *GeminiProvider) SoftSkillsTurn(ctx context.Context, input types.SoftSkillsTurnInput) (types.SoftSkillsTurnOutput, *TokenUsage, error) {
	framing := softSkillsAskNext
	switch {
	case input.Finalize:
		framing = softSkillsFinalize
	case len(input.Transcript) == 0:
		framing = softSkillsOpening
	}

	userPrompt := fmt.Sprintf(userPromptTemplate(g.config, config.OpSoftSkills),
		input.JobDescription, formatTranscript(input.Transcript), framing)

	output, tokenUsage, err := executeAIOperation[types.SoftSkillsTurnOutput](
		g,
		ctx,
		config.OpSoftSkills,
		textContents(userPrompt),
		generationConfig(g.config, config.OpSoftSkills),
		attribute.Int("input.transcript_turns", len(input.Transcript)),
		attribute.Bool("input.finalize", input.Finalize),
	)
	if err != nil {
		return types.SoftSkillsTurnOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("soft_skills.completed", output.Completed),
		)
	}

	return output, tokenUsage, nil
}

// AnalyzeTemplate implements Provider for visual style extraction. The input
// carries a page image, so the request is multimodal.
func (g *GeminiProvider) AnalyzeTemplate(ctx context.Context, input types.TemplateAnalysisInput) (types.TemplateAnalysisOutput, *TokenUsage, error) {
	userPrompt := userPromptTemplate(g.config, config.OpTemplate)
	parts := []*genai.Part{
		genai.NewPartFromText(userPrompt),
		genai.NewPartFromBytes(input.ImageData, input.MIMEType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	output, tokenUsage, err := executeAIOperation[types.TemplateAnalysisOutput](
		g,
		ctx,
		config.OpTemplate,
		contents,
		generationConfig(g.config, config.OpTemplate),
		attribute.Int("input.image_bytes", len(input.ImageData)),
		attribute.String("input.mime_type", input.MIMEType),
	)
	if err != nil {
		return types.TemplateAnalysisOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("template.font", output.Style.FontFamily),
		)
	}

	return output, tokenUsage, nil
}

// CircuitBreakerStats returns breaker statistics for the stats endpoint
func (g *GeminiProvider) CircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
	}
	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsHealthy()
	return stats
}

// Close implements Provider
func (g *GeminiProvider) Close() error {
	// Gemini client has no Close in single-shot usage
	return nil
}

// formatTranscript renders a chat transcript for inclusion in a prompt
func formatTranscript(transcript []types.ChatMessage) string {
	if len(transcript) == 0 {
		return "(no exchanges yet)"
	}
	var b strings.Builder
	for _, msg := range transcript {
		switch msg.Role {
		case "interviewer":
			b.WriteString("Interviewer: ")
		default:
			b.WriteString("Candidate: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
