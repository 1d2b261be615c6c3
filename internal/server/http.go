package server

import (
	"context"

	"tailorbase/internal/ai"
	"tailorbase/internal/config"
	"tailorbase/internal/errors"
	"tailorbase/internal/observability"
	"tailorbase/internal/ratelimit"
	"tailorbase/internal/scraper"
	"tailorbase/internal/store"
	"tailorbase/internal/types"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// AIService is the slice of the AI layer the HTTP handlers need. Satisfied
// by *ai.Service; handler tests supply a stub.
type AIService interface {
	TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailorResumeOutput, *ai.TokenUsage, error)
	AnalyzeContext(ctx context.Context, input types.ContextAnalysisInput) (types.ContextAnalysisOutput, *ai.TokenUsage, error)
	AnalyzeUniqueness(ctx context.Context, input types.UniquenessAnalysisInput) (types.UniquenessAnalysisOutput, *ai.TokenUsage, error)
	AnalyzeImpact(ctx context.Context, input types.ImpactAnalysisInput) (types.ImpactAnalysisOutput, *ai.TokenUsage, error)
	ResearchCompany(ctx context.Context, input types.CompanyResearchInput) (types.CompanyResearchOutput, *ai.TokenUsage, error)
	SoftSkillsTurn(ctx context.Context, input types.SoftSkillsTurnInput) (types.SoftSkillsTurnOutput, *ai.TokenUsage, error)
	AnalyzeTemplate(ctx context.Context, input types.TemplateAnalysisInput) (types.TemplateAnalysisOutput, *ai.TokenUsage, error)
	ModelInfo(ctx context.Context) map[string]*ai.ModelInfo
	CircuitBreakerStats() map[string]any
	Close() error
}

// Server wires the store, AI service, rate limiter and scraper behind the
// HTTP JSON surface.
type Server struct {
	cfg     *config.Config
	version string

	store   *store.Store
	ai      AIService
	limiter ratelimit.Limiter
	scraper *scraper.Client

	// Populated during Start
	obs         *observability.Manager
	certManager *CertificateManager

	apiKeys map[string]bool
	logger  *errors.Logger
}

// Dependencies carries the services the server dispatches to
type Dependencies struct {
	Store   *store.Store
	AI      AIService
	Limiter ratelimit.Limiter
	Scraper *scraper.Client
}

// NewServer creates a Server from configuration and its dependencies
func NewServer(cfg *config.Config, version string, deps Dependencies, logger *errors.Logger) *Server {
	apiKeys := make(map[string]bool)
	for _, key := range cfg.Server.APIKeys {
		if key != "" {
			apiKeys[key] = true
		}
	}

	return &Server{
		cfg:     cfg,
		version: version,
		store:   deps.Store,
		ai:      deps.AI,
		limiter: deps.Limiter,
		scraper: deps.Scraper,
		apiKeys: apiKeys,
		logger:  logger,
	}
}

// startSpan opens an API span; before observability is initialized (or in
// tests) it degrades to a no-op span.
func (s *Server) startSpan(ctx context.Context, name string) (context.Context, oteltrace.Span) {
	if s.obs == nil {
		return noop.NewTracerProvider().Tracer("tailorbase.api").Start(ctx, name)
	}
	return s.obs.Tracer("tailorbase.api").Start(ctx, name)
}

// trackAI wraps an AI call with the operation metrics and span
func (s *Server) trackAI(ctx context.Context, operation string, fn func(context.Context) (*ai.TokenUsage, error)) error {
	if s.obs == nil {
		_, err := fn(ctx)
		return err
	}
	return s.obs.GetMetrics().TrackAIOperation(ctx, operation, func(ctx context.Context) *observability.AIOperationResult {
		usage, err := fn(ctx)
		return &observability.AIOperationResult{
			Error:      err,
			TokenUsage: (*observability.TokenUsage)(usage),
		}
	})
}

// recordMetric bumps a business counter when observability is up
func (s *Server) recordMetric(ctx context.Context, kind string, success bool, attrs ...attribute.KeyValue) {
	if s.obs == nil {
		return
	}
	s.obs.GetMetrics().RecordBusinessMetric(ctx, kind, success, attrs...)
}
