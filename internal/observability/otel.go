package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tailorbase/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Metrics holds all custom metrics
type Metrics struct {
	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Business metrics
	ModulesAnalyzed  metric.Int64Counter
	ResumesTailored  metric.Int64Counter
	ImportsCompleted metric.Int64Counter
	PDFsGenerated    metric.Int64Counter

	// Certificate metrics
	CertReloadCount metric.Int64Counter
	CertExpiryTime  metric.Float64Gauge

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// Manager owns the OpenTelemetry providers and the Prometheus side server
type Manager struct {
	config           config.ObservabilityConfig
	version          string
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.ServeMux
}

// NewManager sets up tracing and metrics. With observability disabled the
// manager is inert: middleware passes through and tracers are no-ops.
func NewManager(cfg config.ObservabilityConfig, version string) (*Manager, error) {
	if !cfg.Enabled {
		return &Manager{config: cfg, version: version}, nil
	}

	m := &Manager{
		config:        cfg,
		version:       version,
		shutdownFuncs: make([]func(context.Context) error, 0),
	}

	if err := m.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return m, nil
}

func (m *Manager) newResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(m.config.ServiceName),
			semconv.ServiceVersion(m.version),
			attribute.String("service.instance.id", m.serviceInstanceID()),
		),
	)
}

// initTracing sets up the trace exporter and provider
func (m *Manager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	if m.config.ConsoleOutput {
		opts := []stdouttrace.Option{}
		if m.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	} else if m.config.OTLP.Enabled {
		exporter, err = m.createOTLPExporter()
	} else {
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := m.newResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(m.config.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	m.tracerProvider = tp
	m.shutdownFuncs = append(m.shutdownFuncs, tp.Shutdown)

	return nil
}

// initMetrics sets up metric readers and the custom instruments
func (m *Manager) initMetrics() error {
	readers, err := m.setupMetricReaders()
	if err != nil {
		return err
	}

	res, err := m.newResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	m.meterProvider = mp
	m.shutdownFuncs = append(m.shutdownFuncs, mp.Shutdown)

	return m.initCustomMetrics()
}

func (m *Manager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if m.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(m.metricsInterval())))
	}

	if m.config.OTLP.Enabled {
		reader, err := m.createOTLPMetricsReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if m.config.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(m.config.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		if reader != nil {
			readers = append(readers, reader)
			m.prometheusServer = mux
			if err := StartPrometheusServer(mux, m.config.Prometheus.Port); err != nil {
				return nil, fmt.Errorf("failed to start Prometheus server: %w", err)
			}
		}
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	return readers, nil
}

func (m *Manager) initCustomMetrics() error {
	meter := m.meterProvider.Meter(m.config.ServiceName)
	m.metrics = &Metrics{}

	if err := m.createAIMetrics(meter); err != nil {
		return err
	}
	if err := m.createBusinessMetrics(meter); err != nil {
		return err
	}
	if err := m.createInfraMetrics(meter); err != nil {
		return err
	}

	return nil
}

func (m *Manager) createAIMetrics(meter metric.Meter) error {
	var err error

	m.metrics.AIProcessingTime, err = meter.Float64Histogram(
		"tailorbase_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	m.metrics.AIRequestCount, err = meter.Int64Counter(
		"tailorbase_ai_requests_total",
		metric.WithDescription("Total number of AI requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	m.metrics.AIErrorCount, err = meter.Int64Counter(
		"tailorbase_ai_errors_total",
		metric.WithDescription("Total number of AI request errors"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	m.metrics.AITokenUsage, err = meter.Int64Histogram(
		"tailorbase_ai_token_usage_total",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	return nil
}

func (m *Manager) createBusinessMetrics(meter metric.Meter) error {
	var err error

	m.metrics.ModulesAnalyzed, err = meter.Int64Counter(
		"tailorbase_modules_analyzed_total",
		metric.WithDescription("Total number of analysis module runs"),
	)
	if err != nil {
		return fmt.Errorf("failed to create modules analyzed metric: %w", err)
	}

	m.metrics.ResumesTailored, err = meter.Int64Counter(
		"tailorbase_resumes_tailored_total",
		metric.WithDescription("Total number of resumes tailored"),
	)
	if err != nil {
		return fmt.Errorf("failed to create resumes tailored metric: %w", err)
	}

	m.metrics.ImportsCompleted, err = meter.Int64Counter(
		"tailorbase_imports_completed_total",
		metric.WithDescription("Total number of profile imports completed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create imports completed metric: %w", err)
	}

	m.metrics.PDFsGenerated, err = meter.Int64Counter(
		"tailorbase_pdfs_generated_total",
		metric.WithDescription("Total number of resume PDFs generated"),
	)
	if err != nil {
		return fmt.Errorf("failed to create PDFs generated metric: %w", err)
	}

	return nil
}

func (m *Manager) createInfraMetrics(meter metric.Meter) error {
	var err error

	m.metrics.CertReloadCount, err = meter.Int64Counter(
		"tailorbase_cert_reloads_total",
		metric.WithDescription("Total number of certificate reloads"),
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate reload count metric: %w", err)
	}

	m.metrics.CertExpiryTime, err = meter.Float64Gauge(
		"tailorbase_cert_expiry_seconds",
		metric.WithDescription("Seconds until certificate expiry"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate expiry time metric: %w", err)
	}

	m.metrics.RateLimitHits, err = meter.Int64Counter(
		"tailorbase_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

// GetMetrics returns the metrics instance; empty when not initialized so
// callers never nil-check.
func (m *Manager) GetMetrics() *Metrics {
	if m.metrics == nil {
		return &Metrics{}
	}
	return m.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (m *Manager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !m.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		m.config.ServiceName,
		otelhttp.WithTracerProvider(m.tracerProvider),
		otelhttp.WithMeterProvider(m.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (m *Manager) Tracer(name string) oteltrace.Tracer {
	if !m.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (m *Manager) Shutdown(ctx context.Context) error {
	for _, shutdown := range m.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// TokenUsage mirrors the provider's token accounting
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// TrackAIOperation instruments an AI operation with tracing, duration,
// request/error counts and token usage.
func (mt *Metrics) TrackAIOperation(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult) error {
	if mt.AIProcessingTime == nil {
		result := fn(ctx)
		if result != nil {
			return result.Error
		}
		return nil
	}

	tracer := otel.Tracer("tailorbase.ai")
	ctx, span := tracer.Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	mt.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	mt.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		mt.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	mt.recordTokenUsage(ctx, result, attrs, span)

	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}

	return err
}

func (mt *Metrics) recordTokenUsage(ctx context.Context, result *AIOperationResult, attrs []attribute.KeyValue, span oteltrace.Span) {
	if result == nil || result.TokenUsage == nil || mt.AITokenUsage == nil {
		return
	}

	usage := result.TokenUsage
	for _, tt := range []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		tokenAttrs := append(attrs, attribute.String("token_type", tt.tokenType))
		mt.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(tokenAttrs...))
	}

	span.SetAttributes(
		attribute.Int64("ai.tokens.input", usage.InputTokens),
		attribute.Int64("ai.tokens.output", usage.OutputTokens),
		attribute.Int64("ai.tokens.total", usage.TotalTokens),
	)
}

// Business metric kinds accepted by RecordBusinessMetric
const (
	MetricModuleAnalyzed  = "module_analyzed"
	MetricResumeTailored  = "resume_tailored"
	MetricImportCompleted = "import_completed"
	MetricPDFGenerated    = "pdf_generated"
	MetricRateLimitHit    = "rate_limit_hit"
)

// RecordBusinessMetric bumps the counter for a domain event
func (mt *Metrics) RecordBusinessMetric(ctx context.Context, metricType string, success bool, attributes ...attribute.KeyValue) {
	attrs := append([]attribute.KeyValue{
		attribute.Bool("success", success),
	}, attributes...)

	var counter metric.Int64Counter
	switch metricType {
	case MetricModuleAnalyzed:
		counter = mt.ModulesAnalyzed
	case MetricResumeTailored:
		counter = mt.ResumesTailored
	case MetricImportCompleted:
		counter = mt.ImportsCompleted
	case MetricPDFGenerated:
		counter = mt.PDFsGenerated
	case MetricRateLimitHit:
		counter = mt.RateLimitHits
	}

	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// noOpSpanExporter is used when neither console nor OTLP export is configured
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (m *Manager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := m.config.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (m *Manager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := m.config.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	return sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(m.metricsInterval())), nil
}

func (m *Manager) serviceInstanceID() string {
	if m.config.ServiceInstance != "" {
		return m.config.ServiceInstance
	}
	return "tailorbase-1"
}

func (m *Manager) metricsInterval() time.Duration {
	if m.config.MetricsInterval > 0 {
		return m.config.MetricsInterval
	}
	return 15 * time.Second
}
