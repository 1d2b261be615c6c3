package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Secret precedence: Vault (if enabled) > config file > environment
// variables (TAILORBASE_*) > defaults.
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Scraper       ScraperConfig       `mapstructure:"scraper"`
	PDF           PDFConfig           `mapstructure:"pdf"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds AI service configuration. Global values act as fallbacks
// for the per-operation configurations.
type AIConfig struct {
	Provider         string        `mapstructure:"provider"`
	Model            string        `mapstructure:"model"`
	VisionModel      string        `mapstructure:"visionModel"`
	Timeout          time.Duration `mapstructure:"timeout"`
	APIKey           string        `mapstructure:"apiKey"`
	MaxRetries       int           `mapstructure:"maxRetries"`
	Temperature      float32       `mapstructure:"temperature"`
	UseSystemPrompts bool          `mapstructure:"useSystemPrompts"`
	CustomPrompts    PromptConfig  `mapstructure:"customPrompts"`

	// Operation-specific configurations
	Tailor     OperationAIConfig `mapstructure:"tailor"`
	Context    OperationAIConfig `mapstructure:"context"`
	Uniqueness OperationAIConfig `mapstructure:"uniqueness"`
	Impact     OperationAIConfig `mapstructure:"impact"`
	Company    OperationAIConfig `mapstructure:"company"`
	SoftSkills OperationAIConfig `mapstructure:"softSkills"`
	Template   OperationAIConfig `mapstructure:"template"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for a specific operation
type OperationAIConfig struct {
	Provider         string               `mapstructure:"provider"`
	Model            string               `mapstructure:"model"`
	Timeout          *time.Duration       `mapstructure:"timeout"`
	APIKey           string               `mapstructure:"apiKey"`
	MaxRetries       *int                 `mapstructure:"maxRetries"`
	Temperature      *float32             `mapstructure:"temperature"`
	UseSystemPrompts *bool                `mapstructure:"useSystemPrompts"`
	CustomPrompts    PromptConfig         `mapstructure:"customPrompts"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// PromptConfig holds overrides for the built-in prompts of one operation
type PromptConfig struct {
	SystemPrompt string `mapstructure:"systemPrompt"`
	UserPrompt   string `mapstructure:"userPrompt"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	TLS TLSConfig `mapstructure:"tls"`

	// Valid API keys for authentication
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`

	// Request body size cap in bytes
	MaxRequestSize int64 `mapstructure:"maxRequestSize"`
}

// TLSConfig holds TLS/mTLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"` // "disabled", "server", "mutual"
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
	CAFile   string `mapstructure:"caFile"` // required for mutual mode

	MinVersion       string `mapstructure:"minVersion"`       // "1.2" or "1.3"
	ClientAuthPolicy string `mapstructure:"clientAuthPolicy"` // "require", "request", "verify"

	// Reload certificates when the files change on disk
	AutoReload    bool          `mapstructure:"autoReload"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// RateLimitConfig holds sliding-window rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerWindow int           `mapstructure:"requestsPerWindow"`
	Window            time.Duration `mapstructure:"window"`
	ByIP              bool          `mapstructure:"byIP"`
	ByAPIKey          bool          `mapstructure:"byAPIKey"`
}

// DatabaseConfig holds Postgres connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

// DSN builds the Postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig holds the optional Redis connection used by the rate limiter
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ScraperConfig holds the third-party profile scraper actor configuration
type ScraperConfig struct {
	BaseURL      string        `mapstructure:"baseURL"`
	ActorID      string        `mapstructure:"actorID"`
	Token        string        `mapstructure:"token"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
	MaxWait      time.Duration `mapstructure:"maxWait"`
	DatasetLimit int           `mapstructure:"datasetLimit"`
	// Outbound polling rate against the actor API, requests per second
	PollRatePerSec float64 `mapstructure:"pollRatePerSec"`
}

// PDFConfig holds PDF parsing and rendering configuration
type PDFConfig struct {
	MaxUploadBytes int64  `mapstructure:"maxUploadBytes"`
	PageSize       string `mapstructure:"pageSize"` // "A4" or "Letter"
	MaxPages       int    `mapstructure:"maxPages"` // parse cap for uploads
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel string `mapstructure:"logLevel"`
	// Upper bound on free-text fields accepted by the API, in characters
	MaxContentChars  int      `mapstructure:"maxContentChars"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	ServiceName     string            `mapstructure:"serviceName"`
	ServiceInstance string            `mapstructure:"serviceInstance"`
	ConsoleOutput   bool              `mapstructure:"consoleOutput"`
	PrettyPrint     bool              `mapstructure:"prettyPrint"`
	SampleRate      float64           `mapstructure:"sampleRate"`
	MetricsInterval time.Duration     `mapstructure:"metricsInterval"`
	Prometheus      PrometheusConfig  `mapstructure:"prometheus"`
	OTLP            OTLPConfig        `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig `mapstructure:"healthCheck"`
}

// PrometheusConfig holds Prometheus exporter configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	AIModelCheckTimeout time.Duration `mapstructure:"aiModelCheckTimeout"`
}

// LoadConfig loads configuration from defaults, an optional yaml config file
// and TAILORBASE_* environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("TAILORBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/tailorbase/")
	v.AddConfigPath("$HOME/.tailorbase")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.visionModel", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// Per-operation overrides. Tailoring rewrites whole documents, so it gets
	// the longest timeout and the lowest retry budget; the analyzers are
	// cheaper and colder.
	v.SetDefault("ai.tailor.timeout", 90*time.Second)
	v.SetDefault("ai.tailor.maxRetries", 2)
	v.SetDefault("ai.tailor.temperature", 0.3)
	v.SetDefault("ai.context.timeout", 60*time.Second)
	v.SetDefault("ai.context.temperature", 0.1)
	v.SetDefault("ai.uniqueness.timeout", 60*time.Second)
	v.SetDefault("ai.uniqueness.temperature", 0.2)
	v.SetDefault("ai.impact.timeout", 60*time.Second)
	v.SetDefault("ai.impact.temperature", 0.1)
	v.SetDefault("ai.company.timeout", 75*time.Second)
	v.SetDefault("ai.company.temperature", 0.2)
	v.SetDefault("ai.softSkills.timeout", 45*time.Second)
	v.SetDefault("ai.softSkills.temperature", 0.5)
	v.SetDefault("ai.template.timeout", 90*time.Second)
	v.SetDefault("ai.template.temperature", 0.1)

	for _, op := range []string{"tailor", "context", "uniqueness", "impact", "company", "softSkills", "template"} {
		v.SetDefault("ai."+op+".circuitBreaker.enabled", true)
		v.SetDefault("ai."+op+".circuitBreaker.maxRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.minRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.failureThreshold", 0.6)
	}

	// Server
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", int64(1<<20))
	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.autoReload", false)
	v.SetDefault("server.tls.debounceDelay", 2*time.Second)
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.requestsPerWindow", 60)
	v.SetDefault("server.rateLimit.window", time.Minute)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", true)

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tailorbase")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "tailorbase")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 30*time.Minute)

	// Redis (rate limiter backend; in-memory fallback when disabled)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Scraper
	v.SetDefault("scraper.baseURL", "https://api.apify.com/v2")
	v.SetDefault("scraper.actorID", "")
	v.SetDefault("scraper.token", "")
	v.SetDefault("scraper.pollInterval", 5*time.Second)
	v.SetDefault("scraper.maxWait", 3*time.Minute)
	v.SetDefault("scraper.datasetLimit", 1)
	v.SetDefault("scraper.pollRatePerSec", 1.0)

	// PDF
	v.SetDefault("pdf.maxUploadBytes", int64(10<<20))
	v.SetDefault("pdf.pageSize", "A4")
	v.SetDefault("pdf.maxPages", 10)

	// App
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.maxContentChars", 50000)
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})

	// Vault
	v.SetDefault("vault.enabled", false)

	// Observability
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "tailorbase")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.prettyPrint", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metricsInterval", 15*time.Second)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}

// Validate checks configuration consistency at load time
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case "gemini":
	default:
		return fmt.Errorf("unsupported AI provider: %s", c.AI.Provider)
	}

	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RequestsPerWindow <= 0 {
			return fmt.Errorf("rate limit requestsPerWindow must be positive, got %d", c.Server.RateLimit.RequestsPerWindow)
		}
		if c.Server.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit window must be positive, got %s", c.Server.RateLimit.Window)
		}
	}

	if c.Scraper.PollInterval <= 0 {
		return fmt.Errorf("scraper pollInterval must be positive, got %s", c.Scraper.PollInterval)
	}
	if c.Scraper.MaxWait < c.Scraper.PollInterval {
		return fmt.Errorf("scraper maxWait (%s) must be at least pollInterval (%s)", c.Scraper.MaxWait, c.Scraper.PollInterval)
	}

	switch c.PDF.PageSize {
	case "A4", "Letter":
	default:
		return fmt.Errorf("unsupported PDF page size: %s (must be 'A4' or 'Letter')", c.PDF.PageSize)
	}

	return c.ValidateTLSConfig()
}
