package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"benchmarkapi/internal/benchmark"
)

// EnvPrefix namespaces every environment variable, e.g. BENCH_SERVER_PORT
const EnvPrefix = "BENCH"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Model     ModelConfig     `yaml:"model" envconfig:"MODEL"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"BIND_HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
}

// SecurityConfig contains CORS and rate limiting
type SecurityConfig struct {
	AllowedOrigins   []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS       bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	AllowCredentials bool            `yaml:"allow_credentials" envconfig:"ALLOW_CREDENTIALS"`
	RateLimit        RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DataConfig locates the benchmark dataset
type DataConfig struct {
	Dir        string   `yaml:"dir" envconfig:"DIR"`
	Candidates []string `yaml:"candidates" envconfig:"CANDIDATES"`
}

// ModelConfig holds the request defaults and potential model parameters
type ModelConfig struct {
	DefaultYear string  `yaml:"default_year" envconfig:"DEFAULT_YEAR"`
	BaseShare   float64 `yaml:"base_share" envconfig:"BASE_SHARE"`
	MinGapPP    float64 `yaml:"min_gap_pp" envconfig:"MIN_GAP_PP"`
	MaxGapPP    float64 `yaml:"max_gap_pp" envconfig:"MAX_GAP_PP"`
	LowFactor   float64 `yaml:"low_factor" envconfig:"LOW_FACTOR"`
	HighFactor  float64 `yaml:"high_factor" envconfig:"HIGH_FACTOR"`
}

// PotentialModel returns the estimator parameters of this section
func (m ModelConfig) PotentialModel() benchmark.PotentialModel {
	return benchmark.PotentialModel{
		BaseShare:  m.BaseShare,
		MinGapPP:   m.MinGapPP,
		MaxGapPP:   m.MaxGapPP,
		LowFactor:  m.LowFactor,
		HighFactor: m.HighFactor,
	}
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName     string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment     string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter   string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsExporter string  `yaml:"metrics_exporter" envconfig:"METRICS_EXPORTER"`
	SampleRatio     float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load builds the configuration from defaults, an optional YAML file and
// BENCH_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown timeout must be positive")
	}

	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}

	if c.Security.EnableCORS {
		if len(c.Security.AllowedOrigins) == 0 {
			return fmt.Errorf("at least one allowed origin must be specified")
		}
		for _, o := range c.Security.AllowedOrigins {
			if o == "*" {
				if c.Security.AllowCredentials {
					return fmt.Errorf("wildcard origin cannot be combined with credentials")
				}
				continue
			}
			if u, err := url.Parse(o); err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid allowed origin: %q", o)
			}
		}
	}

	if rl := c.Security.RateLimit; rl.Enabled && (rl.RPS <= 0 || rl.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive when enabled")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	// Logs are always structured JSON
	c.Logging.Format = "json"

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q", c.Logging.Output)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	if c.Data.Dir == "" {
		c.Data.Dir = "."
	}
	if len(c.Data.Candidates) == 0 {
		c.Data.Candidates = DefaultDataCandidates()
	}

	if c.Model.DefaultYear == "" {
		return fmt.Errorf("model default year must be set")
	}
	if c.Model.BaseShare <= 0 {
		return fmt.Errorf("model base share must be positive")
	}
	if c.Model.MinGapPP < 0 || c.Model.MinGapPP > c.Model.MaxGapPP {
		return fmt.Errorf("model gap bounds invalid: min %v, max %v", c.Model.MinGapPP, c.Model.MaxGapPP)
	}
	if c.Model.LowFactor <= 0 || c.Model.HighFactor <= 0 {
		return fmt.Errorf("model tier factors must be positive")
	}
	if c.Model.LowFactor > 1 || c.Model.HighFactor < 1 {
		return fmt.Errorf("model tier factors must satisfy low <= 1 <= high")
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("invalid trace exporter: %q", c.Telemetry.TraceExporter)
	}
	switch c.Telemetry.MetricsExporter {
	case "prometheus", "none":
	default:
		return fmt.Errorf("invalid metrics exporter: %q", c.Telemetry.MetricsExporter)
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("trace sample ratio must be within [0, 1]")
	}

	return nil
}

// getConfigFilePath returns BENCH_CONFIG_FILE or the first config file
// found in the usual locations, or "" when there is none.
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// DefaultDataCandidates are the dataset files probed at startup
func DefaultDataCandidates() []string {
	return []string{
		"benchmark_master_clean.parquet",
		"benchmark_master_clean.csv",
		"benchmark_master.csv",
	}
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"*"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: false,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Data: DataConfig{
			Dir:        ".",
			Candidates: DefaultDataCandidates(),
		},
		Model: ModelConfig{
			DefaultYear: "2024",
			BaseShare:   0.30,
			MinGapPP:    0.5,
			MaxGapPP:    6.0,
			LowFactor:   0.75,
			HighFactor:  1.5,
		},
		Telemetry: TelemetryConfig{
			ServiceName:     AppName,
			Environment:     "development",
			TraceExporter:   "none",
			MetricsExporter: "prometheus",
			SampleRatio:     1.0,
		},
	}
}
