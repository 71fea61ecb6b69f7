package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benchmarkapi/internal/benchmark"
)

var envVars = []string{
	"BENCH_CONFIG_FILE", "PORT", "BIND_HOST", "ENVIRONMENT",
	"BENCH_SERVER_PORT", "BENCH_SERVER_READ_TIMEOUT", "BENCH_SERVER_WRITE_TIMEOUT",
	"BENCH_SECURITY_ALLOWED_ORIGINS", "BENCH_SECURITY_ENABLE_CORS", "BENCH_SECURITY_ALLOW_CREDENTIALS",
	"BENCH_SECURITY_RATE_LIMIT_ENABLED", "BENCH_SECURITY_RATE_LIMIT_RPS",
	"BENCH_LOGGING_LEVEL", "BENCH_LOGGING_FORMAT", "BENCH_LOGGING_OUTPUT",
	"BENCH_DATA_DIR", "BENCH_DATA_CANDIDATES",
	"BENCH_MODEL_DEFAULT_YEAR", "BENCH_MODEL_MIN_GAP_PP", "BENCH_MODEL_MAX_GAP_PP",
	"BENCH_TELEMETRY_TRACE_EXPORTER",
}

// clearEnv unsets every variable the tests touch and restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
				assert.Equal(t, ":8080", cfg.Server.Addr())

				assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.EnableCORS)
				assert.False(t, cfg.Security.AllowCredentials)
				assert.False(t, cfg.Security.RateLimit.Enabled)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)

				assert.Equal(t, ".", cfg.Data.Dir)
				assert.Equal(t, DefaultDataCandidates(), cfg.Data.Candidates)

				assert.Equal(t, "2024", cfg.Model.DefaultYear)
				assert.Equal(t, 0.30, cfg.Model.BaseShare)
				assert.Equal(t, 0.5, cfg.Model.MinGapPP)
				assert.Equal(t, 6.0, cfg.Model.MaxGapPP)
				assert.Equal(t, 0.75, cfg.Model.LowFactor)
				assert.Equal(t, 1.5, cfg.Model.HighFactor)

				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
				assert.Equal(t, "prometheus", cfg.Telemetry.MetricsExporter)
			},
		},
		{
			name: "custom environment variables",
			env: map[string]string{
				"BENCH_SERVER_PORT":              "9090",
				"BENCH_SERVER_READ_TIMEOUT":      "30s",
				"BENCH_SECURITY_ALLOWED_ORIGINS": "http://example.com,https://example.com",
				"BENCH_LOGGING_LEVEL":            "debug",
				"BENCH_LOGGING_FORMAT":           "text",
				"BENCH_DATA_DIR":                 "/srv/data",
				"BENCH_DATA_CANDIDATES":          "a.csv,b.parquet",
				"BENCH_MODEL_DEFAULT_YEAR":       "2023",
				"BENCH_TELEMETRY_TRACE_EXPORTER": "stdout",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "/srv/data", cfg.Data.Dir)
				assert.Equal(t, []string{"a.csv", "b.parquet"}, cfg.Data.Candidates)
				assert.Equal(t, "2023", cfg.Model.DefaultYear)
				assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "config file with environment override",
			env: map[string]string{
				"BENCH_SERVER_PORT":   "7070",
				"BENCH_LOGGING_LEVEL": "warn",
			},
			file: `
server:
  port: 6060
  read_timeout: 20s
logging:
  level: error
security:
  allowed_origins: ["http://file.example.com"]
model:
  max_gap_pp: 8
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://file.example.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, 8.0, cfg.Model.MaxGapPP)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout, "keys absent from the file keep defaults")
			},
		},
		{
			name:    "invalid yaml",
			file:    "invalid: yaml: content: [unclosed",
			wantErr: true,
		},
		{
			name:    "invalid port number",
			env:     map[string]string{"BENCH_SERVER_PORT": "99999"},
			wantErr: true,
		},
		{
			name:    "unparseable port",
			env:     map[string]string{"BENCH_SERVER_PORT": "http"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			env:     map[string]string{"BENCH_SERVER_READ_TIMEOUT": "-5s"},
			wantErr: true,
		},
		{
			name:    "empty allowed origins",
			env:     map[string]string{"BENCH_SECURITY_ALLOWED_ORIGINS": ""},
			wantErr: true,
		},
		{
			name: "wildcard origin with credentials",
			env: map[string]string{
				"BENCH_SECURITY_ALLOW_CREDENTIALS": "true",
			},
			wantErr: true,
		},
		{
			name:    "origin without scheme",
			env:     map[string]string{"BENCH_SECURITY_ALLOWED_ORIGINS": "example.com"},
			wantErr: true,
		},
		{
			name: "rate limit enabled without rps",
			env: map[string]string{
				"BENCH_SECURITY_RATE_LIMIT_ENABLED": "true",
				"BENCH_SECURITY_RATE_LIMIT_RPS":     "0",
			},
			wantErr: true,
		},
		{
			name: "min gap above max gap",
			env: map[string]string{
				"BENCH_MODEL_MIN_GAP_PP": "7",
				"BENCH_MODEL_MAX_GAP_PP": "6",
			},
			wantErr: true,
		},
		{
			name:    "unknown log output",
			env:     map[string]string{"BENCH_LOGGING_OUTPUT": "syslog"},
			wantErr: true,
		},
		{
			name:    "unknown trace exporter",
			env:     map[string]string{"BENCH_TELEMETRY_TRACE_EXPORTER": "jaeger"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_ConfigFileFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BENCH_CONFIG_FILE", writeConfig(t, "server:\n  port: 6161\n"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6161, cfg.Server.Port)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid configuration",
			mutate: func(*Config) {},
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
			errMsg:  "invalid server port: 0",
		},
		{
			name:    "invalid write timeout",
			mutate:  func(c *Config) { c.Server.WriteTimeout = 0 },
			wantErr: true,
			errMsg:  "server write timeout must be positive",
		},
		{
			name:    "negative tier factor",
			mutate:  func(c *Config) { c.Model.LowFactor = -1 },
			wantErr: true,
			errMsg:  "model tier factors must be positive",
		},
		{
			name:    "high factor below one",
			mutate:  func(c *Config) { c.Model.HighFactor = 0.8 },
			wantErr: true,
			errMsg:  "model tier factors must satisfy low <= 1 <= high",
		},
		{
			name:    "missing default year",
			mutate:  func(c *Config) { c.Model.DefaultYear = "" },
			wantErr: true,
			errMsg:  "model default year must be set",
		},
		{
			name:   "cors disabled ignores origins",
			mutate: func(c *Config) { c.Security.EnableCORS = false; c.Security.AllowedOrigins = nil },
		},
		{
			name: "empty data section gets defaults",
			mutate: func(c *Config) {
				c.Data.Dir = ""
				c.Data.Candidates = nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.errMsg, err.Error())
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, cfg.Data.Dir)
			assert.NotEmpty(t, cfg.Data.Candidates)
		})
	}
}

func TestValidate_FileOutputGetsPath(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "both"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestModelConfig_PotentialModel(t *testing.T) {
	assert.Equal(t, benchmark.DefaultPotentialModel(), Default().Model.PotentialModel())

	m := Default().Model
	m.MaxGapPP = 4
	model := m.PotentialModel()
	assert.Equal(t, 4.0, model.MaxGapPP)
	assert.NoError(t, model.Validate())
}
