// Package config loads the service configuration.
//
// # Configuration Sources
//
// Values are resolved in this order, later sources winning:
//
//	1. Default()
//	2. A YAML file: BENCH_CONFIG_FILE, else config.yaml or configs/config.yaml
//	3. Environment variables with the BENCH_ prefix
//
// # Environment Variables
//
// Nested sections map to underscore separated names:
//
//	BENCH_SERVER_PORT=8080
//	BENCH_SECURITY_ALLOWED_ORIGINS=https://app.example.se,https://www.example.se
//	BENCH_LOGGING_LEVEL=debug
//	BENCH_DATA_DIR=/srv/benchmark
//	BENCH_MODEL_DEFAULT_YEAR=2024
//	BENCH_TELEMETRY_TRACE_EXPORTER=stdout
//
// Load validates the merged result and fails fast on invalid ports,
// timeouts, origins or potential model bounds.
package config
