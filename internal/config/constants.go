package config

// Application info
const (
	AppName   = "benchmark-api"
	AppVendor = "Hallersolutions"
)

// Build information, overridden at link time:
//
//	go build -ldflags "-X benchmarkapi/internal/config.Version=1.2.0 -X benchmarkapi/internal/config.Commit=$(git rev-parse --short HEAD)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = ""
)
