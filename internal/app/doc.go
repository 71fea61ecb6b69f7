// Package app wires the benchmark API together and owns its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config.yaml, BENCH_* environment)
//	2. Initialize the JSON logger and OpenTelemetry providers
//	3. Load the benchmark dataset; failure aborts startup
//	4. Build the estimator and services
//	5. Set up middleware and routes
//	6. Create the HTTP server
//
// # Usage
//
//	app, err := app.NewApplication(ctx)
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. In-flight
// requests get Server.ShutdownTimeout to complete, then telemetry is flushed.
// The package never calls os.Exit.
package app
