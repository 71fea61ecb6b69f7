// Command benchlookup runs a single benchmark lookup against a dataset on
// disk, using the same loader and estimator as the API.
//
//	benchlookup -dir ./data -sni 432 -size 5-9 -revenue 5000000
//	benchlookup -dir ./data -segments -year 2024
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"benchmarkapi/internal/benchmark"
	"benchmarkapi/internal/config"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run returns 0 on a successful lookup, 1 when the lookup itself failed and
// 2 on usage or dataset errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Default()
	}

	fs := flag.NewFlagSet("benchlookup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", cfg.Data.Dir, "directory containing the benchmark dataset")
	year := fs.String("year", "", "dataset year (defaults to "+cfg.Model.DefaultYear+" for lookups)")
	sni := fs.String("sni", "", "three digit SNI code")
	size := fs.String("size", "", "size class, e.g. 0, 1-4, 5-9")
	revenue := fs.String("revenue", "", "annual revenue in kronor")
	segments := fs.Bool("segments", false, "list available segments instead of computing")
	verbose := fs.Bool("v", false, "log loader progress to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))
	if cfgErr != nil {
		logger.WarnContext(ctx, "Failed to load config, using defaults", slog.String("error", cfgErr.Error()))
	}

	table, err := benchmark.Load(ctx, benchmark.LoaderOptions{
		Dir:        *dir,
		Candidates: cfg.Data.Candidates,
		Logger:     logger,
	})
	if err != nil {
		writeJSON(stdout, map[string]string{"error": err.Error()})
		return 2
	}

	if *segments {
		keys := table.Segments(*year)
		writeJSON(stdout, map[string]any{
			"year":     *year,
			"count":    len(keys),
			"segments": keys,
		})
		return 0
	}

	model := cfg.Model.PotentialModel()
	if err := model.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid potential model: %v\n", err)
		return 2
	}

	q, err := benchmark.NewQuery(*year, *sni, *size, benchmark.ParseOptionalNumber(*revenue), cfg.Model.DefaultYear)
	if err == nil {
		var res *benchmark.Result
		res, err = benchmark.NewEstimator(table, model).Compute(q)
		if err == nil {
			writeJSON(stdout, res)
			return 0
		}
	}

	writeJSON(stdout, map[string]string{"error": err.Error()})
	return 1
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
