// Package benchmark holds the peer-benchmark dataset and the potential estimator.
//
// # Dataset
//
// The dataset is a table of SCB business statistics, one row per
// (year, SNI 3-digit industry, size class) observation. It is read once at
// startup by Load from the first candidate file that exists:
//
//	benchmark_master_clean.parquet
//	benchmark_master_clean.csv
//	benchmark_master.csv
//
// Raw SCB exports carry ContentsCode column headers (for example 0000032G);
// Load renames those to the internal names, fills in size_class and year
// from the legacy Storleksklass and Tid columns when needed, validates the
// schema and normalizes the cell types. The resulting Table is immutable and
// safe for concurrent readers.
//
// # Estimation
//
// A request is validated into a Query by ParseQuery and answered by
// Estimator.Compute:
//
//	q, err := benchmark.ParseQuery(payload, "2024")
//	if err != nil {
//	    return err // *QueryError with KindValidation
//	}
//	res, err := estimator.Compute(q)
//
// Compute filters the table on the exact segment key, takes the per-column
// median of the matching rows and applies the PotentialModel to the
// operating margin. Every request-time failure is a *QueryError; Compute
// never panics on user input.
package benchmark
