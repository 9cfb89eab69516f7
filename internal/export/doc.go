// Package export writes iteration summaries and comparison tables as CSV or
// JSON Lines for downstream analysis.
package export
