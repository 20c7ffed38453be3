// Package pagination stitches size-capped ticker pages into one mapping.
//
// The ticker endpoint serves at most 100 records per call and ranks them
// from 1. The collector fetches the first page with default parameters,
// reads the total count from its metadata and then requests start
// positions 101, 201, 301, ... one page at a time until the total is
// reached:
//
//	collector := pagination.NewCollector(fetch, merge, pagination.DefaultConfig())
//	result := collector.Collect(ctx)
//	if result.Err != nil {
//		// page budget exhausted
//	}
//
// The collector:
//   - Fetches strictly sequentially, never two pages at once
//   - Returns the first failing page unchanged and drops what was merged
//   - Keeps the first record seen for a repeated key
//   - Stops after Config.MaxPages pages with ErrPageBudgetExhausted
package pagination
