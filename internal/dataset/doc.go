// Package dataset loads the demographic enrolment file into memory.
//
// # Input
//
// The loader reads CSV files and XLSX workbooks (through excelize). The first
// row is the header; column names are matched case-insensitively and may be
// renamed through Columns. Dates are read day-first:
//
//	01-03-2025   01/03/2025   1-3-2025   01.03.2025   01-03-2025 10:30
//	2025-03-01   (ISO, also accepted)
//
// Rows whose date cannot be parsed are dropped and counted. Blank count cells
// are zero; any other non-numeric count fails the load with the row number.
//
// # Caching
//
// Cache memoizes the parsed dataset for the process lifetime. Concurrent first
// callers share one load, and a failed load is not remembered:
//
//	cache := dataset.NewCache(loader, cfg.GetDatasetPath(), metrics, logger)
//	ds, err := cache.Get(ctx)
package dataset
