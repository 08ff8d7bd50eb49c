// Package exporter writes dashboard aggregates as CSV or XLSX downloads.
//
// Aggregates are first shaped into a Table (DistrictTable, TrendTable,
// ForecastTable), then written with WriteCSV, WriteXLSX or Write, which picks
// the encoder from a Format:
//
//	table := exporter.DistrictTable("Kerala", breakdown)
//	err := exporter.Write(w, exporter.FormatXLSX, table)
//
// CSV output starts with a UTF-8 BOM so spreadsheet tools detect the
// encoding. XLSX output puts each table on its own sheet.
//
// FileWriter stores exports under a base directory for the report CLI.
package exporter
