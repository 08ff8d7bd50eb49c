package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnknownFormat is returned for export formats other than csv and xlsx
var ErrUnknownFormat = errors.New("unknown export format")

// Format selects the export encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv", "xlsx" or a file name ending in either
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(s); ext != "" {
		s = strings.TrimPrefix(ext, ".")
	}
	switch Format(s) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// Write encodes tables in format. CSV takes exactly one table.
func Write(w io.Writer, format Format, tables ...Table) error {
	switch format {
	case FormatCSV:
		if len(tables) != 1 {
			return fmt.Errorf("csv export takes one table, got %d", len(tables))
		}
		return WriteCSV(w, tables[0])
	case FormatXLSX:
		return WriteXLSX(w, tables...)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteCSV writes the header and rows of t, prefixed with a UTF-8 BOM
func WriteCSV(w io.Writer, t Table) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if len(t.Headers) > 0 {
		if err := writer.Write(t.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	record := make([]string, 0, len(t.Headers))
	for i, row := range t.Rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, formatCell(v))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes each table to its own sheet
func WriteXLSX(w io.Writer, tables ...Table) error {
	if len(tables) == 0 {
		return errors.New("xlsx export needs at least one table")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	for i, t := range tables {
		sheet := t.Name
		if sheet == "" {
			sheet = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, t, headerStyle, dateStyle); err != nil {
			return err
		}
	}

	titles := make([]string, 0, len(tables))
	for _, t := range tables {
		if t.Title != "" {
			titles = append(titles, t.Title)
		}
	}
	if len(titles) > 0 {
		if err := f.SetDocProps(&excelize.DocProperties{
			Title:       titles[0],
			Description: strings.Join(titles, "; "),
			Creator:     "enrolpulse",
		}); err != nil {
			return fmt.Errorf("failed to set workbook properties: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t Table, headerStyle, dateStyle int) error {
	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", sheet, err)
	}

	for r, row := range t.Rows {
		cellRef, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cellRef, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", r+1, sheet, err)
		}
	}

	if t.Title != "" {
		// Printed page header; "&" starts a control code there
		if err := f.SetHeaderFooter(sheet, &excelize.HeaderFooterOptions{
			OddHeader: "&C&B" + strings.ReplaceAll(t.Title, "&", "&&"),
		}); err != nil {
			return fmt.Errorf("failed to set page header of %q: %w", sheet, err)
		}
	}

	if len(t.Headers) == 0 {
		return nil
	}
	lastCol, err := excelize.ColumnNumberToName(len(t.Headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	for c, h := range t.Headers {
		if h != "date" || len(t.Rows) == 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, col+"2", fmt.Sprintf("%s%d", col, len(t.Rows)+1), dateStyle); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", lastCol, 16)
}

// FileWriter stores exports below a base directory
type FileWriter struct {
	baseDir string
	logger  *slog.Logger
}

// NewFileWriter creates a writer rooted at baseDir
func NewFileWriter(baseDir string, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWriter{baseDir: baseDir, logger: logger}
}

// WriteFile encodes tables into name, creating directories as needed,
// and returns the full path written
func (w *FileWriter) WriteFile(name string, format Format, tables ...Table) (string, error) {
	fullPath := w.resolvePath(name)

	w.logger.Info("Writing export file",
		slog.String("file_path", name),
		slog.String("full_path", fullPath),
		slog.String("format", string(format)),
		slog.Int("tables", len(tables)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, format, tables...); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return fullPath, nil
}

// resolvePath keeps absolute paths and places relative ones under baseDir
func (w *FileWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.baseDir, name)
}
