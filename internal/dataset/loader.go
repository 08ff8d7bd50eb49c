package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"enrolpulse/internal/config"
	"enrolpulse/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Sentinel errors returned by the loader
var (
	ErrNoRecords         = errors.New("dataset contains no records with a parseable date")
	ErrMissingColumn     = errors.New("required column missing")
	ErrInvalidCount      = errors.New("invalid count value")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// ctxCheckInterval is how many rows are read between context checks
const ctxCheckInterval = 10000

// Dataset is the parsed, immutable enrolment data
type Dataset struct {
	Records []domain.EnrolmentRecord
	Info    domain.DatasetInfo
}

// Options configures a Loader
type Options struct {
	Columns Columns
	// Sheet is the XLSX sheet to read; the first sheet when empty
	Sheet string
}

// OptionsFromConfig maps the dataset section of the application config
func OptionsFromConfig(cfg config.DatasetConfig) Options {
	return Options{
		Columns: ColumnsFromConfig(cfg),
		Sheet:   cfg.Sheet,
	}
}

// Loader parses enrolment files
type Loader struct {
	opts   Options
	logger *slog.Logger
}

// NewLoader creates a loader. Zero-valued column names fall back to the defaults.
func NewLoader(opts Options, logger *slog.Logger) *Loader {
	defaults := DefaultColumns()
	if opts.Columns.State == "" {
		opts.Columns.State = defaults.State
	}
	if opts.Columns.District == "" {
		opts.Columns.District = defaults.District
	}
	if opts.Columns.Date == "" {
		opts.Columns.Date = defaults.Date
	}
	if opts.Columns.Age5To17 == "" {
		opts.Columns.Age5To17 = defaults.Age5To17
	}
	if opts.Columns.Age18Plus == "" {
		opts.Columns.Age18Plus = defaults.Age18Plus
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		opts:   opts,
		logger: logger.With(slog.String("component", "dataset_loader")),
	}
}

// LoadFile loads a CSV or XLSX file, chosen by extension
func (l *Loader) LoadFile(ctx context.Context, path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return l.LoadCSV(ctx, f, path)
	case ".xlsx", ".xlsm":
		return l.LoadXLSX(ctx, f, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadCSV parses CSV content; source labels the dataset in logs and DatasetInfo
func (l *Loader) LoadCSV(ctx context.Context, r io.Reader, source string) (*Dataset, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(bom, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("failed to skip byte order mark: %w", err)
		}
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	return l.parse(ctx, source, func() ([]string, error) {
		return reader.Read()
	}, false)
}

// LoadXLSX parses a workbook from the configured sheet (or the first one)
func (l *Loader) LoadXLSX(ctx context.Context, r io.Reader, source string) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrNoRecords)
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	l.logger.DebugContext(ctx, "reading workbook sheet", slog.String("sheet", sheet))

	return l.parse(ctx, source, func() ([]string, error) {
		if !rows.Next() {
			if err := rows.Error(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		return rows.Columns(excelize.Options{RawCellValue: true})
	}, true)
}

// parse consumes rows from next until io.EOF. Raw workbook cells may carry
// dates as Excel serials, which serialDates enables.
func (l *Loader) parse(ctx context.Context, source string, next func() ([]string, error), serialDates bool) (*Dataset, error) {
	start := time.Now()

	header, err := next()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: file is empty", ErrNoRecords)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx, err := l.opts.Columns.resolve(header)
	if err != nil {
		return nil, err
	}

	var (
		records []domain.EnrolmentRecord
		dropped int
		rowNum  = 1
	)

	for {
		row, err := next()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if rowNum%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if isBlankRow(row) {
			continue
		}

		dateCell := cell(row, idx.date)
		date, ok := ParseDate(dateCell)
		if !ok && serialDates {
			date, ok = parseSerialDate(dateCell)
		}
		if !ok {
			dropped++
			l.logger.DebugContext(ctx, "dropping row with unparseable date",
				slog.Int("row", rowNum),
				slog.String("date", dateCell),
			)
			continue
		}

		age5To17, err := parseCount(cell(row, idx.age5To17))
		if err != nil {
			return nil, fmt.Errorf("row %d column %q: %w", rowNum, l.opts.Columns.Age5To17, err)
		}
		age18Plus, err := parseCount(cell(row, idx.age18Plus))
		if err != nil {
			return nil, fmt.Errorf("row %d column %q: %w", rowNum, l.opts.Columns.Age18Plus, err)
		}

		records = append(records, domain.EnrolmentRecord{
			State:     strings.TrimSpace(cell(row, idx.state)),
			District:  strings.TrimSpace(cell(row, idx.district)),
			Date:      date,
			Age5To17:  age5To17,
			Age18Plus: age18Plus,
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w (%d rows dropped)", ErrNoRecords, dropped)
	}

	ds := &Dataset{
		Records: records,
		Info:    describe(source, records, dropped),
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", source),
		slog.Int("records", len(records)),
		slog.Int("dropped", dropped),
		slog.Int("states", ds.Info.States),
		slog.Duration("duration", time.Since(start)),
	)

	return ds, nil
}

// parseCount reads a count cell. Blank cells are zero and whole floats
// such as "12.0" are accepted.
func parseCount(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, value)
	}
	return int64(f), nil
}

func describe(source string, records []domain.EnrolmentRecord, dropped int) domain.DatasetInfo {
	info := domain.DatasetInfo{
		Source:   source,
		Records:  len(records),
		Dropped:  dropped,
		LoadedAt: time.Now().UTC(),
	}

	states := make(map[string]struct{})
	for i, r := range records {
		states[r.State] = struct{}{}
		if i == 0 || r.Date.Before(info.FirstDate) {
			info.FirstDate = r.Date
		}
		if r.Date.After(info.LastDate) {
			info.LastDate = r.Date
		}
	}
	info.States = len(states)
	return info
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
