package dataset

import (
	"fmt"
	"strings"

	"enrolpulse/internal/config"
)

// Columns names the header cells the loader looks for
type Columns struct {
	State     string
	District  string
	Date      string
	Age5To17  string
	Age18Plus string
}

// DefaultColumns returns the column names of the published demographic extract
func DefaultColumns() Columns {
	return Columns{
		State:     "state",
		District:  "district",
		Date:      "date",
		Age5To17:  "demo_age_5_17",
		Age18Plus: "demo_age_17_",
	}
}

// ColumnsFromConfig maps the dataset section of the application config
func ColumnsFromConfig(cfg config.DatasetConfig) Columns {
	return Columns{
		State:     cfg.StateColumn,
		District:  cfg.DistrictColumn,
		Date:      cfg.DateColumn,
		Age5To17:  cfg.Age5To17Column,
		Age18Plus: cfg.Age18PlusColumn,
	}
}

// columnIndex holds the position of each required column in a row
type columnIndex struct {
	state, district, date, age5To17, age18Plus int
}

// resolve locates every configured column in the header row
func (c Columns) resolve(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, cell := range header {
		name := normalizeHeader(cell)
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	lookup := func(name string) (int, error) {
		if idx, ok := positions[normalizeHeader(name)]; ok {
			return idx, nil
		}
		return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}

	var (
		idx columnIndex
		err error
	)
	if idx.state, err = lookup(c.State); err != nil {
		return idx, err
	}
	if idx.district, err = lookup(c.District); err != nil {
		return idx, err
	}
	if idx.date, err = lookup(c.Date); err != nil {
		return idx, err
	}
	if idx.age5To17, err = lookup(c.Age5To17); err != nil {
		return idx, err
	}
	if idx.age18Plus, err = lookup(c.Age18Plus); err != nil {
		return idx, err
	}
	return idx, nil
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}
