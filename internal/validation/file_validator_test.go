package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrolpulse/internal/shared/testutil"
)

func TestFileValidator_ValidateDatasetFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		target    error
	}{
		{
			name: "csv dataset",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, t.TempDir(), "enrolment.csv", testutil.SampleCSV)
			},
		},
		{
			name: "upper case xlsx extension",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, t.TempDir(), "ENROLMENT.XLSX", "not really a workbook")
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			target: ErrNotExist,
		},
		{
			name: "directory named like a dataset",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "data.csv")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			target: ErrNotFile,
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, t.TempDir(), "empty.csv", "")
			},
			target: ErrEmptyFile,
		},
		{
			name: "pdf",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, t.TempDir(), "report.pdf", "%PDF")
			},
			target: ErrUnsupportedType,
		},
		{
			name: "spreadsheet lock file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, t.TempDir(), "~$enrolment.xlsx", "lock")
			},
			target: ErrTemporaryFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			err := v.ValidateDatasetFile(tt.setupFunc(t))
			if tt.target == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	dir := filepath.Join(t.TempDir(), "exports", "2025")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file is removed")

	file := testutil.WriteFile(t, t.TempDir(), "taken", "x")
	assert.Error(t, v.ValidateOutputDirectory(file))
}

func TestNewFileValidatorNilLogger(t *testing.T) {
	v := NewFileValidator(nil)
	require.NotNil(t, v)
	assert.NotNil(t, v.logger)
}
