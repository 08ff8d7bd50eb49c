package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors
var (
	ErrNotExist        = errors.New("path does not exist")
	ErrNotFile         = errors.New("path is a directory, not a file")
	ErrNotReadable     = errors.New("file is not readable")
	ErrUnsupportedType = errors.New("unsupported dataset file type")
	ErrTemporaryFile   = errors.New("temporary spreadsheet lock file")
	ErrNotWritable     = errors.New("directory is not writable")
	ErrEmptyFile       = errors.New("file is empty")
)

// excelLockFilePrefix marks the lock files spreadsheet editors leave next to open workbooks
const excelLockFilePrefix = "~$"

var datasetExtensions = []string{".csv", ".txt", ".xlsx", ".xlsm"}

// FileValidator checks dataset inputs and export destinations before use
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateFile checks that path exists, is a regular file and can be opened
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrNotExist, path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%w: %s", ErrNotFile, path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %v", ErrNotReadable, path, err)
	}
	file.Close()

	if info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateDatasetFile checks that path is a readable CSV or XLSX enrolment
// file the loader can open
func (v *FileValidator) ValidateDatasetFile(path string) error {
	base := filepath.Base(path)
	if strings.HasPrefix(base, excelLockFilePrefix) {
		v.logger.Warn("Refusing spreadsheet lock file",
			slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrTemporaryFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	supported := false
	for _, e := range datasetExtensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		v.logger.Error("Dataset file type not supported",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnsupportedType, ext, strings.Join(datasetExtensions, ", "))
	}

	return v.ValidateFile(path)
}

// ValidateOutputDirectory ensures dir exists or can be created and accepts
// new files
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, dir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
