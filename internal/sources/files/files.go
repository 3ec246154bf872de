// Package files reads and writes tables as CSV, XLSX, YAML or JSON files.
// The format is chosen by file extension.
package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/cgvn/pkg/constants"
	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/logging"
	"github.com/agentstation/cgvn/pkg/sources"
	"github.com/agentstation/cgvn/pkg/table"
)

// Format is a supported file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor returns the format implied by a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.NewConfigError("files", "unsupported file extension for "+path, nil)
}

// Dataset describes where one table lives on disk and how to read it.
type Dataset struct {
	// Path is resolved against the base directory when relative
	Path string

	// Sheet selects the XLSX worksheet; empty means the first sheet
	Sheet string

	// HeaderRow is the 1-based row holding column names; rows above it
	// are skipped. Zero means 1. Applies to CSV and XLSX.
	HeaderRow int

	// RawValues reads XLSX cells without applying number formats
	RawValues bool
}

// Store is a TableSource and TableSink over a set of configured files.
type Store struct {
	baseDir  string
	datasets map[sources.Name]Dataset
	logger   *zerolog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithBaseDir sets the directory relative paths resolve against.
func WithBaseDir(dir string) Option {
	return func(s *Store) error {
		s.baseDir = dir
		return nil
	}
}

// WithDataset configures the file for a logical table.
func WithDataset(name sources.Name, ds Dataset) Option {
	return func(s *Store) error {
		if ds.Path == "" {
			return errors.NewConfigError("files", "no path configured for "+name.String(), nil)
		}
		if ds.HeaderRow < 0 {
			return errors.NewConfigError("files", "negative header row for "+name.String(), nil)
		}
		if _, err := FormatFor(ds.Path); err != nil {
			return err
		}
		s.datasets[name] = ds
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// New creates a file store.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		datasets: make(map[sources.Name]Dataset),
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Path returns the resolved path of a configured table.
func (s *Store) Path(name sources.Name) (string, bool) {
	ds, ok := s.datasets[name]
	if !ok {
		return "", false
	}
	return s.resolve(ds.Path), true
}

func (s *Store) resolve(path string) string {
	if filepath.IsAbs(path) || s.baseDir == "" {
		return path
	}
	return filepath.Join(s.baseDir, path)
}

func (s *Store) dataset(name sources.Name) (Dataset, string, Format, error) {
	ds, ok := s.datasets[name]
	if !ok {
		return Dataset{}, "", "", errors.NewNotFoundError("file dataset", name.String())
	}
	path := s.resolve(ds.Path)
	format, err := FormatFor(path)
	if err != nil {
		return Dataset{}, "", "", err
	}
	return ds, path, format, nil
}

// Read implements sources.TableSource.
func (s *Store) Read(ctx context.Context, name sources.Name) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, path, format, err := s.dataset(name)
	if err != nil {
		return nil, err
	}

	var t *table.Table
	switch format {
	case FormatCSV:
		t, err = readCSV(path, ds.HeaderRow)
	case FormatXLSX:
		t, err = readXLSX(path, ds.Sheet, ds.HeaderRow, ds.RawValues)
	case FormatYAML:
		t, err = readYAML(path)
	case FormatJSON:
		t, err = readJSON(path)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("table", name.String()).
		Str("path", path).
		Str("format", string(format)).
		Int("rows", t.Len()).
		Int("columns", t.Width()).
		Msg("Read table")
	return t, nil
}

// Write implements sources.TableSink. Parent directories are created.
func (s *Store) Write(ctx context.Context, t *table.Table, name sources.Name) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ds, path, format, err := s.dataset(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}

	switch format {
	case FormatCSV:
		err = writeCSV(path, t)
	case FormatXLSX:
		err = writeXLSX(path, ds.Sheet, t)
	case FormatYAML:
		err = writeYAML(path, t)
	case FormatJSON:
		err = writeJSON(path, t)
	}
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("table", name.String()).
		Str("path", path).
		Int("rows", t.Len()).
		Msg("Wrote table")
	return nil
}

// headerAndRecords splits raw rows at the 1-based header row, drops blank
// rows and trims trailing empty cells past the header width.
func headerAndRecords(rows [][]string, headerRow int, format, path string) ([]string, [][]string, error) {
	if headerRow == 0 {
		headerRow = 1
	}
	if len(rows) < headerRow {
		return nil, nil, errors.NewParseError(format, path, "file has fewer rows than the configured header row", nil)
	}
	header := rows[headerRow-1]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}
	for j, h := range header {
		if strings.TrimSpace(h) == "" {
			header[j] = fmt.Sprintf("unnamed_%d", j+1)
		}
	}

	var records [][]string
	for i, rec := range rows[headerRow:] {
		if blank(rec) {
			continue
		}
		for len(rec) > len(header) {
			if strings.TrimSpace(rec[len(rec)-1]) != "" {
				return nil, nil, errors.NewParseError(format, path,
					fmt.Sprintf("row %d has values beyond the last header column", headerRow+i+1), nil)
			}
			rec = rec[:len(rec)-1]
		}
		records = append(records, rec)
	}
	return header, records, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
