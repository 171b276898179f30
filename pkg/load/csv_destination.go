// Package load implements the load stage: the table is serialized to
// a CSV file at the configured path.
//
// The destination creates the parent directory recursively if absent
// and overwrites any existing file at the path; there is no append
// mode. Output is UTF-8, comma-delimited, with a header row and
// standard CSV quoting. Optionally the file is wrapped in gzip or
// zstd compression.
package load

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/dataglide/dataglide/pkg/config"
	"github.com/dataglide/dataglide/pkg/errors"
	"github.com/dataglide/dataglide/pkg/models"
)

// CSVDestination writes tables to CSV files.
type CSVDestination struct {
	config *config.PipelineConfig
	logger *zap.Logger
}

// NewCSVDestination creates a CSV destination.
func NewCSVDestination(cfg *config.PipelineConfig, logger *zap.Logger) *CSVDestination {
	return &CSVDestination{
		config: cfg,
		logger: logger.With(zap.String("component", "csv_destination")),
	}
}

// Load writes the table to path. The loader only runs after a fully
// built table, so a failed run never leaves partial output behind an
// earlier stage's error.
func (d *CSVDestination) Load(table *models.Table, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to create output directory").
			WithDetail("dir", dir)
	}

	file, err := os.Create(path) //nolint:gosec // G304: path comes from validated config
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to create output file").
			WithDetail("path", path)
	}

	out, closer, err := d.wrapCompression(file)
	if err != nil {
		file.Close() //nolint:errcheck
		return err
	}

	writer := csv.NewWriter(out)

	if err := writer.Write(table.Columns()); err != nil {
		closer() //nolint:errcheck
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to write header")
	}

	for _, row := range table.Rows() {
		if err := writer.Write(row); err != nil {
			closer() //nolint:errcheck
			return errors.Wrap(err, errors.ErrorTypeIO, "failed to write row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		closer() //nolint:errcheck
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to flush output")
	}

	if err := closer(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to close output file").
			WithDetail("path", path)
	}

	d.logger.Info("table written",
		zap.String("path", path),
		zap.Int("rows", table.RowCount()),
		zap.String("compression", d.compression()))

	return nil
}

// wrapCompression wraps the file writer per the configured algorithm.
// The returned closer flushes the compressor (if any) and closes the file.
func (d *CSVDestination) wrapCompression(file *os.File) (io.Writer, func() error, error) {
	switch d.compression() {
	case config.CompressionGzip:
		gz := gzip.NewWriter(file)
		return gz, func() error {
			if err := gz.Close(); err != nil {
				file.Close() //nolint:errcheck
				return err
			}
			return file.Close()
		}, nil
	case config.CompressionZstd:
		zw, err := zstd.NewWriter(file)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to create zstd writer")
		}
		return zw, func() error {
			if err := zw.Close(); err != nil {
				file.Close() //nolint:errcheck
				return err
			}
			return file.Close()
		}, nil
	default:
		return file, file.Close, nil
	}
}

func (d *CSVDestination) compression() string {
	if d.config.Compression == "" {
		return config.CompressionNone
	}
	return d.config.Compression
}
