package table

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/lead-sites-etl/internal/domain"
)

// CSVWriter writes the geolocated records to a CSV file.
// It implements pipeline.Exporter.
type CSVWriter struct {
	path   string
	logger *slog.Logger
}

// NewCSVWriter creates a writer targeting path.
func NewCSVWriter(path string, logger *slog.Logger) *CSVWriter {
	return &CSVWriter{path: path, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *CSVWriter) Name() string { return "csv" }

// Export writes one row per record, prefixed with a sequential index column.
// The file is written to a temporary sibling and renamed into place, so a
// failed run never leaves a partial table behind.
func (w *CSVWriter) Export(_ context.Context, ds domain.Dataset) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if err := writeRecords(tmp, ds.Records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}

	w.logger.Info("wrote cleaned table", "path", w.path, "rows", len(ds.Records))
	return nil
}

func writeRecords(f *os.File, records []domain.GeolocatedRecord) error {
	cw := csv.NewWriter(f)

	header := append([]string{""}, domain.RecordColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		row := append([]string{strconv.Itoa(i)}, records[i].Row()...)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
