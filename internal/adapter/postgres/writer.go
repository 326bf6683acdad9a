// Package postgres upserts the cleaned dataset into a PostgreSQL table.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/couchcryptid/lead-sites-etl/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb/encoding/wkt"
)

const batchSize = 1000

// db is the subset of *pgxpool.Pool the writer uses.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Close()
}

// Writer upserts records keyed by (site_id, activity_start_date).
// It implements pipeline.Exporter.
type Writer struct {
	db     db
	table  string
	logger *slog.Logger
}

// NewWriter connects to databaseURL. The pool is not used until Export.
func NewWriter(ctx context.Context, databaseURL, table string, logger *slog.Logger) (*Writer, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Writer{db: pool, table: pgx.Identifier{table}.Sanitize(), logger: logger}, nil
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "postgres" }

// Close releases the pool resources.
func (w *Writer) Close() {
	if w.db != nil {
		w.db.Close()
	}
}

// EnsureSchema creates the target table when it does not exist.
func (w *Writer) EnsureSchema(ctx context.Context) error {
	if _, err := w.db.Exec(ctx, createTableSQL(w.table)); err != nil {
		return fmt.Errorf("create table %s: %w", w.table, err)
	}
	return nil
}

// Export creates the table if needed and upserts every record in batches.
func (w *Writer) Export(ctx context.Context, ds domain.Dataset) error {
	if err := w.EnsureSchema(ctx); err != nil {
		return err
	}

	for start := 0; start < len(ds.Records); start += batchSize {
		end := min(start+batchSize, len(ds.Records))
		if err := w.sendBatch(ctx, buildBatch(w.table, ds.RunID, ds.Records[start:end])); err != nil {
			return fmt.Errorf("upsert rows %d-%d: %w", start, end-1, err)
		}
	}

	w.logger.Info("upserted records", "table", w.table, "records", len(ds.Records), "run_id", ds.RunID)
	return nil
}

func (w *Writer) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	res := w.db.SendBatch(ctx, batch)
	defer res.Close()

	for range batch.Len() {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func createTableSQL(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
    site_id             TEXT NOT NULL,
    activity_start_date TEXT NOT NULL,
    run_id              TEXT NOT NULL,
    organization_id     TEXT,
    characteristic_name TEXT,
    result_value        TEXT,
    unit_code           TEXT,
    lead_value          DOUBLE PRECISION NOT NULL,
    lead_value_ug_l     DOUBLE PRECISION NOT NULL,
    site_name           TEXT,
    site_type           TEXT,
    latitude            DOUBLE PRECISION,
    longitude           DOUBLE PRECISION,
    state_code          TEXT,
    county_code         TEXT,
    month               SMALLINT NOT NULL,
    geometry_wkt        TEXT NOT NULL,
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (site_id, activity_start_date)
)`
}

func upsertSQL(table string) string {
	return `INSERT INTO ` + table + ` (site_id, activity_start_date, run_id, organization_id, characteristic_name, result_value, unit_code, lead_value, lead_value_ug_l, site_name, site_type, latitude, longitude, state_code, county_code, month, geometry_wkt, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NOW())
ON CONFLICT (site_id, activity_start_date) DO UPDATE
SET run_id = EXCLUDED.run_id,
    organization_id = EXCLUDED.organization_id,
    characteristic_name = EXCLUDED.characteristic_name,
    result_value = EXCLUDED.result_value,
    unit_code = EXCLUDED.unit_code,
    lead_value = EXCLUDED.lead_value,
    lead_value_ug_l = EXCLUDED.lead_value_ug_l,
    site_name = EXCLUDED.site_name,
    site_type = EXCLUDED.site_type,
    latitude = EXCLUDED.latitude,
    longitude = EXCLUDED.longitude,
    state_code = EXCLUDED.state_code,
    county_code = EXCLUDED.county_code,
    month = EXCLUDED.month,
    geometry_wkt = EXCLUDED.geometry_wkt,
    updated_at = NOW()`
}

func buildBatch(table, runID string, records []domain.GeolocatedRecord) *pgx.Batch {
	batch := &pgx.Batch{}
	query := upsertSQL(table)
	for i := range records {
		r := &records[i]
		batch.Queue(query,
			r.SiteID,
			r.ActivityStartDate,
			runID,
			r.OrganizationIdentifier,
			r.CharacteristicName,
			r.ResultMeasureValue,
			r.UnitCode,
			r.LeadValue,
			r.LeadValueUGL,
			r.Site.Name,
			r.Site.TypeName,
			nullableFloat(r.Site.Latitude),
			nullableFloat(r.Site.Longitude),
			r.Site.StateCode,
			r.Site.CountyCode,
			r.Month,
			wkt.MarshalString(r.Point),
		)
	}
	return batch
}

func nullableFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
