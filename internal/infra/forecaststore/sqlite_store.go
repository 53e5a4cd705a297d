package forecaststore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yanqian/packing-advisor/internal/domain/forecast"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS weather_locations (
	cache_key  TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	country    TEXT NOT NULL DEFAULT '',
	latitude   REAL NOT NULL,
	longitude  REAL NOT NULL,
	timezone   TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL,
	fetched_at TEXT NOT NULL,
	expires_at INTEGER
);
CREATE TABLE IF NOT EXISTS weather_days (
	cache_key     TEXT NOT NULL,
	day_index     INTEGER NOT NULL,
	date          TEXT NOT NULL,
	high          REAL NOT NULL,
	low           REAL NOT NULL,
	weather_code  INTEGER NOT NULL,
	condition     TEXT NOT NULL,
	uv_index      REAL,
	precipitation REAL NOT NULL,
	PRIMARY KEY (cache_key, day_index)
);`

// SQLiteStore keeps forecasts in an embedded SQLite database (pure Go driver modernc.org/sqlite).
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create forecast schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Get implements forecast.Cache.
func (s *SQLiteStore) Get(ctx context.Context, key string) (forecast.Forecast, bool, error) {
	var (
		f         forecast.Forecast
		fetchedAt string
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT name, country, latitude, longitude, timezone, source, fetched_at, expires_at
		FROM weather_locations
		WHERE cache_key = ?
	`, key).Scan(
		&f.Location.Name, &f.Location.Country, &f.Location.Latitude, &f.Location.Longitude,
		&f.Location.Timezone, &f.Source, &fetchedAt, &expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return forecast.Forecast{}, false, nil
		}
		return forecast.Forecast{}, false, err
	}
	if expiresAt.Valid && expiresAt.Int64 <= s.now().UnixNano() {
		return forecast.Forecast{}, false, nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
		f.FetchedAt = ts.UTC()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, high, low, weather_code, condition, uv_index, precipitation
		FROM weather_days
		WHERE cache_key = ?
		ORDER BY day_index
	`, key)
	if err != nil {
		return forecast.Forecast{}, false, err
	}
	defer rows.Close()
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return forecast.Forecast{}, false, err
		}
		f.Days = append(f.Days, day)
	}
	if err := rows.Err(); err != nil {
		return forecast.Forecast{}, false, err
	}
	if len(f.Days) == 0 {
		return forecast.Forecast{}, false, nil
	}
	return f, true, nil
}

// Save replaces the cached rows for key in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, key string, f forecast.Forecast, ttl time.Duration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: s.now().Add(ttl).UnixNano(), Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO weather_locations (cache_key, name, country, latitude, longitude, timezone, source, fetched_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, key, f.Location.Name, f.Location.Country, f.Location.Latitude, f.Location.Longitude,
		f.Location.Timezone, f.Source, f.FetchedAt.UTC().Format(time.RFC3339Nano), expiresAt); err != nil {
		return fmt.Errorf("upsert weather location: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM weather_days WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("clear weather days: %w", err)
	}
	for i, day := range f.Days {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO weather_days (cache_key, day_index, date, high, low, weather_code, condition, uv_index, precipitation)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, key, i, day.Date, day.High, day.Low, day.WeatherCode, string(day.Condition), day.UVIndex, day.Precipitation); err != nil {
			return fmt.Errorf("insert weather day %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ forecast.Cache = (*SQLiteStore)(nil)
