package forecaststore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/packing-advisor/internal/domain/forecast"
	"github.com/yanqian/packing-advisor/internal/domain/rules"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS weather_locations (
	cache_key  TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	country    TEXT NOT NULL DEFAULT '',
	latitude   DOUBLE PRECISION NOT NULL,
	longitude  DOUBLE PRECISION NOT NULL,
	timezone   TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS weather_days (
	cache_key     TEXT NOT NULL REFERENCES weather_locations(cache_key) ON DELETE CASCADE,
	day_index     INTEGER NOT NULL,
	date          TEXT NOT NULL,
	high          DOUBLE PRECISION NOT NULL,
	low           DOUBLE PRECISION NOT NULL,
	weather_code  INTEGER NOT NULL,
	condition     TEXT NOT NULL,
	uv_index      DOUBLE PRECISION,
	precipitation DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (cache_key, day_index)
);`

// PostgresStore keeps forecasts as location and day rows in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the forecast tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create forecast schema: %w", err)
	}
	return nil
}

// Get implements forecast.Cache.
func (s *PostgresStore) Get(ctx context.Context, key string) (forecast.Forecast, bool, error) {
	var f forecast.Forecast
	err := s.pool.QueryRow(ctx, `
		SELECT name, country, latitude, longitude, timezone, source, fetched_at
		FROM weather_locations
		WHERE cache_key = $1 AND (expires_at IS NULL OR expires_at > now())
	`, key).Scan(
		&f.Location.Name, &f.Location.Country, &f.Location.Latitude, &f.Location.Longitude,
		&f.Location.Timezone, &f.Source, &f.FetchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return forecast.Forecast{}, false, nil
		}
		return forecast.Forecast{}, false, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT date, high, low, weather_code, condition, uv_index, precipitation
		FROM weather_days
		WHERE cache_key = $1
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
	f.FetchedAt = f.FetchedAt.UTC()
	return f, true, nil
}

// Save replaces the cached rows for key in one transaction.
func (s *PostgresStore) Save(ctx context.Context, key string, f forecast.Forecast, ttl time.Duration) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var expiresAt *time.Time
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		expiresAt = &exp
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO weather_locations (cache_key, name, country, latitude, longitude, timezone, source, fetched_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (cache_key) DO UPDATE SET
			name = EXCLUDED.name,
			country = EXCLUDED.country,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			timezone = EXCLUDED.timezone,
			source = EXCLUDED.source,
			fetched_at = EXCLUDED.fetched_at,
			expires_at = EXCLUDED.expires_at
	`, key, f.Location.Name, f.Location.Country, f.Location.Latitude, f.Location.Longitude,
		f.Location.Timezone, f.Source, f.FetchedAt, expiresAt); err != nil {
		return fmt.Errorf("upsert weather location: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM weather_days WHERE cache_key = $1`, key); err != nil {
		return fmt.Errorf("clear weather days: %w", err)
	}

	batch := &pgx.Batch{}
	for i, day := range f.Days {
		batch.Queue(`
			INSERT INTO weather_days (cache_key, day_index, date, high, low, weather_code, condition, uv_index, precipitation)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, key, i, day.Date, day.High, day.Low, day.WeatherCode, string(day.Condition), day.UVIndex, day.Precipitation)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert weather days: %w", err)
	}
	return tx.Commit(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDay(row rowScanner) (forecast.Day, error) {
	var (
		day       forecast.Day
		condition string
		uv        *float64
	)
	if err := row.Scan(&day.Date, &day.High, &day.Low, &day.WeatherCode, &condition, &uv, &day.Precipitation); err != nil {
		return forecast.Day{}, err
	}
	if parsed, ok := rules.ParseCondition(condition); ok {
		day.Condition = parsed
	} else {
		day.Condition = rules.Classify(day.WeatherCode, day.Precipitation)
	}
	day.UVIndex = uv
	return day, nil
}

var _ forecast.Cache = (*PostgresStore)(nil)
