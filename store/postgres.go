package store

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jpiedm/edm"
)

// PostgresConfig holds connection settings for the fleet-scale sink.
// Selected over SQLiteStore when many tails/files need a shared,
// concurrently-writable store.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// PostgresStore mirrors SQLiteStore's Put/Get surface on top of a
// pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a pool and ensures the flights table exists.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, url.QueryEscape(cfg.Password), cfg.Host, cfg.Port, cfg.Database, sslMode)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.createSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

func (s *PostgresStore) createSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS flights (
			tail_number    TEXT NOT NULL,
			flight_number  INTEGER NOT NULL,
			model          TEXT,
			sample_count   INTEGER NOT NULL,
			decoded_at     TIMESTAMPTZ NOT NULL,
			csv_blob       TEXT NOT NULL,
			PRIMARY KEY (tail_number, flight_number)
		)
	`)
	return err
}

func (s *PostgresStore) Put(ctx context.Context, tailNumber, model string, f *edm.Flight) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO flights (tail_number, flight_number, model, sample_count, decoded_at, csv_blob)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (tail_number, flight_number) DO UPDATE SET
			model = excluded.model,
			sample_count = excluded.sample_count,
			decoded_at = excluded.decoded_at,
			csv_blob = excluded.csv_blob`,
		tailNumber, f.Number, model, len(f.Samples), time.Now().UTC(), f.ToCSV(),
	)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, tailNumber string, flightNumber uint16) (*FlightRecord, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT tail_number, flight_number, model, sample_count, decoded_at, csv_blob
		 FROM flights WHERE tail_number = $1 AND flight_number = $2`,
		tailNumber, flightNumber,
	)
	var rec FlightRecord
	err := row.Scan(&rec.TailNumber, &rec.FlightNumber, &rec.Model, &rec.SampleCount, &rec.DecodedAt, &rec.CSV)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query flight: %w", err)
	}
	return &rec, true, nil
}
