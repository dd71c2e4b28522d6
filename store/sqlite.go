package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"jpiedm/edm"
)

// SQLiteStore persists decoded flights (header metadata plus a CSV
// blob) keyed by tail number and flight number, so a host can avoid
// re-decoding a file it has already seen across process restarts.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) the on-disk flight store at
// path and ensures its schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS flights (
			tail_number    TEXT NOT NULL,
			flight_number  INTEGER NOT NULL,
			model          TEXT,
			sample_count   INTEGER NOT NULL,
			decoded_at     DATETIME NOT NULL,
			csv_blob       TEXT NOT NULL,
			PRIMARY KEY (tail_number, flight_number)
		)
	`)
	return err
}

// Put stores a decoded flight's CSV rendering, overwriting any prior
// decode of the same tail/flight-number pair.
func (s *SQLiteStore) Put(tailNumber, model string, f *edm.Flight) error {
	_, err := s.db.Exec(
		`INSERT INTO flights (tail_number, flight_number, model, sample_count, decoded_at, csv_blob)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tail_number, flight_number) DO UPDATE SET
			model = excluded.model,
			sample_count = excluded.sample_count,
			decoded_at = excluded.decoded_at,
			csv_blob = excluded.csv_blob`,
		tailNumber, f.Number, model, len(f.Samples), time.Now().UTC(), f.ToCSV(),
	)
	return err
}

// FlightRecord is a previously persisted flight's CSV rendering plus
// its indexing metadata.
type FlightRecord struct {
	TailNumber   string
	FlightNumber uint16
	Model        string
	SampleCount  int
	DecodedAt    time.Time
	CSV          string
}

// Get returns the persisted decode of a tail/flight-number pair, if
// any.
func (s *SQLiteStore) Get(tailNumber string, flightNumber uint16) (*FlightRecord, bool, error) {
	row := s.db.QueryRow(
		`SELECT tail_number, flight_number, model, sample_count, decoded_at, csv_blob
		 FROM flights WHERE tail_number = ? AND flight_number = ?`,
		tailNumber, flightNumber,
	)
	var rec FlightRecord
	err := row.Scan(&rec.TailNumber, &rec.FlightNumber, &rec.Model, &rec.SampleCount, &rec.DecodedAt, &rec.CSV)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query flight: %w", err)
	}
	return &rec, true, nil
}
