package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-quake-map/internal/models"
)

type SQLiteDB struct {
	db  *sql.DB
	now func() time.Time
}

var _ QuakeRepository = (*SQLiteDB)(nil)

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// :memory: databases are per-connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db:  db,
		now: time.Now,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS earthquakes (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			magnitude REAL NOT NULL,
			depth REAL NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			country TEXT,
			age TEXT NOT NULL,
			timestamp DATETIME,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_earthquakes_timestamp ON earthquakes(timestamp);
		CREATE INDEX IF NOT EXISTS idx_earthquakes_magnitude ON earthquakes(magnitude);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Add(ctx context.Context, q *models.Earthquake) error {
	var ts any
	if !q.Timestamp.IsZero() {
		ts = q.Timestamp.UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO earthquakes (id, title, magnitude, depth, latitude, longitude, country, age, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Title, q.Magnitude, q.Depth, q.Location.Latitude, q.Location.Longitude,
		q.Country, q.Age.String(), ts, s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error inserting earthquake %s: %w", q.ID, err)
	}
	return nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.Earthquake, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, magnitude, depth, latitude, longitude, country, age, timestamp
		FROM earthquakes WHERE id = ?`, id)

	q, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting earthquake %s: %w", id, err)
	}
	return q, nil
}

func (s *SQLiteDB) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM earthquakes WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking earthquake %s: %w", id, err)
	}
	return n > 0, nil
}

func (s *SQLiteDB) ListQuakes(ctx context.Context, opts Filter) ([]*models.Earthquake, error) {
	var (
		where []string
		args  []any
	)
	if opts.Since != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, opts.Since.UTC())
	}
	if opts.MinMagnitude != nil {
		where = append(where, "magnitude >= ?")
		args = append(args, *opts.MinMagnitude)
	}

	query := `SELECT id, title, magnitude, depth, latitude, longitude, country, age, timestamp FROM earthquakes`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY magnitude DESC, timestamp DESC"
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing earthquakes: %w", err)
	}
	defer rows.Close()

	var quakes []*models.Earthquake
	for rows.Next() {
		q, err := s.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning earthquake: %w", err)
		}
		quakes = append(quakes, q)
	}
	return quakes, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scan re-derives the age bucket from the stored timestamp when one is known.
func (s *SQLiteDB) scan(sc scanner) (*models.Earthquake, error) {
	var (
		q       models.Earthquake
		country sql.NullString
		age     string
		ts      sql.NullTime
	)
	err := sc.Scan(&q.ID, &q.Title, &q.Magnitude, &q.Depth, &q.Location.Latitude, &q.Location.Longitude, &country, &age, &ts)
	if err != nil {
		return nil, err
	}

	q.Country = country.String
	if ts.Valid {
		q.Timestamp = ts.Time
		q.Age = models.AgeAt(ts.Time, s.now())
	} else if q.Age, err = models.ParseAge(age); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
