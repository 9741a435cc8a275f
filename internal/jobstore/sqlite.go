package jobstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id         TEXT PRIMARY KEY,
	profession TEXT NOT NULL,
	city       TEXT NOT NULL,
	country    TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	last_run   DATETIME,
	note       TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS results (
	id          TEXT PRIMARY KEY,
	profession  TEXT NOT NULL,
	city        TEXT NOT NULL,
	country     TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	website     TEXT NOT NULL DEFAULT '',
	facebook    TEXT NOT NULL DEFAULT '',
	address     TEXT NOT NULL DEFAULT '',
	maps_url    TEXT NOT NULL DEFAULT '',
	rating      REAL NOT NULL DEFAULT 0,
	source      TEXT NOT NULL DEFAULT '',
	captured_at DATETIME NOT NULL,
	place_id    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_results_place_id ON results(place_id) WHERE place_id <> '';
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ReadJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, profession, city, country, status, last_run, note FROM jobs ORDER BY rowid`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: read jobs")
	}
	defer rows.Close() //nolint:errcheck

	var jobs []model.Job
	for rows.Next() {
		var (
			j       model.Job
			status  string
			lastRun sql.NullTime
		)
		if err := rows.Scan(&j.Row, &j.Profession, &j.City, &j.Country, &status, &lastRun, &j.Note); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan job")
		}
		j.Status = model.ParseJobStatus(status)
		if lastRun.Valid {
			t := lastRun.Time
			j.LastRun = &t
		}
		jobs = append(jobs, j)
	}
	return jobs, eris.Wrap(rows.Err(), "sqlite: iterate jobs")
}

func (s *SQLiteStore) AppendJobs(ctx context.Context, jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin append jobs")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, j := range jobs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO jobs (id, profession, city, country, status, note) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), j.Profession, j.City, j.Country, string(j.Status), j.Note,
		); err != nil {
			return eris.Wrap(err, "sqlite: insert job")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit append jobs")
}

func (s *SQLiteStore) UpdateJob(ctx context.Context, row string, status model.JobStatus, note string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, note = ?, last_run = ? WHERE id = ?`,
		string(status), note, time.Now().UTC(), row,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update job %s", row)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: job %s not found", row)
	}
	return nil
}

func (s *SQLiteStore) ReadExistingPlaceIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT place_id FROM results WHERE place_id <> ''`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: read existing place ids")
	}
	defer rows.Close() //nolint:errcheck

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan place id")
		}
		ids[id] = struct{}{}
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: iterate place ids")
}

func (s *SQLiteStore) AppendResults(ctx context.Context, results []model.ResultRow) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin append results")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, r := range results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results
			(id, profession, city, country, name, phone, email, website, facebook, address, maps_url, rating, source, captured_at, place_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), r.Profession, r.City, r.Country,
			r.Lead.Name, r.Lead.Phone, r.Lead.Email, r.Lead.Website, r.Lead.Facebook,
			r.Lead.Address, r.Lead.MapsURL, r.Lead.Rating, r.Source, r.CapturedAt.UTC(), r.Lead.PlaceID,
		); err != nil {
			return eris.Wrap(err, "sqlite: insert result")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit append results")
}

func (s *SQLiteStore) ReadResults(ctx context.Context) ([]model.ResultRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT profession, city, country, name, phone, email, website, facebook, address, maps_url, rating, source, captured_at, place_id
		 FROM results ORDER BY rowid`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: read results")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.ResultRow
	for rows.Next() {
		var r model.ResultRow
		if err := rows.Scan(
			&r.Profession, &r.City, &r.Country,
			&r.Lead.Name, &r.Lead.Phone, &r.Lead.Email, &r.Lead.Website, &r.Lead.Facebook,
			&r.Lead.Address, &r.Lead.MapsURL, &r.Lead.Rating, &r.Source, &r.CapturedAt, &r.Lead.PlaceID,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate results")
}
