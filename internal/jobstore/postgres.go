package jobstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the store. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id         TEXT PRIMARY KEY,
	seq        BIGSERIAL,
	profession TEXT NOT NULL,
	city       TEXT NOT NULL,
	country    TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	last_run   TIMESTAMPTZ,
	note       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS results (
	id          TEXT PRIMARY KEY,
	seq         BIGSERIAL,
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
	rating      DOUBLE PRECISION NOT NULL DEFAULT 0,
	source      TEXT NOT NULL DEFAULT '',
	captured_at TIMESTAMPTZ NOT NULL,
	place_id    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE UNIQUE INDEX IF NOT EXISTS idx_results_place_id ON results(place_id) WHERE place_id <> '';
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ReadJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, profession, city, country, status, last_run, note FROM jobs ORDER BY seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: read jobs")
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var (
			j       model.Job
			status  string
			lastRun *time.Time
		)
		if err := rows.Scan(&j.Row, &j.Profession, &j.City, &j.Country, &status, &lastRun, &j.Note); err != nil {
			return nil, eris.Wrap(err, "postgres: scan job")
		}
		j.Status = model.ParseJobStatus(status)
		j.LastRun = lastRun
		jobs = append(jobs, j)
	}
	return jobs, eris.Wrap(rows.Err(), "postgres: iterate jobs")
}

func (s *PostgresStore) AppendJobs(ctx context.Context, jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin append jobs")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, j := range jobs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO jobs (id, profession, city, country, status, note) VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(), j.Profession, j.City, j.Country, string(j.Status), j.Note,
		); err != nil {
			return eris.Wrap(err, "postgres: insert job")
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit append jobs")
}

func (s *PostgresStore) UpdateJob(ctx context.Context, row string, status model.JobStatus, note string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, note = $2, last_run = $3 WHERE id = $4`,
		string(status), note, time.Now().UTC(), row,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update job %s", row)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: job %s not found", row)
	}
	return nil
}

func (s *PostgresStore) ReadExistingPlaceIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT place_id FROM results WHERE place_id <> ''`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: read existing place ids")
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan place id")
		}
		ids[id] = struct{}{}
	}
	return ids, eris.Wrap(rows.Err(), "postgres: iterate place ids")
}

func (s *PostgresStore) AppendResults(ctx context.Context, results []model.ResultRow) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin append results")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, r := range results {
		if _, err := tx.Exec(ctx,
			`INSERT INTO results
			(id, profession, city, country, name, phone, email, website, facebook, address, maps_url, rating, source, captured_at, place_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			uuid.New().String(), r.Profession, r.City, r.Country,
			r.Lead.Name, r.Lead.Phone, r.Lead.Email, r.Lead.Website, r.Lead.Facebook,
			r.Lead.Address, r.Lead.MapsURL, r.Lead.Rating, r.Source, r.CapturedAt.UTC(), r.Lead.PlaceID,
		); err != nil {
			return eris.Wrap(err, "postgres: insert result")
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit append results")
}

func (s *PostgresStore) ReadResults(ctx context.Context) ([]model.ResultRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT profession, city, country, name, phone, email, website, facebook, address, maps_url, rating, source, captured_at, place_id
		 FROM results ORDER BY seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: read results")
	}
	defer rows.Close()

	var out []model.ResultRow
	for rows.Next() {
		var r model.ResultRow
		if err := rows.Scan(
			&r.Profession, &r.City, &r.Country,
			&r.Lead.Name, &r.Lead.Phone, &r.Lead.Email, &r.Lead.Website, &r.Lead.Facebook,
			&r.Lead.Address, &r.Lead.MapsURL, &r.Lead.Rating, &r.Source, &r.CapturedAt, &r.Lead.PlaceID,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate results")
}
