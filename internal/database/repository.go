package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-linkedin-harvester/internal/models"
	"go-linkedin-harvester/internal/scraper"
)

// ErrJobNotFound is returned by GetJob when no archived job has the id.
var ErrJobNotFound = errors.New("job not found")

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	source            TEXT NOT NULL,
	external_id       TEXT NOT NULL,
	session_id        TEXT NOT NULL,
	title             TEXT NOT NULL DEFAULT '',
	company           TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	url               TEXT NOT NULL,
	tech_stack        TEXT[] NOT NULL DEFAULT '{}',
	seniority         TEXT NOT NULL DEFAULT '',
	is_entry_level    BOOLEAN NOT NULL DEFAULT FALSE,
	is_likely_startup BOOLEAN NOT NULL DEFAULT FALSE,
	description_raw   TEXT NOT NULL DEFAULT '',
	listed_at         TIMESTAMPTZ,
	scraped_at        TIMESTAMPTZ NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (source, external_id)
);

CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	trigger     TEXT NOT NULL,
	keywords    TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	job_count   INTEGER NOT NULL DEFAULT 0,
	file_path   TEXT NOT NULL DEFAULT '',
	error       TEXT,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);`

const upsertJobSQL = `
	INSERT INTO jobs (source, external_id, session_id, title, company, location, url, tech_stack,
		seniority, is_entry_level, is_likely_startup, description_raw, listed_at, scraped_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (source, external_id)
	DO UPDATE SET title = EXCLUDED.title, company = EXCLUDED.company, location = EXCLUDED.location,
		tech_stack = EXCLUDED.tech_stack, description_raw = EXCLUDED.description_raw, scraped_at = EXCLUDED.scraped_at`

type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// Poolers in transaction mode (PgBouncer, Supabase) do not support the statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Ping to ensure connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// EnsureSchema creates the archive tables when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ---------------- JOB OPERATIONS ----------------

func jobArgs(job *models.Job) []any {
	return []any{
		job.Source, job.ExternalID, job.SessionID, job.Title, job.Company, job.Location, job.URL, job.TechStack,
		job.Seniority, job.IsEntryLevel, job.IsLikelyStartup, job.DescriptionRaw, job.ListedAt, job.ScrapedAt,
	}
}

// Archive upserts a session's jobs in one batch.
func (r *Repository) Archive(ctx context.Context, sessionID string, jobs []scraper.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, j := range jobs {
		row := models.JobFromScraper(sessionID, j)
		batch.Queue(upsertJobSQL, jobArgs(&row)...)
	}

	br := r.db.SendBatch(ctx, batch)
	for range jobs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to archive jobs: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to archive jobs: %w", err)
	}
	return nil
}

// GetJob retrieves an archived job by its LinkedIn id
func (r *Repository) GetJob(ctx context.Context, externalID string) (*models.Job, error) {
	var job models.Job
	query := `SELECT id, source, external_id, session_id, title, company, location, url, tech_stack, seniority,
		is_entry_level, is_likely_startup, description_raw, listed_at, scraped_at, created_at
		FROM jobs WHERE source = $1 AND external_id = $2`
	err := r.db.QueryRow(ctx, query, models.SourceLinkedIn, externalID).
		Scan(&job.ID, &job.Source, &job.ExternalID, &job.SessionID, &job.Title, &job.Company, &job.Location, &job.URL,
			&job.TechStack, &job.Seniority, &job.IsEntryLevel, &job.IsLikelyStartup, &job.DescriptionRaw,
			&job.ListedAt, &job.ScrapedAt, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// ---------------- SESSION OPERATIONS ----------------

func (r *Repository) SaveSession(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (id, trigger, keywords, location, status, job_count, file_path, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id)
		DO UPDATE SET status = EXCLUDED.status, job_count = EXCLUDED.job_count, file_path = EXCLUDED.file_path,
			error = EXCLUDED.error, finished_at = EXCLUDED.finished_at`
	_, err := r.db.Exec(ctx, query, s.ID, s.Trigger, s.Keywords, s.Location, s.Status, s.JobCount, s.FilePath,
		s.Error, s.StartedAt, s.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// RecentSessions returns the latest sessions, newest first.
func (r *Repository) RecentSessions(ctx context.Context, limit int) ([]models.Session, error) {
	rows, err := r.db.Query(ctx, `SELECT id, trigger, keywords, location, status, job_count, file_path, error,
		started_at, finished_at FROM sessions ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.Trigger, &s.Keywords, &s.Location, &s.Status, &s.JobCount, &s.FilePath,
			&s.Error, &s.StartedAt, &s.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
