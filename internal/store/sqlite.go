package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/homepage-finder/internal/model"
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
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	total      INTEGER NOT NULL DEFAULT 0,
	processed  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS results (
	run_id            TEXT NOT NULL REFERENCES runs(id),
	company_id        TEXT NOT NULL,
	company_name      TEXT NOT NULL,
	prefecture        TEXT NOT NULL DEFAULT '',
	industry          TEXT NOT NULL DEFAULT '',
	url               TEXT NOT NULL DEFAULT '',
	score             INTEGER NOT NULL DEFAULT 0,
	status            TEXT NOT NULL,
	query_label       TEXT NOT NULL DEFAULT '',
	domain_similarity REAL NOT NULL DEFAULT 0,
	candidate_count   INTEGER NOT NULL DEFAULT 0,
	processed_at      DATETIME NOT NULL,
	PRIMARY KEY (run_id, company_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_results_status ON results(run_id, status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, source string, total int) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, status, total, processed, created_at, updated_at) VALUES (?, ?, ?, ?, 0, ?, ?)`,
		id, source, string(model.RunStatusQueued), total, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Source:    source,
		Status:    model.RunStatusQueued,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) UpdateRunProgress(ctx context.Context, runID string, processed int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET processed = ?, updated_at = ? WHERE id = ?`,
		processed, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run progress %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, status, total, processed, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, source, status, total, processed, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveResult(ctx context.Context, r model.Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results (run_id, company_id, company_name, prefecture, industry, url, score, status, query_label, domain_similarity, candidate_count, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, company_id) DO UPDATE SET
		   url = excluded.url, score = excluded.score, status = excluded.status,
		   query_label = excluded.query_label, domain_similarity = excluded.domain_similarity,
		   candidate_count = excluded.candidate_count, processed_at = excluded.processed_at`,
		r.RunID, r.CompanyID, r.CompanyName, r.Prefecture, r.Industry, r.URL, r.Score, r.Status,
		r.QueryLabel, r.DomainSimilarity, r.CandidateCount, r.ProcessedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: save result %s/%s", r.RunID, r.CompanyID)
}

func (s *SQLiteStore) ListResults(ctx context.Context, runID string) ([]model.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, company_id, company_name, prefecture, industry, url, score, status, query_label, domain_similarity, candidate_count, processed_at
		 FROM results WHERE run_id = ? ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: list results iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	err := row.Scan(&r.ID, &r.Source, &r.Status, &r.Total, &r.Processed, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	return &r, nil
}

func scanResult(row scannable) (model.Result, error) {
	var r model.Result
	err := row.Scan(&r.RunID, &r.CompanyID, &r.CompanyName, &r.Prefecture, &r.Industry, &r.URL,
		&r.Score, &r.Status, &r.QueryLabel, &r.DomainSimilarity, &r.CandidateCount, &r.ProcessedAt)
	return r, err
}
