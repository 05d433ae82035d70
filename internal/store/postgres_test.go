package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/homepage-finder/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS runs`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "companies.xlsx", "queued", 5, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "companies.xlsx", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 5, run.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1`).
		WithArgs("complete", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "missing", model.RunStatusComplete)
	assert.ErrorContains(t, err, "run not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunProgress(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET processed = \$1`).
		WithArgs(3, pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateRunProgress(context.Background(), "run-1", 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, source, status, total, processed, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "source", "status", "total", "processed", "created_at", "updated_at"}).
			AddRow("run-1", "api", model.RunStatusRunning, 4, 2, now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.Equal(t, 2, run.Processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, source, status, total, processed, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_Filtered(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE status = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("complete", 100, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "source", "status", "total", "processed", "created_at", "updated_at"}).
			AddRow("run-1", "api", model.RunStatusComplete, 1, 1, now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveResult_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`ON CONFLICT \(run_id, company_id\) DO UPDATE`).
		WithArgs("run-1", "1", "Barber Boss", "東京都", "", "https://barberboss.co.jp/", 20, "auto-adopt",
			"official", 100.0, 3, at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveResult(context.Background(), model.Result{
		RunID:            "run-1",
		CompanyID:        "1",
		CompanyName:      "Barber Boss",
		Prefecture:       "東京都",
		URL:              "https://barberboss.co.jp/",
		Score:            20,
		Status:           "auto-adopt",
		QueryLabel:       "official",
		DomainSimilarity: 100,
		CandidateCount:   3,
		ProcessedAt:      at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveResult_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO results`).
		WillReturnError(errors.New("connection reset"))

	err := s.SaveResult(context.Background(), model.Result{RunID: "run-1", CompanyID: "1"})
	assert.ErrorContains(t, err, "postgres: save result run-1/1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListResults(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	cols := []string{"run_id", "company_id", "company_name", "prefecture", "industry", "url", "score", "status",
		"query_label", "domain_similarity", "candidate_count", "processed_at"}
	mock.ExpectQuery(`FROM results WHERE run_id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("run-1", "1", "Barber Boss", "東京都", "", "https://barberboss.co.jp/", 20, "auto-adopt", "official", 100.0, 3, at).
			AddRow("run-1", "2", "Octo Hair", "", "", "", 0, "no-candidates", "", 0.0, 0, at))

	got, err := s.ListResults(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://barberboss.co.jp/", got[0].URL)
	assert.Equal(t, model.StatusNoCandidates, got[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
