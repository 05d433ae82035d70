package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/homepage-finder/internal/model"
)

// NopStore keeps runs and results in memory for the lifetime of the
// process. It backs the "none" driver.
type NopStore struct {
	mu      sync.Mutex
	runs    map[string]*model.Run
	results map[string][]model.Result
}

// NewNop returns an empty in-memory store.
func NewNop() *NopStore {
	return &NopStore{
		runs:    make(map[string]*model.Run),
		results: make(map[string][]model.Result),
	}
}

func (s *NopStore) Migrate(context.Context) error { return nil }

func (s *NopStore) Close() error { return nil }

func (s *NopStore) CreateRun(_ context.Context, source string, total int) (*model.Run, error) {
	now := time.Now().UTC()
	r := &model.Run{
		ID:        uuid.New().String(),
		Source:    source,
		Status:    model.RunStatusQueued,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
	cp := *r
	return &cp, nil
}

func (s *NopStore) UpdateRunStatus(_ context.Context, runID string, status model.RunStatus) error {
	return s.update(runID, func(r *model.Run) { r.Status = status })
}

func (s *NopStore) UpdateRunProgress(_ context.Context, runID string, processed int) error {
	return s.update(runID, func(r *model.Run) { r.Processed = processed })
}

func (s *NopStore) update(runID string, fn func(*model.Run)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[runID]
	if !ok {
		return eris.Errorf("run not found: %s", runID)
	}
	fn(r)
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *NopStore) GetRun(_ context.Context, runID string) (*model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[runID]
	if !ok {
		return nil, eris.New("run not found")
	}
	cp := *r
	return &cp, nil
}

func (s *NopStore) ListRuns(_ context.Context, filter RunFilter) ([]model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var runs []model.Run
	for _, r := range s.runs {
		if filter.Status == "" || r.Status == filter.Status {
			runs = append(runs, *r)
		}
	}
	slices.SortFunc(runs, func(a, b model.Run) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if filter.Offset >= len(runs) {
		return nil, nil
	}
	runs = runs[filter.Offset:]
	return runs[:min(len(runs), listLimit(filter.Limit))], nil
}

func (s *NopStore) SaveResult(_ context.Context, result model.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.results[result.RunID]
	for i := range rows {
		if rows[i].CompanyID == result.CompanyID {
			rows[i] = result
			return nil
		}
	}
	s.results[result.RunID] = append(rows, result)
	return nil
}

func (s *NopStore) ListResults(_ context.Context, runID string) ([]model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Result(nil), s.results[runID]...), nil
}
