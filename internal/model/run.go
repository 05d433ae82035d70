package model

import "time"

// RunStatus represents the state of a batch run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Result statuses recorded for companies without an adopted candidate.
const (
	StatusNoSearchResults = "no-search-results"
	StatusNoCandidates    = "no-candidates"
	StatusError           = "error"
)

// Run tracks one batch execution.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Status    RunStatus `json:"status"`
	Total     int       `json:"total"`
	Processed int       `json:"processed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Result is the persisted outcome for one company.
type Result struct {
	RunID            string    `json:"run_id" csv:"-"`
	CompanyID        string    `json:"company_id" csv:"id"`
	CompanyName      string    `json:"company_name" csv:"company_name"`
	Prefecture       string    `json:"prefecture" csv:"prefecture"`
	Industry         string    `json:"industry" csv:"industry"`
	URL              string    `json:"url" csv:"url"`
	Score            int       `json:"score" csv:"score"`
	Status           string    `json:"status" csv:"status"`
	QueryLabel       string    `json:"query_label" csv:"query"`
	DomainSimilarity float64   `json:"domain_similarity" csv:"domain_similarity"`
	CandidateCount   int       `json:"candidate_count" csv:"candidates"`
	ProcessedAt      time.Time `json:"processed_at" csv:"timestamp"`
}

// ResultFromCandidate builds a result row from the adopted candidate.
func ResultFromCandidate(c CompanyRecord, best ScoredCandidate, candidates int, at time.Time) Result {
	return Result{
		CompanyID:        c.ID,
		CompanyName:      c.CompanyName,
		Prefecture:       c.Prefecture,
		Industry:         c.Industry,
		URL:              best.URL,
		Score:            best.TotalScore,
		Status:           string(best.Judgment),
		QueryLabel:       best.QueryLabel,
		DomainSimilarity: best.DomainSimilarity,
		CandidateCount:   candidates,
		ProcessedAt:      at,
	}
}

// EmptyResult builds a result row for a company with no candidate.
func EmptyResult(c CompanyRecord, status string, at time.Time) Result {
	return Result{
		CompanyID:   c.ID,
		CompanyName: c.CompanyName,
		Prefecture:  c.Prefecture,
		Industry:    c.Industry,
		Status:      status,
		ProcessedAt: at,
	}
}
