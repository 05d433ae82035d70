package finder

import (
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/sells-group/homepage-finder/internal/model"
)

// Summary counts the outcomes of a run.
type Summary struct {
	Total     int            `json:"total"`
	Processed int            `json:"processed"`
	Adopted   int            `json:"adopted"`
	ByStatus  map[string]int `json:"by_status"`
	ByQuery   map[string]int `json:"by_query"`
}

// Summarize counts results per status and, for rows with a chosen URL, per
// query label that produced it.
func Summarize(results []model.Result) Summary {
	s := Summary{
		Total:     len(results),
		Processed: len(results),
		ByStatus:  make(map[string]int),
		ByQuery:   make(map[string]int),
	}
	for _, r := range results {
		s.ByStatus[r.Status]++
		if r.URL == "" {
			continue
		}
		s.ByQuery[r.QueryLabel]++
		if r.Status == string(model.JudgmentAutoAdopt) {
			s.Adopted++
		}
	}
	return s
}

// Log writes the summary at Info.
func (s Summary) Log(runID string) {
	fields := []zap.Field{
		zap.String("run_id", runID),
		zap.Int("total", s.Total),
		zap.Int("processed", s.Processed),
		zap.Int("auto_adopted", s.Adopted),
	}
	for _, k := range slices.Sorted(maps.Keys(s.ByStatus)) {
		fields = append(fields, zap.Int("status."+k, s.ByStatus[k]))
	}
	for _, k := range slices.Sorted(maps.Keys(s.ByQuery)) {
		fields = append(fields, zap.Int("query."+k, s.ByQuery[k]))
	}
	zap.L().Info("finder: run complete", fields...)
}
