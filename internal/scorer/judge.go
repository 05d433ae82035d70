package scorer

import (
	"cmp"
	"context"
	"math"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/homepage-finder/internal/config"
	"github.com/sells-group/homepage-finder/internal/model"
)

// Judge maps a total score onto a judgment. Scores at or below zero that miss
// the review threshold are no-match; the remaining positive scores need a
// manual check.
func Judge(total int, cfg config.ScoringConfig) model.Judgment {
	switch {
	case total >= cfg.AutoAdoptThreshold:
		return model.JudgmentAutoAdopt
	case total >= cfg.NeedsReviewThreshold:
		return model.JudgmentNeedsReview
	case total <= 0:
		return model.JudgmentNoMatch
	default:
		return model.JudgmentManualCheck
	}
}

// ScoreCandidates scores every hit of one query batch. Candidates keep the
// order of hits; excluded hits are reported separately. Hits whose scoring
// was cut short by ctx cancellation are left out of both lists.
func (s *Scorer) ScoreCandidates(ctx context.Context, company model.CompanyRecord, queryLabel string, hits []model.SearchHit) ([]model.ScoredCandidate, []Exclusion) {
	type slot struct {
		candidate model.ScoredCandidate
		excluded  *Exclusion
		done      bool
	}
	slots := make([]slot, len(hits))

	var g errgroup.Group
	if s.cfg.Concurrency > 0 {
		g.SetLimit(s.cfg.Concurrency)
	}
	for i, hit := range hits {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			c, ex := s.Score(ctx, company, hit, queryLabel)
			if ctx.Err() != nil {
				return nil
			}
			slots[i] = slot{candidate: c, excluded: ex, done: true}
			return nil
		})
	}
	_ = g.Wait()

	candidates := make([]model.ScoredCandidate, 0, len(hits))
	var excluded []Exclusion
	for _, sl := range slots {
		switch {
		case !sl.done:
		case sl.excluded != nil:
			excluded = append(excluded, *sl.excluded)
		default:
			candidates = append(candidates, sl.candidate)
		}
	}

	zap.L().Debug("scorer: batch scored",
		zap.String("company", company.CompanyName),
		zap.String("query", queryLabel),
		zap.Int("hits", len(hits)),
		zap.Int("candidates", len(candidates)),
		zap.Int("excluded", len(excluded)),
	)
	return candidates, excluded
}

// compareCandidates orders stronger candidates first: higher score, then
// better search rank. Callers keep input order for full ties, so an earlier
// query wins.
func compareCandidates(a, b model.ScoredCandidate) int {
	if c := cmp.Compare(b.TotalScore, a.TotalScore); c != 0 {
		return c
	}
	return cmp.Compare(rankKey(a.Rank), rankKey(b.Rank))
}

// rankKey puts unranked hits after every ranked one.
func rankKey(rank int) int {
	if rank < 1 {
		return math.MaxInt
	}
	return rank
}

// Rank returns a copy of candidates sorted strongest first. Ties keep their
// input order.
func Rank(candidates []model.ScoredCandidate) []model.ScoredCandidate {
	out := slices.Clone(candidates)
	slices.SortStableFunc(out, compareCandidates)
	return out
}

// Best returns the strongest candidate.
func Best(candidates []model.ScoredCandidate) (model.ScoredCandidate, bool) {
	if len(candidates) == 0 {
		return model.ScoredCandidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if compareCandidates(c, best) < 0 {
			best = c
		}
	}
	return best, true
}

// FilterByJudgment keeps the candidates whose judgment is one of judgments.
func FilterByJudgment(candidates []model.ScoredCandidate, judgments ...model.Judgment) []model.ScoredCandidate {
	var out []model.ScoredCandidate
	for _, c := range candidates {
		if slices.Contains(judgments, c.Judgment) {
			out = append(out, c)
		}
	}
	return out
}

// Dedupe keeps the strongest candidate per URL, preserving first-seen order.
func Dedupe(candidates []model.ScoredCandidate) []model.ScoredCandidate {
	index := make(map[string]int, len(candidates))
	out := make([]model.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		i, ok := index[c.URL]
		if !ok {
			index[c.URL] = len(out)
			out = append(out, c)
			continue
		}
		if compareCandidates(c, out[i]) < 0 {
			out[i] = c
		}
	}
	return out
}
