package model

// Judgment is the discrete adoption decision derived from a total score.
type Judgment string

const (
	JudgmentAutoAdopt   Judgment = "auto-adopt"
	JudgmentNeedsReview Judgment = "needs-review"
	JudgmentManualCheck Judgment = "manual-check"
	JudgmentNoMatch     Judgment = "no-match"
)

// AllJudgments returns every judgment from strongest to weakest.
func AllJudgments() []Judgment {
	return []Judgment{
		JudgmentAutoAdopt,
		JudgmentNeedsReview,
		JudgmentManualCheck,
		JudgmentNoMatch,
	}
}

// Rank orders judgments so that a stronger decision has a higher value.
func (j Judgment) Rank() int {
	switch j {
	case JudgmentAutoAdopt:
		return 3
	case JudgmentNeedsReview:
		return 2
	case JudgmentManualCheck:
		return 1
	default:
		return 0
	}
}

// Contribution is one named entry of a score breakdown.
type Contribution struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Contribution names as they appear in breakdown listings.
const (
	ContribTopPage            = "top_page"
	ContribDomainSimilarity   = "domain_similarity_score"
	ContribTLD                = "tld_score"
	ContribOfficialKeyword    = "official_keyword"
	ContribSearchRank         = "search_rank"
	ContribPathPenalty        = "path_penalty"
	ContribLocality           = "locality"
	ContribPortalPenalty      = "portal_penalty"
	ContribReachability       = "reachability_penalty"
	ContribGeographicMismatch = "geographic_mismatch_penalty"
	ContribGenericWord        = "generic_word_penalty"
	ContribHeadMatch          = "head_match_bonus"
)

// ScoreBreakdown holds every scoring contribution. Untriggered contributions
// stay at zero.
type ScoreBreakdown struct {
	TopPage            int `json:"top_page"`
	DomainSimilarity   int `json:"domain_similarity_score"`
	TLD                int `json:"tld_score"`
	OfficialKeyword    int `json:"official_keyword"`
	SearchRank         int `json:"search_rank"`
	PathPenalty        int `json:"path_penalty"`
	Locality           int `json:"locality"`
	PortalPenalty      int `json:"portal_penalty"`
	Reachability       int `json:"reachability_penalty"`
	GeographicMismatch int `json:"geographic_mismatch_penalty"`
	GenericWord        int `json:"generic_word_penalty"`
	HeadMatch          int `json:"head_match_bonus"`
}

// Entries lists the contributions in a fixed order.
func (b ScoreBreakdown) Entries() []Contribution {
	return []Contribution{
		{ContribTopPage, b.TopPage},
		{ContribDomainSimilarity, b.DomainSimilarity},
		{ContribTLD, b.TLD},
		{ContribOfficialKeyword, b.OfficialKeyword},
		{ContribSearchRank, b.SearchRank},
		{ContribPathPenalty, b.PathPenalty},
		{ContribLocality, b.Locality},
		{ContribPortalPenalty, b.PortalPenalty},
		{ContribReachability, b.Reachability},
		{ContribGeographicMismatch, b.GeographicMismatch},
		{ContribGenericWord, b.GenericWord},
		{ContribHeadMatch, b.HeadMatch},
	}
}

// Total returns the sum of all contributions.
func (b ScoreBreakdown) Total() int {
	total := 0
	for _, c := range b.Entries() {
		total += c.Value
	}
	return total
}

// ScoredCandidate is the scoring result for a single search hit.
type ScoredCandidate struct {
	URL              string         `json:"url"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Rank             int            `json:"rank"`
	QueryLabel       string         `json:"query_label"`
	DomainSimilarity float64        `json:"domain_similarity"`
	IsTopPage        bool           `json:"is_top_page"`
	TotalScore       int            `json:"total_score"`
	Judgment         Judgment       `json:"judgment"`
	Breakdown        ScoreBreakdown `json:"score_breakdown"`
	Location         LocationSignal `json:"location"`
}
