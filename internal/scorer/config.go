// Package scorer turns search hits into scored homepage candidates.
package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/homepage-finder/internal/config"
)

// DefaultScoringConfig returns a config.ScoringConfig with the stock weights.
func DefaultScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		// Bonuses.
		TopPageBonus:         5,
		DomainExactBonus:     5,
		DomainSimilarBonus:   3,
		OfficialKeywordBonus: 2,
		SearchRankBonus:      3,
		LocalityRegionBonus:  2,
		LocalityPhoneBonus:   3,
		HeadMatchBonus:       5,
		HeadMatchPortalBonus: 2,

		// Locality fallback magnitudes, applied with a sign.
		LocalityFallbackHigh:   4,
		LocalityFallbackMedium: 3,
		LocalityFallbackLow:    2,

		// Penalties.
		LowTrustTLDPenalty:         -3,
		PathPenalty:                -2,
		LocalityOtherRegionPenalty: -10,
		PortalPenalty:              -100,
		ReachabilityPenalty:        -5,
		GeoMismatchHigh:            -30,
		GeoMismatchMedium:          -20,
		GeoMismatchLow:             -10,
		GenericWordPenalty:         -4,
		HeadMissPortalPenalty:      -1,
		HeadMissPenalty:            -3,

		// Thresholds.
		DomainExactThreshold:   95,
		DomainSimilarThreshold: 80,
		SearchRankMax:          3,
		AutoAdoptThreshold:     9,
		NeedsReviewThreshold:   6,

		Concurrency: 4,
	}
}

// ValidateConfig checks that a ScoringConfig is internally consistent.
func ValidateConfig(c config.ScoringConfig) error {
	var errs []string

	bonuses := []struct {
		name  string
		value int
	}{
		{"top_page_bonus", c.TopPageBonus},
		{"domain_exact_bonus", c.DomainExactBonus},
		{"domain_similar_bonus", c.DomainSimilarBonus},
		{"official_keyword_bonus", c.OfficialKeywordBonus},
		{"search_rank_bonus", c.SearchRankBonus},
		{"locality_region_bonus", c.LocalityRegionBonus},
		{"locality_phone_bonus", c.LocalityPhoneBonus},
		{"locality_fallback_high", c.LocalityFallbackHigh},
		{"locality_fallback_medium", c.LocalityFallbackMedium},
		{"locality_fallback_low", c.LocalityFallbackLow},
		{"head_match_bonus", c.HeadMatchBonus},
		{"head_match_portal_bonus", c.HeadMatchPortalBonus},
	}
	for _, b := range bonuses {
		if b.value < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", b.name))
		}
	}

	penalties := []struct {
		name  string
		value int
	}{
		{"low_trust_tld_penalty", c.LowTrustTLDPenalty},
		{"path_penalty", c.PathPenalty},
		{"locality_other_region_penalty", c.LocalityOtherRegionPenalty},
		{"portal_penalty", c.PortalPenalty},
		{"reachability_penalty", c.ReachabilityPenalty},
		{"geo_mismatch_high", c.GeoMismatchHigh},
		{"geo_mismatch_medium", c.GeoMismatchMedium},
		{"geo_mismatch_low", c.GeoMismatchLow},
		{"generic_word_penalty", c.GenericWordPenalty},
		{"head_miss_portal_penalty", c.HeadMissPortalPenalty},
		{"head_miss_penalty", c.HeadMissPenalty},
	}
	for _, p := range penalties {
		if p.value > 0 {
			errs = append(errs, fmt.Sprintf("%s must be <= 0", p.name))
		}
	}

	// Similarity cutoffs.
	if c.DomainSimilarThreshold < 0 || c.DomainSimilarThreshold > 100 {
		errs = append(errs, "domain_similar_threshold must be between 0 and 100")
	}
	if c.DomainExactThreshold < c.DomainSimilarThreshold || c.DomainExactThreshold > 100 {
		errs = append(errs, "domain_exact_threshold must be between domain_similar_threshold and 100")
	}
	if c.SearchRankMax < 0 {
		errs = append(errs, "search_rank_max must be >= 0")
	}

	// Judgment thresholds.
	if c.NeedsReviewThreshold <= 0 {
		errs = append(errs, "needs_review_threshold must be > 0")
	}
	if c.AutoAdoptThreshold < c.NeedsReviewThreshold {
		errs = append(errs, "auto_adopt_threshold must be >= needs_review_threshold")
	}

	if c.Concurrency < 0 {
		errs = append(errs, "concurrency must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
