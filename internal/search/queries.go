// Package search turns a company record into web-search hit batches.
package search

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/homepage-finder/internal/model"
	"github.com/sells-group/homepage-finder/internal/region"
	"github.com/sells-group/homepage-finder/internal/textnorm"
)

// Built-in query pattern labels.
const (
	PatternBasic    = "basic"
	PatternOfficial = "official"
	PatternDomain   = "domain"
	PatternLocation = "location"
)

// Template placeholders.
const (
	PlaceholderName       = "{company_name}"
	PlaceholderPrefecture = "{prefecture}"
	PlaceholderIndustry   = "{industry}"
)

var builtinTemplates = map[string]string{
	PatternBasic:    "{company_name} {prefecture} {industry}",
	PatternOfficial: "{company_name} 公式サイト",
	PatternDomain:   `"{company_name}" site:.co.jp OR site:.com`,
	PatternLocation: "{company_name} {prefecture} {industry} 公式",
}

// DefaultPatterns are the phase-one queries run for every company.
var DefaultPatterns = []string{PatternBasic, PatternOfficial, PatternDomain}

// Query is one generated search query.
type Query struct {
	Label string
	Text  string
}

// Generator expands query templates for a company.
type Generator struct {
	patterns  []string
	templates map[string]string
}

// NewGenerator builds a Generator that runs patterns in order. Custom
// templates add new labels or override built-in ones. Labels with no
// template are skipped with a warning.
func NewGenerator(patterns []string, custom map[string]string) *Generator {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	templates := make(map[string]string, len(builtinTemplates)+len(custom))
	for k, v := range builtinTemplates {
		templates[k] = v
	}
	for k, v := range custom {
		templates[strings.ToLower(k)] = v
	}

	g := &Generator{templates: templates}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if _, ok := templates[p]; !ok {
			zap.L().Warn("search: unknown query pattern", zap.String("pattern", p))
			continue
		}
		g.patterns = append(g.patterns, p)
	}
	return g
}

// Queries returns the queries for c. A company without a usable name yields
// none.
func (g *Generator) Queries(c model.CompanyRecord) []Query {
	name := textnorm.NormalizeName(c.CompanyName)
	if name == "" {
		return nil
	}
	pref := region.Canonicalize(c.Prefecture)
	if pref == "" {
		pref = strings.TrimSpace(c.Prefecture)
	}

	r := strings.NewReplacer(
		PlaceholderName, name,
		PlaceholderPrefecture, pref,
		PlaceholderIndustry, strings.TrimSpace(c.Industry),
	)

	queries := make([]Query, 0, len(g.patterns))
	seen := make(map[string]bool, len(g.patterns))
	for _, p := range g.patterns {
		text := strings.Join(strings.Fields(r.Replace(g.templates[p])), " ")
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		queries = append(queries, Query{Label: p, Text: text})
	}
	return queries
}
