package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/homepage-finder/internal/model"
	"github.com/sells-group/homepage-finder/internal/scorer"
)

var (
	scoreCompany string
	scoreHits    string
	scoreQuery   string
	scoreFormat  string
)

// scoreRequest is one company with the hits of one query.
type scoreRequest struct {
	Company    model.CompanyRecord `json:"company"`
	QueryLabel string              `json:"query_label"`
	Hits       []model.SearchHit   `json:"hits"`
}

// scoreResponse lists candidates strongest first.
type scoreResponse struct {
	Best       *model.ScoredCandidate  `json:"best,omitempty"`
	Candidates []model.ScoredCandidate `json:"candidates"`
	Excluded   []scorer.Exclusion      `json:"excluded,omitempty"`
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a supplied set of search hits for one company",
	Long: `Scores hits without calling the search API. The company file holds a JSON
company record; the hits file holds a JSON array of {url, title, description, rank}.

Example:
  hpfinder score --company company.json --hits hits.json --format json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		var req scoreRequest
		if err := readJSONFile(scoreCompany, &req.Company); err != nil {
			return err
		}
		if err := readJSONFile(scoreHits, &req.Hits); err != nil {
			return err
		}
		req.QueryLabel = scoreQuery

		env, err := initEnv(ctx, "score")
		if err != nil {
			return err
		}
		defer env.Close()

		sc, err := scorer.New(cfg.Scoring, env.Lists, env.Resolver, env.Liveness)
		if err != nil {
			return err
		}

		resp := scoreHitsFor(ctx, sc, req)
		if strings.EqualFold(scoreFormat, "json") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}
		formatCandidates(os.Stdout, resp.Candidates)
		return nil
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreCompany, "company", "", "JSON file with the company record")
	scoreCmd.Flags().StringVar(&scoreHits, "hits", "", "JSON file with the search hits")
	scoreCmd.Flags().StringVar(&scoreQuery, "query", "basic", "query label recorded on each candidate")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "table", "output format: table or json")
	_ = scoreCmd.MarkFlagRequired("company")
	_ = scoreCmd.MarkFlagRequired("hits")
	rootCmd.AddCommand(scoreCmd)
}

func scoreHitsFor(ctx context.Context, sc *scorer.Scorer, req scoreRequest) scoreResponse {
	if req.QueryLabel == "" {
		req.QueryLabel = "basic"
	}
	cands, excluded := sc.ScoreCandidates(ctx, req.Company, req.QueryLabel, req.Hits)
	resp := scoreResponse{Candidates: scorer.Rank(cands), Excluded: excluded}
	if best, ok := scorer.Best(cands); ok {
		resp.Best = &best
	}
	return resp
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "parse %s", path)
	}
	return nil
}

func formatCandidates(out io.Writer, cands []model.ScoredCandidate) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RANK\tSCORE\tJUDGMENT\tSIMILARITY\tURL")
	_, _ = fmt.Fprintln(w, "----\t-----\t--------\t----------\t---")
	for _, c := range cands {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%.0f\t%s\n",
			c.Rank,
			c.TotalScore,
			c.Judgment,
			c.DomainSimilarity,
			c.URL,
		)
	}
	_ = w.Flush()
}
