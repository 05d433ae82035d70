package model

// CompanyRecord identifies a company whose official homepage is being located.
// Fields are plain strings as supplied by the ingestion source; Prefecture may
// carry a short or romanized spelling and is canonicalized by the consumer.
type CompanyRecord struct {
	ID          string `json:"id" csv:"id"`
	CompanyName string `json:"company_name" csv:"company_name"`
	Prefecture  string `json:"prefecture" csv:"prefecture"`
	Industry    string `json:"industry" csv:"industry"`
}

// SearchHit is one web-search result. Rank is the 1-based position within the
// result set of the query that produced it.
type SearchHit struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Rank        int    `json:"rank"`
}

// HitBatch groups the hits returned for one generated query.
type HitBatch struct {
	QueryLabel string      `json:"query_label"`
	Query      string      `json:"query"`
	Hits       []SearchHit `json:"hits"`
}
