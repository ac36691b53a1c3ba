package types

import "github.com/lk2023060901/knowcast-backend/internal/pkg/result"

// Defaults for a structured search that leaves its limits out
const (
	DefaultSearchMaxResults = 20
	DefaultSearchRelevance  = 0.4
)

// SearchRequest asks a provider for raw results without answer synthesis
type SearchRequest struct {
	Query              string
	MaxResults         int
	RelevanceThreshold float64
}

// SearchHit is one search result with its full text
type SearchHit struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Content        string  `json:"content"`
	Source         string  `json:"source"`
	RelevanceScore float64 `json:"relevance_score"`
}

// SearchResponse is a provider search payload reduced to the fields the extractor consumes
type SearchResponse struct {
	Success bool
	Hits    []SearchHit
	TxID    string
	// Error is the provider's own failure message, empty when it gave none
	Error string
}

// SearchResult is the normalized outcome of one structured search
type SearchResult struct {
	result.Status
	Query   string      `json:"query"`
	Results []SearchHit `json:"results"`
	TxID    string      `json:"tx_id,omitempty"`
}
