package types

import "github.com/lk2023060901/knowcast-backend/internal/pkg/result"

// Source is one search result cited by an answer
type Source struct {
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Source         string  `json:"source"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Defaults applied to fields a provider leaves out of a search result
const (
	DefaultSourceTitle = "Unknown"
	DefaultSourceKind  = "Web"
)

// Answer is a provider response reduced to the fields the extractor consumes
type Answer struct {
	Success  bool
	Contents string
	Sources  []Source
	// Error is the provider's own failure message, empty when it gave none
	Error string
}

// ExtractionResult is the normalized outcome of one extraction
type ExtractionResult struct {
	result.Status
	Query   string   `json:"query"`
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// PodcastBrief is an extraction reshaped as script generator input
type PodcastBrief struct {
	result.Status
	Topic    string        `json:"topic"`
	Content  string        `json:"content"`
	Sources  []Source      `json:"sources"`
	Metadata BriefMetadata `json:"metadata"`
}

type BriefMetadata struct {
	OriginalQuery    string `json:"original_query"`
	ExtractionMethod string `json:"extraction_method"`
}
