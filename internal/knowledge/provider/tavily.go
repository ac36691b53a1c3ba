package provider

import (
	"context"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/lk2023060901/knowcast-backend/internal/knowledge/types"
)

// TavilyProvider implements the Tavily search API with answer synthesis enabled
type TavilyProvider struct {
	*BaseProvider
}

// NewTavilyProvider creates a new Tavily provider
func NewTavilyProvider(config *types.ProviderConfig) (Provider, error) {
	return &TavilyProvider{BaseProvider: NewBaseProvider(config)}, nil
}

type tavilyRequest struct {
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
	IncludeAnswer string `json:"include_answer,omitempty"`
}

// Answer calls POST {host}/search with include_answer set
func (p *TavilyProvider) Answer(ctx context.Context, query string) (*types.Answer, error) {
	req := tavilyRequest{
		Query:         query,
		SearchDepth:   p.config.SearchType,
		MaxResults:    p.config.MaxResults,
		IncludeAnswer: "advanced",
	}
	if req.SearchDepth == "" {
		req.SearchDepth = "advanced"
	}
	if req.MaxResults == 0 {
		req.MaxResults = 10
	}

	status, body, err := p.PostJSON(ctx, "/search", req, map[string]string{
		"Authorization": "Bearer " + p.GetAPIKey(),
	})
	if err != nil {
		return nil, err
	}

	answer, err := ParseTavilyAnswer(body, isSuccessStatus(status))
	if err != nil {
		if !isSuccessStatus(status) {
			return nil, p.statusError(status, body)
		}
		return nil, err
	}
	if !isSuccessStatus(status) && answer.Error == "" {
		return nil, p.statusError(status, body)
	}
	return answer, nil
}

// Search calls POST {host}/search without answer synthesis. Tavily has no server side
// relevance cut, so hits under the threshold are dropped here.
func (p *TavilyProvider) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	payload := tavilyRequest{
		Query:       req.Query,
		SearchDepth: p.config.SearchType,
		MaxResults:  req.MaxResults,
	}
	if payload.SearchDepth == "" {
		payload.SearchDepth = "advanced"
	}

	status, body, err := p.PostJSON(ctx, "/search", payload, map[string]string{
		"Authorization": "Bearer " + p.GetAPIKey(),
	})
	if err != nil {
		return nil, err
	}

	resp, err := ParseTavilySearch(body, isSuccessStatus(status))
	if err != nil {
		if !isSuccessStatus(status) {
			return nil, p.statusError(status, body)
		}
		return nil, err
	}
	if !isSuccessStatus(status) && resp.Error == "" {
		return nil, p.statusError(status, body)
	}

	kept := resp.Hits[:0]
	for _, hit := range resp.Hits {
		if hit.RelevanceScore >= req.RelevanceThreshold {
			kept = append(kept, hit)
		}
	}
	resp.Hits = kept
	return resp, nil
}

// ParseTavilyAnswer validates and converts a Tavily search payload:
//
//	{"answer": string, "results": [{"title", "url", "content", "score"}]}
//
// Failures arrive as {"detail": {"error": string}} or {"detail": string}. Tavily has no
// explicit success flag, so ok (the HTTP outcome) plus a non-empty answer stands in for it.
func ParseTavilyAnswer(body []byte, ok bool) (*types.Answer, error) {
	root, err := parseRoot(types.ProviderTavily, body)
	if err != nil {
		return nil, err
	}

	s := &schema{provider: types.ProviderTavily}
	answer := &types.Answer{
		Contents: s.str(root, "answer", "answer", ""),
	}

	answer.Error = tavilyDetail(s, root)

	for i, item := range s.objects(root, "results", "results") {
		prefix := "results." + strconv.Itoa(i) + "."
		answer.Sources = append(answer.Sources, types.Source{
			Title:          s.str(item, "title", prefix+"title", types.DefaultSourceTitle),
			URL:            s.str(item, "url", prefix+"url", ""),
			Source:         types.DefaultSourceKind,
			RelevanceScore: s.number(item, "score", prefix+"score"),
		})
	}
	if s.err != nil {
		return nil, s.err
	}

	answer.Success = ok && answer.Error == "" && answer.Contents != ""
	return answer, nil
}

// ParseTavilySearch converts a Tavily search payload without an answer. request_id
// stands in for the transaction ID.
func ParseTavilySearch(body []byte, ok bool) (*types.SearchResponse, error) {
	root, err := parseRoot(types.ProviderTavily, body)
	if err != nil {
		return nil, err
	}

	s := &schema{provider: types.ProviderTavily}
	resp := &types.SearchResponse{
		TxID:  s.str(root, "request_id", "request_id", ""),
		Error: tavilyDetail(s, root),
	}

	for i, item := range s.objects(root, "results", "results") {
		prefix := "results." + strconv.Itoa(i) + "."
		resp.Hits = append(resp.Hits, types.SearchHit{
			Title:          s.str(item, "title", prefix+"title", types.DefaultSourceTitle),
			URL:            s.str(item, "url", prefix+"url", ""),
			Content:        s.str(item, "content", prefix+"content", ""),
			Source:         types.DefaultSourceKind,
			RelevanceScore: s.number(item, "score", prefix+"score"),
		})
	}
	if s.err != nil {
		return nil, s.err
	}

	resp.Success = ok && resp.Error == ""
	return resp, nil
}

// tavilyDetail reads the failure message from {"detail": {"error": ...}} or {"detail": ...}
func tavilyDetail(s *schema, root gjson.Result) string {
	if detail := root.Get("detail"); detail.IsObject() {
		return s.str(detail, "error", "detail.error", "")
	}
	return s.str(root, "detail", "detail", "")
}
