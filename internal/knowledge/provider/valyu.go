package provider

import (
	"context"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/lk2023060901/knowcast-backend/internal/knowledge/types"
)

// ValyuProvider implements the Valyu answer API
type ValyuProvider struct {
	*BaseProvider
}

// NewValyuProvider creates a new Valyu provider
func NewValyuProvider(config *types.ProviderConfig) (Provider, error) {
	return &ValyuProvider{BaseProvider: NewBaseProvider(config)}, nil
}

type valyuRequest struct {
	Query              string  `json:"query"`
	SearchType         string  `json:"search_type,omitempty"`
	MaxNumResults      int     `json:"max_num_results,omitempty"`
	RelevanceThreshold float64 `json:"relevance_threshold,omitempty"`
}

// Answer calls POST {host}/v1/answer
func (p *ValyuProvider) Answer(ctx context.Context, query string) (*types.Answer, error) {
	req := valyuRequest{
		Query:              query,
		SearchType:         p.config.SearchType,
		MaxNumResults:      p.config.MaxResults,
		RelevanceThreshold: p.config.RelevanceFloor,
	}
	if req.SearchType == "" {
		req.SearchType = "all"
	}

	status, body, err := p.PostJSON(ctx, "/v1/answer", req, map[string]string{
		"x-api-key": p.GetAPIKey(),
	})
	if err != nil {
		return nil, err
	}

	answer, err := ParseValyuAnswer(body)
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

// Search calls POST {host}/v1/search
func (p *ValyuProvider) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	payload := valyuRequest{
		Query:              req.Query,
		SearchType:         p.config.SearchType,
		MaxNumResults:      req.MaxResults,
		RelevanceThreshold: req.RelevanceThreshold,
	}
	if payload.SearchType == "" {
		payload.SearchType = "all"
	}

	status, body, err := p.PostJSON(ctx, "/v1/search", payload, map[string]string{
		"x-api-key": p.GetAPIKey(),
	})
	if err != nil {
		return nil, err
	}

	resp, err := ParseValyuSearch(body)
	if err != nil {
		if !isSuccessStatus(status) {
			return nil, p.statusError(status, body)
		}
		return nil, err
	}
	if !isSuccessStatus(status) && resp.Error == "" {
		return nil, p.statusError(status, body)
	}
	return resp, nil
}

// ParseValyuAnswer validates and converts a Valyu answer payload:
//
//	{"success": bool, "contents": string, "error": string,
//	 "search_results": [{"title", "url", "source", "relevance_score"}]}
func ParseValyuAnswer(body []byte) (*types.Answer, error) {
	root, err := parseRoot(types.ProviderValyu, body)
	if err != nil {
		return nil, err
	}

	s := &schema{provider: types.ProviderValyu}
	answer := &types.Answer{
		Success:  s.boolean(root, "success", "success"),
		Contents: s.str(root, "contents", "contents", ""),
		Error:    s.str(root, "error", "error", ""),
	}

	for i, item := range s.objects(root, "search_results", "search_results") {
		answer.Sources = append(answer.Sources, valyuSource(s, item, i))
	}
	if s.err != nil {
		return nil, s.err
	}
	return answer, nil
}

func valyuSource(s *schema, item gjson.Result, i int) types.Source {
	prefix := "search_results." + strconv.Itoa(i) + "."
	return types.Source{
		Title:          s.str(item, "title", prefix+"title", types.DefaultSourceTitle),
		URL:            s.str(item, "url", prefix+"url", ""),
		Source:         s.str(item, "source", prefix+"source", types.DefaultSourceKind),
		RelevanceScore: s.number(item, "relevance_score", prefix+"relevance_score"),
	}
}

// ParseValyuSearch validates and converts a Valyu search payload:
//
//	{"success": bool, "error": string, "tx_id": string,
//	 "results": [{"title", "url", "content", "source", "relevance_score"}]}
func ParseValyuSearch(body []byte) (*types.SearchResponse, error) {
	root, err := parseRoot(types.ProviderValyu, body)
	if err != nil {
		return nil, err
	}

	s := &schema{provider: types.ProviderValyu}
	resp := &types.SearchResponse{
		Success: s.boolean(root, "success", "success"),
		TxID:    s.str(root, "tx_id", "tx_id", ""),
		Error:   s.str(root, "error", "error", ""),
	}

	for i, item := range s.objects(root, "results", "results") {
		prefix := "results." + strconv.Itoa(i) + "."
		resp.Hits = append(resp.Hits, types.SearchHit{
			Title:          s.str(item, "title", prefix+"title", types.DefaultSourceTitle),
			URL:            s.str(item, "url", prefix+"url", ""),
			Content:        s.str(item, "content", prefix+"content", ""),
			Source:         s.str(item, "source", prefix+"source", types.DefaultSourceKind),
			RelevanceScore: s.number(item, "relevance_score", prefix+"relevance_score"),
		})
	}
	if s.err != nil {
		return nil, s.err
	}
	return resp, nil
}
