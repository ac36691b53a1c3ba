package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/knowcast-backend/internal/knowledge/types"
)

func valyuConfig(host string) *types.ProviderConfig {
	return &types.ProviderConfig{
		ID:      types.ProviderValyu,
		Name:    "Valyu",
		APIHost: host,
		APIKey:  "test-key",
		Timeout: 5,
	}
}

func TestBaseProvider_GetAPIKey_Rotation(t *testing.T) {
	base := NewBaseProvider(&types.ProviderConfig{
		ID:     types.ProviderValyu,
		APIKey: "key1, key2,,key3",
	})

	assert.Equal(t, "key1", base.GetAPIKey())
	assert.Equal(t, "key2", base.GetAPIKey())
	assert.Equal(t, "key3", base.GetAPIKey())
	assert.Equal(t, "key1", base.GetAPIKey())
}

func TestBaseProvider_GetAPIKey_Concurrent(t *testing.T) {
	base := NewBaseProvider(&types.ProviderConfig{APIKey: "a,b"})

	var wg sync.WaitGroup
	var mu sync.Mutex
	counts := map[string]int{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k := base.GetAPIKey()
			mu.Lock()
			counts[k]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counts["a"])
	assert.Equal(t, 50, counts["b"])
}

func TestBaseProvider_NoKeys(t *testing.T) {
	base := NewBaseProvider(&types.ProviderConfig{})
	assert.Empty(t, base.GetAPIKey())
}

func TestProviderConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*types.ProviderConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(*types.ProviderConfig) {}},
		{name: "missing ID", mutate: func(c *types.ProviderConfig) { c.ID = "" }, wantErr: types.ErrInvalidProviderID},
		{name: "missing name", mutate: func(c *types.ProviderConfig) { c.Name = "" }, wantErr: types.ErrInvalidProviderName},
		{name: "missing host", mutate: func(c *types.ProviderConfig) { c.APIHost = "" }, wantErr: types.ErrInvalidAPIHost},
		{name: "missing key", mutate: func(c *types.ProviderConfig) { c.APIKey = "" }, wantErr: types.ErrMissingAPIKey},
		{name: "relevance out of range", mutate: func(c *types.ProviderConfig) { c.RelevanceFloor = 1.5 }, wantErr: types.ErrInvalidRelevance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valyuConfig("https://api.valyu.ai")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseValyuAnswer(t *testing.T) {
	t.Run("success with sources", func(t *testing.T) {
		body := `{
			"success": true,
			"contents": "Machine learning is ...",
			"search_results": [
				{"title": "ML intro", "url": "https://a.example", "source": "web", "relevance_score": 0.92},
				{"url": "https://b.example"}
			]
		}`
		answer, err := ParseValyuAnswer([]byte(body))
		require.NoError(t, err)
		assert.True(t, answer.Success)
		assert.Equal(t, "Machine learning is ...", answer.Contents)
		require.Len(t, answer.Sources, 2)
		assert.Equal(t, types.Source{Title: "ML intro", URL: "https://a.example", Source: "web", RelevanceScore: 0.92}, answer.Sources[0])
		assert.Equal(t, types.Source{Title: "Unknown", URL: "https://b.example", Source: "Web"}, answer.Sources[1])
	})

	t.Run("service error", func(t *testing.T) {
		answer, err := ParseValyuAnswer([]byte(`{"success": false, "error": "Insufficient credits"}`))
		require.NoError(t, err)
		assert.False(t, answer.Success)
		assert.Equal(t, "Insufficient credits", answer.Error)
	})

	t.Run("nothing at all", func(t *testing.T) {
		answer, err := ParseValyuAnswer([]byte(`{}`))
		require.NoError(t, err)
		assert.False(t, answer.Success)
		assert.Empty(t, answer.Error)
	})

	shapes := []struct {
		name  string
		body  string
		field string
	}{
		{"not json", `<html>`, "body"},
		{"array root", `[]`, "body"},
		{"success as string", `{"success": "yes"}`, "success"},
		{"contents as object", `{"success": true, "contents": {"text": "x"}}`, "contents"},
		{"results not array", `{"success": true, "search_results": {}}`, "search_results"},
		{"result not object", `{"success": true, "search_results": ["x"]}`, "search_results.0"},
		{"score as string", `{"success": true, "search_results": [{"relevance_score": "high"}]}`, "search_results.0.relevance_score"},
	}
	for _, tt := range shapes {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseValyuAnswer([]byte(tt.body))
			var perr *types.ParseError
			require.True(t, errors.As(err, &perr), "want ParseError, got %v", err)
			assert.Equal(t, tt.field, perr.Field)
			assert.Equal(t, types.ProviderValyu, perr.Provider)
		})
	}
}

func TestValyuProvider_Answer(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/answer", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"success": true, "contents": "answer"}`))
	}))
	defer srv.Close()

	p, err := NewValyuProvider(valyuConfig(srv.URL))
	require.NoError(t, err)

	answer, err := p.Answer(context.Background(), "What is machine learning?")
	require.NoError(t, err)
	assert.True(t, answer.Success)
	assert.Equal(t, "answer", answer.Contents)
	assert.Equal(t, "What is machine learning?", gotBody["query"])
	assert.Equal(t, "all", gotBody["search_type"])
}

func TestValyuProvider_Answer_HTTPFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantError string
		wantCode  string
	}{
		{name: "error payload on 4xx", status: http.StatusPaymentRequired, body: `{"success": false, "error": "Insufficient credits"}`, wantError: "Insufficient credits"},
		{name: "html on 5xx", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantCode: "HTTP_502"},
		{name: "empty object on 5xx", status: http.StatusInternalServerError, body: `{}`, wantCode: "HTTP_500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, _ := NewValyuProvider(valyuConfig(srv.URL))
			answer, err := p.Answer(context.Background(), "q")

			if tt.wantCode != "" {
				var perr *types.ProviderError
				require.True(t, errors.As(err, &perr))
				assert.Equal(t, tt.wantCode, perr.Code)
				return
			}
			require.NoError(t, err)
			assert.False(t, answer.Success)
			assert.Equal(t, tt.wantError, answer.Error)
		})
	}
}

func TestValyuProvider_Answer_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	host := srv.URL
	srv.Close()

	p, _ := NewValyuProvider(valyuConfig(host))
	_, err := p.Answer(context.Background(), "q")

	var perr *types.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "REQUEST_FAILED", perr.Code)
}

func TestValyuProvider_Answer_SingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, _ := NewValyuProvider(valyuConfig(srv.URL))
	_, err := p.Answer(context.Background(), "q")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestParseTavilyAnswer(t *testing.T) {
	t.Run("answer with results", func(t *testing.T) {
		body := `{"answer": "ML is ...", "results": [{"title": "T", "url": "https://t.example", "content": "c", "score": 0.8}]}`
		answer, err := ParseTavilyAnswer([]byte(body), true)
		require.NoError(t, err)
		assert.True(t, answer.Success)
		require.Len(t, answer.Sources, 1)
		assert.Equal(t, types.Source{Title: "T", URL: "https://t.example", Source: "Web", RelevanceScore: 0.8}, answer.Sources[0])
	})

	t.Run("no answer", func(t *testing.T) {
		answer, err := ParseTavilyAnswer([]byte(`{"answer": null, "results": []}`), true)
		require.NoError(t, err)
		assert.False(t, answer.Success)
		assert.Empty(t, answer.Error)
	})

	t.Run("object detail", func(t *testing.T) {
		answer, err := ParseTavilyAnswer([]byte(`{"detail": {"error": "Unauthorized: missing or invalid API key."}}`), false)
		require.NoError(t, err)
		assert.False(t, answer.Success)
		assert.Equal(t, "Unauthorized: missing or invalid API key.", answer.Error)
	})

	t.Run("string detail", func(t *testing.T) {
		answer, err := ParseTavilyAnswer([]byte(`{"detail": "rate limited"}`), false)
		require.NoError(t, err)
		assert.Equal(t, "rate limited", answer.Error)
	})

	t.Run("bad score", func(t *testing.T) {
		_, err := ParseTavilyAnswer([]byte(`{"answer": "a", "results": [{"score": []}]}`), true)
		var perr *types.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "results.0.score", perr.Field)
	})
}

func TestTavilyProvider_Answer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer tvly-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "advanced", req["include_answer"])
		assert.EqualValues(t, 10, req["max_results"])

		_, _ = w.Write([]byte(`{"answer": "synthesized", "results": []}`))
	}))
	defer srv.Close()

	p, err := NewTavilyProvider(&types.ProviderConfig{
		ID: types.ProviderTavily, Name: "Tavily", APIHost: srv.URL + "/", APIKey: "tvly-key",
	})
	require.NoError(t, err)

	answer, err := p.Answer(context.Background(), "q")
	require.NoError(t, err)
	assert.True(t, answer.Success)
	assert.Equal(t, "synthesized", answer.Contents)
}

func TestStatusError_Truncates(t *testing.T) {
	base := NewBaseProvider(valyuConfig("https://api.valyu.ai"))

	tests := []struct {
		name    string
		body    string
		wantLen int
	}{
		{name: "short", body: "bad gateway", wantLen: len("bad gateway")},
		{name: "ascii", body: strings.Repeat("a", 600), wantLen: maxErrorBody},
		// 511 ASCII bytes followed by a three byte rune straddling the limit
		{name: "rune at limit", body: strings.Repeat("a", 511) + "语" + "tail", wantLen: 511},
		{name: "multibyte", body: strings.Repeat("é", 400), wantLen: maxErrorBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var perr *types.ProviderError
			require.True(t, errors.As(base.statusError(http.StatusBadGateway, []byte(tt.body)), &perr))
			assert.Len(t, perr.Message, tt.wantLen)
			assert.True(t, utf8.ValidString(perr.Message))
		})
	}

	var perr *types.ProviderError
	require.True(t, errors.As(base.statusError(http.StatusServiceUnavailable, nil), &perr))
	assert.Equal(t, "Service Unavailable", perr.Message)
}

func TestParseValyuSearch(t *testing.T) {
	t.Run("results", func(t *testing.T) {
		body := `{"success": true, "tx_id": "tx-42", "results": [
			{"title": "ML", "url": "https://example.org/ml", "content": "Machine learning is...", "source": "wikipedia", "relevance_score": 0.91},
			{"url": "https://example.org/b"}
		]}`
		resp, err := ParseValyuSearch([]byte(body))
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "tx-42", resp.TxID)
		require.Len(t, resp.Hits, 2)
		assert.Equal(t, types.SearchHit{
			Title: "ML", URL: "https://example.org/ml", Content: "Machine learning is...", Source: "wikipedia", RelevanceScore: 0.91,
		}, resp.Hits[0])
		assert.Equal(t, types.DefaultSourceTitle, resp.Hits[1].Title)
		assert.Equal(t, types.DefaultSourceKind, resp.Hits[1].Source)
	})

	t.Run("provider error", func(t *testing.T) {
		resp, err := ParseValyuSearch([]byte(`{"success": false, "error": "Insufficient credits"}`))
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, "Insufficient credits", resp.Error)
	})

	t.Run("wrong types", func(t *testing.T) {
		_, err := ParseValyuSearch([]byte(`{"success": true, "results": [{"content": 7}]}`))
		var perr *types.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "results.0.content", perr.Field)
	})
}

func TestValyuProvider_Search(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"success": true, "tx_id": "tx-1", "results": [{"title": "T", "url": "https://t.example", "content": "c", "relevance_score": 0.5}]}`))
	}))
	defer srv.Close()

	p, err := NewValyuProvider(valyuConfig(srv.URL))
	require.NoError(t, err)

	resp, err := p.Search(context.Background(), types.SearchRequest{Query: "q", MaxResults: 20, RelevanceThreshold: 0.4})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "tx-1", resp.TxID)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "q", gotBody["query"])
	assert.EqualValues(t, 20, gotBody["max_num_results"])
	assert.EqualValues(t, 0.4, gotBody["relevance_threshold"])
}

func TestValyuProvider_Search_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	p, _ := NewValyuProvider(valyuConfig(srv.URL))
	_, err := p.Search(context.Background(), types.SearchRequest{Query: "q"})

	var perr *types.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "HTTP_502", perr.Code)
}

func TestTavilyProvider_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer tvly-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotContains(t, req, "include_answer")
		assert.EqualValues(t, 3, req["max_results"])

		_, _ = w.Write([]byte(`{"request_id": "req-7", "results": [
			{"title": "high", "url": "https://a.example", "content": "a", "score": 0.8},
			{"title": "low", "url": "https://b.example", "content": "b", "score": 0.1}
		]}`))
	}))
	defer srv.Close()

	p, err := NewTavilyProvider(&types.ProviderConfig{
		ID: types.ProviderTavily, Name: "Tavily", APIHost: srv.URL, APIKey: "tvly-key",
	})
	require.NoError(t, err)

	resp, err := p.Search(context.Background(), types.SearchRequest{Query: "q", MaxResults: 3, RelevanceThreshold: 0.4})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "req-7", resp.TxID)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "high", resp.Hits[0].Title)
	assert.Equal(t, types.DefaultSourceKind, resp.Hits[0].Source)
}

func TestParseTavilySearch_Detail(t *testing.T) {
	resp, err := ParseTavilySearch([]byte(`{"detail": {"error": "Unauthorized"}}`), false)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Unauthorized", resp.Error)
}
