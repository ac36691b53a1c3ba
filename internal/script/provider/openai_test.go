package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/script/types"
)

func newTestChat(t *testing.T, handler http.HandlerFunc) *OpenAIChat {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	chat, err := NewOpenAIChat(&types.ChatConfig{APIKey: "sk-test", BaseURL: srv.URL}, logger.Nop())
	require.NoError(t, err)
	return chat
}

func TestNewOpenAIChat(t *testing.T) {
	_, err := NewOpenAIChat(nil, logger.Nop())
	assert.Error(t, err)

	_, err = NewOpenAIChat(&types.ChatConfig{}, logger.Nop())
	assert.ErrorIs(t, err, types.ErrMissingAPIKey)

	chat, err := NewOpenAIChat(&types.ChatConfig{APIKey: "sk"}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultModel, chat.Model())
}

func TestCompleteJSON(t *testing.T) {
	chat := newTestChat(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, types.DefaultModel, body["model"])
		assert.InDelta(t, 0.8, body["temperature"], 0.001)
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

		msgs, _ := body["messages"].([]any)
		assert.Len(t, msgs, 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4-0125-preview",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"dialogue\": []}"}, "finish_reason": "stop"}]
		}`))
	})

	resp, err := chat.CompleteJSON(context.Background(), types.ChatRequest{System: "s", User: "u", Temperature: 0.8})
	require.NoError(t, err)
	assert.Equal(t, `{"dialogue": []}`, resp.Content)
	assert.Equal(t, "gpt-4-0125-preview", resp.Model)
}

func TestCompleteJSON_NoChoices(t *testing.T) {
	chat := newTestChat(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "choices": []}`))
	})

	_, err := chat.CompleteJSON(context.Background(), types.ChatRequest{})
	assert.True(t, apperrors.Is(err, apperrors.ErrUpstreamResponse))
}

func TestCompleteJSON_APIError(t *testing.T) {
	chat := newTestChat(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`))
	})

	_, err := chat.CompleteJSON(context.Background(), types.ChatRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUpstreamService))
	assert.Equal(t, "Incorrect API key provided", apperrors.GetDetails(err))
}
