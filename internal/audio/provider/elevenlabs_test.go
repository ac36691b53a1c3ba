package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/knowcast-backend/internal/audio/types"
	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	scripttypes "github.com/lk2023060901/knowcast-backend/internal/script/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ElevenLabs {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewElevenLabs(&types.SynthesisConfig{APIKey: "xi-test", APIHost: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNewElevenLabs(t *testing.T) {
	_, err := NewElevenLabs(nil)
	assert.Error(t, err)

	_, err = NewElevenLabs(&types.SynthesisConfig{})
	assert.ErrorIs(t, err, types.ErrMissingAPIKey)
}

func TestStreamDialogue(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/text-to-dialogue/stream", r.URL.Path)
		assert.Equal(t, types.DefaultOutputFormat, r.URL.Query().Get("output_format"))
		assert.Equal(t, "xi-test", r.Header.Get("xi-api-key"))

		var body dialogueRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, types.DefaultDialogueModel, body.ModelID)
		assert.Equal(t, []dialogueInput{
			{Text: "Hello", VoiceID: "v1"},
			{Text: "Hi", VoiceID: "v2"},
		}, body.Inputs)

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3"))
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte("-frames"))
	})

	stream, err := c.StreamDialogue(context.Background(), []scripttypes.SynthesisTurn{
		{Text: "Hello", VoiceID: "v1"},
		{Text: "Hi", VoiceID: "v2"},
	})
	require.NoError(t, err)
	defer stream.Close()

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "ID3-frames", string(data))
}

func TestStreamSpeech(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/"+types.DefaultSpeechVoice+"/stream", r.URL.Path)

		var body speechRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Hello world", body.Text)
		assert.Equal(t, types.DefaultSpeechModel, body.ModelID)

		_, _ = w.Write([]byte("mp3"))
	})

	stream, err := c.StreamSpeech(context.Background(), "Hello world", "")
	require.NoError(t, err)
	defer stream.Close()

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "mp3", string(data))
}

func TestStream_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode int
		wantMsg  string
	}{
		{
			name:     "detail object",
			status:   http.StatusUnauthorized,
			body:     `{"detail": {"status": "invalid_api_key", "message": "Invalid API key"}}`,
			wantCode: apperrors.ErrUpstreamService,
			wantMsg:  "Invalid API key",
		},
		{
			name:     "detail string",
			status:   http.StatusTooManyRequests,
			body:     `{"detail": "Too many concurrent requests"}`,
			wantCode: apperrors.ErrUpstreamService,
			wantMsg:  "Too many concurrent requests",
		},
		{
			name:     "validation list",
			status:   http.StatusUnprocessableEntity,
			body:     `{"detail": [{"loc": ["body", "inputs"], "msg": "field required"}]}`,
			wantCode: apperrors.ErrUpstreamService,
			wantMsg:  "field required",
		},
		{
			name:     "no payload",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantCode: apperrors.ErrUpstreamTransport,
			wantMsg:  "HTTP 502: Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			stream, err := c.StreamDialogue(context.Background(), []scripttypes.SynthesisTurn{{Text: "x", VoiceID: "v"}})
			assert.Nil(t, stream)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.wantCode))
			assert.Equal(t, tt.wantMsg, apperrors.GetDetails(err))
		})
	}
}

func TestListVoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/voices", r.URL.Path)
		assert.Equal(t, "xi-test", r.Header.Get("xi-api-key"))

		_, _ = w.Write([]byte(`{"voices": [
			{"voice_id": "9BWtsMINqrJLrRacOk9x", "name": "Aria", "category": "premade", "description": "expressive"},
			{"voice_id": "abc", "name": "Clone"},
			{"name": "no id"}
		]}`))
	})

	voices, err := c.ListVoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.Voice{
		{VoiceID: "9BWtsMINqrJLrRacOk9x", Name: "Aria", Category: "premade", Description: "expressive"},
		{VoiceID: "abc", Name: "Clone", Category: "premade"},
	}, voices)
}

func TestParseVoices_Invalid(t *testing.T) {
	_, err := ParseVoices([]byte(`not json`))
	assert.True(t, apperrors.Is(err, apperrors.ErrUpstreamResponse))

	_, err = ParseVoices([]byte(`{"voices": {}}`))
	assert.True(t, apperrors.Is(err, apperrors.ErrUpstreamResponse))
}
