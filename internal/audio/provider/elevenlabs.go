package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lk2023060901/knowcast-backend/internal/audio/types"
	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	scripttypes "github.com/lk2023060901/knowcast-backend/internal/script/types"
)

const (
	apiKeyHeader = "xi-api-key"
	maxErrorBody = 64 << 10
	maxVoiceBody = 8 << 20
)

// ElevenLabs is an HTTP client for the dialogue, speech and voice endpoints
type ElevenLabs struct {
	config     *types.SynthesisConfig
	httpClient *http.Client
}

// NewElevenLabs creates a client; cfg is validated and defaulted
func NewElevenLabs(cfg *types.SynthesisConfig) (*ElevenLabs, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &ElevenLabs{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

type dialogueInput struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

type dialogueRequest struct {
	Inputs  []dialogueInput `json:"inputs"`
	ModelID string          `json:"model_id,omitempty"`
}

type speechRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id,omitempty"`
}

// StreamDialogue starts one multi-voice synthesis. The caller closes the returned stream.
func (c *ElevenLabs) StreamDialogue(ctx context.Context, turns []scripttypes.SynthesisTurn) (io.ReadCloser, error) {
	inputs := make([]dialogueInput, 0, len(turns))
	for _, t := range turns {
		inputs = append(inputs, dialogueInput{Text: t.Text, VoiceID: t.VoiceID})
	}
	return c.stream(ctx, "/v1/text-to-dialogue/stream", dialogueRequest{
		Inputs:  inputs,
		ModelID: c.config.DialogueModel,
	})
}

// StreamSpeech starts one single-voice synthesis. The caller closes the returned stream.
func (c *ElevenLabs) StreamSpeech(ctx context.Context, text, voiceID string) (io.ReadCloser, error) {
	if voiceID == "" {
		voiceID = types.DefaultSpeechVoice
	}
	return c.stream(ctx, "/v1/text-to-speech/"+url.PathEscape(voiceID)+"/stream", speechRequest{
		Text:    text,
		ModelID: c.config.SpeechModel,
	})
}

// ListVoices returns the voice catalog of the account
func (c *ElevenLabs) ListVoices(ctx context.Context) ([]types.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/v1/voices"), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUpstreamTransport, err.Error())
	}
	c.setHeaders(req, false)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUpstreamTransport, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxVoiceBody))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUpstreamTransport, err.Error())
	}
	return ParseVoices(body)
}

// ParseVoices reads the voices array of a catalog response
func ParseVoices(body []byte) ([]types.Voice, error) {
	if !gjson.ValidBytes(body) {
		return nil, apperrors.New(apperrors.ErrUpstreamResponse, "voices response is not valid JSON")
	}
	list := gjson.GetBytes(body, "voices")
	if !list.IsArray() {
		return nil, apperrors.New(apperrors.ErrUpstreamResponse, "voices response has no voices array")
	}

	voices := make([]types.Voice, 0, len(list.Array()))
	for _, v := range list.Array() {
		id := v.Get("voice_id").String()
		if id == "" {
			continue
		}
		category := v.Get("category").String()
		if category == "" {
			category = "premade"
		}
		voices = append(voices, types.Voice{
			VoiceID:     id,
			Name:        v.Get("name").String(),
			Category:    category,
			Description: v.Get("description").String(),
		})
	}
	return voices, nil
}

func (c *ElevenLabs) stream(ctx context.Context, path string, payload interface{}) (io.ReadCloser, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.endpoint(path)
	if c.config.OutputFormat != "" {
		endpoint += "?output_format=" + url.QueryEscape(c.config.OutputFormat)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUpstreamTransport, err.Error())
	}
	c.setHeaders(req, true)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrUpstreamTransport, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, responseError(resp)
	}
	return resp.Body, nil
}

func (c *ElevenLabs) endpoint(path string) string {
	return strings.TrimRight(c.config.APIHost, "/") + path
}

func (c *ElevenLabs) setHeaders(req *http.Request, withBody bool) {
	if withBody {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "audio/mpeg")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set(apiKeyHeader, c.config.APIKey)
	req.Header.Set("User-Agent", "KnowCast-Backend/1.0")
}

// responseError reads the failure payload of a non-2xx response. A payload with a
// message is a service error; anything else is reported by status.
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if msg := errorMessage(body); msg != "" {
		return apperrors.New(apperrors.ErrUpstreamService, msg)
	}
	return apperrors.New(apperrors.ErrUpstreamTransport,
		fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
}

func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Get("message").String() != "":
		return detail.Get("message").String()
	case detail.Type == gjson.String:
		return detail.String()
	case detail.IsArray() && detail.Get("0.msg").String() != "":
		return detail.Get("0.msg").String()
	}
	return ""
}
