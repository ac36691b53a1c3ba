package biz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lk2023060901/knowcast-backend/internal/pkg/errors"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/script/types"
)

type fakeChat struct {
	content string
	err     error
	calls   int
	last    types.ChatRequest
}

func (f *fakeChat) CompleteJSON(_ context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &types.ChatResponse{Content: f.content, Model: "gpt-test"}, nil
}

func dialogueJSON(t *testing.T, names []string, turns int) string {
	t.Helper()
	payload := scriptPayload{}
	for i := 0; i < turns; i++ {
		payload.Dialogue = append(payload.Dialogue, types.DialogueTurn{
			Speaker: names[i%len(names)],
			Text:    fmt.Sprintf("[curious] line %d", i+1),
			Emotion: "curious",
		})
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(raw)
}

func validRequest() types.GenerateScriptRequest {
	return types.GenerateScriptRequest{
		Knowledge:   "Machine learning is a field of AI.",
		Topic:       "What is machine learning?",
		NumSpeakers: 2,
		Style:       types.StyleEducational,
		Length:      types.LengthShort,
	}
}

func TestGenerate_Scenario(t *testing.T) {
	chat := &fakeChat{content: dialogueJSON(t, []string{"Alex", "Jordan"}, 10)}
	g := NewGenerator(chat, nil, logger.Nop())

	res := g.Generate(context.Background(), validRequest())
	require.True(t, res.OK(), res.Error)

	band := TurnBandFor(types.LengthShort)
	assert.GreaterOrEqual(t, len(res.Script), band.Min)
	assert.LessOrEqual(t, len(res.Script), band.Max)
	for i, turn := range res.Script {
		assert.Equal(t, []string{"Alex", "Jordan"}[i%2], turn.Speaker)
		assert.NotEmpty(t, turn.Text)
	}

	assert.Equal(t, 1, chat.calls)
	assert.Equal(t, DefaultTemperature, chat.last.Temperature)
	assert.Contains(t, chat.last.System, "8-12 dialogue turns")
	assert.Contains(t, chat.last.User, "Machine learning is a field of AI.")

	md := res.Metadata
	assert.Equal(t, "What is machine learning?", md.Topic)
	assert.Equal(t, 2, md.NumSpeakers)
	assert.Equal(t, types.StyleEducational, md.Style)
	assert.Equal(t, types.LengthShort, md.Length)
	assert.Equal(t, 10, md.TurnCount)
	assert.Equal(t, "gpt-test", md.Model)
	require.Len(t, md.SpeakerConfig, 2)
	assert.Equal(t, "Alex", md.SpeakerConfig[0].Name)
}

func TestGenerate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.GenerateScriptRequest)
		field  string
	}{
		{"empty topic", func(r *types.GenerateScriptRequest) { r.Topic = " " }, "topic"},
		{"empty knowledge", func(r *types.GenerateScriptRequest) { r.Knowledge = "" }, "knowledge"},
		{"zero speakers", func(r *types.GenerateScriptRequest) { r.NumSpeakers = 0 }, "num_speakers"},
		{"unknown style", func(r *types.GenerateScriptRequest) { r.Style = "comedy" }, "style"},
		{"unknown length", func(r *types.GenerateScriptRequest) { r.Length = "epic" }, "length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{}
			req := validRequest()
			tt.mutate(&req)

			res := NewGenerator(chat, nil, logger.Nop()).Generate(context.Background(), req)
			assert.False(t, res.OK())
			assert.True(t, apperrors.Is(res.Err(), apperrors.ErrInvalidParams))
			assert.Contains(t, res.Error, tt.field)
			assert.Equal(t, 0, chat.calls)
		})
	}
}

func TestGenerate_Defaults(t *testing.T) {
	chat := &fakeChat{content: dialogueJSON(t, []string{"Alex"}, 3)}
	req := validRequest()
	req.Style, req.Length, req.NumSpeakers = "", "", 9

	res := NewGenerator(chat, nil, logger.Nop()).Generate(context.Background(), req)
	require.True(t, res.OK())
	assert.Equal(t, types.StyleEducational, res.Metadata.Style)
	assert.Equal(t, types.LengthMedium, res.Metadata.Length)
	assert.Equal(t, types.MaxSpeakers, res.Metadata.NumSpeakers)
}

func TestGenerate_ParseFailure(t *testing.T) {
	chat := &fakeChat{content: "Sure! Here is your podcast:"}
	res := NewGenerator(chat, nil, logger.Nop()).Generate(context.Background(), validRequest())

	assert.False(t, res.OK())
	assert.Contains(t, res.Error, "failed to parse script JSON")
	assert.True(t, apperrors.Is(res.Err(), apperrors.ErrUpstreamResponse))
	assert.Empty(t, res.Script)
}

func TestGenerate_EmptyDialogue(t *testing.T) {
	chat := &fakeChat{content: `{"dialogue": []}`}
	res := NewGenerator(chat, nil, logger.Nop()).Generate(context.Background(), validRequest())

	assert.False(t, res.OK())
	assert.Equal(t, "no dialogue turns returned", res.Error)
}

func TestGenerate_ChatFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "plain error",
			err:      errors.New("connection reset"),
			wantCode: apperrors.ErrUpstreamTransport,
			wantMsg:  "connection reset",
		},
		{
			name:     "coded error",
			err:      apperrors.New(apperrors.ErrUpstreamService, "invalid api key"),
			wantCode: apperrors.ErrUpstreamService,
			wantMsg:  "invalid api key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewGenerator(&fakeChat{err: tt.err}, nil, logger.Nop()).Generate(context.Background(), validRequest())
			assert.False(t, res.OK())
			assert.Equal(t, tt.wantMsg, res.Error)
			assert.True(t, apperrors.Is(res.Err(), tt.wantCode))
		})
	}
}

func TestGenerate_Budget(t *testing.T) {
	chat := &fakeChat{content: dialogueJSON(t, []string{"Alex", "Jordan"}, 8)}
	budget := &KnowledgeBudget{encoding: &wordTokenizer{}, maxTokens: 2}
	req := validRequest()
	req.Knowledge = "alpha beta gamma delta"

	res := NewGenerator(chat, budget, logger.Nop()).Generate(context.Background(), req)
	require.True(t, res.OK())
	assert.Contains(t, chat.last.User, "alpha beta\n")
	assert.NotContains(t, chat.last.User, "gamma")
}

func TestParseScript(t *testing.T) {
	turns, err := ParseScript(`{"dialogue": [{"speaker": "Sam", "text": "hey", "emotion": "happy"}]}`)
	require.NoError(t, err)
	assert.Equal(t, []types.DialogueTurn{{Speaker: "Sam", Text: "hey", Emotion: "happy"}}, turns)

	_, err = ParseScript(`[1, 2]`)
	assert.ErrorContains(t, err, "failed to parse script JSON")
}

func TestGenerator_Ready(t *testing.T) {
	var nilGen *Generator
	assert.False(t, nilGen.Ready())
	assert.False(t, NewGenerator(nil, nil, logger.Nop()).Ready())
	assert.True(t, NewGenerator(&fakeChat{}, nil, logger.Nop()).Ready())
}
