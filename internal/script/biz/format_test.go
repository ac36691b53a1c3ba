package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lk2023060901/knowcast-backend/internal/script/types"
)

func TestFormatForSynthesis(t *testing.T) {
	speakers := []types.SpeakerConfig{
		{Name: "Alex", VoiceID: "voice-alex"},
		{Name: "Jordan", VoiceID: "voice-jordan"},
	}
	script := []types.DialogueTurn{
		{Speaker: "Alex", Text: "Welcome!", Emotion: "enthusiastic"},
		{Speaker: "Jordan", Text: "Hi.", Emotion: "curious"},
		{Speaker: "Narrator", Text: "Meanwhile...", Emotion: "calm"},
	}

	got := FormatForSynthesis(script, speakers)
	assert.Equal(t, []types.SynthesisTurn{
		{Text: "Welcome!", VoiceID: "voice-alex"},
		{Text: "Hi.", VoiceID: "voice-jordan"},
		{Text: "Meanwhile...", VoiceID: "voice-alex"},
	}, got)

	assert.Equal(t, got, FormatForSynthesis(script, speakers))
}

func TestFormatForSynthesis_Empty(t *testing.T) {
	assert.Empty(t, FormatForSynthesis(nil, nil))

	got := FormatForSynthesis([]types.DialogueTurn{{Speaker: "Alex", Text: "hi"}}, nil)
	assert.Equal(t, []types.SynthesisTurn{{Text: "hi"}}, got)
}
