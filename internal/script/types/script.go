package types

import "github.com/lk2023060901/knowcast-backend/internal/pkg/result"

// Style selects the speaker table and the tone of the prompt
type Style string

const (
	StyleEducational Style = "educational"
	StyleCasual      Style = "casual"
	StyleDebate      Style = "debate"
)

// Valid reports whether s is a known style
func (s Style) Valid() bool {
	switch s {
	case StyleEducational, StyleCasual, StyleDebate:
		return true
	}
	return false
}

// Length selects the target number of dialogue turns
type Length string

const (
	LengthShort    Length = "short"
	LengthMedium   Length = "medium"
	LengthDetailed Length = "detailed"
)

// Valid reports whether l is a known length
func (l Length) Valid() bool {
	switch l {
	case LengthShort, LengthMedium, LengthDetailed:
		return true
	}
	return false
}

// MaxSpeakers caps the speaker count of one script
const MaxSpeakers = 4

// SpeakerConfig is the resolved identity and voice of one podcast participant
type SpeakerConfig struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Personality string `json:"personality"`
	VoiceID     string `json:"voice_id"`
}

// DialogueTurn is one utterance of the generated script
type DialogueTurn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Emotion string `json:"emotion"`
}

// SynthesisTurn is one entry of a dialogue synthesis request
type SynthesisTurn struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

// GenerateScriptRequest carries the inputs of one script generation
type GenerateScriptRequest struct {
	Knowledge       string
	Topic           string
	NumSpeakers     int
	Style           Style
	Length          Length
	VoiceIDs        []string
	Characteristics []string
}

// ScriptMetadata describes how a script was produced
type ScriptMetadata struct {
	Topic         string          `json:"topic"`
	NumSpeakers   int             `json:"num_speakers"`
	Style         Style           `json:"style"`
	Length        Length          `json:"length"`
	SpeakerConfig []SpeakerConfig `json:"speaker_config"`
	TurnCount     int             `json:"turn_count"`
	Model         string          `json:"model,omitempty"`
}

// ScriptResult is the outcome of one script generation
type ScriptResult struct {
	result.Status
	Script   []DialogueTurn `json:"script"`
	Metadata ScriptMetadata `json:"metadata"`
}
