package types

import (
	"errors"
	"net/url"
	"time"
)

const (
	DefaultAPIHost       = "https://api.elevenlabs.io"
	DefaultDialogueModel = "eleven_v3"
	DefaultSpeechModel   = "eleven_multilingual_v2"
	DefaultOutputFormat  = "mp3_44100_128"
	// DefaultSpeechVoice is used by single voice synthesis when the caller gives none
	DefaultSpeechVoice = "9BWtsMINqrJLrRacOk9x"
)

var (
	ErrMissingAPIKey  = errors.New("elevenlabs api key is required")
	ErrInvalidAPIHost = errors.New("elevenlabs api host is invalid")
)

// SynthesisConfig configures the dialogue synthesis client
type SynthesisConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	APIHost       string        `mapstructure:"api_host"`
	DialogueModel string        `mapstructure:"dialogue_model"`
	SpeechModel   string        `mapstructure:"speech_model"`
	OutputFormat  string        `mapstructure:"output_format"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// Validate checks required fields and fills defaults
func (c *SynthesisConfig) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.APIHost == "" {
		c.APIHost = DefaultAPIHost
	}
	if u, err := url.Parse(c.APIHost); err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidAPIHost
	}
	if c.DialogueModel == "" {
		c.DialogueModel = DefaultDialogueModel
	}
	if c.SpeechModel == "" {
		c.SpeechModel = DefaultSpeechModel
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutputFormat
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Minute
	}
	return nil
}
